package cmd

import (
	"github.com/spf13/cobra"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "fuelwatch-api",
	Short: "Weekly fuel price observations matched to nearby stations",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return err
		}
		return ApiServer(dbPath, port, debug)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch stations and the current weekly price bulletin once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Import(dbPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/fuelwatch.db", "path to the sqlite database")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().Bool("debug", false, "expose pprof endpoints")
	rootCmd.AddCommand(serveCmd, importCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
