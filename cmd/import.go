package cmd

import (
	"fmt"
	"log"
)

func Import(dbPath string) error {

	client, repo, err := bootstrap(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	numStations, err := client.GetStations(repo.InsertStations)
	if err != nil {
		return fmt.Errorf("failed to fetch stations: %w", err)
	}
	log.Printf("imported %d stations", numStations)

	numPrices, err := client.GetWeeklyPrices(repo.InsertPrices)
	if err != nil {
		return fmt.Errorf("failed to fetch weekly prices: %w", err)
	}
	log.Printf("imported %d price observations", numPrices)

	return nil
}
