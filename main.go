package main

import (
	"log"

	"github.com/fuelwatch-ph/fuelwatch-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
