package internal

import (
	"log"

	"github.com/robfig/cron/v3"
)

const CRON_SCHEDULE_STATIONS = "0 3 * * *" // Daily at 03:00
const CRON_SCHEDULE_PRICES = "30 */6 * * *" // Every 6 hours; bulletins land once a week but not on a fixed day

func StartCron(client FuelDataClient, repo FuelDataRepository) (*cron.Cron, error) {
	c := cron.New()

	log.Print("Starting CRON jobs to refresh stations and weekly price bulletins")

	if _, err := c.AddFunc(CRON_SCHEDULE_STATIONS, func() {
		numStations, err := client.GetStations(repo.InsertStations)
		if err != nil {
			log.Printf("Error fetching stations: %v\n", err)
			return
		}
		log.Printf("Upserted %d stations", numStations)
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(CRON_SCHEDULE_PRICES, func() {
		numPrices, err := client.GetWeeklyPrices(repo.InsertPrices)
		if err != nil {
			log.Printf("Error fetching weekly prices: %v\n", err)
			return
		}
		log.Printf("Upserted %d price observations", numPrices)
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
