package engine

import (
	"sort"
	"time"

	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
)

// Aggregate folds the final vehicle states into one TypeAggregate per
// category. For every pollutant, emission grams = the category's total
// distance in km times the category's g/km factor; the factor is flat across
// vehicles of a category, so summing distance first is equivalent to summing
// per-vehicle emissions. A category with zero distance yields zero emissions
// for every pollutant, which is a valid result.
func Aggregate(runID string, states map[string]*models.VehicleState, catalog *factors.Catalog) []models.TypeAggregate {
	type bucket struct {
		totalKm float64
		count   int
		tripSec float64
	}
	buckets := make(map[string]*bucket)

	for _, st := range states {
		b, ok := buckets[st.Category]
		if !ok {
			b = &bucket{}
			buckets[st.Category] = b
		}
		b.totalKm += st.OdometerM / 1000.0
		b.count++
		b.tripSec += st.LastSeen - st.FirstSeen
	}

	categories := make([]string, 0, len(buckets))
	for c := range buckets {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	now := time.Now()
	aggregates := make([]models.TypeAggregate, 0, len(categories))
	for _, category := range categories {
		b := buckets[category]
		emissions := make(map[string]float64, len(factors.Pollutants))
		for _, pollutant := range factors.Pollutants {
			emissions[pollutant] = b.totalKm * catalog.Rate(category, pollutant)
		}
		meanTrip := 0.0
		if b.count > 0 {
			meanTrip = b.tripSec / float64(b.count)
		}
		aggregates = append(aggregates, models.TypeAggregate{
			RunID:        runID,
			Category:     category,
			TotalKm:      b.totalKm,
			VehicleCount: b.count,
			Emissions:    emissions,
			MeanTripSec:  meanTrip,
			CreatedAt:    now,
		})
	}
	return aggregates
}
