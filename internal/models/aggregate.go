package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeAggregate is the per-category result of a batch run: total distance,
// distinct vehicle count and one emission value per pollutant.
type TypeAggregate struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID        string             `bson:"run_id" json:"run_id"`
	Category     string             `bson:"category" json:"category"`
	TotalKm      float64            `bson:"total_km" json:"total_km"`
	VehicleCount int                `bson:"vehicle_count" json:"vehicle_count"`
	Emissions    map[string]float64 `bson:"emissions" json:"emissions"` // pollutant -> grams
	MeanTripSec  float64            `bson:"mean_trip_sec" json:"mean_trip_sec"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
