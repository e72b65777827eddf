package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmissionEvent is one streaming-mode record: the instantaneous emission value
// computed for one vehicle at one simulation step. Events are append-only and
// never mutated after creation.
type EmissionEvent struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID        string             `bson:"run_id" json:"run_id"`
	Time         float64            `bson:"time" json:"time"` // simulation seconds
	VehicleID    string             `bson:"vehicle_id" json:"vehicle_id"`
	Category     string             `bson:"category" json:"category"`
	Speed        float64            `bson:"speed" json:"speed"`               // m/s
	Acceleration float64            `bson:"acceleration" json:"acceleration"` // m/s^2
	Value        float64            `bson:"value" json:"value"`
}
