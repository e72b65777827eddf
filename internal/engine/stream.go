package engine

import (
	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
)

// Recorder computes one instantaneous emission value per vehicle per step and
// keeps the resulting events in arrival order. Acceleration is the finite
// difference against the vehicle's previously observed speed; a vehicle's
// first observation has acceleration exactly 0.0.
type Recorder struct {
	runID     string
	catalog   *factors.Catalog
	prevSpeed map[string]float64
	events    []models.EmissionEvent
}

func NewRecorder(runID string, catalog *factors.Catalog) *Recorder {
	return &Recorder{
		runID:     runID,
		catalog:   catalog,
		prevSpeed: make(map[string]float64),
	}
}

// Record appends and returns the emission event for one observation.
func (r *Recorder) Record(obs models.VehicleObservation, deltaT float64) models.EmissionEvent {
	accel := 0.0
	if prev, ok := r.prevSpeed[obs.VehicleID]; ok && deltaT > 0 {
		accel = (obs.Speed - prev) / deltaT
	}
	co := r.catalog.Model(obs.Category)
	value := co.Speed*obs.Speed + co.Accel*accel + co.Const

	event := models.EmissionEvent{
		RunID:        r.runID,
		Time:         obs.Time,
		VehicleID:    obs.VehicleID,
		Category:     obs.Category,
		Speed:        obs.Speed,
		Acceleration: accel,
		Value:        value,
	}
	r.events = append(r.events, event)
	r.prevSpeed[obs.VehicleID] = obs.Speed
	return event
}

// Events returns the recorded sequence in arrival order.
func (r *Recorder) Events() []models.EmissionEvent {
	return r.events
}
