package engine

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
	"github.com/ukydev/traffic-emissions/internal/sim"
)

// EventSink receives streaming emission events as they are recorded. Publish
// failures do not abort the run; the event sequence in the Recorder stays
// authoritative.
type EventSink interface {
	Publish(event models.EmissionEvent) error
}

// Runner drives the simulator in lockstep: one step, then the full downstream
// pipeline for every active vehicle, then the next step. Everything runs on
// the calling goroutine; the session is closed unconditionally when Run
// returns, normally or not.
type Runner struct {
	Session  sim.Session
	Catalog  *factors.Catalog
	Tracker  *Tracker
	Recorder *Recorder // nil disables the streaming variant
	Sink     EventSink // optional, only consulted when Recorder is set
}

// Run executes the ingestion loop until the simulator reports no further
// expected vehicles. The first transport error aborts the run; steps are
// never reissued.
func (r *Runner) Run() (err error) {
	defer func() {
		if cerr := r.Session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session: %w", cerr)
		}
	}()

	deltaT, err := r.Session.DeltaT()
	if err != nil {
		return fmt.Errorf("read step length: %w", err)
	}

	steps := 0
	for {
		expected, err := r.Session.MinExpectedVehicles()
		if err != nil {
			return fmt.Errorf("read expected vehicle count: %w", err)
		}
		if expected <= 0 {
			break
		}

		if err := r.Session.Step(); err != nil {
			return fmt.Errorf("simulation step: %w", err)
		}
		steps++

		now, err := r.Session.Time()
		if err != nil {
			return fmt.Errorf("read simulation time: %w", err)
		}
		ids, err := r.Session.VehicleIDs()
		if err != nil {
			return fmt.Errorf("read active vehicles: %w", err)
		}

		for _, id := range ids {
			obs, err := r.observe(id, now)
			if err != nil {
				return err
			}
			r.Catalog.Resolve(obs.Category)
			r.Tracker.Observe(obs)

			if r.Recorder != nil {
				event := r.Recorder.Record(obs, deltaT)
				if r.Sink != nil {
					if perr := r.Sink.Publish(event); perr != nil {
						log.WithError(perr).WithField("vehicle_id", id).Error("Failed to publish emission event")
					}
				}
			}
		}
	}

	log.WithFields(log.Fields{
		"steps":    steps,
		"vehicles": r.Tracker.Len(),
	}).Info("Simulation finished")
	return nil
}

func (r *Runner) observe(id string, now float64) (models.VehicleObservation, error) {
	category, err := r.Session.VehicleType(id)
	if err != nil {
		return models.VehicleObservation{}, fmt.Errorf("read type of %s: %w", id, err)
	}
	speed, err := r.Session.Speed(id)
	if err != nil {
		return models.VehicleObservation{}, fmt.Errorf("read speed of %s: %w", id, err)
	}
	distance, err := r.Session.Distance(id)
	if err != nil {
		return models.VehicleObservation{}, fmt.Errorf("read distance of %s: %w", id, err)
	}
	return models.VehicleObservation{
		VehicleID: id,
		Category:  category,
		Speed:     speed,
		Time:      now,
		OdometerM: distance,
	}, nil
}
