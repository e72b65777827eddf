// Package engine contains the emissions aggregation core: per-vehicle state
// tracking over the simulation loop, the post-run batch aggregator and the
// per-step streaming recorder.
package engine

import (
	"github.com/ukydev/traffic-emissions/internal/models"
)

// Tracker keeps one VehicleState per vehicle id for the duration of a run.
// Entries are created on first sight and never deleted; the batch aggregator
// reads them once, after the loop terminates. Mutated only by the loop's
// goroutine.
type Tracker struct {
	states map[string]*models.VehicleState
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*models.VehicleState)}
}

// Observe records one observation. The stored odometer value is overwritten,
// not summed: the simulator reports a monotonically non-decreasing cumulative
// reading per vehicle, so the latest value is the vehicle's distance so far.
func (t *Tracker) Observe(obs models.VehicleObservation) {
	st, ok := t.states[obs.VehicleID]
	if !ok {
		st = &models.VehicleState{
			Category:  obs.Category,
			FirstSeen: obs.Time,
		}
		t.states[obs.VehicleID] = st
	}
	st.OdometerM = obs.OdometerM
	st.LastSpeed = obs.Speed
	st.LastSeen = obs.Time
}

// States exposes the tracked map for aggregation and reporting.
func (t *Tracker) States() map[string]*models.VehicleState {
	return t.states
}

// Len returns the number of distinct vehicles observed so far.
func (t *Tracker) Len() int {
	return len(t.states)
}
