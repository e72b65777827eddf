// Package sim provides the connection to the external traffic simulator. The
// engine only depends on the Session interface; the production implementation
// launches a SUMO process and speaks the TraCI binary protocol over TCP.
package sim

import "errors"

var ErrClosed = errors.New("simulator session closed")

// Session is one live simulation run. All calls are synchronous and must be
// made from a single goroutine; Step blocks until the simulator has advanced
// exactly one discrete interval.
type Session interface {
	// Step advances the simulation by one time step.
	Step() error
	// MinExpectedVehicles returns the number of vehicles still expected in
	// the network (running plus queued for insertion). The ingestion loop
	// terminates when it reaches zero.
	MinExpectedVehicles() (int, error)
	// VehicleIDs lists the ids of vehicles currently in the network.
	VehicleIDs() ([]string, error)
	// VehicleType returns the category (vehicle type id) of a vehicle.
	VehicleType(id string) (string, error)
	// Speed returns the current speed of a vehicle in m/s.
	Speed(id string) (float64, error)
	// Distance returns the cumulative distance driven by a vehicle since it
	// entered the network, in meters.
	Distance(id string) (float64, error)
	// DeltaT returns the simulation step length in seconds.
	DeltaT() (float64, error)
	// Time returns the current simulation time in seconds.
	Time() (float64, error)
	// Close shuts the simulator down and releases the session. Safe to call
	// more than once.
	Close() error
}
