package models

// VehicleObservation is one vehicle's instantaneous state for one simulation
// step, as reported by the simulator. The engine never invents these values.
type VehicleObservation struct {
	VehicleID string  `json:"vehicle_id"`
	Category  string  `json:"category"`
	Speed     float64 `json:"speed"`      // m/s
	Time      float64 `json:"time"`       // simulation seconds
	OdometerM float64 `json:"odometer_m"` // cumulative distance since network entry, meters
}

// VehicleState is the tracked record for one vehicle id over a run.
//
// OdometerM holds the latest cumulative odometer reading reported by the
// simulator, overwritten on every observation. It is NOT a sum of per-tick
// deltas; porting this against a simulator that reports deltas instead of a
// cumulative reading requires changing the tracker, not this field.
type VehicleState struct {
	Category  string  `json:"category"`
	OdometerM float64 `json:"odometer_m"`
	LastSpeed float64 `json:"last_speed"`
	FirstSeen float64 `json:"first_seen"` // simulation seconds
	LastSeen  float64 `json:"last_seen"`  // simulation seconds
}
