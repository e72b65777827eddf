package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/traffic-emissions/internal/factors"
	"github.com/ukydev/traffic-emissions/internal/models"
)

func TestRecorderFirstObservationHasZeroAcceleration(t *testing.T) {
	recorder := NewRecorder("run1", factors.NewCatalog())

	event := recorder.Record(models.VehicleObservation{
		VehicleID: "v1", Category: "car", Speed: 10.0, Time: 1.0,
	}, 1.0)

	assert.Equal(t, 0.0, event.Acceleration)
}

func TestRecorderFiniteDifferenceAcceleration(t *testing.T) {
	recorder := NewRecorder("run1", factors.NewCatalog())

	recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 10.0, Time: 1.0}, 1.0)
	event := recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 14.0, Time: 2.0}, 1.0)

	assert.InDelta(t, 4.0, event.Acceleration, 1e-9)
}

func TestRecorderLinearModelValue(t *testing.T) {
	catalog := factors.NewCatalog()
	recorder := NewRecorder("run1", catalog)

	recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 10.0, Time: 1.0}, 1.0)
	event := recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 14.0, Time: 2.0}, 1.0)

	co := catalog.Model("car")
	expected := co.Speed*14.0 + co.Accel*4.0 + co.Const
	assert.InDelta(t, expected, event.Value, 1e-9)
}

func TestRecorderUnknownCategoryUsesDefaultModel(t *testing.T) {
	catalog := factors.NewCatalog()
	recorder := NewRecorder("run1", catalog)

	event := recorder.Record(models.VehicleObservation{VehicleID: "d1", Category: "drone", Speed: 8.0, Time: 1.0}, 1.0)

	co := catalog.Model("drone")
	expected := co.Speed*8.0 + co.Const // first observation, acceleration 0
	assert.InDelta(t, expected, event.Value, 1e-9)
}

func TestRecorderTracksSpeedPerVehicle(t *testing.T) {
	recorder := NewRecorder("run1", factors.NewCatalog())

	recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 10.0, Time: 1.0}, 1.0)
	recorder.Record(models.VehicleObservation{VehicleID: "v2", Category: "car", Speed: 20.0, Time: 1.0}, 1.0)
	ev1 := recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 12.0, Time: 2.0}, 1.0)
	ev2 := recorder.Record(models.VehicleObservation{VehicleID: "v2", Category: "car", Speed: 15.0, Time: 2.0}, 1.0)

	assert.InDelta(t, 2.0, ev1.Acceleration, 1e-9)
	assert.InDelta(t, -5.0, ev2.Acceleration, 1e-9)
}

func TestRecorderAppendsInArrivalOrder(t *testing.T) {
	recorder := NewRecorder("run1", factors.NewCatalog())

	recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 10.0, Time: 1.0}, 1.0)
	recorder.Record(models.VehicleObservation{VehicleID: "v2", Category: "bus", Speed: 5.0, Time: 1.0}, 1.0)
	recorder.Record(models.VehicleObservation{VehicleID: "v1", Category: "car", Speed: 11.0, Time: 2.0}, 1.0)

	events := recorder.Events()
	assert.Len(t, events, 3)
	assert.Equal(t, "v1", events[0].VehicleID)
	assert.Equal(t, "v2", events[1].VehicleID)
	assert.Equal(t, "v1", events[2].VehicleID)
	assert.Equal(t, "run1", events[0].RunID)
}
