package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/traffic-emissions/internal/db"
	"github.com/ukydev/traffic-emissions/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mockAggregateCursor struct {
	aggregates []models.TypeAggregate
	err        error
}

func (m *mockAggregateCursor) All(ctx context.Context, out interface{}) error {
	if m.err != nil {
		return m.err
	}
	*(out.(*[]models.TypeAggregate)) = m.aggregates
	return nil
}

func (m *mockAggregateCursor) Close(ctx context.Context) error { return nil }

type mockAggregateCollection struct {
	aggregates []models.TypeAggregate
	lastFilter interface{}
	findErr    error
}

func (m *mockAggregateCollection) InsertAggregates(ctx context.Context, aggregates []models.TypeAggregate) error {
	m.aggregates = append(m.aggregates, aggregates...)
	return nil
}

func (m *mockAggregateCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.AggregateCursor, error) {
	m.lastFilter = filter
	if m.findErr != nil {
		return nil, m.findErr
	}
	return &mockAggregateCursor{aggregates: m.aggregates}, nil
}

type mockEventCursor struct {
	events []models.EmissionEvent
}

func (m *mockEventCursor) All(ctx context.Context, out interface{}) error {
	*(out.(*[]models.EmissionEvent)) = m.events
	return nil
}

func (m *mockEventCursor) Close(ctx context.Context) error { return nil }

type mockEventCollection struct {
	events   []models.EmissionEvent
	lastOpts []*options.FindOptions
	findErr  error
}

func (m *mockEventCollection) InsertEvents(ctx context.Context, events []models.EmissionEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *mockEventCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.EventCursor, error) {
	m.lastOpts = opts
	if m.findErr != nil {
		return nil, m.findErr
	}
	return &mockEventCursor{events: m.events}, nil
}

func TestAggregatesHandler_ReturnsStoredAggregates(t *testing.T) {
	coll := &mockAggregateCollection{aggregates: []models.TypeAggregate{
		{RunID: "r1", Category: "car", TotalKm: 5.0, VehicleCount: 2},
	}}
	handler := &AggregatesHandler{Collection: coll}

	req := httptest.NewRequest("GET", "/api/aggregates", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []models.TypeAggregate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "car", got[0].Category)
	assert.Equal(t, 5.0, got[0].TotalKm)
}

func TestAggregatesHandler_FiltersByRunAndCategory(t *testing.T) {
	coll := &mockAggregateCollection{}
	handler := &AggregatesHandler{Collection: coll}

	req := httptest.NewRequest("GET", "/api/aggregates?run_id=r1&category=bus", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	filter, ok := coll.lastFilter.(bson.M)
	require.True(t, ok)
	assert.Equal(t, "r1", filter["run_id"])
	assert.Equal(t, "bus", filter["category"])
}

func TestAggregatesHandler_EmptyResultIsEmptyArray(t *testing.T) {
	handler := &AggregatesHandler{Collection: &mockAggregateCollection{}}

	req := httptest.NewRequest("GET", "/api/aggregates", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestAggregatesHandler_MethodNotAllowed(t *testing.T) {
	handler := &AggregatesHandler{Collection: &mockAggregateCollection{}}

	req := httptest.NewRequest("POST", "/api/aggregates", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAggregatesHandler_FindError(t *testing.T) {
	handler := &AggregatesHandler{Collection: &mockAggregateCollection{findErr: errors.New("boom")}}

	req := httptest.NewRequest("GET", "/api/aggregates", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEventsHandler_ReturnsStoredEvents(t *testing.T) {
	coll := &mockEventCollection{events: []models.EmissionEvent{
		{RunID: "r1", VehicleID: "v1", Category: "car", Speed: 10.0, Value: 3.0},
	}}
	handler := &EventsHandler{Collection: coll}

	req := httptest.NewRequest("GET", "/api/events", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []models.EmissionEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].VehicleID)
}

func TestEventsHandler_AppliesLimit(t *testing.T) {
	coll := &mockEventCollection{}
	handler := &EventsHandler{Collection: coll}

	req := httptest.NewRequest("GET", "/api/events?limit=50", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, coll.lastOpts, 1)
	require.NotNil(t, coll.lastOpts[0].Limit)
	assert.Equal(t, int64(50), *coll.lastOpts[0].Limit)
}

func TestEventsHandler_DefaultLimit(t *testing.T) {
	coll := &mockEventCollection{}
	handler := &EventsHandler{Collection: coll}

	req := httptest.NewRequest("GET", "/api/events", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, coll.lastOpts, 1)
	require.NotNil(t, coll.lastOpts[0].Limit)
	assert.Equal(t, int64(1000), *coll.lastOpts[0].Limit)
}

func TestEventsHandler_MethodNotAllowed(t *testing.T) {
	handler := &EventsHandler{Collection: &mockEventCollection{}}

	req := httptest.NewRequest("DELETE", "/api/events", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
