package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ukydev/traffic-emissions/internal/db"
	"github.com/ukydev/traffic-emissions/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AggregatesHandler serves stored per-type aggregates.
type AggregatesHandler struct {
	Collection db.AggregateCollection
}

func (h *AggregatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := bson.M{}
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		filter["run_id"] = runID
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	cursor, err := h.Collection.Find(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to query aggregates", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var aggregates []models.TypeAggregate
	if err := cursor.All(r.Context(), &aggregates); err != nil {
		http.Error(w, "Failed to decode aggregates", http.StatusInternalServerError)
		return
	}
	if aggregates == nil {
		aggregates = []models.TypeAggregate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(aggregates)
}

// EventsHandler serves stored emission events.
type EventsHandler struct {
	Collection db.EventCollection
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := bson.M{}
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		filter["run_id"] = runID
	}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	limit := int64(1000)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := h.Collection.Find(r.Context(), filter, opts)
	if err != nil {
		http.Error(w, "Failed to query events", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var events []models.EmissionEvent
	if err := cursor.All(r.Context(), &events); err != nil {
		http.Error(w, "Failed to decode events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.EmissionEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
