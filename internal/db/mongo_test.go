package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ukydev/traffic-emissions/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestConnectMongo_BadURI(t *testing.T) {
	os.Setenv("MONGO_URI", "mongodb://bad:uri")
	client, err := ConnectMongo()
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestInsertAggregates_NilCollection(t *testing.T) {
	coll := &MongoAggregateCollection{Collection: nil}
	err := coll.InsertAggregates(context.Background(), []models.TypeAggregate{{Category: "car"}})
	if err == nil {
		t.Error("expected error when collection is nil")
	}
}

func TestInsertAggregates_EmptySlice(t *testing.T) {
	coll := &MongoAggregateCollection{Collection: nil}
	if err := coll.InsertAggregates(context.Background(), nil); err != nil {
		t.Errorf("expected nil for empty insert, got %v", err)
	}
}

func TestInsertEvents_NilCollection(t *testing.T) {
	coll := &MongoEventCollection{Collection: nil}
	err := coll.InsertEvents(context.Background(), []models.EmissionEvent{{VehicleID: "v1"}})
	if err == nil {
		t.Error("expected error when collection is nil")
	}
}

func TestInsertEvents_EmptySlice(t *testing.T) {
	coll := &MongoEventCollection{Collection: nil}
	if err := coll.InsertEvents(context.Background(), nil); err != nil {
		t.Errorf("expected nil for empty insert, got %v", err)
	}
}

func TestFind_NilCollection(t *testing.T) {
	aggs := &MongoAggregateCollection{Collection: nil}
	if _, err := aggs.Find(context.Background(), nil); err == nil {
		t.Error("expected error when aggregate collection is nil")
	}
	events := &MongoEventCollection{Collection: nil}
	if _, err := events.Find(context.Background(), nil); err == nil {
		t.Error("expected error when event collection is nil")
	}
}

// Integration test (requires running MongoDB)
func TestInsertAggregates_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
		return
	}
	client, err := mongo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "emissions"
	}
	coll := &MongoAggregateCollection{Collection: client.Database(dbName).Collection("aggregates")}
	err = coll.InsertAggregates(context.Background(), []models.TypeAggregate{{RunID: "it", Category: "car"}})
	if err != nil {
		t.Errorf("expected insert to succeed, got error: %v", err)
	}
}
