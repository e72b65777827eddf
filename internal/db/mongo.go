package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ukydev/traffic-emissions/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB using the MONGO_URI environment variable.
func ConnectMongo() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoAggregateCollection wraps a MongoDB collection for per-type aggregates.
type MongoAggregateCollection struct {
	Collection *mongo.Collection
}

// InsertAggregates stores a run's per-type aggregates.
func (c *MongoAggregateCollection) InsertAggregates(ctx context.Context, aggregates []models.TypeAggregate) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if len(aggregates) == 0 {
		return nil
	}
	docs := make([]interface{}, len(aggregates))
	for i, agg := range aggregates {
		docs[i] = agg
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

// Find queries aggregate records from the collection.
func (c *MongoAggregateCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (AggregateCursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoAggregateCursor{cursor: cursor}, nil
}

// DeleteAll deletes all aggregate records from the collection.
func (c *MongoAggregateCollection) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

type mongoAggregateCursor struct {
	cursor *mongo.Cursor
}

func (m *mongoAggregateCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoAggregateCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// MongoEventCollection wraps a MongoDB collection for emission events.
type MongoEventCollection struct {
	Collection *mongo.Collection
}

// InsertEvents stores a batch of emission events.
func (c *MongoEventCollection) InsertEvents(ctx context.Context, events []models.EmissionEvent) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i, ev := range events {
		docs[i] = ev
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

// Find queries emission events from the collection.
func (c *MongoEventCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (EventCursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoEventCursor{cursor: cursor}, nil
}

// DeleteAll deletes all event records from the collection.
func (c *MongoEventCollection) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

type mongoEventCursor struct {
	cursor *mongo.Cursor
}

func (m *mongoEventCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoEventCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}
