package db

import (
	"context"

	"github.com/ukydev/traffic-emissions/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AggregateCollection defines the interface for per-type aggregate storage.
type AggregateCollection interface {
	InsertAggregates(ctx context.Context, aggregates []models.TypeAggregate) error
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (AggregateCursor, error)
}

// AggregateCursor defines the interface for aggregate cursor operations.
type AggregateCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// EventCollection defines the interface for emission event storage.
type EventCollection interface {
	InsertEvents(ctx context.Context, events []models.EmissionEvent) error
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (EventCursor, error)
}

// EventCursor defines the interface for event cursor operations.
type EventCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
