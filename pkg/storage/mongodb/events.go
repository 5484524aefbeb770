// Package mongodb stores analytics events in MongoDB.
package mongodb

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventsCollection is the collection events are stored in.
const EventsCollection = "events"

// Options configures the MongoDB connection.
type Options struct {
	URI      string
	Database string
	// Timeout bounds connecting and the initial ping.
	Timeout time.Duration
}

// Events implements storage.EventStorage.
type Events struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Connect opens a connection, verifies it and makes sure the event indexes
// exist.
func Connect(ctx context.Context, opts Options) (*Events, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("could not ping mongo: %w", err)
	}

	e := &Events{client: client, col: client.Database(opts.Database).Collection(EventsCollection)}
	if err := e.ensureIndexes(cctx); err != nil {
		_ = client.Disconnect(ctx)

		return nil, err
	}

	return e, nil
}

func (e *Events) ensureIndexes(ctx context.Context) error {
	_, err := e.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "occurredAt", Value: 1}, {Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "leadEmail", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("could not create event indexes: %w", err)
	}

	return nil
}

// Close disconnects the client.
func (e *Events) Close(ctx context.Context) error {
	if err := e.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("could not disconnect from mongo: %w", err)
	}

	return nil
}

func between(from, to time.Time) bson.M {
	return bson.M{"occurredAt": bson.M{"$gte": from, "$lt": to}}
}

func (e *Events) StoreEvents(ctx context.Context, events ...domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	docs := make([]any, len(events))
	for i := range events {
		docs[i] = events[i]
	}
	// ordered=false keeps going past duplicate ids of retried batches
	_, err := e.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return events, nil
	}

	dups, ok := duplicateIndexes(err)
	if !ok {
		return nil, fmt.Errorf("could not store events: %w", err)
	}
	stored := make([]domain.Event, 0, len(events)-len(dups))
	for i := range events {
		if !dups[i] {
			stored = append(stored, events[i])
		}
	}

	return stored, nil
}

// duplicateIndexes returns the batch positions rejected as duplicate keys. ok
// is false when err holds anything but duplicate key errors.
func duplicateIndexes(err error) (map[int]bool, bool) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return nil, false
	}
	dups := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		if !mongo.IsDuplicateKeyError(we) {
			return nil, false
		}
		dups[we.Index] = true
	}

	return dups, true
}

func (e *Events) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := e.col.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("could not aggregate events: %w", err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("could not decode event aggregate: %w", err)
	}

	return nil
}

func (e *Events) CountByType(ctx context.Context, from, to time.Time) (map[domain.EventType]int64, error) {
	var rows []storage.Count
	err := e.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: between(from, to)}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}, &rows)
	if err != nil {
		return nil, err
	}

	out := make(map[domain.EventType]int64, len(rows))
	for _, r := range rows {
		out[domain.EventType(r.Value)] = r.Count
	}

	return out, nil
}

func (e *Events) CountDistinct(ctx context.Context, field string, from, to time.Time) (int64, error) {
	match := between(from, to)
	match[field] = bson.M{"$nin": bson.A{nil, ""}}

	var rows []struct {
		Count int64 `bson:"count"`
	}
	err := e.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field}}},
		{{Key: "$count", Value: "count"}},
	}, &rows)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	return rows[0].Count, nil
}

func (e *Events) TopValues(ctx context.Context,
	field string,
	eventType domain.EventType,
	from, to time.Time,
	limit int) ([]storage.Count, error) {
	match := between(from, to)
	match[field] = bson.M{"$nin": bson.A{nil, ""}}
	if eventType != "" {
		match["type"] = eventType
	}

	rows := []storage.Count{}
	err := e.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}, &rows)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (e *Events) CountSessionsWith(ctx context.Context,
	types []domain.EventType,
	from, to time.Time) (int64, error) {
	match := between(from, to)
	match["type"] = bson.M{"$in": types}
	match["sessionId"] = bson.M{"$nin": bson.A{nil, ""}}

	sessions, err := e.col.Distinct(ctx, "sessionId", match)
	if err != nil {
		return 0, fmt.Errorf("could not count converting sessions: %w", err)
	}

	return int64(len(sessions)), nil
}

// Name implements monitor.Checker.
func (e *Events) Name() string { return "mongo" }

// Check implements monitor.Checker.
func (e *Events) Check(ctx context.Context) error {
	if err := e.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("could not ping mongo: %w", err)
	}

	return nil
}
