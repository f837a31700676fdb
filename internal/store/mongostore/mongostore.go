// Package mongostore is the MongoDB store.Collection. Documents keep the
// planner's numeric "id" field alongside Mongo's own _id, which is never
// exposed.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"synergy/internal/store"
)

type Collection[T any] struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// New opens the named collection. Documents that cannot be decoded, such
// as entries with fractional ids written by older clients, are skipped on
// List and reported to log.
func New[T any](db *mongo.Database, name string, log *slog.Logger) *Collection[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Collection[T]{coll: db.Collection(name), log: log}
}

// EnsureIndexes creates the unique index on id.
func (c *Collection[T]) EnsureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", c.coll.Name(), classify(err))
	}
	return nil
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetProjection(bson.M{"_id": 0})

	cursor, err := c.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.coll.Name(), classify(err))
	}
	defer cursor.Close(ctx)
	return decodeAll[T](ctx, cursor, c.coll.Name(), c.log)
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor, name string, log *slog.Logger) ([]T, error) {
	docs := []T{}
	skipped := 0
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			skipped++
			log.Warn("skipping undecodable document",
				"collection", name,
				"id", cursor.Current.Lookup("id").String(),
				"error", err,
			)
			continue
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, classify(err))
	}
	if skipped > 0 {
		log.Warn("list returned partial results", "collection", name, "skipped", skipped)
	}
	return docs, nil
}

func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, fmt.Errorf("%s %d: %w", c.coll.Name(), id, store.ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %d: %w", c.coll.Name(), id, classify(err))
	}
	return doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, docs ...T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	if _, err := c.coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert %s: %w", c.coll.Name(), classify(err))
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id int64, fields map[string]any) (T, error) {
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(fields)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, fmt.Errorf("%s %d: %w", c.coll.Name(), id, store.ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("update %s %d: %w", c.coll.Name(), id, classify(err))
	}
	return doc, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	result, err := c.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.coll.Name(), id, classify(err))
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s %d: %w", c.coll.Name(), id, store.ErrNotFound)
	}
	return nil
}

func (c *Collection[T]) MaxID(ctx context.Context) (int64, error) {
	var head struct {
		ID bson.RawValue `bson:"id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetProjection(bson.M{"id": 1})
	err := c.coll.FindOne(ctx, bson.M{}, opts).Decode(&head)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("max id %s: %w", c.coll.Name(), classify(err))
	}
	return numericID(head.ID), nil
}

// numericID reads an id of any BSON number type. Fractional ids round up
// so generated ids stay above them. Anything else counts as 0.
func numericID(v bson.RawValue) int64 {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32())
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		f := v.Double()
		switch {
		case math.IsNaN(f) || f < 0:
			return 0
		case f >= math.MaxInt64:
			return math.MaxInt64
		}
		return int64(math.Ceil(f))
	}
	return 0
}

func classify(err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicateID, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}
