// Package store defines the persistence contract shared by the entry
// repositories: a collection of JSON-shaped documents keyed by a numeric
// id, with partial updates.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("store unavailable")
	ErrValidation  = errors.New("validation failed")
	ErrDuplicateID = errors.New("duplicate id")
)

// Collection is one kind of entity in a document store. Documents carry
// their id in the "id" field; store-internal identifiers never leak out.
//
// Field names passed to Update are the document's JSON field names, which
// every backend also uses as its storage field names.
type Collection[T any] interface {
	// List returns every document in ascending id order.
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	// Insert stores all docs or none of them.
	Insert(ctx context.Context, docs ...T) error
	// Update sets the given fields and returns the updated document. Fields
	// not named are left as they are.
	Update(ctx context.Context, id int64, fields map[string]any) (T, error)
	Delete(ctx context.Context, id int64) error
	// MaxID returns the largest id in the collection, or 0 when empty.
	MaxID(ctx context.Context) (int64, error)
}

// Names of the collections used by the planner.
const (
	Todos       = "todos"
	Notes       = "notes"
	DietItems   = "dietItems"
	Exercises   = "exercises"
	Preferences = "preferences"
)

