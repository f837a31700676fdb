// Package preferences keeps the single user-preferences document and the
// theme state derived from it.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"synergy/internal/store"
)

// Theme is the colour scheme of the client.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// DefaultTheme applies when nothing is stored.
const DefaultTheme = Dark

func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// singletonID is the id of the one preferences document.
const singletonID int64 = 1

type Preferences struct {
	ID    int64 `bson:"id" json:"id,omitempty"`
	Theme Theme `bson:"theme" json:"theme"`
}

// Store reads and writes the preferences singleton.
type Store struct {
	coll store.Collection[Preferences]
}

func NewStore(coll store.Collection[Preferences]) *Store {
	return &Store{coll: coll}
}

// Get returns the stored preferences, or the defaults when none exist.
func (s *Store) Get(ctx context.Context) (Preferences, error) {
	p, ok, err := s.lookup(ctx)
	if err != nil {
		return Preferences{}, err
	}
	if !ok {
		return Preferences{ID: singletonID, Theme: DefaultTheme}, nil
	}
	return p, nil
}

// lookup reports ok false when no valid preferences are stored.
func (s *Store) lookup(ctx context.Context) (Preferences, bool, error) {
	p, err := s.coll.Get(ctx, singletonID)
	if errors.Is(err, store.ErrNotFound) {
		return Preferences{}, false, nil
	}
	if err != nil {
		return Preferences{}, false, err
	}
	return p, p.Theme.Valid(), nil
}

// SetTheme stores theme, creating the document on first use.
func (s *Store) SetTheme(ctx context.Context, theme Theme) (Preferences, error) {
	if !theme.Valid() {
		return Preferences{}, fmt.Errorf("%w: unknown theme %q", store.ErrValidation, theme)
	}
	fields := map[string]any{"theme": theme}
	p, err := s.coll.Update(ctx, singletonID, fields)
	if !errors.Is(err, store.ErrNotFound) {
		return p, err
	}

	p = Preferences{ID: singletonID, Theme: theme}
	err = s.coll.Insert(ctx, p)
	if errors.Is(err, store.ErrDuplicateID) {
		// Lost a race with another first write.
		return s.coll.Update(ctx, singletonID, fields)
	}
	if err != nil {
		return Preferences{}, err
	}
	return p, nil
}
