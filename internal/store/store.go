package store

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by UpdateFields when no document has the given id.
var ErrNoDocument = errors.New("store: no such document")

// Filter is an exact-match conjunction over top-level document fields.
type Filter map[string]any

// Fields is a set of named fields to merge into a stored document.
type Fields map[string]any

// Store persists JSON documents grouped by collection name. Identifiers are
// generated on insert and carried inside each document under "id".
type Store interface {
	// Insert persists doc in the named collection and returns its new id.
	Insert(ctx context.Context, collection string, doc any) (string, error)

	// FindOne loads the document with the given id into dest. It reports
	// false with a nil error when the document is absent.
	FindOne(ctx context.Context, collection, id string, dest any) (bool, error)

	// FindMany loads every document matching filter into dest, which must be
	// a pointer to a slice. A nil or empty filter matches the whole collection.
	FindMany(ctx context.Context, collection string, filter Filter, dest any) error

	// UpdateFields merges the named fields into the stored document.
	UpdateFields(ctx context.Context, collection, id string, fields Fields) error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	Close() error
}
