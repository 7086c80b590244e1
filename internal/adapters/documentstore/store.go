package documentstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")
var ErrAlreadyExists = errors.New("document already exists")

// Store persists whole documents keyed by collection and id.
//
// Writes replace the stored document. There is no versioning, the last write wins.
type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	// Create stores a new document, failing with ErrAlreadyExists if the id is taken
	Create(ctx context.Context, collection, id string, doc any) error
	Put(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
	// Increment atomically adds the deltas to the integer fields at the given dotted paths
	Increment(ctx context.Context, collection, id string, deltas map[string]int) error
}

// Document is a stored document that has not yet been decoded
type Document struct {
	ID string

	decode func(out any) error
}

func (d Document) Decode(out any) error {
	return d.decode(out)
}
