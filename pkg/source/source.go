// Package source defines the read-only view of the document store the
// migration reads from.
package source

import (
	"context"
)

// Document is one record from a source collection. ID is the source-native
// key exactly as the store reports it; Fields is the loosely-typed body.
// Documents are never modified by the migration.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store enumerates whole collections. Implementations never write.
// A collection that does not exist is reported as an error wrapping
// apperrors.ErrNotFound.
type Store interface {
	Fetch(ctx context.Context, collection string) ([]Document, error)
	Close() error
}
