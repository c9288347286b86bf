package docstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by single-record lookups when no document
// matches. List operations return empty slices instead.
var ErrNotFound = errors.New("document not found")

// Contains is a case-insensitive substring condition on one field.
type Contains struct {
	Field string
	Value string
}

// Query shapes a Find call: equality filters on fields, an optional
// substring condition, newest-first ordering and skip/limit paging.
type Query struct {
	Filter     map[string]string
	Contains   *Contains
	SortNewest bool
	Skip       int
	Limit      int
}

// Store is the generic persistence interface every entity type shares.
// One implementation (PostgreSQL/JSONB) backs all collections.
type Store interface {
	Create(ctx context.Context, doc *Document) (*Document, error)
	FindByID(ctx context.Context, collection string, id uuid.UUID) (*Document, error)
	FindOne(ctx context.Context, collection string, filter map[string]string) (*Document, error)
	Find(ctx context.Context, collection string, q Query) ([]*Document, error)

	// UpdateByID merges fields into the stored document (top-level
	// whole-field replacement) and returns the updated document.
	// createdBy and createdAt are never touched.
	UpdateByID(ctx context.Context, collection string, id uuid.UUID, fields map[string]interface{}, isActive *bool) (*Document, error)

	DeleteByID(ctx context.Context, collection string, id uuid.UUID) error
	Count(ctx context.Context, collection string, filter map[string]string) (int, error)
}
