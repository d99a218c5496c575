// Package store persists entity records, one store per entity kind.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/balcao/balcao/internal/model"
)

// Common errors for store operations.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
)

// Store is the persistence contract for one entity kind.
// Only identity-key integrity is enforced; other uniqueness rules belong to callers.
type Store[T any] interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)
	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)
	// Add stores fields under a fresh id stamped with createdBy.
	Add(ctx context.Context, createdBy string, fields T) (T, error)
	// Update replaces the record whose id matches fields. ID, CreatedBy and
	// CreatedAt are kept from the stored record.
	Update(ctx context.Context, fields T) (T, error)
	// Remove deletes the record with id or returns ErrNotFound.
	Remove(ctx context.Context, id string) error
}

// entity constrains P to the pointer type of T exposing its record metadata.
type entity[T any] interface {
	*T
	model.Entity
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// newID returns a ULID for t. Entropy is monotonic within a millisecond.
func newID(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), ulid.DefaultEntropy())
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// Option configures a store.
type Option func(*options)

type options struct {
	now      func() time.Time
	snapshot *Snapshotter
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSnapshot persists every mutation of a memory store through s.
func WithSnapshot(s *Snapshotter) Option {
	return func(o *options) {
		o.snapshot = s
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
