// Package session keeps running matches addressable by id.
package session

import "context"

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	// Sweep removes every entry for which drop returns true and reports
	// how many were removed.
	Sweep(ctx context.Context, drop func(id string, v T) bool) (int, error)
	// Len reports how many entries are stored.
	Len() int
	NewID() string
}
