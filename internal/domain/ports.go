package domain

import (
	"context"
	"io"
)

// Merger performs a full outer join of two tables on key.
// Implemented by merge.HashMerger and engine.DuckDBMerger.
type Merger interface {
	Merge(ctx context.Context, left, right *Table, key string) (*Table, error)
}

// Store opens input and output locations.
// Implemented by storage.LocalStore and storage.S3Store.
type Store interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	// Put writes the full contents of r to location. Nothing is visible
	// at location unless Put returns nil.
	Put(ctx context.Context, location string, r io.Reader) error
}
