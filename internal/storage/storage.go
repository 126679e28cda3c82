// Package storage opens input locations and publishes output locations,
// either on the local filesystem or in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"csvmerge/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Store = (*Router)(nil)
	_ domain.Store = (*LocalStore)(nil)
	_ domain.Store = (*S3Store)(nil)
)

// IsS3 reports whether location is an s3:// URI.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Router dispatches s3:// locations to S3 and everything else to Local.
// S3 is nil when no credentials are configured.
type Router struct {
	Local *LocalStore
	S3    *S3Store
}

// NewRouter creates a Router over the local filesystem and an optional S3 store.
func NewRouter(s3 *S3Store) *Router {
	return &Router{Local: NewLocalStore(), S3: s3}
}

func (r *Router) pick(location string) (domain.Store, error) {
	if !IsS3(location) {
		return r.Local, nil
	}
	if r.S3 == nil {
		return nil, fmt.Errorf("%s requires S3 credentials (set CSVMERGE_S3_KEY_ID, CSVMERGE_S3_SECRET and CSVMERGE_S3_REGION)", location)
	}
	return r.S3, nil
}

// Open returns a reader for location. The caller must close it.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	s, err := r.pick(location)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, location)
}

// Put publishes the contents of rd at location.
func (r *Router) Put(ctx context.Context, location string, rd io.Reader) error {
	s, err := r.pick(location)
	if err != nil {
		return err
	}
	return s.Put(ctx, location, rd)
}
