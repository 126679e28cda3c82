// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"csvmerge/internal/domain"
)

// === Store Mock ===

// MockStore implements domain.Store in memory. Files maps locations to their
// contents; Put records written objects in Written.
type MockStore struct {
	OpenFn func(ctx context.Context, location string) (io.ReadCloser, error)
	PutFn  func(ctx context.Context, location string, r io.Reader) error

	mu      sync.Mutex
	Files   map[string]string
	Written map[string]string
	Opened  []string
}

// NewMockStore creates a MockStore serving files.
func NewMockStore(files map[string]string) *MockStore {
	return &MockStore{Files: files, Written: map[string]string{}}
}

// Open implements the interface method for testing.
func (m *MockStore) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.Opened = append(m.Opened, location)
	m.mu.Unlock()
	if m.OpenFn != nil {
		return m.OpenFn(ctx, location)
	}
	content, ok := m.Files[location]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", location, os.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// Put implements the interface method for testing.
func (m *MockStore) Put(ctx context.Context, location string, r io.Reader) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, location, r)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Written == nil {
		m.Written = map[string]string{}
	}
	m.Written[location] = buf.String()
	return nil
}

// === Merger Mock ===

// MockMerger implements domain.Merger for testing.
type MockMerger struct {
	MergeFn func(ctx context.Context, left, right *domain.Table, key string) (*domain.Table, error)
	Calls   int
}

// Merge implements the interface method for testing.
func (m *MockMerger) Merge(ctx context.Context, left, right *domain.Table, key string) (*domain.Table, error) {
	m.Calls++
	if m.MergeFn != nil {
		return m.MergeFn(ctx, left, right, key)
	}
	panic("unexpected call to MockMerger.Merge")
}

// === Reporter Mock ===

// RecordingReporter captures the progress messages a run emits.
type RecordingReporter struct {
	Summaries []string
	Outfiles  []string
}

// Summary records the distinct count for column.
func (r *RecordingReporter) Summary(column string, distinct int) {
	r.Summaries = append(r.Summaries, fmt.Sprintf("%s=%d", column, distinct))
}

// Written records the output location.
func (r *RecordingReporter) Written(location string) {
	r.Outfiles = append(r.Outfiles, location)
}
