package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvmerge/internal/config"
)

// fakeS3 serves path-style GetObject and PutObject from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = io.WriteString(w, body)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(data)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Store(config.S3Config{
		Endpoint: srv.URL,
		Region:   "us-east-1",
		KeyID:    "key",
		Secret:   "secret",
		URLStyle: "path",
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3Store_Open(t *testing.T) {
	s, fake := newFakeS3Store(t)
	fake.objects["/bucket/in/file1.csv"] = "CompanyID,CompanyName\n1,Acme\n"

	rc, err := s.Open(ctx, "s3://bucket/in/file1.csv")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "CompanyID,CompanyName\n1,Acme\n", string(data))

	_, err = s.Open(ctx, "s3://bucket/in/missing.csv")
	require.ErrorContains(t, err, `get object "s3://bucket/in/missing.csv"`)
}

func TestS3Store_Put(t *testing.T) {
	s, fake := newFakeS3Store(t)

	require.NoError(t, s.Put(ctx, "s3://bucket/out/combined.csv", strings.NewReader("CompanyID\n1\n")))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "CompanyID\n1\n", fake.objects["/bucket/out/combined.csv"])
}

func TestNewS3Store_Incomplete(t *testing.T) {
	_, err := NewS3Store(config.S3Config{KeyID: "key"})
	require.EqualError(t, err, "S3 config is incomplete")
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantBucket string
		wantKey    string
		wantErr    string
	}{
		{name: "nested key", path: "s3://bucket/a/b/c.csv", wantBucket: "bucket", wantKey: "a/b/c.csv"},
		{name: "wrong scheme", path: "gs://bucket/a.csv", wantErr: `expected s3:// scheme, got "gs"`},
		{name: "no bucket", path: "s3:///a.csv", wantErr: "empty bucket"},
		{name: "no key", path: "s3://bucket/", wantErr: "empty key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3Path(tt.path)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
