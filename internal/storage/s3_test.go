package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket serves the handful of path-style S3 calls the backend makes.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := r.URL.Path
	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		b.objects[key] = body
		b.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := b.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", b.types[key])
		_, _ = w.Write(body)
	case http.MethodHead:
		if _, ok := b.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3RoundTrip(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	s, err := NewS3(ctx, S3Config{
		Bucket:          "qc",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		Prefix:          "/media/",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	key := "color/primer 7 color.png"
	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Open(ctx, key)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Save(ctx, key, strings.NewReader("png bytes"), "image/png"))

	bucket.mu.Lock()
	stored, present := bucket.objects["/qc/media/color/primer 7 color.png"]
	contentType := bucket.types["/qc/media/color/primer 7 color.png"]
	bucket.mu.Unlock()
	require.True(t, present)
	assert.Equal(t, "png bytes", string(stored))
	assert.Equal(t, "image/png", contentType)

	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(body))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3RejectsInvalidKeys(t *testing.T) {
	s := &S3{bucket: "qc"}
	_, err := s.objectKey("../secret")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}
