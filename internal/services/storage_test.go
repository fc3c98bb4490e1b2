package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vitrine/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageConfigEnabled(t *testing.T) {
	assert.False(t, StorageConfig{}.Enabled())
	assert.False(t, StorageConfig{AccessKey: "a", SecretKey: "b"}.Enabled())
	assert.True(t, StorageConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}.Enabled())

	_, err := NewStorageService(StorageConfig{})
	assert.Error(t, err)
}

func TestUploadGeneratedImage(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewStorageService(StorageConfig{
		Endpoint:      srv.URL,
		AccessKey:     "key",
		SecretKey:     "secret",
		Bucket:        "images",
		PublicBaseURL: "https://cdn.example.com/",
		DisableSSL:    true,
	})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	url, err := s.UploadGeneratedImage(context.Background(), ai.EncodeDataURI("image/png", []byte("png-bytes")), "designs")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/images/designs/2026/10/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ".png"), gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png-bytes"), gotBody)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/designs/2026/10/"), url)
}

func TestUploadGeneratedImage_RejectsNonImages(t *testing.T) {
	s, err := NewStorageService(StorageConfig{Endpoint: "http://127.0.0.1:1", AccessKey: "a", SecretKey: "b", Bucket: "c", DisableSSL: true})
	require.NoError(t, err)

	_, err = s.UploadGeneratedImage(context.Background(), ai.EncodeDataURI("text/plain", []byte("hi")), "designs")
	assert.ErrorContains(t, err, "not an image")

	_, err = s.UploadGeneratedImage(context.Background(), "https://example.com/a.png", "designs")
	assert.ErrorContains(t, err, "invalid image payload")
}
