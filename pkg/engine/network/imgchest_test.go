package network

import (
	"Archivist/pkg/engine/core"
	"Archivist/pkg/engine/logger"
	"Archivist/pkg/errors"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := NewClient(srv.URL, "test-token", logger.NewService(""))
	c.RetryDelay = time.Millisecond
	c.Limiter = rate.NewLimiter(rate.Inf, 0)
	return c
}

func testBatch(t *testing.T, pages int) core.Batch {
	t.Helper()
	dir := t.TempDir()
	var batch core.Batch
	for i := 0; i < pages; i++ {
		name := filepath.Join(dir, "page.png")
		require.NoError(t, os.WriteFile(name, []byte("fake image data"), 0644))
		batch.Images = append(batch.Images, core.PageImage{
			Path:     name,
			Name:     "page.png",
			Size:     15,
			MIMEType: "image/png",
		})
		batch.Size += 15
	}
	return batch
}

func TestCreateAlbum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/post", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "V1-001 - First Steps", r.FormValue("title"))
		assert.Len(t, r.MultipartForm.File["images[]"], 2)

		w.Write([]byte(`{"data":{"id":"abc123"}}`))
	}))
	defer srv.Close()

	album, err := testClient(t, srv).CreateAlbum(context.Background(), "V1-001 - First Steps", testBatch(t, 2))
	require.NoError(t, err)
	assert.Equal(t, "abc123", album.ID)
	assert.Equal(t, "https://imgchest.com/p/abc123", album.URL)
}

func TestCreateAlbumMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv).CreateAlbum(context.Background(), "t", testBatch(t, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing album id")
}

func TestCreateAlbumErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv).CreateAlbum(context.Background(), "t", testBatch(t, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCreateAlbumMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv).CreateAlbum(context.Background(), "t", testBatch(t, 1))
	require.Error(t, err)
}

func TestPayloadTooLargeIsDistinguishedAndNotRetried(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"error":"payload too large"}`))
	}))
	defer srv.Close()

	err := testClient(t, srv).AddImages(context.Background(), "abc123", testBatch(t, 1))
	require.Error(t, err)
	assert.True(t, errors.IsPayloadTooLarge(err))
	assert.Equal(t, 1, hits)
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{"id":"abc123"}}`))
	}))
	defer srv.Close()

	album, err := testClient(t, srv).CreateAlbum(context.Background(), "t", testBatch(t, 1))
	require.NoError(t, err)
	assert.Equal(t, "abc123", album.ID)
	assert.Equal(t, 2, hits)
}

func TestServerErrorRetriedUntilSuccess(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"id":"xyz"}}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv).CreateAlbum(context.Background(), "t", testBatch(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(t, srv).DeleteAlbum(context.Background(), "abc123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServerError))
	assert.Equal(t, 3, hits)
}

func TestClientErrorNotRetried(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad image"}`))
	}))
	defer srv.Close()

	err := testClient(t, srv).AddImages(context.Background(), "abc123", testBatch(t, 1))
	require.Error(t, err)

	var remoteErr *errors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Equal(t, 1, hits)
}

func TestTestAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/me", r.URL.Path)
		w.Write([]byte(`{"data":{"id":42,"name":"uploader"}}`))
	}))
	defer srv.Close()

	assert.True(t, testClient(t, srv).TestAuth(context.Background()))
}

func TestTestAuthFailureReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	assert.False(t, testClient(t, srv).TestAuth(context.Background()))
}

func TestDeleteAlbum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/post/abc123", r.URL.Path)
		w.Write([]byte(`{"data":{"success":true}}`))
	}))
	defer srv.Close()

	require.NoError(t, testClient(t, srv).DeleteAlbum(context.Background(), "abc123"))
}

func TestAddImagesEmptyBatchSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty batch")
	}))
	defer srv.Close()

	require.NoError(t, testClient(t, srv).AddImages(context.Background(), "abc123", core.Batch{}))
}
