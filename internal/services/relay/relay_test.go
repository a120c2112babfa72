package relay

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
	"go.uber.org/zap"
)

func testRelay(t *testing.T, handler http.Handler) (*Relay, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	cfg := config.UploadConfig{
		FetchTimeout:   2 * time.Second,
		MaxBundleFiles: 20,
	}
	return NewRelay(cfg, parsed.Host, zap.NewNop()), server
}

func TestFetchImage_StreamsContentType(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))

	img, err := r.FetchImage(context.Background(), server.URL+"/demo/photo.png")
	require.NoError(t, err)

	assert.Equal(t, []byte("png bytes"), img.Data)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "photo.png", img.FileName)
}

func TestFetchImage_RejectsForeignHost(t *testing.T) {
	var hits atomic.Int32
	r, _ := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
	}))

	_, err := r.FetchImage(context.Background(), "https://evil.example.com/image.jpg")
	assert.ErrorIs(t, err, ErrForeignHost)
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetchImage_RejectsBadScheme(t *testing.T) {
	r, _ := testRelay(t, http.NewServeMux())

	_, err := r.FetchImage(context.Background(), "file:///etc/passwd")
	assert.Error(t, err)
}

func TestFetchImage_RejectsOversizedBody(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1025))
	}))
	r.maxFetchBytes = 1024

	_, err := r.FetchImage(context.Background(), server.URL+"/huge.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay limit")
}

func TestFetchImage_AcceptsBodyAtLimit(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	r.maxFetchBytes = 1024

	img, err := r.FetchImage(context.Background(), server.URL+"/exact.jpg")
	require.NoError(t, err)
	assert.Len(t, img.Data, 1024)
}

func TestFetchImage_UpstreamError(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := r.FetchImage(context.Background(), server.URL+"/missing.jpg")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
