package relay

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBundle_TooManyURLsRejectedBeforeFetch(t *testing.T) {
	var hits atomic.Int32
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
	}))

	urls := make([]string, 21)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/img_%d.jpg", server.URL, i)
	}

	_, _, err := r.BuildBundle(context.Background(), urls)
	var tooLarge *BundleTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 21, tooLarge.Count)
	assert.Equal(t, int32(0), hits.Load())
}

func TestBuildBundle_SkipsFailedEntries(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.Path, "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg " + req.URL.Path))
	}))

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/img_%d.jpg", server.URL, i)
	}
	urls[7] = server.URL + "/broken.jpg"

	data, added, err := r.BuildBundle(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, 19, added)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, reader.File, 19)
}

func TestBuildBundle_EntriesNamedSequentially(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))

	data, added, err := r.BuildBundle(context.Background(), []string{
		server.URL + "/a.jpg",
		server.URL + "/b.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	assert.Equal(t, "image_01.jpg", reader.File[0].Name)
	assert.Equal(t, "image_02.jpg", reader.File[1].Name)
}

func TestBuildBundle_NoURLs(t *testing.T) {
	r, _ := testRelay(t, http.NewServeMux())

	_, _, err := r.BuildBundle(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildBundle_AllFetchesFail(t *testing.T) {
	r, server := testRelay(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, _, err := r.BuildBundle(context.Background(), []string{server.URL + "/a.jpg"})
	assert.Error(t, err)
}
