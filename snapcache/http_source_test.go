package snapcache_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nyan-lin-tun/CNCF-people-api/apierror"
	"github.com/nyan-lin-tun/CNCF-people-api/snapcache"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceConditionalFetch(t *testing.T) {
	const body = `[{"name":"Ada"}]`
	var mu sync.Mutex
	var sawAccept, sawINM string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sawAccept = r.Header.Get("Accept")
		sawINM = r.Header.Get("If-None-Match")
		inm := sawINM
		mu.Unlock()
		if inm == `"tag1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"tag1"`)
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	src, err := snapcache.NewHTTPSource(ts.URL, snapcache.WithClient(&http.Client{}))
	require.NoError(t, err)
	require.Equal(t, ts.URL, src.String())

	// Unconditional fetch returns content and the upstream tag.
	res, err := src.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.False(t, res.NotModified)
	require.Equal(t, []byte(body), res.Body)
	require.Equal(t, `"tag1"`, res.ETag)
	mu.Lock()
	require.Equal(t, "application/json", sawAccept)
	require.Empty(t, sawINM)
	mu.Unlock()

	// Conditional fetch presenting the tag gets not-modified.
	res, err = src.Fetch(context.Background(), `"tag1"`)
	require.NoError(t, err)
	require.True(t, res.NotModified)
	require.Empty(t, res.Body)
	mu.Lock()
	require.Equal(t, `"tag1"`, sawINM)
	mu.Unlock()
}

func TestHTTPSourceUnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	src, err := snapcache.NewHTTPSource(ts.URL, snapcache.WithClient(&http.Client{}))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), "")
	require.Error(t, err)

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status())
}

func TestHTTPSourceTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	src, err := snapcache.NewHTTPSource(ts.URL, snapcache.WithClient(&http.Client{}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = src.Fetch(ctx, "")
	require.Error(t, err)
}

func TestHTTPSourceRetry(t *testing.T) {
	// First request fails; the default retrying client tries again.
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", `"tag1"`)
		_, _ = w.Write([]byte(`[{"name":"Ada"}]`))
	}))
	defer ts.Close()

	src, err := snapcache.NewHTTPSource(ts.URL, snapcache.WithRetryMax(2))
	require.NoError(t, err)

	res, err := src.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.False(t, res.NotModified)
	require.Equal(t, `"tag1"`, res.ETag)
	require.Equal(t, int32(2), calls.Load())
}

func TestHTTPSourceNoRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	src, err := snapcache.NewHTTPSource(ts.URL, snapcache.WithRetryMax(0))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())

	_, err = snapcache.NewHTTPSource(ts.URL, snapcache.WithRetryMax(-1))
	require.Error(t, err)
}

func TestHTTPSourceBadURL(t *testing.T) {
	_, err := snapcache.NewHTTPSource("ftp://example.com/people.json")
	require.Error(t, err)

	_, err = snapcache.NewHTTPSource("://bad")
	require.Error(t, err)
}
