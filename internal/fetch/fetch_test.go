package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blz-dev/blz/internal/config"
	"github.com/blz-dev/blz/internal/ferr"
)

func testLimits() config.Limits {
	return config.Limits{
		MaxBytes:       1 << 20,
		MaxDuration:    2 * time.Second,
		AllowedSchemes: []config.AllowedScheme{config.SchemeHTTP, config.SchemeHTTPS},
	}
}

func TestFetch_ReturnsBodyAndDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("# Hello\ncontent\n"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "# Hello\ncontent\n", string(result.Bytes))
	assert.Equal(t, `"abc123"`, result.ETag)
	assert.Len(t, result.SHA256, 64)
}

func TestFetch_NotModifiedReturnsNilResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"abc123"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{ETag: `"abc123"`}, testLimits(), nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestFetch_SendsConditionalHeaders(t *testing.T) {
	var sawIfNoneMatch, sawIfModifiedSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawIfNoneMatch = r.Header.Get("If-None-Match")
		sawIfModifiedSince = r.Header.Get("If-Modified-Since")
		_, _ = w.Write([]byte("body"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL, Validators{ETag: `"xyz"`, LastModified: "Tue, 01 Jan 2026 00:00:00 GMT"}, testLimits(), nil)
	require.NoError(t, err)

	assert.Equal(t, `"xyz"`, sawIfNoneMatch)
	assert.Equal(t, "Tue, 01 Jan 2026 00:00:00 GMT", sawIfModifiedSince)
}

func TestFetch_DecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		_, _ = gw.Write([]byte("decompressed content"))
		gw.Close()
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), nil)
	require.NoError(t, err)
	assert.Equal(t, "decompressed content", string(result.Bytes))
}

func TestFetch_TooLargeResponseIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	limits := testLimits()
	limits.MaxBytes = 10

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{}, limits, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, ferr.KindTooLarge, ferr.KindOf(err))
}

func TestFetch_NonRetryable4xxFailsImmediately(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), nil)
	require.Error(t, err)
	assert.Equal(t, ferr.KindHTTPStatus, ferr.KindOf(err))
	assert.False(t, ferr.IsRetryable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestFetch_RetriesOn503ThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("eventually ok"))
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), nil)
	require.NoError(t, err)
	assert.Equal(t, "eventually ok", string(result.Bytes))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(3))
}

func TestFetch_SchemeDeniedRejectsBeforeRequest(t *testing.T) {
	f := New(http.DefaultClient)
	limits := testLimits()
	limits.AllowedSchemes = []config.AllowedScheme{config.SchemeHTTPS}

	_, err := f.Fetch(context.Background(), "http://example.com/docs.txt", Validators{}, limits, nil)
	require.Error(t, err)
	assert.Equal(t, ferr.KindValidation, ferr.KindOf(err))
	assert.Equal(t, ferr.ErrCodeSchemeDenied, ferr.CodeOf(err))
}

type fakeCircuitBreaker struct {
	allow     bool
	successes int
	failures  int
}

func (f *fakeCircuitBreaker) Allow() bool    { return f.allow }
func (f *fakeCircuitBreaker) RecordSuccess() { f.successes++ }
func (f *fakeCircuitBreaker) RecordFailure() { f.failures++ }

func TestFetch_OpenCircuitBlocksRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server when the circuit is open")
	}))
	defer srv.Close()

	cb := &fakeCircuitBreaker{allow: false}
	f := New(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), cb)
	require.Error(t, err)
}

func TestFetch_SuccessRecordsCircuitSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cb := &fakeCircuitBreaker{allow: true}
	f := New(srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), cb)
	require.NoError(t, err)
	assert.Equal(t, 1, cb.successes)
}

func TestFetch_InvalidUTF8IsReplaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{'#', ' ', 0xff, 0xfe, '\n'})
	}))
	defer srv.Close()

	f := New(srv.Client())
	result, err := f.Fetch(context.Background(), srv.URL, Validators{}, testLimits(), nil)
	require.NoError(t, err)
	assert.Greater(t, result.ReplacedRunes, 0)
}
