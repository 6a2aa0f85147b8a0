package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{
	MaxRetries:  3,
	InitialWait: time.Millisecond,
	MaxWait:     5 * time.Millisecond,
	Multiplier:  2,
}

func TestBytes_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry), WithHTTPClient(srv.Client()))
	data, err := c.Bytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"events":[]}`, string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBytes_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry))
	_, err := c.Bytes(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestBytes_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry))
	_, err := c.Bytes(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(fastRetry.MaxRetries+1), calls.Load())
}

func TestBytes_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	c := New(WithMaxBytes(16), WithRetry(fastRetry))
	_, err := c.Bytes(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestBytes_InvalidURL(t *testing.T) {
	_, err := New().Bytes(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestRetryDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryDo(ctx, fastRetry, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPost_ResendsBodyOnRetry(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry))
	data, err := c.Post(context.Background(), srv.URL, "text/plain", []byte("payload"),
		http.Header{"Authorization": {"Bearer k"}})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"ok"}`, string(data))
	assert.Equal(t, []string{"payload", "payload"}, bodies)
}

func TestPost_InvalidURL(t *testing.T) {
	_, err := New().Post(context.Background(), "not a url", "text/plain", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidURL)
}
