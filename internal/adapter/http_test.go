package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRealHTTPClient_GetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"name":"token"}`))
	}))
	defer server.Close()

	body, err := NewHTTPClient(5*time.Second, nil).GetBytes(context.Background(), server.URL, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"token"}`, string(body))
}

func TestRealHTTPClient_GetBytes_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	body, err := NewHTTPClient(5*time.Second, nil).GetBytes(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestRealHTTPClient_GetBytes_StatusErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}))
	defer server.Close()

	_, err := NewHTTPClient(5*time.Second, nil).GetBytes(context.Background(), server.URL, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "not found", statusErr.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"level":42}`))
	}))
	defer server.Close()

	var head struct {
		Level uint64 `json:"level"`
	}
	require.NoError(t, NewHTTPClient(5*time.Second, nil).Get(context.Background(), server.URL, &head))
	assert.Equal(t, uint64(42), head.Level)

	var wrong []string
	err := NewHTTPClient(5*time.Second, nil).Get(context.Background(), server.URL, &wrong)
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestRealHTTPClient_GetBytes_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(5*time.Second, nil).GetBytes(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealHTTPClient_HeadNoRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := NewHTTPClient(5*time.Second, nil).HeadNoRetry(context.Background(), server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestRealHTTPClient_GetResponseNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "bytes=0-1023", r.Header.Get("Range"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resp, err := NewHTTPClient(5*time.Second, nil).GetResponseNoRetry(context.Background(), server.URL, map[string]string{"Range": "bytes=0-1023"})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealHTTPClient_RateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// One token, refilled far in the future
	client := NewHTTPClient(5*time.Second, rate.NewLimiter(rate.Every(time.Hour), 1))

	resp, err := client.HeadNoRetry(context.Background(), server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetBytes(ctx, server.URL, nil)
	require.ErrorIs(t, err, errThrottled)
	assert.Equal(t, int32(1), calls.Load())
}
