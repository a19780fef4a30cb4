package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qubic-network/qubicx/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}})
	err := client.GetJSON(context.Background(), "/v1/tick-info", 0, nil)

	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}, BreakerFailures: 2, BreakerCooldown: time.Minute})
	ctx := context.Background()

	assert.Error(t, client.GetJSON(ctx, "/x", 0, nil))
	assert.Error(t, client.GetJSON(ctx, "/x", 0, nil))
	err := client.GetJSON(ctx, "/x", 0, nil)

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}, BreakerFailures: 1})
	for i := 0; i < 3; i++ {
		err := client.GetJSON(context.Background(), "/missing", 0, nil)
		assert.True(t, IsStatus(err, http.StatusNotFound))
	}
}

func TestHTTPClient_FallsThroughToClosedEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer good.Close()

	client := NewHTTPWithOpts(Opts{Endpoints: []string{bad.URL, good.URL}, BreakerFailures: 1, BreakerCooldown: time.Minute})
	ctx := context.Background()

	require.Error(t, client.GetJSON(ctx, "/x", 0, nil))

	var out struct{ OK bool }
	require.NoError(t, client.GetJSON(ctx, "/x", 0, &out))
	assert.True(t, out.OK)
}

func TestHTTPClient_CachesSuccessfulBodies(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer server.Close()

	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}, Cache: cache.NewMemory()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		var out struct{ Value int }
		require.NoError(t, client.GetJSON(ctx, "/v", time.Minute, &out))
		assert.Equal(t, 42, out.Value)
	}
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, client.GetJSON(ctx, "/v", 0, nil))
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_RejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	store := cache.NewMemory()
	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}, Cache: store})

	assert.Error(t, client.GetJSON(context.Background(), "/v", time.Minute, nil))
	assert.Zero(t, store.Len())
}

func TestHTTPClient_AcquireHonorsContext(t *testing.T) {
	client := NewHTTPWithOpts(Opts{Endpoints: []string{"http://127.0.0.1:1"}, RPS: 1, Burst: 1})
	atomic.StoreInt64(&client.tokens, 0)
	client.lastRefill.Store(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.GetJSON(ctx, "/v", 0, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_NoEndpoints(t *testing.T) {
	client := NewHTTPWithOpts(Opts{})
	assert.Error(t, client.GetJSON(context.Background(), "/v", 0, nil))
}
