package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveJSON(t *testing.T, path, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCurrentTick(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTick  int64
		wantEpoch int64
		wantTS    int64
	}{
		{
			name:      "nested tickInfo",
			body:      `{"tickInfo":{"tick":30000105,"duration":1,"epoch":180,"initialTick":29990000,"timestamp":"2025-10-14T00:00:00Z"}}`,
			wantTick:  30000105,
			wantEpoch: 180,
			wantTS:    time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:      "flat with tickNumber alias",
			body:      `{"tickNumber":42,"epoch":7,"timestamp":1760400000000}`,
			wantTick:  42,
			wantEpoch: 7,
			wantTS:    1760400000000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serveJSON(t, "/v1/tick-info", tt.body, http.StatusOK)
			client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}})

			info, err := client.CurrentTick(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantTick, info.CurrentTick)
			assert.Equal(t, tt.wantEpoch, info.Epoch)
			assert.Equal(t, tt.wantTS, info.Timestamp)
		})
	}
}

func TestCurrentTick_TimestampDefaultsToNow(t *testing.T) {
	server := serveJSON(t, "/v1/tick-info", `{"tickInfo":{"tick":1,"epoch":2}}`, http.StatusOK)
	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}})

	before := time.Now().UnixMilli()
	info, err := client.CurrentTick(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Timestamp, before)
}

func TestCurrentTick_MissingTick(t *testing.T) {
	server := serveJSON(t, "/v1/tick-info", `{"tickInfo":{"epoch":2}}`, http.StatusOK)
	client := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}})

	_, err := client.CurrentTick(context.Background())
	assert.Error(t, err)
}

func TestBalance(t *testing.T) {
	id := "KEMUBCRDLSBQGBCNNCHCRNBSDHUUSBSSMBHBREJNERDSJRVFDSSUGLDRWCSB"

	t.Run("string amount", func(t *testing.T) {
		server := serveJSON(t, "/v1/balances/"+id, `{"balance":{"id":"`+id+`","balance":"1234567890"}}`, http.StatusOK)
		b, err := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}}).Balance(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, int64(1_234_567_890), *b)
	})

	t.Run("missing field", func(t *testing.T) {
		server := serveJSON(t, "/v1/balances/"+id, `{}`, http.StatusOK)
		b, err := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}}).Balance(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("server error", func(t *testing.T) {
		server := serveJSON(t, "/v1/balances/"+id, `{"code":5}`, http.StatusInternalServerError)
		_, err := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}}).Balance(context.Background(), id)
		assert.Error(t, err)
	})

	t.Run("unparseable", func(t *testing.T) {
		server := serveJSON(t, "/v1/balances/"+id, `{"balance":{"balance":"lots"}}`, http.StatusOK)
		_, err := NewHTTPWithOpts(Opts{Endpoints: []string{server.URL}}).Balance(context.Background(), id)
		assert.Error(t, err)
	})

	t.Run("empty identity", func(t *testing.T) {
		_, err := NewHTTPWithOpts(Opts{Endpoints: []string{"http://unused"}}).Balance(context.Background(), " ")
		assert.Error(t, err)
	})
}

func TestParseTimestamp(t *testing.T) {
	now := time.UnixMilli(1_000)
	assert.Equal(t, int64(1_000), parseTimestamp(nil, now))
	assert.Equal(t, int64(1_000), parseTimestamp(json.RawMessage(`"garbage"`), now))
	assert.Equal(t, int64(5_000), parseTimestamp(json.RawMessage(`5000`), now))
}
