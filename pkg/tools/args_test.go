package tools

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt_Unmarshal(t *testing.T) {
	cases := map[string]struct {
		want int64
		set  bool
	}{
		`5`:                      {5, true},
		`"12"`:                   {12, true},
		`7.9`:                    {7, true},
		`"1e6"`:                  {1_000_000, true},
		`null`:                   {0, false},
		`""`:                     {0, false},
		`" 42 "`:                 {42, true},
		`1e19`:                   {math.MaxInt64, true},
		`-1e19`:                  {math.MinInt64, true},
		`"99999999999999999999"`: {math.MaxInt64, true},
	}
	for raw, tc := range cases {
		var v Int
		require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
		assert.Equal(t, tc.set, v.IsSet(), raw)
		assert.Equal(t, tc.want, v.Or(0), raw)
	}

	var v Int
	assert.Error(t, json.Unmarshal([]byte(`"fifty"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
}

func TestInt_Marshal(t *testing.T) {
	raw, err := json.Marshal(struct {
		A Int `json:"a"`
		B Int `json:"b"`
	}{A: IntOf(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(raw))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(Int{}, 20, 100))
	assert.Equal(t, 20, clampLimit(IntOf(0), 20, 100))
	assert.Equal(t, 20, clampLimit(IntOf(-3), 20, 100))
	assert.Equal(t, 35, clampLimit(IntOf(35), 20, 100))
	assert.Equal(t, 100, clampLimit(IntOf(1000), 20, 100))
}

func TestDecodeArgs(t *testing.T) {
	var args recentArgs
	require.NoError(t, decodeArgs(nil, &args))
	require.NoError(t, decodeArgs(json.RawMessage(" null "), &args))
	require.NoError(t, decodeArgs(json.RawMessage(`{"category":"nft","unknown":1}`), &args))
	assert.Equal(t, "nft", args.Category)

	assert.ErrorIs(t, decodeArgs(json.RawMessage(`{"category":`), &args), ErrInvalidArgs)
}

func TestEnvelope_Marshal(t *testing.T) {
	raw, err := json.Marshal(Envelope{
		ID:      "stats-1",
		Success: true,
		Payload: map[string]any{"count": 2, "error": "shadowed", "id": "shadowed"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"stats-1","role":"information","success":true,"count":2}`, string(raw))

	raw, err = json.Marshal(Envelope{ID: "stats-error-1", Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"stats-error-1","role":"information","success":false,"error":"boom"}`, string(raw))

	_, err = json.Marshal(Envelope{ID: "x", Payload: []int{1}})
	assert.Error(t, err)
}
