package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Response cache lifetimes for the Qubic RPC.
const (
	TickInfoTTL = 5 * time.Second
	BalanceTTL  = 10 * time.Second
)

// Client is the live Qubic RPC surface used by the query tools.
type Client interface {
	CurrentTick(ctx context.Context) (*TickInfo, error)
	// Balance returns the QUBIC balance of identity, or nil when the node answered without one.
	Balance(ctx context.Context, identity string) (*int64, error)
}

var _ Client = (*HTTPClient)(nil)

// TickInfo is the network's current tick.
type TickInfo struct {
	CurrentTick int64 `json:"currentTick"`
	Epoch       int64 `json:"epoch"`
	// Timestamp is unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

type rpcTickInfo struct {
	Tick       *int64          `json:"tick"`
	TickNumber *int64          `json:"tickNumber"`
	Epoch      int64           `json:"epoch"`
	Timestamp  json.RawMessage `json:"timestamp"`
}

// CurrentTick queries /v1/tick-info. Both {"tickInfo":{...}} and a flat body are accepted.
func (c *HTTPClient) CurrentTick(ctx context.Context) (*TickInfo, error) {
	var resp struct {
		TickInfo *rpcTickInfo `json:"tickInfo"`
		rpcTickInfo
	}
	if err := c.GetJSON(ctx, tickInfoPath, TickInfoTTL, &resp); err != nil {
		return nil, err
	}

	info := resp.rpcTickInfo
	if resp.TickInfo != nil {
		info = *resp.TickInfo
	}

	tick := info.Tick
	if tick == nil {
		tick = info.TickNumber
	}
	if tick == nil {
		return nil, fmt.Errorf("tick-info response carries no tick")
	}

	return &TickInfo{
		CurrentTick: *tick,
		Epoch:       info.Epoch,
		Timestamp:   parseTimestamp(info.Timestamp, time.Now()),
	}, nil
}

// parseTimestamp reads an RFC3339 string or a number of milliseconds, defaulting to now.
func parseTimestamp(raw json.RawMessage, now time.Time) int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return now.UnixMilli()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli()
		}
		return now.UnixMilli()
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return ms
	}
	return now.UnixMilli()
}

// Balance queries /v1/balances/{identity}. The node reports the amount as a decimal string.
func (c *HTTPClient) Balance(ctx context.Context, identity string) (*int64, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, errors.New("identity is empty")
	}

	var resp struct {
		Balance *struct {
			Balance json.RawMessage `json:"balance"`
		} `json:"balance"`
	}
	if err := c.GetJSON(ctx, balancesPath+url.PathEscape(identity), BalanceTTL, &resp); err != nil {
		return nil, err
	}
	if resp.Balance == nil || len(resp.Balance.Balance) == 0 || string(resp.Balance.Balance) == "null" {
		return nil, nil
	}

	text := strings.Trim(string(resp.Balance.Balance), `"`)
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance of %s: %w", identity, err)
	}
	return &n, nil
}
