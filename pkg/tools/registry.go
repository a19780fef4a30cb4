// Package tools is the fixed catalog of read-only operations the chat model can call.
// Every tool runs through Registry.Invoke, which maps its outcome into an Envelope.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

var (
	// ErrUnknownTool is returned by Invoke for names outside the catalog.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArgs marks arguments that could not be decoded or failed validation.
	ErrInvalidArgs = errors.New("invalid tool arguments")
)

// Result is what a handler produces on success.
type Result struct {
	Payload any
	// Missing describes an absent entity. The envelope stays successful and carries it as error.
	Missing string
	// IDPrefix overrides the tool id prefix for this result.
	IDPrefix string
}

func found(payload any) (Result, error) { return Result{Payload: payload}, nil }

func missing(payload any, format string, args ...any) (Result, error) {
	return Result{Payload: payload, Missing: fmt.Sprintf(format, args...)}, nil
}

type runFunc func(ctx context.Context, logger *zap.Logger, raw json.RawMessage) (Result, error)

// Tool is one catalog entry.
type Tool struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Parameters   jsonschema.Definition `json:"parameters"`
	DefaultLimit int                   `json:"defaultLimit,omitempty"`
	MaxLimit     int                   `json:"maxLimit,omitempty"`
	// IDPrefix starts every envelope id, e.g. "tx-query".
	IDPrefix string `json:"-"`

	run runFunc
}

// define binds a typed handler to a tool. fallback builds the payload carried by failed envelopes.
func define[A any](meta Tool, handle func(ctx context.Context, args A) (Result, error), fallback func(args A) any) *Tool {
	t := meta
	t.run = func(ctx context.Context, logger *zap.Logger, raw json.RawMessage) (res Result, err error) {
		var args A
		defer func() {
			if r := recover(); r != nil {
				logger.Error("tool handler panicked",
					zap.String("tool", t.Name),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				res, err = Result{Payload: fallback(args)}, fmt.Errorf("%s failed unexpectedly: %v", t.Name, r)
			}
		}()

		if err := decodeArgs(raw, &args); err != nil {
			return Result{Payload: fallback(args)}, err
		}
		res, err = handle(ctx, args)
		if err != nil {
			return Result{Payload: fallback(args)}, err
		}
		return res, nil
	}
	return &t
}

// Registry holds the catalog and invokes tools by name.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistry returns an empty registry. A nil now uses time.Now.
func NewRegistry(logger *zap.Logger, now func() time.Time) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{tools: map[string]*Tool{}, logger: logger, now: now}
}

// Register adds tools to the catalog. Registering a name twice panics.
func (r *Registry) Register(tools ...*Tool) {
	for _, t := range tools {
		if _, dup := r.tools[t.Name]; dup {
			panic(fmt.Sprintf("tool %s registered twice", t.Name))
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
}

// Get returns the named tool.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the catalog in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool with raw JSON arguments. The only error it returns is
// ErrUnknownTool; every handler failure is reported inside the envelope.
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) (Envelope, error) {
	t, ok := r.tools[name]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := r.now()
	res, err := t.run(ctx, r.logger, raw)
	end := r.now()
	ms := end.UnixMilli()

	env := Envelope{Tool: name, Payload: res.Payload}
	switch {
	case err != nil:
		env.ID = fmt.Sprintf("%s-error-%d", t.IDPrefix, ms)
		env.Error = err.Error()
	default:
		prefix := t.IDPrefix
		if res.IDPrefix != "" {
			prefix = res.IDPrefix
		}
		env.ID = fmt.Sprintf("%s-%d", prefix, ms)
		env.Success = true
		env.Error = res.Missing
	}

	fields := []zap.Field{
		zap.String("tool", name),
		zap.Bool("success", env.Success),
		zap.Duration("duration", end.Sub(start)),
	}
	if err != nil {
		r.logger.Warn("tool invocation failed", append(fields, zap.Error(err))...)
	} else {
		r.logger.Debug("tool invoked", fields...)
	}
	return env, nil
}
