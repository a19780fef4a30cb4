// Package agent drives the chat model through the tool catalog until it answers.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/qubic-network/qubicx/pkg/tools"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultModel    = openai.GPT4oMini
	DefaultMaxSteps = 5
)

var (
	// ErrStepLimit is returned when the model keeps calling tools past the step budget.
	ErrStepLimit = errors.New("agent step limit reached")
	// ErrNoChoices is returned when the model answers without a message.
	ErrNoChoices = errors.New("chat completion returned no choices")
)

// Completer is the slice of *openai.Client the agent uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Message is one turn of the visible conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult pairs a call with its envelope.
type ToolResult struct {
	CallID   string         `json:"callId"`
	Name     string         `json:"name"`
	Envelope tools.Envelope `json:"result"`
}

// Observer receives progress while a run is in flight. Callbacks are made from the
// goroutine that called Run, in call order.
type Observer interface {
	ToolCall(call ToolCall)
	ToolResult(result ToolResult)
}

// Reply is the outcome of a run.
type Reply struct {
	ID          string           `json:"id"`
	Message     string           `json:"message"`
	ToolResults []tools.Envelope `json:"toolResults"`
	Steps       int              `json:"-"`
}

// Config tunes an Agent. Zero values fall back to DefaultModel and DefaultMaxSteps.
type Config struct {
	Model    string
	MaxSteps int
}

// Agent answers chat conversations by letting the model call registry tools.
type Agent struct {
	client   Completer
	registry *tools.Registry
	pool     pond.Pool
	coverage *Coverage
	logger   *zap.Logger
	model    string
	maxSteps int
	defs     []openai.Tool
}

// New returns an agent over registry. coverage may be nil.
// pool runs the tool calls of a turn; it must not be the pool the tools themselves fan out on,
// or calls waiting on their own subtasks can hold every worker.
func New(client Completer, registry *tools.Registry, pool pond.Pool, coverage *Coverage, logger *zap.Logger, cfg Config) *Agent {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	return &Agent{
		client:   client,
		registry: registry,
		pool:     pool,
		coverage: coverage,
		logger:   logger,
		model:    cfg.Model,
		maxSteps: cfg.MaxSteps,
		defs:     Definitions(registry),
	}
}

// Definitions renders the catalog as function tools.
func Definitions(registry *tools.Registry) []openai.Tool {
	list := registry.List()
	defs := make([]openai.Tool, len(list))
	for i, t := range list {
		defs[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return defs
}

// Run answers the conversation, calling tools as the model requests them.
// obs may be nil. On ErrStepLimit the returned reply still carries the tool results so far.
func (a *Agent) Run(ctx context.Context, history []Message, wallet string, obs Observer) (*Reply, error) {
	reply := &Reply{ID: uuid.NewString(), ToolResults: []tools.Envelope{}}
	logger := a.logger.With(zap.String("conversation", reply.ID))

	stats, known := a.coverage.Snapshot()
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(wallet, stats, known),
	}}
	for _, m := range history {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	for step := 1; step <= a.maxSteps; step++ {
		reply.Steps = step
		start := time.Now()
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    a.defs,
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion failed at step %d: %w", step, err)
		}
		if len(resp.Choices) == 0 {
			return nil, ErrNoChoices
		}
		msg := resp.Choices[0].Message
		logger.Debug("Model responded",
			zap.Int("step", step),
			zap.Int("tool_calls", len(msg.ToolCalls)),
			zap.Duration("duration", time.Since(start)),
		)

		if len(msg.ToolCalls) == 0 {
			reply.Message = msg.Content
			return reply, nil
		}

		messages = append(messages, msg)
		results := a.runTools(ctx, logger, msg.ToolCalls, obs)
		for _, res := range results {
			content, err := json.Marshal(res.Envelope)
			if err != nil {
				content, _ = json.Marshal(map[string]string{"error": err.Error()})
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    string(content),
				ToolCallID: res.CallID,
			})
			reply.ToolResults = append(reply.ToolResults, res.Envelope)
		}
	}

	logger.Warn("Agent stopped at step limit", zap.Int("max_steps", a.maxSteps))
	return reply, ErrStepLimit
}

// runTools executes one model turn's calls concurrently and returns results in call order.
func (a *Agent) runTools(ctx context.Context, logger *zap.Logger, calls []openai.ToolCall, obs Observer) []ToolResult {
	results := make([]ToolResult, len(calls))
	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	var (
		mu   sync.Mutex
		done bool
	)

	for i, call := range calls {
		tc := ToolCall{ID: call.ID, Name: call.Function.Name, Arguments: rawArguments(call.Function.Arguments)}
		if obs != nil {
			obs.ToolCall(tc)
		}
		results[i] = ToolResult{CallID: tc.ID, Name: tc.Name}
		group.Submit(func() {
			env, err := a.registry.Invoke(groupCtx, tc.Name, tc.Arguments)
			if err != nil {
				env = tools.Envelope{
					ID:    fmt.Sprintf("%s-error-%d", tc.Name, time.Now().UnixMilli()),
					Tool:  tc.Name,
					Error: err.Error(),
				}
			}
			mu.Lock()
			defer mu.Unlock()
			if !done {
				results[i].Envelope = env
			}
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logger.Warn("tool fan-out encountered error", zap.Error(err))
	}
	mu.Lock()
	done = true
	mu.Unlock()
	for i := range results {
		if results[i].Envelope.ID != "" {
			continue
		}
		// Skipped because the run was cancelled before the task started.
		reason := "tool call was not executed"
		if err := ctx.Err(); err != nil {
			reason = err.Error()
		}
		results[i].Envelope = tools.Envelope{
			ID:    fmt.Sprintf("%s-error-%d", results[i].Name, time.Now().UnixMilli()),
			Tool:  results[i].Name,
			Error: reason,
		}
	}
	if obs != nil {
		for _, res := range results {
			obs.ToolResult(res)
		}
	}
	return results
}

// rawArguments keeps model arguments embeddable in JSON. Blank becomes {} and
// anything that is not valid JSON is carried as a string, which the tool then rejects.
func rawArguments(args string) json.RawMessage {
	if strings.TrimSpace(args) == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(args)) {
		return json.RawMessage(args)
	}
	quoted, _ := json.Marshal(args)
	return quoted
}
