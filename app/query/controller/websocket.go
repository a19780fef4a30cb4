package controller

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/qubic-network/qubicx/pkg/agent"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is handled by WithCORS for the HTTP routes; the socket accepts any origin
		return true
	},
}

// ClientMessage represents messages sent by WebSocket clients.
type ClientMessage struct {
	Action   string          `json:"action"` // "chat"
	Messages []agent.Message `json:"messages"`
	Wallet   string          `json:"wallet,omitempty"`
}

// ServerMessage represents messages sent to WebSocket clients.
type ServerMessage struct {
	Type    string      `json:"type"`    // "tool.call", "tool.result", "message", "error"
	Payload interface{} `json:"payload"` // Event-specific data
}

// chatSession is the state of one socket. At most one chat runs at a time.
type chatSession struct {
	ctx    context.Context
	send   chan ServerMessage
	busy   atomic.Bool
	runs   sync.WaitGroup
	remote string
}

// emit queues msg for the writer. It gives up once the session is closing.
func (s *chatSession) emit(msg ServerMessage) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *chatSession) emitError(message string) {
	s.emit(ServerMessage{Type: "error", Payload: map[string]string{"message": message}})
}

// ToolCall streams a tool call as the model issues it.
func (s *chatSession) ToolCall(call agent.ToolCall) {
	s.emit(ServerMessage{Type: "tool.call", Payload: call})
}

// ToolResult streams a tool envelope once every call of the turn finished.
func (s *chatSession) ToolResult(result agent.ToolResult) {
	s.emit(ServerMessage{Type: "tool.result", Payload: result})
}

// HandleWebSocket upgrades the HTTP connection and runs chats over it, streaming progress.
//
// Protocol:
// Client sends: {"action": "chat", "messages": [{"role": "user", "content": "..."}], "wallet": "..."}
//
// Server sends:
// - {"type": "tool.call", "payload": {"id": "...", "name": "...", "arguments": {...}}}
// - {"type": "tool.result", "payload": {"callId": "...", "name": "...", "result": {...}}}
// - {"type": "message", "payload": {"id": "...", "message": "...", "toolResults": [...]}}
// - {"type": "error", "payload": {"message": "..."}}
//
// All goroutines recover from panics so one connection cannot crash the server.
func (c *Controller) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if c.App.Agent == nil {
		http.Error(w, "chat is not configured (OPENAI_API_KEY is not set)", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func(conn *websocket.Conn) {
		err := conn.Close()
		if err != nil {
			c.App.Logger.Debug("Failed to close WebSocket connection", zap.Error(err))
		}
	}(conn)

	c.App.Logger.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr))

	// Create cancellable context for this connection
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := &chatSession{
		ctx:    ctx,
		send:   make(chan ServerMessage, 256),
		remote: r.RemoteAddr,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer c.recoverSession("ping ticker", session, cancel)
		c.sendPings(ctx, conn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer c.recoverSession("message writer", session, cancel)
		c.writeMessages(conn, session.send, cancel)
	}()

	// Blocks until the connection closes
	c.readClientMessages(ctx, conn, cancel, session)

	// Chats still running see the cancelled context and stop emitting
	cancel()
	session.runs.Wait()
	close(session.send)
	wg.Wait()

	c.App.Logger.Info("WebSocket client disconnected", zap.String("remote_addr", r.RemoteAddr))
}

func (c *Controller) recoverSession(where string, s *chatSession, cancel context.CancelFunc) {
	if rec := recover(); rec != nil {
		c.App.Logger.Error("Panic in WebSocket "+where+" goroutine",
			zap.Any("panic", rec),
			zap.String("stack", string(debug.Stack())),
			zap.String("remote_addr", s.remote))
		// Signal shutdown on panic
		cancel()
	}
}

// sendPings sends periodic WebSocket ping frames to keep the connection alive.
// The client will automatically respond with pong frames, which resets the read deadline.
func (c *Controller) sendPings(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				c.App.Logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// writeMessages writes messages from the send channel to the WebSocket connection.
// It keeps draining after a write failure so emitters never block on a dead socket.
func (c *Controller) writeMessages(conn *websocket.Conn, send <-chan ServerMessage, cancel context.CancelFunc) {
	broken := false
	for msg := range send {
		if broken {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			c.App.Logger.Debug("Failed to write WebSocket message", zap.Error(err))
			broken = true
			cancel()
		}
	}
}

// readClientMessages reads chat requests until the connection closes.
func (c *Controller) readClientMessages(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc, s *chatSession) {
	conn.SetReadLimit(maxBodyBytes)

	// Set a read deadline for detecting dead connections
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		c.App.Logger.Error("Failed to set read deadline", zap.Error(err))
		return
	}

	// Set pong handler to reset read deadline
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.App.Logger.Warn("WebSocket read error", zap.Error(err))
			}
			cancel() // Signal shutdown
			return
		}

		// Reset read deadline after successful read
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			c.App.Logger.Error("Failed to reset read deadline", zap.Error(err))
			return
		}

		switch msg.Action {
		case "chat":
			req := chatRequest{Messages: msg.Messages}
			if err := req.validate(); err != nil {
				s.emitError(err.Error())
				continue
			}
			if !s.busy.CompareAndSwap(false, true) {
				s.emitError("a chat is already in progress on this connection")
				continue
			}
			s.runs.Add(1)
			go func() {
				defer s.runs.Done()
				defer s.busy.Store(false)
				defer c.recoverSession("chat", s, cancel)
				c.runChat(s, msg)
			}()

		default:
			s.emitError("unknown action: " + msg.Action)
		}
	}
}

func (c *Controller) runChat(s *chatSession, msg ClientMessage) {
	reply, err := c.App.Agent.Run(s.ctx, msg.Messages, strings.TrimSpace(msg.Wallet), s)
	switch {
	case err == nil:
	case errors.Is(err, agent.ErrStepLimit):
		reply.Message = stepLimitMessage
	case s.ctx.Err() != nil:
		return
	default:
		c.App.Logger.Error("Chat run failed", zap.Error(err), zap.String("remote_addr", s.remote))
		s.emitError("the language model request failed")
		return
	}
	s.emit(ServerMessage{Type: "message", Payload: reply})
}
