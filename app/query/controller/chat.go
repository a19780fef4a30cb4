package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/qubic-network/qubicx/pkg/agent"
	"go.uber.org/zap"
)

const (
	walletHeader     = "x-connected-wallet"
	stepLimitMessage = "I could not finish answering within the allowed number of steps. Try a more specific question."
)

type chatRequest struct {
	Messages []agent.Message `json:"messages"`
	// Wallet is used when the header is absent.
	Wallet string `json:"wallet,omitempty"`
}

func (req chatRequest) validate() error {
	for _, m := range req.Messages {
		if strings.EqualFold(m.Role, "user") && strings.TrimSpace(m.Content) != "" {
			return nil
		}
	}
	return errors.New("messages must contain at least one user message")
}

// HandleChat answers one conversation turn through the agent.
func (c *Controller) HandleChat(w http.ResponseWriter, r *http.Request) {
	if c.App.Agent == nil {
		c.writeError(w, http.StatusServiceUnavailable, "chat is not configured (OPENAI_API_KEY is not set)")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		c.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet := r.Header.Get(walletHeader)
	if wallet == "" {
		wallet = req.Wallet
	}

	reply, err := c.App.Agent.Run(r.Context(), req.Messages, wallet, nil)
	switch {
	case errors.Is(err, agent.ErrStepLimit):
		reply.Message = stepLimitMessage
	case err != nil:
		c.App.Logger.Error("Chat run failed", zap.Error(err))
		c.writeError(w, http.StatusBadGateway, "the language model request failed")
		return
	}

	c.writeJSON(w, http.StatusOK, reply)
}
