package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/qubic-network/qubicx/pkg/tools"
	"go.uber.org/zap"
)

type toolListResponse struct {
	Count int           `json:"count"`
	Tools []*tools.Tool `json:"tools"`
}

// HandleToolList returns the catalog in registration order.
func (c *Controller) HandleToolList(w http.ResponseWriter, _ *http.Request) {
	list := c.App.Registry.List()
	c.writeJSON(w, http.StatusOK, toolListResponse{Count: len(list), Tools: list})
}

// HandleToolInvoke runs one tool with the request body as its arguments.
// Handler failures still answer 200; the envelope carries success=false.
func (c *Controller) HandleToolInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		c.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	env, err := c.App.Registry.Invoke(r.Context(), name, json.RawMessage(body))
	if errors.Is(err, tools.ErrUnknownTool) {
		c.writeError(w, http.StatusNotFound, "unknown tool: "+name)
		return
	}
	if err != nil {
		c.App.Logger.Error("Tool invocation failed", zap.String("tool", name), zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "tool invocation failed")
		return
	}

	c.writeJSON(w, http.StatusOK, env)
}
