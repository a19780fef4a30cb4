package controller

import (
	"context"
	"net/http"
	"time"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := c.App.Store.Ping(ctx); err != nil {
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "database connection error"})
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
