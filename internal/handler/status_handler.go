package handler

import (
	"context"
	"net/http"
	"time"

	"shop-api/internal/middleware"
	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type StatusHandler struct {
	db pinger
}

func NewStatusHandler(db pinger) *StatusHandler {
	return &StatusHandler{db: db}
}

func (h *StatusHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ServerStatus{
		Message:   "Server is running smoothly",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		middleware.LoggerFromContext(r.Context()).Warn("health check failed", "error", err)
		writeError(w, r, apierror.New("UNAVAILABLE", "database unavailable", "", http.StatusServiceUnavailable))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
