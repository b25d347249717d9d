package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store,omitempty"`
	Session string `json:"session,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadyChecker interface {
	Ready() error
}

type HealthHandler struct {
	store   Pinger
	session ReadyChecker
	log     *logger.Logger
}

func NewHealthHandler(store Pinger, session ReadyChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		session: session,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Store: "ok", Session: "ok"}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("Store health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		resp.Status, resp.Store, status = "unavailable", "error", http.StatusServiceUnavailable
	}
	if err := h.session.Ready(); err != nil {
		h.log.Warn("Session not ready", "error", err)
		resp.Status, resp.Session, status = "unavailable", "starting", http.StatusServiceUnavailable
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
