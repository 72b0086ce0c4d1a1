package handler

import (
	"net/http"

	httputil "bookingform/pkg/http"
	"bookingform/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Integrations map[string]string `json:"integrations,omitempty"`
	Events       any               `json:"events,omitempty"`
}

// Integration reports how one outbound dependency is configured, for example
// "enabled", "disabled" or a verifier mode.
type Integration struct {
	Name   string
	Status func() string
}

type HealthHandler struct {
	integrations []Integration
	events       func() any
	log          *logger.Logger
}

// NewHealthHandler builds the liveness and readiness endpoints. events, when
// set, supplies publisher statistics for /ready.
func NewHealthHandler(log *logger.Logger, events func() any, integrations ...Integration) *HealthHandler {
	return &HealthHandler{
		integrations: integrations,
		events:       events,
		log:          log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready always answers 200: every integration is best-effort, so a missing
// one degrades the service without making it unready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := HealthResponse{
		Status:       "ready",
		Integrations: make(map[string]string, len(h.integrations)),
	}
	for _, in := range h.integrations {
		resp.Integrations[in.Name] = in.Status()
	}
	if h.events != nil {
		resp.Events = h.events()
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

// EnabledStatus maps a boolean flag to "enabled" or "disabled".
func EnabledStatus(enabled func() bool) func() string {
	return func() string {
		if enabled() {
			return "enabled"
		}
		return "disabled"
	}
}
