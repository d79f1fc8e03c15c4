// Package handlers implements the HTTP API surface over the credential store
// and the webhook registry.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"webhook-notify/internal/apikeys"
	"webhook-notify/internal/common/errors"
	"webhook-notify/internal/config"
	"webhook-notify/internal/webhooks"
)

type Handlers struct {
	keys       *apikeys.Store
	registry   *webhooks.Manager
	dispatcher *webhooks.Dispatcher
	config     *config.Config
	started    time.Time
}

func New(keys *apikeys.Store, registry *webhooks.Manager, dispatcher *webhooks.Dispatcher, cfg *config.Config) *Handlers {
	return &Handlers{
		keys:       keys,
		registry:   registry,
		dispatcher: dispatcher,
		config:     cfg,
		started:    time.Now(),
	}
}

// HealthCheck returns the health status of the application
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"uptime":    time.Since(h.started).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError maps an application error to a status code and JSON body.
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrTypeAuth:
		status = http.StatusUnauthorized
	case errors.ErrTypeForbidden:
		status = http.StatusForbidden
	case errors.ErrTypeNotFound:
		status = http.StatusNotFound
	}

	msg := "Internal server error"
	if appErr, ok := err.(*errors.AppError); ok && status != http.StatusInternalServerError {
		msg = appErr.Message
	}

	h.respondJSON(w, status, map[string]string{"error": msg})
}
