package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"webhook-notify/internal/common/errors"
)

type createWebhookRequest struct {
	URL     string            `json:"url"`
	Name    string            `json:"name"`
	Headers map[string]string `json:"headers"`
	Events  []string          `json:"events"`
}

type testWebhookRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

// ListWebhooks returns the full endpoint sequence as stored.
func (h *Handlers) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.registry.List()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, endpoints)
}

// CreateWebhook registers a new endpoint.
func (h *Handlers) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req createWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, errors.ValidationError("invalid JSON body"))
		return
	}

	endpoint, err := h.registry.Add(req.URL, req.Name, req.Headers, req.Events)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, endpoint)
}

// DeleteWebhook removes an endpoint. Removal is idempotent: unknown ids
// still report success.
func (h *Handlers) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.registry.Remove(id); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// TestWebhook probes an ad-hoc URL with a synthetic test event without
// touching the registry.
func (h *Handlers) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var req testWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, errors.ValidationError("invalid JSON body"))
		return
	}
	if req.URL == "" {
		h.respondError(w, errors.ValidationError("url is required"))
		return
	}

	result := h.dispatcher.Test(r.Context(), req.URL, req.Headers)
	h.respondJSON(w, http.StatusOK, result)
}

// WebhookStats returns the registry's read-only stats projection.
func (h *Handlers) WebhookStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.Stats()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}
