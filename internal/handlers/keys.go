package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"webhook-notify/internal/common/errors"
)

type createKeyRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// ListKeys returns all issued credentials with secrets redacted.
func (h *Handlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List()
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, keys)
}

// CreateKey issues a new credential. The secret key appears in this response
// and nowhere else.
func (h *Handlers) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, errors.ValidationError("invalid JSON body"))
		return
	}

	creds, err := h.keys.Create(req.Name, req.Permissions)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, creds)
}

// DeleteKey revokes a credential.
func (h *Handlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	apiKey := mux.Vars(r)["key"]

	removed, err := h.keys.Delete(apiKey)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !removed {
		h.respondError(w, errors.NotFoundError("API key"))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
