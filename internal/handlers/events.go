package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"webhook-notify/internal/common/errors"
)

// TriggerEvent dispatches an event with an arbitrary JSON payload to every
// subscribed endpoint and returns the aggregate delivery result. Delivery
// failures are reflected in the counts, not in the response status.
func (h *Handlers) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	event := mux.Vars(r)["event"]

	var payload interface{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, errors.ValidationError("failed to read request body"))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			h.respondError(w, errors.ValidationError("payload must be valid JSON"))
			return
		}
	}

	result, err := h.dispatcher.Dispatch(r.Context(), event, payload)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
