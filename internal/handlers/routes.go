package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"webhook-notify/internal/apikeys"
	"webhook-notify/internal/middleware"
)

// NewRouter builds the service's route tree. When REQUIRE_AUTH is on, read
// routes need the read permission, mutations need write, and credential
// management needs admin.
func (h *Handlers) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.Handle("/keys", h.protect("admin", h.ListKeys)).Methods("GET")
	api.Handle("/keys", h.protect("admin", h.CreateKey)).Methods("POST")
	api.Handle("/keys/{key}", h.protect("admin", h.DeleteKey)).Methods("DELETE")

	api.Handle("/webhooks", h.protect("read", h.ListWebhooks)).Methods("GET")
	api.Handle("/webhooks", h.protect("write", h.CreateWebhook)).Methods("POST")
	api.Handle("/webhooks/test", h.protect("write", h.TestWebhook)).Methods("POST")
	api.Handle("/webhooks/stats", h.protect("read", h.WebhookStats)).Methods("GET")
	api.Handle("/webhooks/{id}", h.protect("write", h.DeleteWebhook)).Methods("DELETE")

	api.Handle("/events/{event}", h.protect("write", h.TriggerEvent)).Methods("POST")

	return router
}

// protect wraps a handler behind the credential gate when authentication is
// enabled, and passes it through untouched otherwise.
func (h *Handlers) protect(permission string, handler http.HandlerFunc) http.Handler {
	if !h.config.RequireAuth {
		return handler
	}
	return apikeys.RequireAuth(h.keys, permission)(handler)
}
