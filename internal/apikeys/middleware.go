package apikeys

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Header names carrying the credential pair.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderSecretKey = "X-Secret-Key"
)

type contextKey struct{}

var identityContextKey contextKey

// IdentityFrom returns the verified identity attached by RequireAuth, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

// RequireAuth gates requests behind credential verification. Missing headers
// and invalid credentials both produce 401 with distinct messages; a valid
// credential lacking the required permission produces 403. When permission is
// empty, any valid credential passes. The verified identity is attached to
// the request context for downstream handlers.
func RequireAuth(store *Store, permission string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(HeaderAPIKey)
			secretKey := r.Header.Get(HeaderSecretKey)

			if apiKey == "" || secretKey == "" {
				writeAuthError(w, http.StatusUnauthorized, map[string]string{
					"error":   "Missing API key or secret key",
					"message": "Include X-API-Key and X-Secret-Key headers",
				})
				return
			}

			identity, err := store.Verify(apiKey, secretKey)
			if err != nil {
				msg := "Invalid credentials"
				switch {
				case IsInvalidKey(err):
					msg = "Invalid API key"
				case IsInvalidSecret(err):
					msg = "Invalid secret key"
				}
				writeAuthError(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}

			if permission != "" && !hasPermission(identity.Permissions, permission) {
				writeAuthError(w, http.StatusForbidden, map[string]string{
					"error":    "Insufficient permissions",
					"required": permission,
				})
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
