package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-notify/internal/apikeys"
	"webhook-notify/internal/config"
	"webhook-notify/internal/handlers"
	"webhook-notify/internal/storage/jsonfile"
	"webhook-notify/internal/webhooks"
)

type testEnv struct {
	router  http.Handler
	keys    *apikeys.Store
	manager *webhooks.Manager
}

func newTestEnv(t *testing.T, requireAuth bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:              "5000",
		LogLevel:          "error",
		APIKeysFile:       filepath.Join(dir, "api_keys.json"),
		WebhookConfigFile: filepath.Join(dir, "webhook_config.json"),
		RequireAuth:       requireAuth,
		WebhookTimeout:    5 * time.Second,
	}

	keys := apikeys.NewStore(jsonfile.New(cfg.APIKeysFile))
	manager := webhooks.NewManager(jsonfile.New(cfg.WebhookConfigFile))
	dispatcher := webhooks.NewDispatcher(manager, nil)

	h := handlers.New(keys, manager, dispatcher, cfg)
	return &testEnv{router: h.NewRouter(), keys: keys, manager: manager}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, "GET", "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestKeyLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, "POST", "/api/keys", map[string]interface{}{"name": "dashboard"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var creds apikeys.Credentials
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creds))
	assert.Len(t, creds.APIKey, 64)
	assert.Len(t, creds.SecretKey, 128)

	rec = env.do(t, "GET", "/api/keys", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []apikeys.KeyInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "dashboard", listed[0].Name)
	assert.NotContains(t, rec.Body.String(), creds.SecretKey)

	rec = env.do(t, "DELETE", "/api/keys/"+creds.APIKey, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	rec = env.do(t, "DELETE", "/api/keys/"+creds.APIKey, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateKeyValidation(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, "POST", "/api/keys", map[string]interface{}{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/api/keys", strings.NewReader("{not json"))
	out := httptest.NewRecorder()
	env.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestWebhookLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, "POST", "/api/webhooks", map[string]interface{}{
		"url":  "https://example.com/hook",
		"name": "example",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var ep webhooks.Endpoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ep))
	assert.NotEmpty(t, ep.ID)
	assert.True(t, ep.Enabled)
	assert.Equal(t, []string{"match"}, ep.Events)

	rec = env.do(t, "GET", "/api/webhooks", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []webhooks.Endpoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, ep.ID, listed[0].ID)

	rec = env.do(t, "GET", "/api/webhooks/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats webhooks.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.True(t, stats.Enabled)
	assert.Equal(t, 1, stats.TotalWebhooks)
	assert.Equal(t, 1, stats.ActiveWebhooks)

	rec = env.do(t, "DELETE", "/api/webhooks/"+ep.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":true}`, rec.Body.String())

	// removal stays successful for ids that are already gone
	rec = env.do(t, "DELETE", "/api/webhooks/"+ep.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":true}`, rec.Body.String())
}

func TestTriggerEvent(t *testing.T) {
	env := newTestEnv(t, false)

	var got atomic.Value
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e webhooks.Envelope
		_ = json.NewDecoder(r.Body).Decode(&e)
		got.Store(e)
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	rec := env.do(t, "POST", "/api/webhooks", map[string]interface{}{
		"url":    receiver.URL,
		"name":   "receiver",
		"events": []string{"match"},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, "POST", "/api/events/match", map[string]interface{}{"score": 0.92}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result webhooks.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "success", result.Details[0].Status)

	envelope, ok := got.Load().(webhooks.Envelope)
	require.True(t, ok)
	assert.Equal(t, "match", envelope.Event)
	assert.NotEmpty(t, envelope.Timestamp)
}

func TestTriggerEventEmptyBody(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, "POST", "/api/events/match", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result webhooks.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestTestWebhookEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	rec := env.do(t, "POST", "/api/webhooks/test", map[string]interface{}{"url": receiver.URL}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result webhooks.TestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)

	rec = env.do(t, "POST", "/api/webhooks/test", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t, true)

	admin, err := env.keys.Create("admin", []string{"read", "write", "admin"})
	require.NoError(t, err)
	reader, err := env.keys.Create("reader", []string{"read"})
	require.NoError(t, err)

	// no credentials at all
	rec := env.do(t, "GET", "/api/webhooks", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong secret
	rec = env.do(t, "GET", "/api/webhooks", nil, map[string]string{
		apikeys.HeaderAPIKey:    admin.APIKey,
		apikeys.HeaderSecretKey: "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminHeaders := map[string]string{
		apikeys.HeaderAPIKey:    admin.APIKey,
		apikeys.HeaderSecretKey: admin.SecretKey,
	}
	readerHeaders := map[string]string{
		apikeys.HeaderAPIKey:    reader.APIKey,
		apikeys.HeaderSecretKey: reader.SecretKey,
	}

	// read permission covers listing but not mutation
	rec = env.do(t, "GET", "/api/webhooks", nil, readerHeaders)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/api/webhooks", map[string]interface{}{
		"url": "https://example.com/hook",
	}, readerHeaders)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// key management needs admin
	rec = env.do(t, "GET", "/api/keys", nil, readerHeaders)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, "GET", "/api/keys", nil, adminHeaders)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays open
	rec = env.do(t, "GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
