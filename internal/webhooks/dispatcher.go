package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"webhook-notify/internal/common/errors"
	"webhook-notify/internal/common/httpclient"
	"webhook-notify/internal/common/logging"
)

// Envelope is the delivery payload posted to endpoints.
type Envelope struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Result aggregates one dispatch cycle.
type Result struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

// Detail records one delivery attempt.
type Detail struct {
	Webhook    string `json:"webhook"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TestResult is the outcome of an ad-hoc connectivity probe.
type TestResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
}

type outcome struct {
	success bool
	at      time.Time
}

// Dispatcher delivers event envelopes to subscribed registry endpoints.
type Dispatcher struct {
	manager *Manager
	client  *http.Client
}

// NewDispatcher creates a dispatcher for the given registry. A nil client
// gets the default delivery client with its 10 second timeout.
func NewDispatcher(manager *Manager, client *http.Client) *Dispatcher {
	if client == nil {
		client = httpclient.New()
	}
	return &Dispatcher{manager: manager, client: client}
}

// Dispatch delivers the event payload to every enabled endpoint subscribed to
// the event, in registry order. Delivery failures are contained: they count
// toward the result and never abort sibling attempts. After all attempts the
// updated counters are persisted in a single write; only that write can
// produce a non-nil error, and the result is valid either way.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, data interface{}) (*Result, error) {
	result := &Result{Details: []Detail{}}

	reg := d.manager.snapshot()
	if !reg.Enabled || len(reg.Endpoints) == 0 {
		return result, nil
	}

	envelope, err := json.Marshal(Envelope{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return result, errors.InternalError("failed to marshal event envelope", err)
	}

	outcomes := make(map[string]outcome)

	for _, ep := range reg.Endpoints {
		if !ep.Enabled || !ep.SubscribedTo(event) {
			continue
		}

		detail, ok := d.deliver(ctx, ep, envelope)
		outcomes[ep.ID] = outcome{success: ok, at: time.Now().UTC()}

		if ok {
			result.Sent++
		} else {
			result.Failed++
			logging.Warn("webhook delivery failed",
				logging.String("endpoint", ep.Name),
				logging.String("event", event),
				logging.String("error", detail.Error))
		}
		result.Details = append(result.Details, detail)
	}

	if err := d.manager.applyOutcomes(outcomes); err != nil {
		logging.Error("failed to persist webhook delivery counters", err)
		return result, err
	}

	logging.Debug("webhook dispatch complete",
		logging.String("event", event),
		logging.Int("sent", result.Sent),
		logging.Int("failed", result.Failed))

	return result, nil
}

// deliver posts the envelope to one endpoint and classifies the outcome.
func (d *Dispatcher) deliver(ctx context.Context, ep *Endpoint, body []byte) (Detail, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return Detail{Webhook: ep.Name, Status: "error", Error: err.Error()}, false
	}

	req.Header.Set("Content-Type", "application/json")
	// Endpoint headers may override Content-Type.
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Detail{Webhook: ep.Name, Status: "error", Error: err.Error()}, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Detail{Webhook: ep.Name, Status: "success", StatusCode: resp.StatusCode}, true
	}

	return Detail{
		Webhook:    ep.Name,
		Status:     "failed",
		StatusCode: resp.StatusCode,
		Error:      string(respBody),
	}, false
}

// Test posts a synthetic test envelope to an ad-hoc URL without touching the
// registry or its counters.
func (d *Dispatcher) Test(ctx context.Context, url string, headers map[string]string) *TestResult {
	envelope, err := json.Marshal(Envelope{
		Event:     "test",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      map[string]string{"message": "This is a test webhook from webhook-notify"},
	})
	if err != nil {
		return &TestResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope))
	if err != nil {
		return &TestResult{Success: false, Error: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return &TestResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return &TestResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       string(respBody),
	}
}
