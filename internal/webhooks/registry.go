// Package webhooks maintains the registry of notification endpoints and
// delivers event payloads to every subscribed endpoint, tracking delivery
// outcomes per endpoint.
package webhooks

import (
	"time"

	"webhook-notify/internal/common/errors"
	"webhook-notify/internal/common/logging"
	"webhook-notify/internal/common/utils"
	"webhook-notify/internal/storage/jsonfile"
)

// Endpoint is one registered notification target.
type Endpoint struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	Headers       map[string]string `json:"headers"`
	Events        []string          `json:"events"`
	Enabled       bool              `json:"enabled"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastTriggered *time.Time        `json:"lastTriggered"`
	SuccessCount  int64             `json:"successCount"`
	FailureCount  int64             `json:"failureCount"`
}

// SubscribedTo reports whether the endpoint subscribes to the event.
func (e *Endpoint) SubscribedTo(event string) bool {
	for _, ev := range e.Events {
		if ev == event {
			return true
		}
	}
	return false
}

// Registry is the persisted aggregate: a global kill switch plus the ordered
// endpoint sequence.
type Registry struct {
	Enabled   bool        `json:"enabled"`
	Endpoints []*Endpoint `json:"endpoints"`
}

// Stats is a read-only projection of the registry.
type Stats struct {
	Enabled        bool            `json:"enabled"`
	TotalWebhooks  int             `json:"totalWebhooks"`
	ActiveWebhooks int             `json:"activeWebhooks"`
	TotalSuccess   int64           `json:"totalSuccess"`
	TotalFailures  int64           `json:"totalFailures"`
	Webhooks       []EndpointStats `json:"webhooks"`
}

// EndpointStats is the per-endpoint breakdown inside Stats.
type EndpointStats struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Enabled       bool       `json:"enabled"`
	Events        []string   `json:"events"`
	SuccessCount  int64      `json:"successCount"`
	FailureCount  int64      `json:"failureCount"`
	LastTriggered *time.Time `json:"lastTriggered"`
}

// Manager owns the webhook registry document. The document is loaded fresh
// on every operation and is the single source of truth.
type Manager struct {
	doc *jsonfile.Document
}

// NewManager creates a registry manager backed by the given document.
func NewManager(doc *jsonfile.Document) *Manager {
	return &Manager{doc: doc}
}

func loadRegistry(loadFn func(interface{}) (bool, error)) *Registry {
	reg := &Registry{Enabled: false, Endpoints: []*Endpoint{}}
	if _, err := loadFn(reg); err != nil {
		logging.Warn("failed to load webhook registry, using empty default", logging.Err(err))
		return &Registry{Enabled: false, Endpoints: []*Endpoint{}}
	}
	if reg.Endpoints == nil {
		reg.Endpoints = []*Endpoint{}
	}
	return reg
}

// Add registers a new endpoint, enabled with zeroed counters, and flips the
// registry's global switch on. Events default to the match event when empty
// and a missing name falls back to the url.
func (m *Manager) Add(url, name string, headers map[string]string, events []string) (*Endpoint, error) {
	if url == "" {
		return nil, errors.ValidationError("url is required")
	}
	if name == "" {
		name = url
	}
	if len(events) == 0 {
		events = []string{"match"}
	}
	if headers == nil {
		headers = map[string]string{}
	}

	endpoint := &Endpoint{
		ID:        utils.NewEndpointID(),
		Name:      name,
		URL:       url,
		Headers:   headers,
		Events:    events,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}

	err := m.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		reg := loadRegistry(loadFn)
		reg.Endpoints = append(reg.Endpoints, endpoint)
		reg.Enabled = true
		return save(reg)
	})
	if err != nil {
		return nil, err
	}

	logging.Info("webhook endpoint registered",
		logging.String("id", endpoint.ID),
		logging.String("name", name),
		logging.String("url", url))

	return endpoint, nil
}

// Remove deletes the endpoint with the given id. Removing an unknown id is
// not an error.
func (m *Manager) Remove(id string) error {
	return m.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		reg := loadRegistry(loadFn)

		filtered := make([]*Endpoint, 0, len(reg.Endpoints))
		for _, ep := range reg.Endpoints {
			if ep.ID != id {
				filtered = append(filtered, ep)
			}
		}
		reg.Endpoints = filtered

		return save(reg)
	})
}

// List returns the full endpoint sequence as stored.
func (m *Manager) List() ([]*Endpoint, error) {
	reg := &Registry{}
	if _, err := m.doc.Load(reg); err != nil {
		logging.Warn("failed to load webhook registry, listing empty", logging.Err(err))
		return []*Endpoint{}, nil
	}
	if reg.Endpoints == nil {
		return []*Endpoint{}, nil
	}
	return reg.Endpoints, nil
}

// SetEnabled flips the registry's global kill switch.
func (m *Manager) SetEnabled(enabled bool) error {
	return m.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		reg := loadRegistry(loadFn)
		reg.Enabled = enabled
		return save(reg)
	})
}

// SetEndpointEnabled flips a single endpoint's enable flag. It reports
// whether the endpoint exists.
func (m *Manager) SetEndpointEnabled(id string, enabled bool) (bool, error) {
	found := false

	err := m.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		reg := loadRegistry(loadFn)

		for _, ep := range reg.Endpoints {
			if ep.ID == id {
				ep.Enabled = enabled
				found = true
			}
		}
		if !found {
			return nil
		}

		return save(reg)
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

// Stats aggregates the registry into a read-only projection.
func (m *Manager) Stats() (*Stats, error) {
	reg := &Registry{}
	if _, err := m.doc.Load(reg); err != nil {
		logging.Warn("failed to load webhook registry for stats", logging.Err(err))
		reg = &Registry{}
	}

	stats := &Stats{
		Enabled:       reg.Enabled,
		TotalWebhooks: len(reg.Endpoints),
		Webhooks:      make([]EndpointStats, 0, len(reg.Endpoints)),
	}

	for _, ep := range reg.Endpoints {
		if ep.Enabled {
			stats.ActiveWebhooks++
		}
		stats.TotalSuccess += ep.SuccessCount
		stats.TotalFailures += ep.FailureCount
		stats.Webhooks = append(stats.Webhooks, EndpointStats{
			ID:            ep.ID,
			Name:          ep.Name,
			URL:           ep.URL,
			Enabled:       ep.Enabled,
			Events:        ep.Events,
			SuccessCount:  ep.SuccessCount,
			FailureCount:  ep.FailureCount,
			LastTriggered: ep.LastTriggered,
		})
	}

	return stats, nil
}

// snapshot loads the registry for a dispatch cycle.
func (m *Manager) snapshot() *Registry {
	reg := &Registry{Enabled: false, Endpoints: []*Endpoint{}}
	if _, err := m.doc.Load(reg); err != nil {
		logging.Warn("failed to load webhook registry for dispatch", logging.Err(err))
		return &Registry{Enabled: false, Endpoints: []*Endpoint{}}
	}
	if reg.Endpoints == nil {
		reg.Endpoints = []*Endpoint{}
	}
	return reg
}

// applyOutcomes folds delivery outcomes back into the stored registry in a
// single write. Endpoints removed since the dispatch snapshot are skipped.
func (m *Manager) applyOutcomes(outcomes map[string]outcome) error {
	return m.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		reg := loadRegistry(loadFn)

		for _, ep := range reg.Endpoints {
			o, ok := outcomes[ep.ID]
			if !ok {
				continue
			}
			if o.success {
				ep.SuccessCount++
				triggered := o.at
				ep.LastTriggered = &triggered
			} else {
				ep.FailureCount++
			}
		}

		return save(reg)
	})
}
