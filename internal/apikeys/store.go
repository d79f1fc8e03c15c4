// Package apikeys implements issuance, verification, and revocation of API
// key/secret credentials, persisted as a single JSON document keyed by API key.
package apikeys

import (
	"crypto/subtle"
	"sort"
	"time"

	"webhook-notify/internal/common/errors"
	"webhook-notify/internal/common/logging"
	"webhook-notify/internal/common/utils"
	"webhook-notify/internal/storage/jsonfile"
)

// Error codes distinguishing the two unauthorized sub-kinds.
const (
	CodeInvalidKey    = "invalid_key"
	CodeInvalidSecret = "invalid_secret"
)

// Record is one issued credential as persisted. The secret is stored in the
// document and compared on verification but never returned by List.
type Record struct {
	Name        string     `json:"name"`
	SecretKey   string     `json:"secretKey"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsed    *time.Time `json:"lastUsed"`
	UsageCount  int64      `json:"usageCount"`
}

// Credentials is the one-time creation result. The secret key cannot be
// retrieved again through any other operation.
type Credentials struct {
	APIKey    string `json:"apiKey"`
	SecretKey string `json:"secretKey"`
}

// Identity is the verified caller attached to authorized requests.
type Identity struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// KeyInfo is a Record projection with the secret redacted, for listings.
type KeyInfo struct {
	APIKey      string     `json:"apiKey"`
	Name        string     `json:"name"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsed    *time.Time `json:"lastUsed"`
	UsageCount  int64      `json:"usageCount"`
}

// Store owns the credential document. Every operation reads the document
// fresh; the document is the single source of truth.
type Store struct {
	doc *jsonfile.Document
}

// NewStore creates a credential store backed by the given document.
func NewStore(doc *jsonfile.Document) *Store {
	return &Store{doc: doc}
}

// load reads the full key map, degrading to an empty store when the backing
// file is absent or unreadable.
func load(loadFn func(interface{}) (bool, error)) map[string]*Record {
	keys := make(map[string]*Record)
	if _, err := loadFn(&keys); err != nil {
		logging.Warn("failed to load API keys, using empty store", logging.Err(err))
		return make(map[string]*Record)
	}
	return keys
}

// Create issues a new credential with the given name and permissions and
// persists it. Permissions default to read+write when empty. The returned
// secret is shown exactly once.
func (s *Store) Create(name string, permissions []string) (*Credentials, error) {
	if name == "" {
		return nil, errors.ValidationError("name is required")
	}
	if len(permissions) == 0 {
		permissions = []string{"read", "write"}
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, errors.InternalError("failed to generate API key", err)
	}
	secretKey, err := utils.GenerateSecretKey()
	if err != nil {
		return nil, errors.InternalError("failed to generate secret key", err)
	}

	err = s.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		keys := load(loadFn)
		keys[apiKey] = &Record{
			Name:        name,
			SecretKey:   secretKey,
			Permissions: permissions,
			CreatedAt:   time.Now().UTC(),
			UsageCount:  0,
		}
		return save(keys)
	})
	if err != nil {
		return nil, err
	}

	return &Credentials{APIKey: apiKey, SecretKey: secretKey}, nil
}

// Verify checks a key/secret pair. On success it updates the record's usage
// stats, persists them, and returns the caller's identity. Failures
// distinguish an unknown key from a mismatched secret.
func (s *Store) Verify(apiKey, secretKey string) (*Identity, error) {
	var identity *Identity

	err := s.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		keys := load(loadFn)

		record, ok := keys[apiKey]
		if !ok {
			return errors.AuthError("invalid API key").WithCode(CodeInvalidKey)
		}

		// Constant-time compare; plain equality would leak via timing.
		if subtle.ConstantTimeCompare([]byte(record.SecretKey), []byte(secretKey)) != 1 {
			return errors.AuthError("invalid secret key").WithCode(CodeInvalidSecret)
		}

		now := time.Now().UTC()
		record.LastUsed = &now
		record.UsageCount++

		identity = &Identity{Name: record.Name, Permissions: record.Permissions}
		return save(keys)
	})
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// HasPermission reports whether the key exists and carries the permission.
// It is a pure lookup and does not touch usage stats.
func (s *Store) HasPermission(apiKey, permission string) bool {
	keys := make(map[string]*Record)
	if _, err := s.doc.Load(&keys); err != nil {
		logging.Warn("failed to load API keys for permission check", logging.Err(err))
		return false
	}

	record, ok := keys[apiKey]
	if !ok {
		return false
	}

	return hasPermission(record.Permissions, permission)
}

// List returns every credential with the secret redacted, ordered by
// creation time.
func (s *Store) List() ([]KeyInfo, error) {
	keys := make(map[string]*Record)
	if _, err := s.doc.Load(&keys); err != nil {
		logging.Warn("failed to load API keys, listing empty store", logging.Err(err))
		return []KeyInfo{}, nil
	}

	result := make([]KeyInfo, 0, len(keys))
	for apiKey, record := range keys {
		result = append(result, KeyInfo{
			APIKey:      apiKey,
			Name:        record.Name,
			Permissions: record.Permissions,
			CreatedAt:   record.CreatedAt,
			LastUsed:    record.LastUsed,
			UsageCount:  record.UsageCount,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].APIKey < result[j].APIKey
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Delete removes a credential. It reports whether a record was actually
// removed; deleting an unknown key is not an error.
func (s *Store) Delete(apiKey string) (bool, error) {
	removed := false

	err := s.doc.Update(func(loadFn func(interface{}) (bool, error), save func(interface{}) error) error {
		keys := load(loadFn)

		if _, ok := keys[apiKey]; !ok {
			return nil
		}

		delete(keys, apiKey)
		removed = true
		return save(keys)
	})
	if err != nil {
		return false, err
	}

	return removed, nil
}

func hasPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsInvalidKey reports whether err is a verification failure for an unknown key.
func IsInvalidKey(err error) bool {
	return errors.GetCode(err) == CodeInvalidKey
}

// IsInvalidSecret reports whether err is a verification failure for a
// mismatched secret.
func IsInvalidSecret(err error) bool {
	return errors.GetCode(err) == CodeInvalidSecret
}
