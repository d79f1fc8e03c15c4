// Package jsonfile implements persistence for aggregates stored as single
// pretty-printed JSON documents on disk. Each Document owns one file and is
// the only durable state for the aggregate it backs: callers load the full
// document on every read and overwrite the full document on every write.
package jsonfile

import (
	"encoding/json"
	"os"
	"sync"

	"webhook-notify/internal/common/errors"
)

// Document is a file-backed JSON aggregate. A mutex serializes writers so
// concurrent operations on the same document cannot interleave partial
// writes. Multi-process coordination is out of scope.
type Document struct {
	path string
	mu   sync.Mutex
}

// New creates a Document backed by the given file path. The file does not
// need to exist; Load reports its absence instead of failing.
func New(path string) *Document {
	return &Document{path: path}
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Load reads and unmarshals the document into v. It returns false with a nil
// error when the backing file does not exist, so callers can fall back to
// their empty default.
func (d *Document) Load(v interface{}) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(v)
}

// Save marshals v pretty-printed and overwrites the backing file.
func (d *Document) Save(v interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(v)
}

// Update runs fn while holding the document lock, giving it load and save
// callbacks for a read-modify-write cycle that no other writer can interleave.
func (d *Document) Update(fn func(load func(interface{}) (bool, error), save func(interface{}) error) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.load, d.save)
}

func (d *Document) load(v interface{}) (bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.PersistenceError("failed to read document", err).WithContext("path", d.path)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.PersistenceError("document is not valid JSON", err).WithContext("path", d.path)
	}

	return true, nil
}

func (d *Document) save(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.PersistenceError("failed to marshal document", err).WithContext("path", d.path)
	}

	if err := os.WriteFile(d.path, data, 0644); err != nil {
		return errors.PersistenceError("failed to write document", err).WithContext("path", d.path)
	}

	return nil
}
