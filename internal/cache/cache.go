// Package cache provides the process-wide, append-only lookup caches that
// sit in front of the phonetiser and thesaurus services. Each cache is a
// single JSON object on disk, loaded once when opened and rewritten after
// every insertion or batch of insertions.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Observer is notified of cache hits and misses.
type Observer interface {
	CacheLookup(cache string, hit bool)
}

// Cache is a string-keyed, append-only map persisted as a JSON object.
// Reads may run concurrently; writes are serialised and flushed by the cache
// itself.
type Cache[V any] struct {
	name     string
	path     string
	entries  map[string]V
	dirty    bool
	observer Observer
	mu       sync.RWMutex
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	name     string
	observer Observer
}

// WithName labels the cache in logs and telemetry. Defaults to the file name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver reports hits and misses to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// Open loads the cache stored at path. A missing or empty file yields an
// empty cache; a file that is not valid JSON is logged and replaced on the
// next flush.
func Open[V any](path string, opts ...Option) (*Cache[V], error) {
	o := options{name: filepath.Base(path)}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		name:     o.name,
		path:     path,
		entries:  make(map[string]V),
		observer: o.observer,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Cache file not found, starting empty", "cache", c.name, "path", path)
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("Invalid JSON in cache file, resetting cache", "cache", c.name, "path", path, "error", err)
		c.entries = make(map[string]V)
		return c, nil
	}

	slog.Debug("Cache loaded", "cache", c.name, "entries", len(c.entries))
	return c, nil
}

// Name returns the cache's label.
func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the value stored for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()

	if c.observer != nil {
		c.observer.CacheLookup(c.name, ok)
	}
	return v, ok
}

// Has reports whether key is present without counting as a lookup.
func (c *Cache[V]) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Put stores v under key and flushes. Entries are never replaced: putting an
// existing key is a no-op.
func (c *Cache[V]) Put(key string, v V) error {
	return c.PutBatch(map[string]V{key: v})
}

// PutBatch stores every new entry of batch and flushes once.
func (c *Cache[V]) PutBatch(batch map[string]V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range batch {
		if _, exists := c.entries[k]; exists {
			continue
		}
		c.entries[k] = v
		c.dirty = true
	}
	return c.flushLocked()
}

// Flush writes the cache to disk if it changed since the last flush.
func (c *Cache[V]) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

// Close flushes any pending entries.
func (c *Cache[V]) Close() error {
	return c.Flush()
}

func (c *Cache[V]) flushLocked() error {
	if !c.dirty {
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", c.name, err)
	}

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace cache %s: %w", c.path, err)
	}

	c.dirty = false
	return nil
}
