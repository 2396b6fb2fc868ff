// Package cache provides the byte-level caches used by the generation
// pipeline.
//
// # Overview
//
// Generating a circuit calls a rate-limited LLM up to three times and
// renders an image. All four results are deterministic functions of their
// inputs, so the pipeline stores them under content-derived keys:
//
//   - Netlists, keyed by source name and request text
//   - Explanations and firmware, keyed by netlist hash and request text
//   - Rendered images, keyed by netlist hash, format and scale
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] builds keys; [NewScopedKeyer] prefixes them so that several
// deployments can share one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
// A TTL of zero means the entry does not expire.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLNetlist  = 7 * 24 * time.Hour
	TTLText     = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)
