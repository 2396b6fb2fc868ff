package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/circuitdraw/pkg/cache"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/observability"
)

// Cached stores the netlists of an inner source in a cache. Failed
// generations are not cached, and cache errors never fail a generation.
type Cached struct {
	inner Source
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps inner. A nil cache disables caching and a nil keyer
// selects [cache.DefaultKeyer]. Entries live for [cache.TTLNetlist].
func NewCached(inner Source, c cache.Cache, keyer cache.Keyer) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: cache.TTLNetlist}
}

// Name returns the inner source's name.
func (s *Cached) Name() string { return s.inner.Name() }

// Generate returns the cached netlist for request or generates and stores it.
func (s *Cached) Generate(ctx context.Context, request string) (*netlist.Netlist, error) {
	key := s.keyer.NetlistKey(s.inner.Name(), request)
	hooks := observability.Cache()

	if data, ok, _ := s.cache.Get(ctx, key); ok {
		var nl netlist.Netlist
		if json.Unmarshal(data, &nl) == nil {
			hooks.OnCacheHit(ctx, "netlist")
			return nl.Normalize(), nil
		}
	}
	hooks.OnCacheMiss(ctx, "netlist")

	nl, err := s.inner.Generate(ctx, request)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(nl); err == nil {
		if s.cache.Set(ctx, key, data, s.ttl) == nil {
			hooks.OnCacheSet(ctx, "netlist", len(data))
		}
	}
	return nl, nil
}

var _ Source = (*Cached)(nil)
