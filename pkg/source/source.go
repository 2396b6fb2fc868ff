// Package source turns free-text circuit requests into netlists.
//
// A [Source] is anything that can produce a [netlist.Netlist] from a request.
// Two implementations ship with circuitdraw:
//
//   - [LLM] asks a language model for a netlist in the wire JSON format
//   - [Rules] builds a netlist deterministically from keywords
//
// Sources compose. [Fallback] tries a primary source and falls back to a
// secondary one on any error, and [Cached] stores results in a [cache.Cache].
// The usual stack is:
//
//	src := source.NewCached(source.NewFallback(source.NewLLM(client, logger), source.Rules{}, logger), c, keyer)
//
// Callers never branch on which implementation produced a netlist; they
// only record [Source.Name].
package source

import (
	"context"
	"errors"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// ErrDeclined is returned by a source that has no netlist for a request,
// for example because its backend is not configured.
var ErrDeclined = errors.New("source declined request")

// Source produces netlists from requests.
type Source interface {
	// Name identifies the source in logs, cache keys and history records.
	Name() string
	// Generate returns a normalized netlist for request.
	Generate(ctx context.Context, request string) (*netlist.Netlist, error)
}
