package source

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// Fallback tries Primary and uses Secondary when Primary fails or declines.
// Context cancellation is never masked by the fallback.
type Fallback struct {
	Primary   Source
	Secondary Source
	logger    *log.Logger
}

// NewFallback creates a fallback source. A nil logger discards output.
func NewFallback(primary, secondary Source, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fallback{Primary: primary, Secondary: secondary, logger: logger}
}

// Name joins the names of both sources, e.g. "llm>rules".
func (f *Fallback) Name() string {
	return f.Primary.Name() + ">" + f.Secondary.Name()
}

// Generate returns the primary's netlist, or the secondary's if the primary
// returned an error or an empty netlist.
func (f *Fallback) Generate(ctx context.Context, request string) (*netlist.Netlist, error) {
	nl, err := f.Primary.Generate(ctx, request)
	if err == nil && !nl.IsEmpty() {
		return nl, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	switch {
	case stderrors.Is(err, ErrDeclined):
		f.logger.Debug("source declined", "source", f.Primary.Name(), "fallback", f.Secondary.Name())
	case err != nil:
		f.logger.Warn("source failed", "source", f.Primary.Name(), "fallback", f.Secondary.Name(), "err", err)
	default:
		f.logger.Warn("source returned empty netlist", "source", f.Primary.Name(), "fallback", f.Secondary.Name())
	}
	return f.Secondary.Generate(ctx, request)
}

var _ Source = (*Fallback)(nil)
