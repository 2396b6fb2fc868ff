// Package pipeline provides the generation pipeline for circuitdraw.
//
// This package implements the complete request → netlist → text → render →
// publish pipeline used by both the CLI and the HTTP service. By centralizing
// this logic, both entry points behave the same way and share caching.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Netlist: ask a [source.Source] for a netlist (LLM with rule fallback)
//  2. Text: write the explanation and the firmware sketch (concurrently)
//  3. Render: lay out and draw the schematic to an image file
//  4. Publish: hand the image to a [storage.Uploader] for a public URL
//  5. Record: store the run in a [history.Store]
//
// Netlists, texts and images are cached. Publishing and recording failures
// are logged and never fail a run; a render failure always does.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Source = source.NewFallback(source.NewLLM(client, logger), source.Rules{}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Request: "blink an LED on D13",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.ImagePath, result.Firmware)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitdraw/pkg/cache"
	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/history"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the default image format.
	DefaultFormat = FormatPNG

	// DefaultOutputDir is where images go when no output path is given.
	DefaultOutputDir = "_out"

	// DefaultUnitScale is the default number of pixels per schematic unit.
	DefaultUnitScale = render.DefaultUnitScale

	// Fallback texts used when a stage is skipped.
	NoExplanation = "Explanation unavailable."
	NoFirmware    = "// Arduino code unavailable."
)

// Format constants for output formats.
const (
	FormatPNG = string(render.FormatPNG)
	FormatSVG = string(render.FormatSVG)
	FormatPDF = string(render.FormatPDF)
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one generation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Netlist options
	Request       string           `json:"query"`
	ForceFallback bool             `json:"force_fallback,omitempty"` // bypass the primary source
	Netlist       *netlist.Netlist `json:"netlist,omitempty"`        // render this instead of asking a source
	Refresh       bool             `json:"refresh,omitempty"`        // ignore cached results

	// Text options
	SkipText bool `json:"skip_text,omitempty"`

	// Render options
	Format    string  `json:"format,omitempty"`
	UnitScale float64 `json:"unit_scale,omitempty"`

	// Runtime options (not serialized)
	OutputDir  string      `json:"-"`
	OutputPath string      `json:"-"` // overrides OutputDir and Format
	Logger     *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Netlist is the normalized netlist that was rendered.
	Netlist *netlist.Netlist

	// NetlistHash is the content hash of the netlist.
	NetlistHash string

	// Source names the netlist source ("file" for supplied netlists).
	Source string

	// Explanation and Firmware are the generated texts.
	Explanation string
	Firmware    string

	// ImagePath is the rendered file; ImageURL its public link, if any.
	ImagePath string
	ImageURL  string

	// Record is the stored history record, if a store is configured.
	Record *history.Record

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Components  int
	Connections int
	Wires       int
	Skipped     int
	NetlistTime time.Duration
	TextTime    time.Duration
	RenderTime  time.Duration
	PublishTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TextHit   bool // Whether both texts came from cache
	RenderHit bool // Whether the image came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, pdf)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForNetlist(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForNetlist checks that there is a request or a netlist.
func (o *Options) ValidateForNetlist() error {
	if o.Netlist == nil {
		if err := errors.ValidateRequest(o.Request); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.OutputPath != "" {
		if f, err := render.FormatFromPath(o.OutputPath); err == nil {
			o.Format = string(f)
		}
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.UnitScale == 0 {
		o.UnitScale = DefaultUnitScale
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if o.OutputPath != "" {
		if _, err := render.FormatFromPath(o.OutputPath); err != nil {
			return err
		}
	}
	o.SetRenderDefaults()
	if o.UnitScale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unit scale must be positive, got %g", o.UnitScale)
	}
	return ValidateFormat(o.Format)
}

// RenderConfig returns the renderer configuration for these options.
func (o *Options) RenderConfig() render.Config {
	return render.Config{UnitScale: o.UnitScale, Headless: true}
}

// ArtifactKeyOpts returns cache key options for image rendering.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    o.Format,
		UnitScale: o.UnitScale,
	}
}

// String summarizes the options for logs.
func (o *Options) String() string {
	if o.Netlist != nil {
		return fmt.Sprintf("netlist(%d components) -> %s", len(o.Netlist.Components), o.Format)
	}
	return fmt.Sprintf("%q -> %s", o.Request, o.Format)
}
