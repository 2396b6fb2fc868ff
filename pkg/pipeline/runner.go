package pipeline

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/circuitdraw/pkg/cache"
	"github.com/matzehuels/circuitdraw/pkg/explain"
	"github.com/matzehuels/circuitdraw/pkg/firmware"
	"github.com/matzehuels/circuitdraw/pkg/history"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/observability"
	"github.com/matzehuels/circuitdraw/pkg/render"
	"github.com/matzehuels/circuitdraw/pkg/schematic"
	"github.com/matzehuels/circuitdraw/pkg/source"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

// FileSource names netlists supplied through [Options.Netlist].
const FileSource = "file"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Source produces netlists; Fallback is used instead when
	// Options.ForceFallback is set.
	Source   source.Source
	Fallback source.Source

	Explainer *explain.Writer
	Firmware  *firmware.Writer
	Uploader  storage.Uploader
	History   history.Store // optional
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Sources default to [source.Rules] and text writers to their templates;
// callers replace the exported fields to wire in a language model.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		Source:    source.Rules{},
		Fallback:  source.Rules{},
		Explainer: explain.New(nil, logger),
		Firmware:  firmware.New(nil, logger),
		Uploader:  storage.Noop{},
	}
}

// Execute runs the complete netlist → text → render → publish → record
// pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()

	result := &Result{}

	// Stage 1: Netlist
	netlistStart := time.Now()
	nl, name, err := r.GenerateNetlist(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	result.Netlist = nl
	result.Source = name
	result.NetlistHash = HashNetlist(nl)
	result.Stats.NetlistTime = time.Since(netlistStart)
	result.Stats.Components = len(nl.Components)
	result.Stats.Connections = len(nl.Connections)

	opts.Logger.Info("generated netlist",
		"source", name,
		"components", result.Stats.Components,
		"connections", result.Stats.Connections,
		"duration", result.Stats.NetlistTime)

	// Stages 2 and 3 are independent: texts come from the model, the image
	// from the layout engine.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		textStart := time.Now()
		explanation, code, hit, err := r.WriteTexts(gctx, opts, nl, result.NetlistHash)
		if err != nil {
			return fmt.Errorf("text: %w", err)
		}
		result.Explanation, result.Firmware = explanation, code
		result.CacheInfo.TextHit = hit
		result.Stats.TextTime = time.Since(textStart)
		return nil
	})
	g.Go(func() error {
		renderStart := time.Now()
		hooks.OnRenderStart(gctx, opts.Format)
		path, scene, hit, err := r.RenderImage(gctx, opts, nl, result.NetlistHash)
		hooks.OnRenderComplete(gctx, opts.Format, time.Since(renderStart), err)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		result.ImagePath = path
		result.CacheInfo.RenderHit = hit
		result.Stats.RenderTime = time.Since(renderStart)
		result.Stats.Wires = len(scene.Wires)
		result.Stats.Skipped = len(scene.Skipped)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Info("rendered schematic",
		"path", result.ImagePath,
		"wires", result.Stats.Wires,
		"skipped", result.Stats.Skipped,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	// Stage 4: Publish
	publishStart := time.Now()
	result.ImageURL = r.Publish(ctx, opts, result.ImagePath)
	result.Stats.PublishTime = time.Since(publishStart)

	// Stage 5: Record
	result.Record = r.Record(ctx, opts, result)

	return result, nil
}

// GenerateNetlist returns the netlist for opts and the name of the source
// that produced it. Supplied netlists are normalized and named [FileSource].
func (r *Runner) GenerateNetlist(ctx context.Context, opts Options) (*netlist.Netlist, string, error) {
	if err := opts.ValidateForNetlist(); err != nil {
		return nil, "", err
	}
	if opts.Netlist != nil {
		return opts.Netlist.Normalize(), FileSource, nil
	}

	src := r.Source
	if opts.ForceFallback {
		src = r.Fallback
	}
	name := src.Name()
	if !opts.Refresh {
		src = source.NewCached(src, r.Cache, r.Keyer)
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnNetlistStart(ctx, name, opts.Request)
	nl, err := src.Generate(ctx, opts.Request)
	components := 0
	if nl != nil {
		components = len(nl.Components)
	}
	hooks.OnNetlistComplete(ctx, name, components, time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	return nl, name, nil
}

// WriteTexts returns the explanation and firmware for nl, from cache when
// both are present. With Options.SkipText set it returns the placeholder
// texts without calling the writers.
func (r *Runner) WriteTexts(ctx context.Context, opts Options, nl *netlist.Netlist, netlistHash string) (string, string, bool, error) {
	if opts.SkipText {
		return NoExplanation, NoFirmware, false, nil
	}

	explainKey := r.Keyer.TextKey(explain.Kind, netlistHash, opts.Request)
	firmwareKey := r.Keyer.TextKey(firmware.Kind, netlistHash, opts.Request)
	if !opts.Refresh {
		e, eok := r.getText(ctx, explain.Kind, explainKey)
		f, fok := r.getText(ctx, firmware.Kind, firmwareKey)
		if eok && fok {
			return e, f, true, nil
		}
	}

	hooks := observability.Pipeline()
	var explanation, code string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		explanation, err = r.Explainer.Explain(gctx, opts.Request, nl)
		hooks.OnTextComplete(gctx, explain.Kind, time.Since(start), err)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		code, err = r.Firmware.Sketch(gctx, opts.Request, nl)
		hooks.OnTextComplete(gctx, firmware.Kind, time.Since(start), err)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", false, err
	}

	r.setText(ctx, explain.Kind, explainKey, explanation)
	r.setText(ctx, firmware.Kind, firmwareKey, code)
	return explanation, code, false, nil
}

func (r *Runner) getText(ctx context.Context, kind, key string) (string, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, kind)
		return "", false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return string(data), true
}

func (r *Runner) setText(ctx context.Context, kind, key, text string) {
	if err := r.Cache.Set(ctx, key, []byte(text), cache.TTLText); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(text))
	}
}

// RenderImage lays out nl and writes the image to the output path, reusing
// cached image bytes when available. It returns the path, the scene that was
// laid out and whether the bytes came from cache.
func (r *Runner) RenderImage(ctx context.Context, opts Options, nl *netlist.Netlist, netlistHash string) (string, *schematic.Scene, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return "", nil, false, err
	}
	rd, err := render.New(opts.RenderConfig())
	if err != nil {
		return "", nil, false, err
	}

	scene := schematic.Build(nl)
	for _, s := range scene.Skipped {
		opts.Logger.Debug("skipped connection", "a", s.Connection.A, "b", s.Connection.B, "reason", s.Reason)
	}

	path := opts.OutputPath
	if path == "" {
		path = filepath.Join(opts.OutputDir, NewImageName(opts.Format))
	}

	key := r.Keyer.ArtifactKey(netlistHash, opts.ArtifactKeyOpts())
	var data []byte
	hit := false
	if !opts.Refresh {
		if cached, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			data, hit = cached, true
			observability.Cache().OnCacheHit(ctx, "artifact")
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}
	if !hit {
		data, err = rd.Encode(render.Draw(scene), render.Format(opts.Format))
		if err != nil {
			return "", nil, false, err
		}
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	if err := ctx.Err(); err != nil {
		return "", nil, false, err
	}
	if err := render.WriteFile(path, data); err != nil {
		return "", nil, false, err
	}
	return path, scene, hit, nil
}

// Publish uploads the image and returns its URL. Upload failures are
// logged and yield "".
func (r *Runner) Publish(ctx context.Context, opts Options, path string) string {
	if r.Uploader == nil {
		return ""
	}
	start := time.Now()
	u, err := r.Uploader.Upload(ctx, path)
	observability.Pipeline().OnPublishComplete(ctx, r.Uploader.Name(), time.Since(start), err)
	if err != nil {
		opts.Logger.Warn("upload failed", "uploader", r.Uploader.Name(), "err", err)
		return ""
	}
	if u != "" {
		opts.Logger.Info("published image", "url", u)
	}
	return u
}

// Record stores the run in the history store, if any. Failures are logged.
func (r *Runner) Record(ctx context.Context, opts Options, res *Result) *history.Record {
	if r.History == nil {
		return nil
	}
	rec := history.NewRecord(opts.Request, res.Source, res.Netlist)
	rec.Explanation = res.Explanation
	rec.Firmware = res.Firmware
	rec.ImagePath = res.ImagePath
	rec.ImageURL = res.ImageURL
	if err := r.History.Put(ctx, rec); err != nil {
		opts.Logger.Warn("history write failed", "err", err)
		return nil
	}
	return rec
}

// Close releases resources held by the runner (cache and history store).
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// HashNetlist returns the content hash of a netlist's wire form.
func HashNetlist(nl *netlist.Netlist) string {
	data, _ := json.Marshal(nl)
	return cache.Hash(data)
}

// NewImageName returns a fresh "circuit_<hex>.<format>" file name.
func NewImageName(format string) string {
	id := uuid.New()
	return "circuit_" + hex.EncodeToString(id[:]) + "." + format
}
