// Package cli implements the circuitdraw command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitdraw/internal/config"
	"github.com/matzehuels/circuitdraw/pkg/buildinfo"
	"github.com/matzehuels/circuitdraw/pkg/cache"
	"github.com/matzehuels/circuitdraw/pkg/explain"
	"github.com/matzehuels/circuitdraw/pkg/firmware"
	"github.com/matzehuels/circuitdraw/pkg/history"
	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/observability"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
	"github.com/matzehuels/circuitdraw/pkg/source"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "circuitdraw"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	trace      bool
	shutdown   func(context.Context) error
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "circuitdraw turns circuit descriptions into schematic diagrams",
		Long: `circuitdraw turns a plain-language circuit request into a netlist, a
schematic image, a short explanation and a starter Arduino sketch.

Netlists come from a language model when GEMINI_API_KEY is set and from a
keyword rule builder otherwise.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.trace {
				c.installTracing()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.shutdown != nil {
				return c.shutdown(context.Background())
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/circuitdraw/config.toml)")
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "log pipeline spans at debug level")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.examplesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// installTracing routes pipeline, cache and HTTP hooks into spans that are
// logged when they end.
func (c *CLI) installTracing() {
	tp := observability.NewLogTracerProvider(c.Logger)
	observability.InstallTracing(tp)
	c.shutdown = tp.Shutdown
}

// loadConfig reads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects the optional collaborators of a CLI runner.
type runnerOpts struct {
	noCache   bool
	noHistory bool
	uploader  storage.Uploader // nil keeps images local
	logger    *log.Logger      // nil uses the CLI logger
}

// newRunner creates a pipeline runner wired from the configuration: the
// language model backed by the rule builder, the configured cache and the
// history store.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := opts.logger
	if logger == nil {
		logger = c.Logger
	}

	ch, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}

	runner := pipeline.NewRunner(ch, keyer, logger)
	client := c.newLLM(cfg, logger)
	runner.Source = source.NewFallback(source.NewLLM(client, logger), source.Rules{}, logger)
	runner.Fallback = source.Rules{}
	runner.Explainer = explain.New(client, logger)
	runner.Firmware = firmware.New(client, logger)
	if opts.uploader != nil {
		runner.Uploader = opts.uploader
	}

	if !opts.noHistory {
		store, err := newHistory(ctx, cfg)
		if err != nil {
			_ = runner.Close()
			return nil, err
		}
		runner.History = store
	}
	return runner, nil
}

// newLLM returns the model client. A client without an API key is valid;
// sources and writers then fall back to their templates.
func (c *CLI) newLLM(cfg *config.Config, logger *log.Logger) *llm.Client {
	lc := cfg.LLMClientConfig()
	lc.Logger = logger
	client := llm.New(lc)
	if !client.Configured() {
		logger.Debug("language model not configured, using rule builder", "env", config.EnvAPIKey)
	}
	return client
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.Cache.RedisURL})
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

func newHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		return history.NewMongoStore(ctx, history.MongoOptions{
			URI:        cfg.History.MongoURI,
			Database:   cfg.History.Database,
			Collection: cfg.History.Collection,
		})
	}
	dir := cfg.History.Dir
	if dir == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(filepath.Dir(p), "history")
	}
	return history.NewFileStore(dir)
}

// quietLogger returns a copy of the CLI logger that only reports warnings.
// Commands that show a spinner use it so that info lines do not tear the
// spinner frame.
func (c *CLI) quietLogger() *log.Logger {
	if c.Logger.GetLevel() <= log.DebugLevel {
		return c.Logger
	}
	l := c.Logger.With()
	l.SetLevel(log.WarnLevel)
	return l
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/circuitdraw/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
