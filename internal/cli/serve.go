package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circuitdraw/internal/server"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

// serveCommand creates the serve command, which runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		publicURL string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP generation service",
		Long: `Run the HTTP generation service.

Routes:
  GET  /              short help page
  GET  /health        liveness and whether the language model is configured
  POST /generate      {"query": "...", "force_fallback": false}
  GET  /images/{name} signed links to generated images

Images are rendered into the configured output directory, copied into the
public directory and served through links signed with server.signing_key
(or a per-process random key when unset).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if publicURL != "" {
				cfg.Server.PublicURL = publicURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			images, err := storage.NewLocal(cfg.LocalOptions())
			if err != nil {
				return fmt.Errorf("publisher: %w", err)
			}
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, uploader: images})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			client := c.newLLM(cfg, c.Logger)
			srv := server.New(server.Options{
				Runner:    runner,
				Images:    images,
				LLM:       client,
				OutputDir: cfg.Render.OutputDir,
				Logger:    c.Logger,
			})

			c.Logger.Info("listening", "addr", cfg.Server.Addr, "public_url", cfg.Server.PublicURL, "llm", client.Configured())
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr, \":8000\")")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "external base URL used in image links")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
