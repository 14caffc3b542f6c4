package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/boostube/internal/config"
	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/shape"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
	logpkg "github.com/kailas-cloud/boostube/internal/logger"
	"github.com/kailas-cloud/boostube/internal/metrics"
	chiTransport "github.com/kailas-cloud/boostube/internal/transport/chi"
	"github.com/kailas-cloud/boostube/internal/transport/tui"
	"github.com/kailas-cloud/boostube/internal/usecase/page"
	"github.com/kailas-cloud/boostube/internal/version"
)

// errFailure marks a settled Failure state so ask exits non-zero.
var errFailure = errors.New("submission failed")

// newCLIApp creates the CLI application with all commands.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "boostube",
		Usage:   "YouTube creator tools with a particle field behind every page",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			playCmd(),
			askCmd(out),
			toolsCmd(out),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func loadConfig(c *cli.Context) (string, config.Config, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the tool pages over HTTP",
		Action: func(c *cli.Context) error {
			env, cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return serve(c.Context, env, cfg, logger)
		},
	}
}

func serve(ctx context.Context, env string, cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting boostube API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("provider", cfg.Generation.Provider),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	metrics.Register()

	comps, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	pages := comps.pages(page.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height})
	pages.Open(ctx)
	defer pages.Close()

	server := chiTransport.NewServer(pages, comps.health, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func playCmd() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Open a tool page in the terminal",
		ArgsUsage: "<tool>",
		Action: func(c *cli.Context) error {
			env, cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			// The screen owns the terminal, so logs go to a file.
			logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			comps, err := build(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer comps.close()

			t, err := comps.registry.Lookup(tool.ID(c.Args().First()))
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, joinIDs(comps.registry.IDs()))
			}
			t.Preset = tui.Preset(t.Preset)

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			defer screen.Fini()

			w, h := tui.Viewport(screen.Size())
			p := comps.newPage(t, page.Viewport{Width: w, Height: h})
			return tui.New(screen, p, logger).Run(c.Context)
		},
	}
}

func askCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Run one submission and print the result",
		ArgsUsage: "<tool> <input...>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: boostube ask <tool> <input...>")
			}
			env, cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			comps, err := build(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer comps.close()

			t, err := comps.registry.Lookup(tool.ID(c.Args().First()))
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, joinIDs(comps.registry.IDs()))
			}

			p := comps.newPage(t, page.Viewport{})
			defer p.Close()

			st, err := p.Pipeline.Submit(c.Context, strings.Join(c.Args().Tail(), " "))
			if errors.Is(err, domain.ErrEmptyInput) {
				return fmt.Errorf("input is empty")
			}
			if err != nil {
				return err
			}
			return printState(out, t, st)
		},
	}
}

func toolsCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List the tool pages",
		Action: func(c *cli.Context) error {
			_, cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			registry, err := tool.NewRegistry(toolOverrides(cfg.Tools))
			if err != nil {
				return err
			}
			printTools(out, registry.All())
			return nil
		},
	}
}

func printTools(out io.Writer, tools []tool.Tool) {
	for _, t := range tools {
		fmt.Fprintf(out, "%-9s %-26s %s (%d particles)\n", t.ID, t.Title, t.Description, t.Preset.Count)
	}
}

// printState writes a settled state. Failure is written and reported as errFailure.
func printState(out io.Writer, t tool.Tool, st state.State) error {
	switch st.Kind() {
	case state.Failure:
		fmt.Fprintln(out, st.Message())
		return errFailure
	case state.Success:
		if m, ok := st.Keyword(); ok {
			fmt.Fprintf(out, "keyword:          %s\n", m.Keyword)
			fmt.Fprintf(out, "popularity score: %d / %d\n", m.PopularityScore, keyword.MaxPopularityScore)
			fmt.Fprintf(out, "search volume:    %s\n", m.SearchVolume)
			return nil
		}
		items := st.Items()
		if t.Shape != nil && t.Shape.Name() == (shape.Verbatim{}).Name() {
			fmt.Fprintln(out, strings.Join(items, "\n"))
			return nil
		}
		for i, item := range items {
			fmt.Fprintf(out, "%d. %s\n", i+1, item)
		}
		return nil
	default:
		return fmt.Errorf("unexpected state %s", st.Kind())
	}
}

func joinIDs(ids []tool.ID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	return strings.Join(s, ", ")
}
