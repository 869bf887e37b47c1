// Package commands implements the makesite command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/eventstore"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/metrics"
	"git.home.luguber.info/inful/makesite/internal/notify"
	"git.home.luguber.info/inful/makesite/internal/site"
)

// Global is shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site file path" default:"site.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"1" help:"Build the site once"`
	Serve   ServeCmd   `cmd:"" help:"Build, serve and rebuild the site on changes"`
	Daemon  DaemonCmd  `cmd:"" help:"Rebuild the site on a schedule"`
	Init    InitCmd    `cmd:"" help:"Write an example site"`
	History HistoryCmd `cmd:"" help:"Show recent builds"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, config.LogFormatText, level))
	return nil
}

func newLogger(w io.Writer, format config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// siteEnv is a loaded site file with the builder and the services it uses.
type siteEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	builder  *site.Builder
	registry *prometheus.Registry
	closers  []func() error
}

// loadSite reads the site file, applies its logging section (unless --verbose)
// and wires history, notifications and metrics as configured.
func loadSite(g *Global, root *CLI) (*siteEnv, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}

	logger := g.Logger
	if !root.Verbose {
		logger = newLogger(os.Stderr, cfg.Logging.Format, cfg.Logging.Level.SlogLevel())
		slog.SetDefault(logger)
		g.Logger = logger
	}

	env := &siteEnv{cfg: cfg, logger: logger}
	opts := []site.Option{site.WithLogger(logger)}

	if cfg.History.Enabled {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, store.Close)
		opts = append(opts, site.WithHistory(store))
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject, cfg.Notify.Retry.Policy())
		if err != nil {
			logger.Warn("Build notifications disabled", logfields.Error(err))
		} else {
			env.closers = append(env.closers, pub.Close)
			opts = append(opts, site.WithPublisher(pub))
		}
	}

	if cfg.Metrics.Enabled {
		env.registry = prometheus.NewRegistry()
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(env.registry)))
	}

	env.builder = site.NewBuilder(cfg, opts...)
	return env, nil
}

// metricsHandler is nil when metrics are disabled.
func (e *siteEnv) metricsHandler() http.Handler {
	if e.registry == nil {
		return nil
	}
	return metrics.HTTPHandler(e.registry)
}

func (e *siteEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("Close failed", logfields.Error(err))
		}
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
