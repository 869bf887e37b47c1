// Package daemon keeps a site up to date by rebuilding it on a schedule.
package daemon

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/site"
)

const jobName = "site-rebuild"

// Rebuilder runs one full build.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*site.Report, error)
}

// Options configures the daemon.
type Options struct {
	// Interval between rebuilds; ignored when Cron is set.
	Interval time.Duration
	// Cron is a five field cron expression.
	Cron string
	// BuildOnStart runs one build before the first scheduled run.
	BuildOnStart bool
	// MetricsAddr serves Metrics on /metrics when both are set.
	MetricsAddr string
	Metrics     http.Handler
	Logger      *slog.Logger
}

// Run rebuilds the site on schedule until ctx is canceled. Failed builds are
// logged and retried at the next run.
func Run(ctx context.Context, b Rebuilder, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s, err := NewScheduler()
	if err != nil {
		return err
	}
	task := func() { rebuild(ctx, log, b) }
	if opts.Cron != "" {
		_, err = s.ScheduleCron(jobName, opts.Cron, task)
	} else {
		_, err = s.ScheduleEvery(jobName, opts.Interval, task)
	}
	if err != nil {
		_ = s.Stop()
		return err
	}

	stopMetrics, err := serveMetrics(log, opts.MetricsAddr, opts.Metrics)
	if err != nil {
		_ = s.Stop()
		return err
	}
	defer stopMetrics()

	if opts.BuildOnStart {
		rebuild(ctx, log, b)
	}
	s.Start()
	log.Info("Daemon started", slog.Time("next_run", s.NextRun()))

	<-ctx.Done()
	log.Info("Stopping daemon")
	return s.Stop()
}

func rebuild(ctx context.Context, log *slog.Logger, b Rebuilder) {
	if ctx.Err() != nil {
		return
	}
	report, err := b.Rebuild(ctx, site.TriggerSchedule)
	if err != nil {
		log.Warn("Scheduled build failed", logfields.Error(err))
		return
	}
	log.Info("Scheduled build finished", logfields.BuildID(report.BuildID), logfields.Count(len(report.Pages)))
}

func serveMetrics(log *slog.Logger, addr string, h http.Handler) (func(), error) {
	if addr == "" || h == nil {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.NetworkError("metrics server cannot listen").
			WithCause(err).
			WithContext("name", addr).
			Build()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", logfields.Error(err))
		}
	}()
	log.Info("Serving metrics", slog.String("addr", ln.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
