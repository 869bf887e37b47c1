// Package site runs a complete build: static files, layouts and every page of
// the site file.
package site

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/content"
	"git.home.luguber.info/inful/makesite/internal/eventstore"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/listing"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/markup"
	"git.home.luguber.info/inful/makesite/internal/metrics"
	"git.home.luguber.info/inful/makesite/internal/notify"
	"git.home.luguber.info/inful/makesite/internal/page"
	"git.home.luguber.info/inful/makesite/internal/render"
)

// Build triggers recorded in history.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Builder builds the site described by a config. It is safe to call Build
// from several goroutines; builds are serialised.
type Builder struct {
	cfg       *config.Config
	logger    *slog.Logger
	recorder  metrics.Recorder
	history   eventstore.Store
	publisher notify.Publisher
	converter markup.Converter
	now       func() time.Time

	mu sync.Mutex
}

// Option configures a Builder.
type Option func(*Builder)

func WithLogger(l *slog.Logger) Option        { return func(b *Builder) { b.logger = l } }
func WithRecorder(r metrics.Recorder) Option  { return func(b *Builder) { b.recorder = r } }
func WithHistory(s eventstore.Store) Option   { return func(b *Builder) { b.history = s } }
func WithPublisher(p notify.Publisher) Option { return func(b *Builder) { b.publisher = p } }
func WithConverter(c markup.Converter) Option { return func(b *Builder) { b.converter = c } }
func WithClock(now func() time.Time) Option   { return func(b *Builder) { b.now = now } }

// NewBuilder creates a Builder. Without options it logs to slog.Default and
// records no metrics, history or notifications.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.recorder = metrics.OrNoop(b.recorder)
	if b.publisher == nil {
		b.publisher = notify.Noop{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.converter == nil {
		b.converter = ConverterFor(cfg.Markdown)
	}
	return b
}

// ConverterFor returns the markdown converter configured by m.
func ConverterFor(m config.MarkdownConfig) markup.Converter {
	if !m.IsEnabled() {
		return markup.Unavailable{}
	}
	return markup.NewGoldmark(markup.Options{
		HighlightStyle: m.HighlightStyle,
		HardWraps:      m.HardWraps,
		UnsafeHTML:     m.AllowHTML(),
	})
}

// Config returns the site configuration.
func (b *Builder) Config() *config.Config { return b.cfg }

// Build runs a build started from the command line.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	return b.Rebuild(ctx, TriggerCLI)
}

// Rebuild runs a full build and records trigger in history. Page failures do
// not stop the build; they are collected in the report and returned as a
// build error after every page has been attempted.
func (b *Builder) Rebuild(ctx context.Context, trigger string) (*Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.now()
	report := &Report{BuildID: uuid.NewString()}
	log := b.logger.With(logfields.BuildID(report.BuildID))
	log.Info("Build started", slog.String("trigger", trigger), logfields.Path(b.cfg.OutputDir))

	b.record(ctx, log, report.BuildID, eventstore.TypeBuildStarted, eventstore.BuildStarted{
		ConfigPath: b.cfg.BaseDir,
		Pages:      b.pageSlugs(),
		Trigger:    trigger,
	})

	err := b.run(ctx, log, report, start)
	report.Duration = b.now().Sub(start)
	report.Outcome = report.outcome(stderrors.Is(err, context.Canceled))

	b.finish(ctx, log, report, err)
	return report, err
}

func (b *Builder) run(ctx context.Context, log *slog.Logger, report *Report, start time.Time) error {
	cfg := b.cfg

	stageStart := b.now()
	if err := prepareOutput(cfg.OutputDir, cfg.BaseDir, cfg.CleanOutput()); err != nil {
		return err
	}
	n, err := copyTree(cfg.StaticDir, cfg.OutputDir)
	if err != nil {
		return err
	}
	report.StaticFiles = n
	b.recorder.ObserveStageDuration("static", b.now().Sub(stageStart))
	log.Debug("Copied static files", logfields.Count(n), logfields.Path(cfg.StaticDir))

	stageStart = b.now()
	layouts, err := LoadLayouts(cfg.LayoutDir, cfg.Layouts)
	if err != nil {
		return err
	}
	b.recorder.ObserveStageDuration("layouts", b.now().Sub(stageStart))

	months, err := content.NewMonthTable(cfg.Locale, cfg.Months)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid month table").Fatal().Build()
	}

	report.Commit = headCommit(cfg.BaseDir)
	site := siteBindings(cfg, defaultBindings(report.BuildID, report.Commit, start))

	loader := &content.Loader{
		Converter:     b.converter,
		Months:        months,
		SummaryLength: cfg.SummaryLength,
		Recorder:      b.recorder,
		Logger:        log,
	}
	composer := &page.Composer{
		ContentRoot: cfg.ContentDir,
		Loader:      loader,
		Aggregator: &listing.Aggregator{
			Loader:      loader,
			Recorder:    b.recorder,
			Logger:      log,
			Concurrency: cfg.Concurrency,
		},
		Logger: log,
	}

	stageStart = b.now()
	for _, p := range cfg.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := b.buildPage(ctx, log, report.BuildID, composer, layouts, pageBindings(site, p), p.Slug)
		report.Pages = append(report.Pages, res)
		if res.Err != nil {
			report.Failed++
		}
	}
	b.recorder.ObserveStageDuration("pages", b.now().Sub(stageStart))

	if report.Failed > 0 {
		return errors.BuildError(fmt.Sprintf("%d of %d pages failed", report.Failed, len(report.Pages))).
			WithContext("pages", strings.Join(report.FailedSlugs(), ",")).
			Build()
	}
	return nil
}

func (b *Builder) buildPage(ctx context.Context, log *slog.Logger, buildID string, c *page.Composer, layouts map[string]string, bindings render.Bindings, slug string) PageResult {
	start := b.now()
	res := PageResult{Slug: slug, Output: filepath.Join(b.cfg.OutputDir, slug+".html")}
	log = log.With(logfields.Page(slug))

	out, err := c.Compose(ctx, slug, layouts, bindings)
	if err == nil {
		if werr := atomic.WriteFile(res.Output, strings.NewReader(out)); werr != nil {
			err = errors.FileSystemError("write page").WithCause(werr).WithContext("path", res.Output).Build()
		}
	}
	res.Duration = b.now().Sub(start)
	b.recorder.ObservePageDuration(slug, res.Duration)

	if err != nil {
		res.Err = err
		b.recorder.IncPageResult(slug, metrics.ResultFailed)
		log.Error("Page failed", logfields.Error(err))
		b.record(ctx, log, buildID, eventstore.TypePageFailed, eventstore.PageFailed{Slug: slug, Error: err.Error()})
		return res
	}

	res.Bytes = len(out)
	if fp, ferr := fingerprint(map[string]any{"slug": slug}, out); ferr == nil {
		res.Fingerprint = fp
	}
	b.recorder.IncPageResult(slug, metrics.ResultSuccess)
	log.Info("Wrote page", logfields.Path(res.Output), logfields.Bytes(res.Bytes),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	b.record(ctx, log, buildID, eventstore.TypePageRendered, eventstore.PageRendered{
		Slug:        slug,
		Output:      res.Output,
		Bytes:       res.Bytes,
		Fingerprint: res.Fingerprint,
		DurationMS:  res.Duration.Milliseconds(),
	})
	return res
}

func (b *Builder) finish(ctx context.Context, log *slog.Logger, report *Report, err error) {
	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(report.Outcome)

	finished := eventstore.BuildFinished{
		Pages:      len(report.Pages) - report.Failed,
		Failed:     report.Failed,
		DurationMS: report.Duration.Milliseconds(),
	}
	eventType := eventstore.TypeBuildCompleted
	if err != nil {
		finished.Error = err.Error()
		eventType = eventstore.TypeBuildFailed
		log.Error("Build failed", logfields.Error(err), slog.String("outcome", string(report.Outcome)))
	} else {
		log.Info("Build completed", logfields.Count(len(report.Pages)),
			logfields.DurationMS(float64(report.Duration.Microseconds())/1000),
			slog.String("commit", shortCommit(report.Commit)))
	}
	// History and notifications outlive a canceled build context.
	ctx = context.WithoutCancel(ctx)
	b.record(ctx, log, report.BuildID, eventType, finished)

	status := string(report.Outcome)
	if perr := b.publisher.Publish(ctx, notify.BuildEvent{
		BuildID:    report.BuildID,
		Status:     status,
		Pages:      report.Slugs(),
		Failed:     report.FailedSlugs(),
		OutputDir:  b.cfg.OutputDir,
		DurationMS: report.Duration.Milliseconds(),
		Timestamp:  b.now().UTC(),
	}); perr != nil {
		log.Warn("Build notification failed", logfields.Error(perr))
	}
}

// record appends a history event. History failures are logged and never fail
// the build.
func (b *Builder) record(ctx context.Context, log *slog.Logger, buildID, eventType string, payload any) {
	if b.history == nil {
		return
	}
	e, err := eventstore.NewEvent(buildID, eventType, payload)
	if err == nil {
		err = b.history.Append(ctx, e)
	}
	if err != nil {
		log.Warn("Failed to record build event", slog.String("type", eventType), logfields.Error(err))
	}
}

func (b *Builder) pageSlugs() []string {
	out := make([]string, len(b.cfg.Pages))
	for i, p := range b.cfg.Pages {
		out[i] = p.Slug
	}
	return out
}
