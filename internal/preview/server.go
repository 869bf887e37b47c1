// Package preview serves the built site locally and rebuilds it when content,
// layout or static files change.
package preview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/site"
)

const (
	defaultDebounce = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second

	statusPath     = "/_build/status"
	liveReloadPath = "/livereload"
	scriptPath     = "/livereload.js"
	metricsPath    = "/metrics"
)

// Rebuilder is the part of *site.Builder the preview needs.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (*site.Report, error)
	Config() *config.Config
}

// Options configures a preview server.
type Options struct {
	Addr string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// LiveReload injects a script into served pages that reloads them after a rebuild.
	LiveReload bool
	// Debounce is the quiet period after the last change before a rebuild (300ms when zero).
	Debounce time.Duration
	Logger   *slog.Logger
}

// Server is a running preview.
type Server struct {
	builder Rebuilder
	opts    Options
	logger  *slog.Logger
	status  *buildStatus
	hub     *liveReloadHub
	errs    *errors.HTTPErrorAdapter

	rebuildReq chan struct{}
	timerMu    sync.Mutex
	timer      *time.Timer
}

// New creates a preview server for b. Nothing runs until Run.
func New(b Rebuilder, opts Options) *Server {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		builder:    b,
		opts:       opts,
		logger:     logger,
		status:     &buildStatus{},
		hub:        newLiveReloadHub(logger),
		errs:       errors.NewHTTPErrorAdapter(logger),
		rebuildReq: make(chan struct{}, 1),
	}
}

// Run builds the site, serves it on opts.Addr and rebuilds on changes until
// ctx is canceled.
func Run(ctx context.Context, b Rebuilder, opts Options) error {
	return New(b, opts).Run(ctx)
}

// Run builds the site, serves it and watches for changes until ctx is canceled.
// A failing initial build is reported but does not stop the preview.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx, site.TriggerCLI)

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.NetworkError("preview server cannot listen").
			WithCause(err).
			WithContext("name", s.opts.Addr).
			Build()
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Preview server listening", slog.String("url", "http://"+ln.Addr().String()),
		logfields.Path(s.builder.Config().OutputDir))

	watcher, err := newWatcher(s.logger, s.watchDirs())
	if err != nil {
		_ = srv.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.rebuildWorker(workerCtx)
	}()

	err = s.loop(ctx, watcher, serveErr)
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.stopTimer()
	s.hub.shutdown()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		s.logger.Warn("Preview server shutdown error", logfields.Error(serr))
	}
	wg.Wait()
	return err
}

func (s *Server) loop(ctx context.Context, w *watcher, serveErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down preview server")
			return nil
		case err := <-serveErr:
			if stderrors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.NetworkError("preview server stopped").WithCause(err).Build()
		case ev, ok := <-w.events():
			if !ok {
				return nil
			}
			if w.handle(ev) {
				s.trigger()
			}
		case err, ok := <-w.errors():
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) watchDirs() []string {
	cfg := s.builder.Config()
	return []string{cfg.ContentDir, cfg.LayoutDir, cfg.StaticDir}
}

// Handler serves the output directory, the build status and live reload.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(statusPath, s.handleStatus)
	if s.opts.LiveReload {
		mux.Handle(liveReloadPath, s.hub)
		mux.HandleFunc(scriptPath, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = w.Write([]byte(liveReloadScript))
		})
	}
	if s.opts.Metrics != nil {
		mux.Handle(metricsPath, s.opts.Metrics)
	}
	mux.Handle("/", s.fileHandler())
	return mux
}

func (s *Server) fileHandler() http.Handler {
	out := s.builder.Config().OutputDir
	files := http.FileServer(http.Dir(out))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		if p, ok := pagePath(out, r.URL.Path); ok {
			if data, err := os.ReadFile(p); err == nil {
				if s.opts.LiveReload {
					data = injectScript(data)
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(data)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// pagePath maps a request path to a page file of out: "/" is index.html and
// an extensionless path is <slug>.html when that file exists.
func pagePath(out, urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	switch {
	case clean == "/":
		clean = "/index.html"
	case path.Ext(clean) == "":
		clean += ".html"
	case !strings.EqualFold(path.Ext(clean), ".html"):
		return "", false
	}
	p := filepath.Join(out, filepath.FromSlash(clean))
	if fi, err := os.Stat(p); err != nil || fi.IsDir() {
		return "", false
	}
	return p, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.status.snapshot()
	if snap.err != nil {
		s.errs.WriteErrorResponse(w, r, snap.err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap.response)
}
