// Package dashboard serves the health data explorer over HTTP. Every control
// change is a request: the handler reads the session dataset, runs the
// pipeline once, and renders the result.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KaramelBytes/pulseboard/internal/ingest"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
	"github.com/KaramelBytes/pulseboard/internal/render"
)

// Title is shown on every page.
const Title = "Apple Watch Smart Data Explorer"

// Config contains configuration options for the dashboard server.
type Config struct {
	Address        string
	MaxUploadBytes int64
	PreviewRows    int
	CacheEntries   int
	SessionTTL     time.Duration
	Render         render.Options
	AssetsHost     string
	// Templates overrides the embedded page templates.
	Templates TemplateProvider
}

// Server handles the HTTP interface of the dashboard.
type Server struct {
	cfg       Config
	store     *Store
	cache     *ingest.Cache
	templates TemplateProvider
	server    *http.Server
}

// NewServer creates a dashboard server with the provided configuration.
func NewServer(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	tp := cfg.Templates
	if tp == nil {
		tp = NewEmbeddedTemplateProvider(nil, "")
	}
	s := &Server{
		cfg:       cfg,
		store:     NewStore(cfg.SessionTTL),
		cache:     ingest.NewCache(cfg.CacheEntries),
		templates: tp,
	}
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/sample", s.handleSample)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/explore", s.handleExplore)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/healthz", s.handleHealth)
	return logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting dashboard on %s", s.cfg.Address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	go s.sweepSessions(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("dashboard shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			monitoring.Logf("dashboard force close error: %v", err)
		}
	}
	return nil
}

func (s *Server) sweepSessions(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	interval := s.cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(); n > 0 {
				monitoring.Debugf("dashboard: evicted %d idle sessions", n)
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		monitoring.Debugf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Millisecond))
	})
}
