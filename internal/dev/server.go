package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cannon-dev/cannon/internal/artifacts"
	"github.com/cannon-dev/cannon/internal/batch"
	"github.com/cannon-dev/cannon/internal/build"
	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/internal/metrics"
	"github.com/cannon-dev/cannon/pkg/router"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server output (default: slog.Default()).
	Logger *slog.Logger

	// Metrics is served on /metrics (default: a fresh set).
	Metrics *metrics.Metrics

	// OnRebuild is called after every regeneration of the batch.
	OnRebuild func(result *build.Result, err error)
}

// Server regenerates the project's routers when artifacts or definitions
// change and serves the latest documents.
type Server struct {
	config     *config.Config
	options    ServerOptions
	logger     *slog.Logger
	metrics    *metrics.Metrics
	builder    *build.Builder
	store      *artifacts.Store
	watcher    *Watcher
	events     *EventHub
	changeCh   chan Change
	httpServer *http.Server

	mu      sync.RWMutex
	docs    map[string]*router.Document
	lastErr error
	built   time.Time
	running bool
}

// NewServer creates a new development server.
func NewServer(ctx context.Context, options ServerOptions) (*Server, error) {
	cfg := options.Config

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := options.Metrics
	if m == nil {
		m = metrics.New()
	}

	builder, store, err := build.NewFromConfig(ctx, cfg, build.Options{
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    CollectWatchPaths(cfg),
		Interval: cfg.PollInterval(),
	})

	return &Server{
		config:  cfg,
		options: options,
		logger:  logger,
		metrics: m,
		builder: builder,
		store:   store,
		watcher: watcher,
		events:  NewEventHub(),
		docs:    make(map[string]*router.Document),
	}, nil
}

// Handler returns the HTTP API of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/healthz", s.handleHealth)
	r.Get("/routers", s.handleList)
	r.Get("/routers/{name}", s.handleSource)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/_cannon/events", s.events.HandleWebSocket)

	return r
}

// Events returns the event hub.
func (s *Server) Events() *EventHub {
	return s.events
}

// Start regenerates the batch, then watches for changes and serves the
// API until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	_ = s.Rebuild(ctx)

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	srv := &http.Server{
		Addr:              s.config.DevAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("dev server running", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		if err != nil {
			s.Stop()
			return errors.New("E162").Wrap(err).WithDetail("listening on " + s.config.DevAddress())
		}
		return nil
	}
}

// Stop stops the watcher, closes subscribers and shuts the HTTP server down.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	httpServer := s.httpServer
	s.mu.Unlock()

	s.watcher.Stop()
	s.events.Close()

	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			s.logger.Debug("change detected", "path", change.Path, "type", change.Type)
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					s.logger.Debug("change detected", "path", next.Path, "type", next.Type)
				default:
					draining = false
				}
			}
			_ = s.Rebuild(ctx)
		}
	}
}

// Rebuild loads the definition file and regenerates every router. On
// failure the previously generated documents stay served.
func (s *Server) Rebuild(ctx context.Context) error {
	s.store.Invalidate()

	result, err := s.rebuild(ctx)
	if s.options.OnRebuild != nil {
		s.options.OnRebuild(result, err)
	}

	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		routerName := ""
		var rerr *build.RouterError
		if stderrors.As(err, &rerr) {
			routerName = rerr.Router
		}
		ce := errors.FromError(err, "E107")
		s.logger.Error("regeneration failed", "router", routerName, "code", ce.Code, "error", ce.FormatCompact())
		s.events.NotifyError(routerName, ce.FormatCompact())
		return err
	}

	docs := make(map[string]*router.Document, len(result.Routers))
	for _, r := range result.Routers {
		docs[r.Document.Name] = r.Document
	}

	s.mu.Lock()
	previous := s.docs
	s.docs = docs
	s.lastErr = nil
	s.built = time.Now()
	s.mu.Unlock()

	for _, r := range result.Routers {
		doc := r.Document
		if old, ok := previous[doc.Name]; ok && old.Checksum == doc.Checksum {
			continue
		}
		s.logger.Info("router generated", "router", doc.Name, "selectors", doc.Selectors, "path", r.Outputs[0].Location)
		s.events.NotifyGenerated(doc.Name, doc.Checksum)
	}
	return nil
}

func (s *Server) rebuild(ctx context.Context) (*build.Result, error) {
	defs, err := batch.Load(s.config.DefinitionsPath())
	if err != nil {
		return nil, err
	}

	reqs := make([]router.Request, len(defs))
	for i, def := range defs {
		reqs[i] = def.Request()
	}
	return s.builder.Build(ctx, reqs)
}

// Document returns the latest document of the named router.
func (s *Server) Document(name string) (*router.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[name]
	return doc, ok
}

type routerSummary struct {
	Name      string   `json:"name"`
	Variant   string   `json:"variant"`
	Selectors int      `json:"selectors"`
	Depth     int      `json:"depth"`
	Checksum  string   `json:"checksum"`
	Modules   []string `json:"modules"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Routers int    `json:"routers"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := healthResponse{Status: "ok", Routers: len(s.docs)}
	if s.lastErr != nil {
		resp.Status = "error"
		resp.Error = s.lastErr.Error()
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]routerSummary, 0, len(s.docs))
	for _, doc := range s.docs {
		modules := make([]string, len(doc.Modules))
		for i, m := range doc.Modules {
			modules[i] = m.Name
		}
		list = append(list, routerSummary{
			Name:      doc.Name,
			Variant:   doc.Variant,
			Selectors: doc.Selectors,
			Depth:     doc.Depth,
			Checksum:  doc.Checksum,
			Modules:   modules,
		})
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".g.sol")

	doc, ok := s.Document(name)
	if !ok {
		http.Error(w, "router not found", http.StatusNotFound)
		return
	}

	etag := `"` + doc.Checksum + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc.Source))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
