package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/metrics"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Classifier is the part of the analyzer the HTTP layer depends on.
type Classifier interface {
	Classify(ctx context.Context, text string, strategy analyzer.Strategy) analyzer.Result
	Catalog() *catalog.Catalog
}

// Options configures a Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// Strategy is used by /classify when the request does not name one.
	Strategy analyzer.Strategy
	Logger   *zap.Logger
}

// Server exposes classification over HTTP.
type Server struct {
	classifier Classifier
	opts       Options
	logger     *zap.Logger
	router     *mux.Router
	now        func() time.Time
}

// New builds a Server with its routes registered. Zero options fall back to
// a no-op logger and the exact strategy.
func New(c Classifier, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Strategy == "" {
		opts.Strategy = analyzer.StrategyExact
	}
	s := &Server{
		classifier: c,
		opts:       opts,
		logger:     opts.Logger,
		router:     mux.NewRouter(),
		now:        time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestID, s.accessLog, s.observe)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/extract", s.handleExtract(analyzer.StrategyExact)).Methods(http.MethodPost)
	s.router.HandleFunc("/extract/fuzzy", s.handleExtract(analyzer.StrategyFuzzy)).Methods(http.MethodPost)
	s.router.HandleFunc("/classify", s.handleClassify).Methods(http.MethodPost)
	s.router.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server exited")
	return nil
}
