package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// Network is the subset of [network.Client] the server uses.
type Network interface {
	Owner(ctx context.Context, login string) (*github.Owner, error)
	Repository(ctx context.Context, owner, name string) (*github.Repository, error)
	ListPackages(ctx context.Context, repo *github.Repository) ([]network.Package, error)
	DependentsCount(ctx context.Context, repo *github.Repository, packageID string) (int64, error)
	ListDependents(ctx context.Context, repo *github.Repository, opts network.ScanOptions) (*network.Scan, error)
}

var _ Network = (*network.Client)(nil)

// Server is the ghnet HTTP service.
type Server struct {
	net      Network
	store    store.Store
	logger   *log.Logger
	maxPages int
	router   chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithStore enables the snapshot routes and ?save=true.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxPages caps the pages a single dependents request may read.
// Requests may ask for fewer but never more. 0 means no cap.
func WithMaxPages(n int) Option {
	return func(s *Server) { s.maxPages = n }
}

// New creates a server answering from n.
func New(n Network, opts ...Option) *Server {
	s := &Server{net: n, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNoRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNoRoute)
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/owners/{login}", s.handleOwner)

		r.Route("/repos/{owner}/{repo}", func(r chi.Router) {
			r.Get("/packages", s.handlePackages)
			r.Get("/dependents/count", s.handleCount)
			r.Get("/dependents", s.handleDependents)
			r.Get("/snapshots", s.handleListSnapshots)
		})

		r.Route("/snapshots/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSnapshot)
			r.Delete("/", s.handleDeleteSnapshot)
			r.Get("/diff", s.handleDiff)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
