package devserver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Config controls the development server.
type Config struct {
	Addr     string
	BasePath string
	// Latency is the upper bound of a random delay added to every request.
	Latency time.Duration
}

// NewRouter builds the HTTP handler serving store under cfg.BasePath.
func NewRouter(store *Store, cfg Config) http.Handler {
	if cfg.BasePath == "" {
		cfg.BasePath = catalog.DefaultCatalogPath
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger)

	if cfg.Latency > 0 {
		router.Use(randomLatency(cfg.Latency))
	}

	NewHandler(store).RegisterRoutes(router, cfg.BasePath)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, store *Store, cfg Config) error {
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	return Serve(ctx, listener, store, cfg)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, listener net.Listener, store *Store, cfg Config) error {
	srv := &http.Server{
		Handler:           NewRouter(store, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.Infof("Serving %d products on http://%s%s", store.Len(), listener.Addr(), cfg.BasePath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqID := middleware.GetReqID(r.Context())
		if reqID != "" {
			ww.Header().Set(catalog.RequestIDHeader, reqID)
		}

		next.ServeHTTP(ww, r)

		logger.Log.Debugf("devserver %s %s -> %d in %s (request_id=%s)",
			r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start).Round(time.Millisecond), reqID)
	})
}

func randomLatency(upTo time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			delay := time.Duration(rand.Int64N(int64(upTo)))

			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
