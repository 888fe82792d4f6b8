package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/data/runstore"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("server")

// StatusServer exposes run progress and Prometheus metrics while a pipeline
// run is in flight. It is optional; the CLI only starts it when asked.
type StatusServer struct {
	httpServer *http.Server
}

func New(addr string, store runstore.Store) *StatusServer {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/runs/{runID}", func(w http.ResponseWriter, req *http.Request) {
		runID := chi.URLParam(req, "runID")
		run, err := store.GetRun(req.Context(), runID)
		if errors.Is(err, runstore.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("run lookup failed", "run_id", runID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(run); err != nil {
			log.Error("encoding run response failed", "run_id", runID, "error", err)
		}
	})

	return &StatusServer{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start serves in a goroutine; ListenAndServe errors other than graceful
// shutdown are logged, not fatal, since the pipeline is the main act.
func (s *StatusServer) Start() {
	go func() {
		log.Info("status server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("status server stopped", "error", err)
		}
	}()
}

func (s *StatusServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warn("status server shutdown", "error", err)
	}
}
