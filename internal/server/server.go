package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dnchinmayee/Text-retriving/internal/logger"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

const (
	maxBodyBytes = 32 << 20
	maxBatch     = 256
)

type Server struct {
	engine  *metrics.Engine
	metrics *telemetry.Metrics
	log     *slog.Logger
	workers int
}

func New(engine *metrics.Engine, m *telemetry.Metrics, log *slog.Logger, workers int) *Server {
	return &Server{engine: engine, metrics: m, log: logger.OrDiscard(log), workers: workers}
}

type scoreRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type batchRequest struct {
	Documents []scoreRequest `json:"documents"`
}

type scoreResponse struct {
	ID     string          `json:"id"`
	Record *metrics.Record `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/v1/columns", s.handleColumns)
	r.Post("/v1/metrics", s.handleScore)
	r.Post("/v1/metrics/batch", s.handleBatch)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleColumns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"columns": metrics.Columns})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	started := time.Now()
	rec, err := s.engine.Score(metrics.Document{ID: req.ID, Text: req.Text})
	s.metrics.Scored(time.Since(started))
	if err != nil {
		s.metrics.Document(telemetry.StatusDegenerate)
		writeJSON(w, http.StatusUnprocessableEntity, scoreResponse{ID: req.ID, Error: err.Error()})
		return
	}
	s.metrics.Document(telemetry.StatusScored)
	writeJSON(w, http.StatusOK, scoreResponse{ID: req.ID, Record: &rec})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if len(req.Documents) > maxBatch {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "too many documents"})
		return
	}

	docs := make([]metrics.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = metrics.Document{ID: d.ID, Text: d.Text}
	}
	outcomes, err := s.engine.ScoreBatch(r.Context(), docs, s.workers)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	resp := make([]scoreResponse, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed() {
			s.metrics.Document(telemetry.StatusDegenerate)
		} else {
			s.metrics.Document(telemetry.StatusScored)
		}
		resp = append(resp, scoreResponse{ID: o.ID, Record: o.Record, Error: o.Reason()})
	}
	writeJSON(w, http.StatusOK, map[string][]scoreResponse{"results": resp})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
