package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"interview-coach/internal/application"
)

// maxUploadBytes caps one recorded answer.
const maxUploadBytes = 25 << 20

// TurnService is the slice of the coach the HTTP surface drives.
type TurnService interface {
	Turn(ctx context.Context, sessionID string, audio []byte) (*application.TurnResult, error)
	Reset(sessionID string)
	SetContext(sessionID string, ic application.InterviewContext)
}

type Options struct {
	// RateLimit is requests per minute per client on the interview routes;
	// zero disables limiting.
	RateLimit int
	Metrics   http.Handler
	Signaling http.Handler
}

type Server struct {
	coach  TurnService
	opts   Options
	logger *slog.Logger
}

func NewServer(coach TurnService, opts Options, logger *slog.Logger) *Server {
	return &Server{
		coach:  coach,
		opts:   opts,
		logger: logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/interview", func(ir chi.Router) {
		if s.opts.RateLimit > 0 {
			ir.Use(NewRateLimiter(s.opts.RateLimit, time.Minute).Middleware)
		}
		ir.Post("/turn", s.handleTurn)
		ir.Post("/reset", s.handleReset)
		ir.Post("/context", s.handleContext)
		ir.Post("/upload-context", s.handleUploadContext)
	})

	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	if s.opts.Signaling != nil {
		r.Method(http.MethodGet, "/signal", s.opts.Signaling)
	}

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}
