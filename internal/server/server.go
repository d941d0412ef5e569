// Package server provides the HTTP REST API for resume autofill.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/config"
	"github.com/jonathan/ats-autofill/internal/server/middleware"
	"github.com/jonathan/ats-autofill/internal/server/ratelimit"
	"github.com/jonathan/ats-autofill/internal/types"
	"go.uber.org/zap"
)

// maxUploadSize caps multipart resume uploads.
const maxUploadSize = 20 << 20

// CandidateStore persists candidates and their resume parse history.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, form types.CandidateForm) (*types.Candidate, error)
	// GetCandidate returns nil, nil when the candidate does not exist.
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, form types.CandidateForm) (*types.Candidate, error)
	SaveResumeParse(ctx context.Context, rec *types.ResumeParseRecord) error
	ListResumeParses(ctx context.Context, candidateID uuid.UUID) ([]types.ResumeParseRecord, error)
	Close() error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       CandidateStore
	filler      *autofill.Autofiller
	tracker     *autofill.Tracker
	rateLimiter *ratelimit.Limiter
	verifier    *JWTVerifier
	logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port       int
	Store      CandidateStore
	Autofiller *autofill.Autofiller
	Auth       *config.AuthConfig // nil disables token verification
	RateLimit  *ratelimit.Config  // nil loads from the environment
	Logger     *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a candidate store")
	}
	if cfg.Autofiller == nil {
		return nil, fmt.Errorf("server requires an autofiller")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		store:       cfg.Store,
		filler:      cfg.Autofiller,
		tracker:     autofill.NewTracker(),
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		logger:      logger,
	}
	if cfg.Auth != nil {
		s.verifier = NewJWTVerifier(cfg.Auth)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless parsing
	mux.Handle("POST /resume/parse", s.protect(s.handleParseResume))

	// Candidates
	mux.Handle("POST /candidates", s.protect(s.handleCreateCandidate))
	mux.Handle("GET /candidates/{id}", s.protect(s.handleGetCandidate))
	mux.Handle("PUT /candidates/{id}", s.protect(s.handleUpdateCandidate))
	mux.Handle("POST /candidates/{id}/resume", s.protect(s.handleAutofillCandidate))
	mux.Handle("GET /candidates/{id}/resume-parses", s.protect(s.handleListResumeParses))

	port := cfg.Port
	if port == 0 {
		port = config.DefaultPort
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Webhook parsing can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close releases the rate limiter and the store.
func (s *Server) Close() {
	s.rateLimiter.Stop()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close store", zap.Error(err))
	}
}

// protect wraps a handler with token verification when auth is configured.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.verifier == nil {
		return h
	}
	return middleware.AuthMiddleware(s.verifier.AsTokenValidator())(h)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
