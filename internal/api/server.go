// Package api serves the generator, insights and ticket endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rewired-gh/luckylogic/internal/analytics"
	"github.com/rewired-gh/luckylogic/internal/engine"
	"github.com/rewired-gh/luckylogic/internal/jackpot"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/metrics"
	"github.com/rewired-gh/luckylogic/internal/models"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

// Generator is the engine surface the API uses. *engine.Engine implements it.
type Generator interface {
	Generate(ctx context.Context, req engine.Request) (*engine.Result, error)
	Insights(ctx context.Context, history, topN int) (analytics.Insights, error)
	Draws(ctx context.Context, history int) ([]models.Draw, error)
	CheckTicket(ctx context.Context, t models.Ticket) (tickets.Result, error)
}

// TicketRepository stores tickets. *storage.Storage implements it.
type TicketRepository interface {
	Load(ctx context.Context) ([]models.Ticket, error)
	AddTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// JackpotSource looks up the current jackpot. *jackpot.Service implements it.
type JackpotSource interface {
	Live(ctx context.Context) jackpot.Info
}

// Config holds configuration for the API server.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		RequestTimeout: 30 * time.Second,
	}
}

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	addr       string
	timeout    time.Duration

	engine  Generator
	tickets TicketRepository
	jackpot JackpotSource
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewServer creates a server. m may be nil, in which case /metrics is not served.
func NewServer(cfg *Config, gen Generator, repo TicketRepository, jp JackpotSource, m *metrics.Metrics) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	s := &Server{
		router:  chi.NewRouter(),
		addr:    cfg.Addr,
		timeout: cfg.RequestTimeout,
		engine:  gen,
		tickets: repo,
		jackpot: jp,
		metrics: m,
		now:     time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if s.metrics != nil {
		s.router.Use(s.metrics.Instrument)
	}
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))
	s.router.Use(jsonContentType)
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s -> %d in %s (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// jsonContentType rejects request bodies that are not JSON.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves HTTP in a goroutine.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		logger.Info("API server listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
