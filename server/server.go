package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Repository is the durable state behind the REST service.
type Repository interface {
	Ping(ctx context.Context) error
	FindUser(ctx context.Context, email string) (*models.UserAccount, error)
	CreateUser(ctx context.Context, u models.UserAccount) error
	EmailExists(ctx context.Context, email string) (bool, error)
	Users(ctx context.Context) ([]models.UserAccount, error)
	CountAnalyses(ctx context.Context) (int, error)
	SaveAnalysis(ctx context.Context, userID string, r models.AnalysisResult, embedding []float32) error
	History(ctx context.Context, userID string, limit int) ([]models.AnalysisResult, error)
	Related(ctx context.Context, id string, limit int) ([]models.AnalysisResult, error)
}

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type Config struct {
	Addr           string
	RequestTimeout time.Duration
	// HashCost is the bcrypt cost for new accounts; 0 uses the default.
	HashCost     int
	HistoryLimit int
	RelatedLimit int
}

// Server exposes the persistence contract the CLI's remote store consumes.
// Cache and Embedder are optional.
type Server struct {
	config   Config
	repo     Repository
	cache    StatsCache
	embedder Embedder
	log      *logging.Logger
	jitter   func() float64
}

type Option func(*Server)

func WithStatsCache(c StatsCache) Option {
	return func(s *Server) { s.cache = c }
}

func WithEmbedder(e Embedder) Option {
	return func(s *Server) { s.embedder = e }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l.With("server") }
}

// WithJitter replaces the random revenue jitter used by the stats aggregate.
func WithJitter(fn func() float64) Option {
	return func(s *Server) { s.jitter = fn }
}

func New(config Config, repo Repository, opts ...Option) *Server {
	if config.Addr == "" {
		config.Addr = ":3001"
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.HistoryLimit == 0 {
		config.HistoryLimit = 10
	}
	if config.RelatedLimit == 0 {
		config.RelatedLimit = 5
	}

	s := &Server{
		config: config,
		repo:   repo,
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler with every route mounted under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.config.RequestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/signup", s.handleSignup)
			r.Get("/exists", s.handleEmailExists)
		})

		r.Get("/admin/stats", s.handleStats)

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/", s.handleSaveAnalysis)
			r.Get("/history", s.handleHistory)
			r.Get("/{id}/related", s.handleRelated)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.RequestTimeout,
		WriteTimeout: s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.config.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("Graceful shutdown failed")
		return srv.Close()
	}
	s.log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
