package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/domain"
)

// ABTestService is the engine surface the handlers need.
type ABTestService interface {
	GetVariantAssignment(ctx context.Context, formName, fieldName, sessionID string) abtest.VariantAssignment
	TrackTestEvent(ctx context.Context, in abtest.TrackEventInput) error
	CreateTest(ctx context.Context, in domain.NewTest) (*domain.Test, error)
	UpdateTestStatus(ctx context.Context, testID string, status domain.TestStatus) error
	GetTestStatistics(ctx context.Context, testID string) (*domain.TestStatistics, error)
	ListTests(ctx context.Context) []*domain.Test
	GetTestDetails(ctx context.Context, testID string) (*abtest.TestDetails, error)
}

// Config holds server-specific configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	AdminTokens     []string
}

type Server struct {
	router          chi.Router
	port            int
	shutdownTimeout time.Duration
	svc             ABTestService
	admin           *adminAuth
	logger          *zap.Logger
}

func NewServer(cfg Config, svc ABTestService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		router:          chi.NewRouter(),
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
		svc:             svc,
		admin:           newAdminAuth(cfg.AdminTokens),
		logger:          logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/ab-tests", func(r chi.Router) {
		// Public, called by the website on every form render.
		r.Get("/assignment", s.handleGetAssignment)
		r.Post("/events", s.handleTrackEvent)

		r.With(s.admin.require("list tests")).Get("/", s.handleListTests)
		r.With(s.admin.require("create tests")).Post("/", s.handleCreateTest)
		r.With(s.admin.require("view test details")).Get("/{id}", s.handleGetTestDetails)
		r.With(s.admin.require("update test status")).Post("/{id}/status", s.handleUpdateTestStatus)
		r.With(s.admin.require("view test statistics")).Get("/{id}/stats", s.handleGetTestStats)
	})

	r.With(s.admin.require("view test statistics")).Get("/admin/ab-tests/{id}", s.handleStatsPage)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
