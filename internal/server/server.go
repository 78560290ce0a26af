package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/minetrack/apiserver/config"
	"github.com/minetrack/apiserver/internal/auth"
	"github.com/minetrack/apiserver/internal/db"
	"github.com/minetrack/apiserver/internal/handlers"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/mq"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/internal/storage"
	"github.com/minetrack/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	log        logging.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	var publisher services.Publisher
	if queue != nil {
		publisher = queue
	} else {
		log.Info(ctx, "data log publication disabled")
	}

	userRepo := store.NewUserRepository(dbConn)
	equipmentRepo := store.NewEquipmentRepository(dbConn)
	financeRepo := store.NewFinanceRepository(dbConn)
	dataLogRepo := store.NewDataLogRepository(dbConn)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	handlers.Register(router, handlers.Deps{
		Users:     services.NewUserService(userRepo, tokens, objects, log.With("component", "users")),
		Equipment: services.NewEquipmentService(equipmentRepo),
		Finance:   services.NewFinanceService(financeRepo),
		DataLogs:  services.NewDataLogService(dataLogRepo, publisher, log.With("component", "datalogs")),
		Tokens:    tokens,
		Avatars:   objects,
		Log:       log.With("component", "http"),
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.queue != nil {
		if closeErr := s.queue.Close(); closeErr != nil {
			s.log.Warn(ctx, "close broker", "error", closeErr)
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
