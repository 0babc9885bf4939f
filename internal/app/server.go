// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"leaddist-service/internal/config"
	"leaddist-service/internal/db"
	agentHandler "leaddist-service/internal/handlers/agent"
	authHandler "leaddist-service/internal/handlers/auth"
	recordHandler "leaddist-service/internal/handlers/record"
	"leaddist-service/internal/middleware"
	"leaddist-service/internal/pkg/jwt"
	"leaddist-service/internal/pkg/lock"
	"leaddist-service/internal/pkg/ratelimit"
	"leaddist-service/internal/pkg/session"
	"leaddist-service/internal/repository/postgres"
	agentUsecase "leaddist-service/internal/service/agent"
	authUsecase "leaddist-service/internal/service/auth"
	distributionUsecase "leaddist-service/internal/service/distribution"
	recordUsecase "leaddist-service/internal/service/record"
	"leaddist-service/internal/service/upload"
	"leaddist-service/internal/service/validation"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger

	pool  *pgxpool.Pool
	redis redis.UniversalClient

	engine      *gin.Engine
	authService *authUsecase.AuthService
}

// NewLogger builds the production logger, or a development one for APP_ENV=development.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, logger: logger, engine: gin.New()}
}

// Connect opens PostgreSQL and Redis.
func (s *Server) Connect(ctx context.Context) error {
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: s.cfg.DatabaseURL, MaxConns: 20})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	s.logger.Info("connected to postgres")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		Addresses: s.cfg.RedisAddrs,
		Password:  s.cfg.RedisPass,
		DB:        s.cfg.RedisDB,
		PoolSize:  10,
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	s.logger.Info("connected to redis", zap.Strings("addrs", s.cfg.RedisAddrs))
	return nil
}

// Close releases storage connections.
func (s *Server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// RosterLock is the redis lock serializing roster and counter changes.
func (s *Server) RosterLock() *lock.RosterLock {
	return lock.NewRosterLock(s.redis, s.cfg.LockTTL, s.cfg.LockWait, s.logger)
}

// AgentService wires the agent use case against postgres.
func (s *Server) AgentService() *agentUsecase.AgentService {
	return agentUsecase.NewAgentService(postgres.NewAgentRepository(s.pool), s.RosterLock(), s.logger)
}

// Wire builds services, handlers and routes. Connect must have succeeded.
func (s *Server) Wire() error {
	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(s.pool)
	adminRepo := postgres.NewAdminRepository(s.pool)
	recordRepo := postgres.NewRecordRepository(s.pool)
	distributionStore := postgres.NewDistributionStore(dbWrapper)

	// ----- Services (Usecases) -----
	limiter := ratelimit.NewLoginLimiter(s.redis, s.cfg.LoginMaxAttempts, s.cfg.LoginWindow)
	authService := authUsecase.NewAuthService(adminRepo, jwtManager, limiter, session.NewDenylist(s.redis), s.logger)
	s.authService = authService

	engine := distributionUsecase.NewEngine(distributionStore, s.RosterLock(), s.logger)
	uploadService := upload.NewUploadService(
		upload.Config{Dir: s.cfg.UploadDir, MaxFileSize: s.cfg.MaxFileSize},
		validation.ForRequiredFields(nil),
		engine,
		s.logger,
	)
	recordService := recordUsecase.NewRecordService(recordRepo, s.logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(authService, s.logger),
		AgentHandler:   agentHandler.NewAgentHandler(s.AgentService(), s.logger),
		RecordHandler:  recordHandler.NewRecordHandler(recordService, uploadService, s.logger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
	}
	SetupRouter(s.engine, s.logger, s.cfg.CORSOrigins, handlers)
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if err := s.initializeSuperAdmin(ctx); err != nil {
		// startup continues; an admin can still register
		s.logger.Error("failed to initialize super admin", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// initializeSuperAdmin creates the configured super admin if it doesn't exist
func (s *Server) initializeSuperAdmin(ctx context.Context) error {
	if s.cfg.SuperAdminEmail == "" {
		s.logger.Info("SUPER_ADMIN_EMAIL not set, skipping super admin bootstrap")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.authService.EnsureSuperAdminExists(ctx, s.cfg.SuperAdminEmail, s.cfg.SuperAdminPassword, s.cfg.SuperAdminName)
}
