package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/shopbase/internal/config"
	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/module/address"
	"github.com/simp-lee/shopbase/internal/module/auth"
	"github.com/simp-lee/shopbase/internal/module/category"
	"github.com/simp-lee/shopbase/internal/module/image"
	"github.com/simp-lee/shopbase/internal/module/order"
	"github.com/simp-lee/shopbase/internal/module/product"
	"github.com/simp-lee/shopbase/internal/module/purchasedproduct"
	"github.com/simp-lee/shopbase/internal/module/user"
	"github.com/simp-lee/shopbase/internal/repository"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	tokens jwt.Service
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// newHTTPServer bounds reading a request and writing its response by timeout.
var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

var newTokenService = func(secret string) (jwt.Service, error) {
	return jwt.New(secret)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, database, the repository registry, every module's
// service, handler and routes, and the global middleware chain.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := repository.Migrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. Token service.
	secret, err := resolveJWTSecret(cfg.Server.Mode, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	if secret != cfg.Auth.JWTSecret {
		log.Warn("no jwt_secret configured, using random secret in non-release mode (tokens are lost on restart)")
	}
	tokens, err := newTokenService(secret)
	if err != nil {
		return nil, fmt.Errorf("setup token service: %w", err)
	}
	defer func() {
		if !success {
			tokens.Close()
		}
	}()

	// 5. Manual dependency injection: registry → service → handler → module.
	reg, err := repository.NewRegistry(db, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup repositories: %w", err)
	}
	public, secured := buildModules(cfg, reg, tokens)

	// 6. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.MaxMultipartMemory = int64(cfg.Upload.MaxFileSizeMB) << 20

	// In release mode, when no allowlist is configured, default to deny cross-origin requests.
	corsConfig := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)

	chain := []gin.HandlerFunc{
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		chain = append(chain, middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   rl.RPS,
			Burst: rl.Burst,
		}))
	}
	engine.Use(chain...)

	// 7. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Public:  public,
		Secured: secured,
		Tokens:  tokens,
		DB:      db,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		tokens: tokens,
		cfg:    cfg,
	}, nil
}

// buildModules wires every module over reg. Public modules are mounted
// without authentication.
func buildModules(cfg *config.Config, reg *repository.Registry, tokens jwt.Service) (public, secured []Module) {
	userSvc := user.NewService(reg, tokens, user.Options{
		TokenTTL:   cfg.Auth.TokenTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
	})
	imageSvc := image.NewService(reg, image.NewDisk(cfg.Upload.Dir), image.Options{
		MaxProductImages: cfg.Upload.MaxProductImages,
	})

	public = []Module{
		auth.NewModule(auth.NewHandler(auth.NewService(userSvc))),
	}
	secured = []Module{
		user.NewModule(user.NewHandler(userSvc)),
		address.NewModule(address.NewHandler(address.NewService(reg))),
		category.NewModule(category.NewHandler(category.NewService(reg))),
		product.NewModule(product.NewHandler(product.NewService(reg))),
		purchasedproduct.NewModule(purchasedproduct.NewHandler(purchasedproduct.NewService(reg))),
		order.NewModule(order.NewHandler(order.NewService(reg))),
		image.NewModule(image.NewHandler(imageSvc, int64(cfg.Upload.MaxFileSizeMB)<<20)),
	}
	return public, secured
}

// resolveJWTSecret returns the configured secret, or a random one outside
// release mode.
func resolveJWTSecret(mode, secret string) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("jwt_secret is required in release mode")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func resolveCORSConfig(mode string, configured config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(configured.AllowMethods) > 0 {
		corsConfig.AllowMethods = configured.AllowMethods
	}
	if len(configured.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = configured.AllowHeaders
	}
	corsConfig.AllowCredentials = configured.AllowCredentials
	if configured.MaxAge != "" {
		if d, err := time.ParseDuration(configured.MaxAge); err == nil {
			corsConfig.MaxAge = middleware.MaxAgeSeconds(d)
		}
	}

	if len(configured.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = configured.AllowOrigins
		return corsConfig
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout, then releases the
// token service and the database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, a.cfg.Server.RequestTimeout())

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.tokens != nil {
		a.tokens.Close()
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log().Error("database close error", slog.Any("error", err))
			} else {
				a.log().Info("database connection closed")
			}
		}
	}

	a.log().Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
