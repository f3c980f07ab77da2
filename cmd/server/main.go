package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/BolajiAkerele2013/Cookit/docs"
	"github.com/BolajiAkerele2013/Cookit/internal/auth"
	"github.com/BolajiAkerele2013/Cookit/internal/cache"
	"github.com/BolajiAkerele2013/Cookit/internal/config"
	"github.com/BolajiAkerele2013/Cookit/internal/db"
	"github.com/BolajiAkerele2013/Cookit/internal/handler"
	"github.com/BolajiAkerele2013/Cookit/internal/logging"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
	"github.com/BolajiAkerele2013/Cookit/internal/router"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

// @title Startup Ideas API
// @version 1.0
// @description Track startup ideas and the people involved in them.
// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by sign-up or login.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer store.Close()

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := store.Reset(ctx); err != nil {
			log.Fatalf("reset database: %v", err)
		}
	}
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	tokens, err := auth.NewTokenCodec(cfg.TokenScheme, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	credentials, err := auth.NewCredentialScheme(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("credential scheme: %v", err)
	}
	if cfg.TokenScheme == auth.TokenSchemeBase64 {
		logger.Warn("legacy unsigned tokens in use; set TOKEN_SCHEME=jwt outside development")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store.DB())
	ideaRepo := repository.NewIdeaRepository(store.DB())
	roleRepo := repository.NewIdeaRoleRepository(store.DB())

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, credentials)
	userService := service.NewUserService(userRepo, cacheClient)
	ideaService := service.NewIdeaService(ideaRepo, roleRepo, cacheClient)
	roleService := service.NewRoleService(ideaRepo, roleRepo, userRepo, cacheClient)

	var cacheCheck handler.HealthChecker
	if cacheClient.Enabled() {
		cacheCheck = cacheClient
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, authService, router.Handlers{
		Health: handler.NewHealthHandler(store, cacheCheck),
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userService),
		Idea:   handler.NewIdeaHandler(ideaService),
		Role:   handler.NewRoleHandler(roleService),
	})

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info("starting server", "addr", addr, "env", cfg.AppEnv, "db_driver", cfg.DBDriver, "cache", cacheClient.Enabled())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
