package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"authgate/internal/config"
	apphttp "authgate/internal/http"
	"authgate/internal/repository/sqlite"
	"authgate/internal/service"
	"authgate/internal/session"
	"authgate/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	// no fallback secret: an unsigned deployment must not start
	if strings.TrimSpace(cfg.Auth.SessionSecret) == "" {
		logger.Fatalf("auth session secret is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		logger.Fatalf("auth token ttl must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	codec := token.NewCodec(cfg.Auth.SessionSecret, ttl)
	cookies := session.NewCookieStore(ttl, cfg.IsProduction())
	authService := service.NewAuthService(userRepo, codec, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, cookies, codec, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (environment %s)", cfg.Server.Addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
