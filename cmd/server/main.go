package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sso-backend/internal/config"
	apphttp "sso-backend/internal/http"
	"sso-backend/internal/oauth"
	"sso-backend/internal/repository/sqlite"
	"sso-backend/internal/security"
	"sso-backend/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
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

	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.TokenTTL(),
		Issuer: cfg.Auth.Issuer,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("setup token service: %v", err)
	}

	authService, err := service.NewAuthService(service.Config{
		Users:  userRepo,
		Hasher: security.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("setup auth service: %v", err)
	}

	var provider oauth.ExternalIdentityProvider
	if cfg.GoogleEnabled() {
		google, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			logger.Fatalf("setup google sign-in: %v", err)
		}
		provider = google
		logger.Info("google sign-in enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, provider, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
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
