package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"greekgeeks/internal/api"
	"greekgeeks/internal/api/handlers"
	"greekgeeks/internal/api/middleware"
	"greekgeeks/internal/pkg/logger"
	"greekgeeks/internal/platform/audit"
	"greekgeeks/internal/platform/auth"
	"greekgeeks/internal/platform/authz"
	"greekgeeks/internal/platform/config"
	"greekgeeks/internal/platform/database"
	"greekgeeks/internal/platform/mailer"
	"greekgeeks/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	rankRepo := repositories.NewRankRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	verifier := auth.NewVerificationService(cfg.Verification)
	dispatcher := mailer.NewDispatcher(mailer.New(cfg.Email), cfg.Email.SendTimeout)
	auditLog := audit.NewLogger(db)
	checker := authz.NewChecker(orgRepo)

	deps := &api.Dependencies{
		AuthHandler:            handlers.NewAuthHandler(userRepo, tokenSvc),
		UserHandler:            handlers.NewUserHandler(userRepo, notifRepo, verifier, dispatcher, checker),
		NotificationHandler:    handlers.NewNotificationHandler(notifRepo, checker),
		OrganizationHandler:    handlers.NewOrganizationHandler(orgRepo, checker),
		MemberHandler:          handlers.NewMemberHandler(orgRepo, notifRepo, auditLog, checker),
		ContactHandler:         handlers.NewContactHandler(contactRepo, rankRepo, auditLog, checker),
		RankHandler:            handlers.NewRankHandler(rankRepo, auditLog, checker),
		RequestHandler:         handlers.NewRequestHandler(requestRepo, orgRepo, userRepo, notifRepo, auditLog, checker),
		AuditHandler:           handlers.NewAuditHandler(auditLog, checker),
		HealthHandler:          handlers.NewHealthHandler(db),
		AuthMiddleware:         middleware.NewAuthMiddleware(tokenSvc),
		OrganizationMiddleware: middleware.NewOrganizationMiddleware(orgRepo),
		RateLimiter:            middleware.NewRateLimiter(middleware.IPAddressKeyFunc, cfg.RateLimit.PublicPerMinute, cfg.RateLimit.Burst),
		CORS:                   cfg.CORS,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := dispatcher.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("pending emails were not delivered")
	}
}
