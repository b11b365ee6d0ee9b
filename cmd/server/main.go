package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventboard/config"
	_ "eventboard/docs"
	"eventboard/internal/adapters/auth"
	"eventboard/internal/adapters/email"
	deliveryhttp "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

const shutdownTimeout = 10 * time.Second

// @title eventboard API
// @version 1.0
// @description Accounts, profiles and event listings for the eventboard app.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	accountRepo := postgres.NewAccountRepository(db)
	refreshRepo := postgres.NewRefreshTokenRepository(db)
	codeRepo := postgres.NewVerificationCodeRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	jwt := auth.NewJWT(cfg.JWTSecret)
	authService := services.NewAuthService(accountRepo, refreshRepo, codeRepo,
		auth.NewBcryptHasher(auth.DefaultBcryptCost), jwt, emailService,
		services.AuthConfig{
			AccessTokenExpiry:        cfg.JWTExpiry,
			RefreshTokenExpiry:       cfg.RefreshTokenExpiry,
			RequireEmailConfirmation: cfg.RequireEmailConfirmation,
			VerifyURL:                cfg.AppBaseURL + "/auth/verify",
		}, logger)
	eventService := services.NewEventService(eventRepo, cfg.RequestTimeout)
	profileService := services.NewProfileService(profileRepo, accountRepo)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:    controllers.NewAuthController(logger, authService),
		Event:   controllers.NewEventController(logger, eventService),
		Profile: controllers.NewProfileController(logger, profileService),
	}, jwt, logger)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
