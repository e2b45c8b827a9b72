// The auth service authenticates users with email/password or biometric key
// credentials and issues signed access tokens.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/biolocklabs/biolock-api/services/auth-service/internal/config"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/handler"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/repository"
	"github.com/biolocklabs/biolock-api/services/auth-service/internal/usecase"
	"github.com/biolocklabs/biolock-api/shared/auth"
	"github.com/biolocklabs/biolock-api/shared/health"
	"github.com/biolocklabs/biolock-api/shared/mailer"
	"github.com/biolocklabs/biolock-api/shared/registry"
	"github.com/biolocklabs/biolock-api/shared/security"
	"github.com/biolocklabs/biolock-api/shared/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "auth-service").Logger()

	cfg := config.Load(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Mongo.Database)
	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	tokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)

	hasher := security.NewArgon2Hasher(cfg.Hash.TimeCost)
	accessTokenAuth := auth.NewJWTAuthenticator(
		cfg.Token.AccessTokenSecret,
		cfg.Token.Issuer,
		cfg.Token.AccessTokenExpiresIn,
	)
	resetTokenAuth := auth.NewJWTAuthenticator(
		cfg.Token.PasswordResetTokenSecret,
		cfg.Token.Issuer,
		cfg.Token.PasswordResetTokenExpiresIn,
	)

	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, accessTokenAuth, cfg)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		tokenRepo,
		resetTokenAuth,
		hasher,
		mailer.NewMailer(&logger),
		cfg,
	)

	validate, err := validator.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	authHandler := handler.NewAuthHTTPHandler(
		authUsecase,
		passwordResetUsecase,
		accessTokenAuth,
		resetTokenAuth,
		validate,
		&logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           authHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthServer := health.NewServer()
	healthListener, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.HealthAddr).Msg("failed to listen on health address")
	}
	go func() {
		if err := healthServer.Serve(healthListener); err != nil {
			logger.Error().Err(err).Msg("health server stopped")
		}
	}()

	if cfg.Consul.Address != "" {
		registrar, err := registry.NewConsulRegistrar(cfg.Consul.Address, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create consul registrar")
		}

		svc := registry.Service{
			ID:         cfg.ServiceName + "-" + cfg.Consul.AdvertiseAddress,
			Name:       cfg.ServiceName,
			Address:    cfg.Consul.AdvertiseAddress,
			HealthPort: cfg.Consul.HealthPort,
		}
		if err := registrar.Register(svc); err != nil {
			logger.Fatal().Err(err).Msg("failed to register with consul")
		}
		defer func() {
			if err := registrar.Deregister(svc.ID); err != nil {
				logger.Error().Err(err).Msg("failed to deregister from consul")
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("auth service listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	healthServer.SetServing(false)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down http server")
	}

	healthServer.Stop()
}
