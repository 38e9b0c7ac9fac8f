package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pots-api/internal/config"
	"github.com/go-pots-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-pots-api/internal/infrastructure/jwt"
	s3infra "github.com/go-pots-api/internal/infrastructure/s3"
	"github.com/go-pots-api/internal/infrastructure/smtp"
	"github.com/go-pots-api/internal/infrastructure/sns"
	"github.com/go-pots-api/internal/pkg/logging"
	transporthttp "github.com/go-pots-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	logging.SetupJSON(slog.LevelInfo)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Login and register cannot issue tokens without the signing keys.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider unavailable", "err", err)
		os.Exit(1)
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender is optional; transfer alerts are best-effort.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		slog.Warn("sns sender not available", "err", err)
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	potRepo := dynamo.NewPotRepo(dynamoClient, cfg.DynamoTables.Pots)
	txnRepo := dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions)
	transactor := dynamo.NewTransactor(dynamoClient)

	deps := &transporthttp.Deps{
		UserRepo:        userRepo,
		PotRepo:         potRepo,
		TransactionRepo: txnRepo,
		TicketRepo:      dynamo.NewTicketRepo(dynamoClient, cfg.DynamoTables.Tickets),
		Store:           dynamo.NewStore(userRepo, potRepo, txnRepo, transactor),
		S3Store:         s3Store,
		Mailer:          mailer,
		SMSSender:       smsSender,
		JWTProvider:     jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
