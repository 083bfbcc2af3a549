// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gurkanbulca/todoapp/internal/config"
	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/logger"
	"github.com/gurkanbulca/todoapp/internal/middleware"
	"github.com/gurkanbulca/todoapp/internal/server"
	"github.com/gurkanbulca/todoapp/internal/service"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}

	logg, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal("Failed to build logger", "err", err)
	}

	if err := run(cfg, logg); err != nil {
		logg.Fatal("Server stopped", "err", err)
	}
}

func run(cfg *config.Config, logg *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info("Connecting to database", "driver", cfg.Database.Driver)
	db, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error("Failed to close database connection", "err", err)
		}
	}()

	if cfg.Server.AutoMigrate {
		logg.Info("Running auto migration")
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	media := storage.NewLocal(cfg.Storage.MediaRoot)
	mailer := newMailer(ctx, cfg, logg)

	tokens := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)
	passwords := auth.NewPasswordManager(cfg.PasswordPolicy())

	services := server.Services{
		Accounts: service.NewAccountService(db, tokens, passwords, mailer, media, logg),
		Todos: service.NewTodoService(db, media, logg, service.TodoOptions{
			Location:    cfg.Location(),
			PageSize:    cfg.App.TodosPerPage,
			RecentLimit: cfg.App.RecentTodoLimit,
		}),
		Tags:        service.NewTagService(db, logg, cfg.App.TagsPerPage),
		Attachments: service.NewAttachmentService(db, media, logg),
		Contact:     service.NewContactService(mailer, cfg.Email.ContactRecipient, logg),
	}

	httpServer := server.New(services, db, logg, server.Options{
		Addr:          ":" + cfg.Server.HTTPPort,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	})

	metadataExtractor := middleware.NewMetadataExtractorInterceptor()
	loggingInterceptor := middleware.NewLoggingInterceptor(logg)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(metadataExtractor.Unary(), loggingInterceptor.Unary()),
		grpc.ChainStreamInterceptor(metadataExtractor.Stream(), loggingInterceptor.Stream()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Server.EnableReflection {
		reflection.Register(grpcServer)
		logg.Warn("gRPC reflection enabled (disable in production)")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errChan := make(chan error, 2)
	go func() {
		logg.Info("gRPC health server listening", "port", cfg.Server.GRPCPort)
		if err := grpcServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	httpServer.Start(errChan)

	go probeDatabase(ctx, db, healthServer, cfg.Server.HealthProbeInterval, logg)

	serveErr := awaitStop(ctx, errChan)
	if serveErr != nil {
		logg.Error("Server failed", "err", serveErr)
	} else {
		logg.Info("Shutting down")
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("HTTP shutdown failed", "err", err)
	}
	grpcServer.GracefulStop()
	logg.Info("Shutdown complete")
	return serveErr
}

// awaitStop blocks until ctx is cancelled or a server reports a serve failure.
// It returns that failure, or nil for a requested shutdown.
func awaitStop(ctx context.Context, errChan <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

func newMailer(ctx context.Context, cfg *config.Config, logg *log.Logger) email.EmailService {
	if cfg.Email.TestingMode {
		logg.Info("Using mock email service")
		return email.NewMockEmailService()
	}

	smtpService := email.NewSMTPEmailService(cfg.ToEmailConfig())
	if err := smtpService.TestConnection(ctx); err != nil {
		logg.Warn("SMTP connection test failed", "err", err)
	}
	return smtpService
}

// probeDatabase keeps the gRPC health status in step with database reachability.
func probeDatabase(ctx context.Context, db *database.DB, hs *health.Server, interval time.Duration, logg *log.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := db.Ping(pingCtx)
			cancel()

			switch {
			case err != nil && serving:
				logg.Warn("Database unreachable, reporting NOT_SERVING", "err", err)
				hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				serving = false
			case err == nil && !serving:
				logg.Info("Database reachable again")
				hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
				serving = true
			}
		}
	}
}
