package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/authcore/internal/api/grpc/router"
	grpcServer "github.com/dtroode/authcore/internal/api/grpc/server"
	"github.com/dtroode/authcore/internal/api/identity"
	"github.com/dtroode/authcore/internal/api/rest"
	"github.com/dtroode/authcore/internal/config"
	"github.com/dtroode/authcore/internal/diagnostic"
	"github.com/dtroode/authcore/internal/logger"
	"github.com/dtroode/authcore/internal/metrics"
	"github.com/dtroode/authcore/internal/model"
	"github.com/dtroode/authcore/internal/notify"
	"github.com/dtroode/authcore/internal/notify/outbox"
	"github.com/dtroode/authcore/internal/notify/ses"
	"github.com/dtroode/authcore/internal/repository/postgres"
	"github.com/dtroode/authcore/internal/server"
	"github.com/dtroode/authcore/internal/service"
	"github.com/dtroode/authcore/internal/token"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC and HTTP APIs",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	tokenManager, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	dispatcher, err := newDispatcher(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize notification dispatcher", "error", err, "driver", cfg.Notify.Driver)
	}

	fallbackOut, closeFallback, err := openDiagnosticLog(cfg.Diagnostic)
	if err != nil {
		logger.Fatal("failed to open diagnostic log", "error", err, "path", cfg.Diagnostic.LogPath)
	}
	defer closeFallback()
	fallback := diagnostic.NewResetTokenFallback(cfg.Diagnostic.ResetTokenFallback, fallbackOut)
	if cfg.Diagnostic.ResetTokenFallback {
		logger.Warn("reset token fallback is enabled; undelivered tokens are written to the diagnostic log",
			"compiled_in", diagnostic.Available)
	}

	identityRepo := postgres.NewIdentityRepository(db)
	resetWorkflow := service.NewResetWorkflow(
		identityRepo,
		notify.NewInstrumented(dispatcher, cfg.Notify.Driver, m),
		fallback,
		newHasher(cfg),
		service.ResetOptions{TTL: cfg.Reset.TTL, TemplateID: cfg.Reset.Template},
		logger,
	)
	authService := service.NewAuth(identityRepo, tokenManager, resetWorkflow, m, logger)
	tokenService := service.NewTokenService(tokenManager, logger)
	ctxMgr := identity.NewManager()

	grpcRouter := router.New(authService, tokenService, ctxMgr, logger)
	grpcSrv := grpcRouter.Register()
	reflection.Register(grpcSrv)

	servers := []model.Server{
		grpcServer.NewGRPCServer(grpcSrv, fmt.Sprintf(":%s", cfg.GRPC.Port)),
		rest.NewHTTPServer(
			rest.NewRouter(authService, tokenService, ctxMgr, db, metrics.Handler(registry), logger),
			fmt.Sprintf(":%s", cfg.HTTP.Port),
		),
	}

	sl := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logger.Info("authcore started",
		"version", buildVersion,
		"commit", buildCommit,
		"date", buildDate)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	grpcRouter.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}

// newDispatcher builds the notification backend selected by NOTIFY_DRIVER.
func newDispatcher(ctx context.Context, cfg *config.Config) (model.Dispatcher, error) {
	switch cfg.Notify.Driver {
	case config.NotifyDriverSES:
		return ses.New(ctx, ses.Options{
			Region:    cfg.SES.Region,
			From:      cfg.SES.From,
			Endpoint:  cfg.SES.Endpoint,
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
		})
	case config.NotifyDriverOutbox:
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return outbox.New(ctx, minioClient, cfg.Storage.Bucket)
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Notify.Driver)
	}
}

// openDiagnosticLog returns the operator channel for the reset token
// fallback. The file is only opened when the fallback is enabled.
func openDiagnosticLog(cfg config.Diagnostic) (io.Writer, func(), error) {
	noop := func() {}
	if !cfg.ResetTokenFallback {
		return nil, noop, nil
	}
	if cfg.LogPath == "" {
		return os.Stderr, noop, nil
	}

	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, noop, err
	}
	return f, func() { _ = f.Close() }, nil
}
