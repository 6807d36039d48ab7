package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/receipts-insights/internal/async"
	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/dashboard"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/export"
	repo "github.com/joseph-ayodele/receipts-insights/internal/repository"
	"github.com/joseph-ayodele/receipts-insights/internal/server"
	"github.com/joseph-ayodele/receipts-insights/internal/snapshot"
)

func main() {
	// Structured logger without time/level noise
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.Migrate(ctx, db, logger); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Dataset
	datasets := dataset.NewStore(logger)
	if cfg.Ingest.Path != "" {
		if _, err := datasets.LoadFile(ctx, cfg.Ingest.Path); err != nil {
			logger.Error("failed to load dataset", "path", cfg.Ingest.Path, "error", err)
			os.Exit(1)
		}
	}
	if cfg.Ingest.WatchDir != "" {
		go func() {
			err := dataset.Watch(ctx, datasets, dataset.WatchConfig{
				Dir:         cfg.Ingest.WatchDir,
				InitialScan: cfg.Ingest.Path == "",
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("upload watcher stopped", "error", err)
			}
		}()
	}

	// Share pipeline
	builder := snapshot.NewBuilder(
		snapshot.WithDefaultTTL(cfg.Share.DefaultTTL),
		snapshot.WithLogger(logger),
	)
	dashSvc := dashboard.NewService(builder, logger)
	snapshots := repo.NewSnapshotRepository(db, cfg.Share.BaseURL, logger)
	exporter := export.NewService(snapshots, logger)
	queue := async.NewExportQueue(exporter, cfg.Export.Dir, logger,
		async.WithWorkers(cfg.Export.Workers),
		async.WithQueueSize(cfg.Export.QueueSize),
		async.WithProcessTimeout(cfg.Export.JobTimeout),
	)

	if cfg.Share.PurgeInterval > 0 {
		go purgeLoop(ctx, dashboard.NewPublisher(dashSvc, snapshots, logger), cfg.Share.PurgeInterval, logger)
	}

	shareSvc, err := server.NewShareService(datasets, dashSvc, snapshots, exporter, queue, logger)
	if err != nil {
		logger.Error("failed to create share service", "error", err)
		os.Exit(1)
	}

	// gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			server.RequestIDInterceptor(),
			server.LoggingInterceptor(logger),
		),
	)
	server.RegisterShareServiceServer(grpcServer, shareSvc)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		logger.Info("grpc server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

func purgeLoop(ctx context.Context, pub *dashboard.Publisher, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := pub.PurgeExpired(ctx, now)
			if err != nil {
				logger.Warn("purge expired shares failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired shares", "count", n)
			}
		}
	}
}
