// Command simulator serves product openings over gRPC and exposes Prometheus
// metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
	"github.com/Tinuva88/TCGFun/internal/config"
	"github.com/Tinuva88/TCGFun/internal/draw"
	"github.com/Tinuva88/TCGFun/internal/observability"
	"github.com/Tinuva88/TCGFun/internal/server"
	"github.com/Tinuva88/TCGFun/internal/simulator"
	"github.com/Tinuva88/TCGFun/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	catalogSource := flag.String("catalog", "content", "catalog source: content (YAML files) or postgres")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "simulator")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	lifecycle := server.NewLifecycle(logger)

	var (
		provider catalog.Provider
		pool     *postgres.Pool
	)
	switch *catalogSource {
	case "content":
		sets, err := catalog.LoadSets(cfg.Content.SetsDir)
		if err != nil {
			logger.Fatal("loading content", zap.Error(err))
		}
		reg, err := catalog.NewRegistry(sets...)
		if err != nil {
			logger.Fatal("building catalog", zap.Error(err))
		}
		provider = reg
		logger.Info("catalog loaded from content", zap.Int("sets", len(sets)), zap.String("dir", cfg.Content.SetsDir))
	case "postgres":
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		provider = postgres.NewCatalogRepository(pool.DB())
		logger.Info("catalog served from postgres", zap.String("host", cfg.Database.Host))
	default:
		logger.Fatal("unknown catalog source", zap.String("catalog", *catalogSource))
	}

	metrics := observability.NewMetrics()
	opts := []simulator.Option{
		simulator.WithLogger(logger),
		simulator.WithMetrics(metrics),
		simulator.WithEngine(draw.NewEngine(
			draw.WithLogger(logger.Named("draw")),
			draw.WithSlotAttempts(cfg.Simulator.SlotRetries),
		)),
	}
	if cfg.Simulator.RecordCollection {
		var store collection.Store = collection.NewMemory()
		if pool != nil {
			store = postgres.NewCollectionRepository(pool.DB())
		}
		opts = append(opts, simulator.WithCollection(store, cfg.Simulator.DefaultOwner))
	}
	svc := simulator.NewService(provider, opts...)

	grpcServer := grpc.NewServer()
	simulator.NewGRPCServer(svc, logger).Register(grpcServer)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.Simulator.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Simulator.Addr(), err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			grpcServer.GracefulStop()
		},
	})

	if cfg.Simulator.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer := &http.Server{
			Addr:              cfg.Simulator.MetricsAddr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				logger.Info("metrics listening", zap.String("addr", metricsServer.Addr))
				if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(shutdownCtx)
			},
		})
	}

	if pool != nil {
		stop := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() {
				close(stop)
				pool.Close()
			},
		})
	}

	logger.Info("simulator initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("grpc_addr", cfg.Simulator.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
