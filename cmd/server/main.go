package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/orderbook/internal/adapter/cache"
	"github.com/olyamironova/orderbook/internal/adapter/in_memory"
	"github.com/olyamironova/orderbook/internal/adapter/kafka"
	"github.com/olyamironova/orderbook/internal/adapter/pg"
	grpcapi "github.com/olyamironova/orderbook/internal/api/grpc"
	httpapi "github.com/olyamironova/orderbook/internal/api/http"
	"github.com/olyamironova/orderbook/internal/config"
	"github.com/olyamironova/orderbook/internal/core"
	"github.com/olyamironova/orderbook/internal/idgen"
	"github.com/olyamironova/orderbook/internal/middleware"
	"github.com/olyamironova/orderbook/internal/port"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ids, err := idgen.New(cfg.IDScheme)
	if err != nil {
		return err
	}
	book := core.NewOrderBook(core.WithIDGenerator(ids))

	var repo port.Repository = in_memory.NewMemoryRepo()
	if cfg.PostgresURL != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		if err := pgRepo.Migrate(ctx); err != nil {
			pgRepo.Close(ctx)
			return err
		}
		repo = pgRepo
		logger.Info("using postgres repository")
	}
	defer repo.Close(context.Background())

	var bookCache port.Cache = in_memory.NewCache()
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			return err
		}
		bookCache = rc
		logger.Info("using redis cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	var pub port.TradePublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewSyncProducer(ctx, cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		kp := kafka.NewPublisher(producer, cfg.KafkaTopic)
		defer kp.Close()
		pub = kp
		logger.Info("publishing trades to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	eng := core.NewEngine(book, cfg.Symbol, repo, bookCache, pub, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := httpapi.NewHTTPServer(eng, middleware.NewRateLimiter(cfg.RateLimit), logger)
	grpcServer := grpcapi.NewGRPCServer(eng, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", cfg.GRPCAddr, err)
	}

	logger.Info("order book starting", "symbol", cfg.Symbol, "id_scheme", cfg.IDScheme)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Run(gctx, cfg.HTTPAddr, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return grpcServer.Serve(gctx, lis)
	})
	return g.Wait()
}
