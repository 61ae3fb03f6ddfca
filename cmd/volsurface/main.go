package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/volsurface/internal/volsurface/application"
	"github.com/wyfcoding/volsurface/internal/volsurface/infrastructure/persistence/mysql"
	surfaceredis "github.com/wyfcoding/volsurface/internal/volsurface/infrastructure/persistence/redis"
	httpserver "github.com/wyfcoding/volsurface/internal/volsurface/interfaces/http"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/volsurface/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	logger := logging.NewFromConfig(&logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level})
	slog.SetDefault(logger.Logger)

	// 3. 指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)

	// 4. 数据库
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&mysql.SurfaceModel{}, &outbox.Message{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, _ string, key string, payload []byte) error {
		return kafkaProducer.Publish(ctx, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)
	publisher := outbox.NewPublisher(outboxMgr)

	// 6. Redis 缓存（可选，失败只降级不退出）
	var surfaceCache *surfaceredis.SurfaceRedisCache
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Warn("failed to init redis, surface cache disabled", "error", err)
	} else {
		surfaceCache = surfaceredis.NewSurfaceRedisCache(redisCache.GetClient())
	}

	// 7. 仓储与应用服务
	repo := mysql.NewSurfaceRepository(db.RawDB())
	var appService *application.VolSurfaceService
	if surfaceCache != nil {
		appService = application.NewVolSurfaceService(repo, surfaceCache, publisher, metricsImpl)
	} else {
		appService = application.NewVolSurfaceService(repo, nil, publisher, metricsImpl)
	}

	// 8. 接口层
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler := httpserver.NewVolSurfaceHandler(appService)
	handler.RegisterRoutes(r.Group(""))
	r.GET("/metrics", gin.WrapH(metricsImpl.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.Server.Name,
			"timestamp": time.Now().Unix(),
		})
	})

	// 9. 启动
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: r}

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
