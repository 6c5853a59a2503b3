package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/metrics"
	"github.com/MrSnakeDoc/linkshelf/internal/redis"
	"github.com/MrSnakeDoc/linkshelf/internal/scheduler"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
	filestore "github.com/MrSnakeDoc/linkshelf/internal/store/file"
	redisstore "github.com/MrSnakeDoc/linkshelf/internal/store/redis"
	"github.com/MrSnakeDoc/linkshelf/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	watcher     *scheduler.DocumentWatcher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	backend, redisClient, err := openBackend(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s backend: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}

	m := metrics.New()
	svc := store.NewService(backend, cfg.HistoryLimit, loggerClient.Named("store"),
		store.WithRecorder(m))

	// Fail fast on an unreadable document rather than serving an empty shelf.
	if err := svc.Load(context.Background()); err != nil {
		loggerClient.Errorf("Failed to load document: %v", err)
		os.Exit(1)
	}
	stats := svc.Stats()
	loggerClient.Info("document loaded",
		logger.String("backend", stats.Backend),
		logger.Int("items", stats.Items),
		logger.Int("history", stats.History))

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Store:        svc,
		Metrics:      m,
		BodyLimit:    cfg.BodyLimit,
		RateBurst:    cfg.RateBurst,
		RatePerMin:   cfg.RatePerMin,
		StaticDir:    cfg.StaticDir,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		watcher:     scheduler.NewDocumentWatcher(svc, loggerClient.Named("watcher"), cfg.WatchEvery),
	}
}

// openBackend builds the configured storage backend. The Redis client is
// returned so that Run can close it.
func openBackend(cfg *config.Config, log logger.Logger) (store.Backend, *goredis.Client, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(context.Background(), redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Redis initialized successfully")
		return redisstore.New(client, cfg.RedisKey), client, nil
	default:
		log.Info("using file backend", logger.String("path", cfg.DataFile))
		return filestore.New(cfg.DataFile), nil, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkshelf v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkshelf %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.watcher.Start(ctx)
	a.logger.Info("document watcher started",
		logger.Duration("interval", a.cfg.WatchEvery))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	runErr := g.Wait()

	a.watcher.Stop()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if runErr != nil {
		return runErr
	}

	a.logger.Info("✅ linkshelf stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
