package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/dashboard"
	"github.com/linkdeck/linkdeck/internal/httpserver"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/redis"
	"github.com/linkdeck/linkdeck/internal/scheduler"
	"github.com/linkdeck/linkdeck/internal/session"
	"github.com/linkdeck/linkdeck/internal/sources/seedfile"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
	"github.com/linkdeck/linkdeck/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	views       *dashboard.Registry
	janitor     *scheduler.Janitor
	seeder      *seedfile.Importer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	sessions := session.NewManager(
		store,
		[]byte(cfg.SessionSecret),
		cfg.SessionTTL,
		cfg.SecureCookies,
		loggerClient,
	)

	oauthProvider := session.NewGoogleProvider(session.OAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	})

	views := dashboard.NewRegistry()
	janitor := scheduler.NewJanitor(store, loggerClient, cfg.JanitorInterval)

	var seeder *seedfile.Importer
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, bookmarks will be imported on startup",
			logger.String("file", cfg.SeedFile))
		seeder = seedfile.NewImporter(cfg.SeedFile, store, loggerClient)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		RedisClient:       redisClient,
		Store:             store,
		Sessions:          sessions,
		OAuth:             oauthProvider,
		Guard:             dashboard.NewGuard(nil),
		Feed:              dashboard.NewStoreFeed(store),
		Views:             views,
		StoreTimeout:      cfg.StoreTimeout,
		PostLoginRedirect: cfg.PostLoginRedirect,
		SecureCookies:     cfg.SecureCookies,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		views:       views,
		janitor:     janitor,
		seeder:      seeder,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkdeck v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkdeck %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One-shot seed import (if configured)
	if a.seeder != nil {
		if err := a.seeder.Run(ctx); err != nil {
			a.logger.Warn("seed import failed, continuing without it",
				logger.Error(err))
		}
	}

	// Start index janitor
	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start index janitor: %w", err)
	}
	a.logger.Info("index janitor started",
		logger.Duration("interval", a.cfg.JanitorInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Close every live view first so no subscription outlives shutdown
	a.views.Shutdown()

	// Stop janitor
	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ linkdeck stopped cleanly")
	return nil
}
