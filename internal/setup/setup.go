package setup

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/robalyx/deeplweb/internal/cache"
	"github.com/robalyx/deeplweb/internal/redis"
	"github.com/robalyx/deeplweb/internal/rpc"
	"github.com/robalyx/deeplweb/internal/setup/config"
	"github.com/robalyx/deeplweb/internal/setup/telemetry"
	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/robalyx/deeplweb/internal/transport"
	"go.uber.org/zap"
)

// App bundles the dependencies shared by every command.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	LogManager   *telemetry.Manager // Log management system
	RedisManager *redis.Manager     // Redis connection manager, nil when disabled
	Cache        *cache.Store       // Result cache, nil when Redis is disabled
	stopTracing  func(context.Context) error
	sessionsMu   sync.Mutex
	sessions     []*transport.Session
}

// InitializeApp loads the configuration and bootstraps logging and the
// optional cache for the named command.
// A missing config file is not an error: the defaults are used instead.
func InitializeApp(component, logDir string) (*App, error) {
	cfg, _, err := config.LoadConfig()
	switch {
	case errors.Is(err, config.ErrConfigFileNotFound):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	return NewApp(cfg, component, logDir)
}

// NewApp bootstraps an App from an already loaded configuration.
func NewApp(cfg *config.Config, component, logDir string) (*App, error) {
	// Logging system is initialized first to capture setup issues
	logManager := telemetry.NewManager(component, logDir, &cfg.Debug)

	logger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		LogManager: logManager,
	}

	if cfg.Debug.EnableTracing {
		stop, err := logManager.StartTracing()
		if err != nil {
			logger.Error("Failed to start tracing", zap.Error(err))
		} else {
			app.stopTracing = stop
		}
	}

	if cfg.Redis.Enabled {
		redisManager := redis.NewManager(&cfg.Redis, logger)

		cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
		if err != nil {
			redisManager.Close()
			return nil, err
		}

		statsClient, err := redisManager.GetClient(redis.StatsDBIndex)
		if err != nil {
			redisManager.Close()
			return nil, err
		}

		app.RedisManager = redisManager
		app.Cache = cache.NewStore(cacheClient, statsClient, time.Duration(cfg.Cache.TTL)*time.Second, logger)
	}

	logger.Debug("Initialized application",
		zap.String("rpc_url", cfg.Provider.RPCURL),
		zap.Bool("cache", app.Cache != nil),
		zap.String("session_dir", logManager.GetCurrentSessionDir()))

	return app, nil
}

// NewTranslator opens a new session to the web translator. Every call returns
// an independent session with its own rate limit and client state.
func (s *App) NewTranslator(ctx context.Context, logger *zap.Logger) *translator.Translator {
	if logger == nil {
		logger = s.Logger
	}

	provider := &s.Config.Provider
	session := transport.New(s.Config, logger)

	s.sessionsMu.Lock()
	s.sessions = append(s.sessions, session)
	s.sessionsMu.Unlock()

	caller := rpc.Dial(ctx, session, provider.RPCURL, provider.StateURL, logger)

	opts := []translator.Option{
		translator.WithPreferredLanguages(provider.PreferredLangs...),
		translator.WithQuality(provider.Quality),
	}
	if provider.LocalSplit {
		opts = append(opts, translator.WithSplitter(translator.LocalSplitter{}))
	}

	return translator.New(caller, logger, opts...)
}

// Cleanup flushes logs and closes connections.
func (s *App) Cleanup(ctx context.Context) {
	if s.stopTracing != nil {
		if err := s.stopTracing(ctx); err != nil {
			s.Logger.Error("Failed to flush traces", zap.Error(err))
		}
	}

	s.sessionsMu.Lock()
	for _, session := range s.sessions {
		session.Close()
	}
	s.sessions = nil
	s.sessionsMu.Unlock()

	if s.RedisManager != nil {
		s.RedisManager.Close()
	}

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}
