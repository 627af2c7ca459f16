// Package app wires configuration, storage, clients and services into a
// single application core shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abriltello/portafolioAI/internal/cache"
	"github.com/abriltello/portafolioAI/internal/clients/eodhd"
	"github.com/abriltello/portafolioAI/internal/clients/gemini"
	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/metrics"
	"github.com/abriltello/portafolioAI/internal/services/audit"
	"github.com/abriltello/portafolioAI/internal/services/auth"
	"github.com/abriltello/portafolioAI/internal/services/content"
	"github.com/abriltello/portafolioAI/internal/services/education"
	"github.com/abriltello/portafolioAI/internal/services/market"
	"github.com/abriltello/portafolioAI/internal/services/portfolio"
	"github.com/abriltello/portafolioAI/internal/storage"
)

// DefaultConfigPath is used when neither an explicit path nor PORTAFOLIO_CONFIG is given.
const DefaultConfigPath = "config/portafolio.toml"

// App holds all initialized services and clients.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager
	Cache   interfaces.Cache
	Metrics *metrics.Registry
	Audit   *audit.Recorder

	MarketClient interfaces.MarketDataClient
	GeminiClient interfaces.GeminiClient

	AuthService      interfaces.AuthService
	PortfolioService interfaces.PortfolioService
	MarketService    interfaces.MarketService
	ContentService   interfaces.ContentService
	EducationService interfaces.EducationService

	Scheduler   *Scheduler
	StartupTime time.Time
}

// ResolveConfigPath returns configPath, PORTAFOLIO_CONFIG, a portafolio.toml
// next to the binary, or DefaultConfigPath, in that order.
func ResolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("PORTAFOLIO_CONFIG"); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "portafolio.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultConfigPath
}

// NewApp loads configuration and initializes the application.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(context.Background(), config, logger)
}

// NewAppWithConfig initializes the application from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	quoteCache, err := cache.NewFromConfig(ctx, config.Cache, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	registry := metrics.NewRegistry()
	recorder := audit.NewRecorder(storageManager.AuditStore(), logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Cache:       quoteCache,
		Metrics:     registry,
		Audit:       recorder,
		StartupTime: startupStart,
	}

	// Clients are only assigned when configured so the interfaces stay nil otherwise.
	eodhdCfg := config.Clients.EODHD
	if eodhdCfg.APIKey != "" {
		a.MarketClient = eodhd.NewClient(eodhdCfg.APIKey,
			eodhd.WithBaseURL(eodhdCfg.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(eodhdCfg.RateLimit),
			eodhd.WithTimeout(eodhdCfg.GetTimeout()),
			eodhd.WithDefaultExchange(eodhdCfg.DefaultExchange),
		)
	} else {
		logger.Warn().Msg("EODHD API key not configured - market data will be unavailable")
	}

	if key := config.Clients.Gemini.APIKey; key != "" {
		geminiClient, err := gemini.NewClient(ctx, key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - using glossary explanations")
		} else {
			a.GeminiClient = geminiClient
		}
	}

	a.AuthService = auth.NewService(storageManager.UserStore(), &config.Auth, auth.NewLogMailer(logger), recorder, logger)
	a.PortfolioService = portfolio.NewService(storageManager, recorder, registry, logger)
	a.MarketService = market.NewService(a.MarketClient, quoteCache, config.Cache.GetTTL(), registry, logger)
	a.ContentService = content.NewService(storageManager.ContentStore(), recorder, logger)
	a.EducationService = education.NewService(a.GeminiClient, logger)

	if n, err := a.AuthService.EnsureAdmins(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed admin roles")
	} else if n > 0 {
		logger.Info().Int("promoted", n).Msg("Seeded admin roles from config")
	}

	a.Scheduler, err = NewScheduler(a)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// Close stops background jobs and releases storage and cache connections.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
		a.Scheduler = nil
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close cache")
		}
		a.Cache = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
