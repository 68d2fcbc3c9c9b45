package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"canasta/internal/adapter/cache"
	"canasta/internal/adapter/handler"
	"canasta/internal/adapter/limiter"
	"canasta/internal/adapter/source"
	"canasta/internal/adapter/storage"
	"canasta/internal/application/service"
	"canasta/internal/application/usecase"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
	"canasta/internal/infrastructure/config"
	"canasta/internal/infrastructure/logger"
	"canasta/internal/infrastructure/server"

	"github.com/joho/godotenv"
)

var (
	portFlag   = flag.Int("port", 0, "Port number")
	configFlag = flag.String("config", "configs/config.yaml", "Path to the YAML config")
	helpFlag   = flag.Bool("help", false, "Show help")
)

type App struct {
	config  *config.Config
	logger  *slog.Logger
	server  *server.Server
	cache   port.QuotationCache
	catalog *storage.PostgresCatalog
	browser *source.BrowserRenderer
	janitor *service.Janitor
	cancel  context.CancelFunc
}

func main() {
	flag.Parse()

	if *helpFlag {
		printUsage()
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting canasta", "version", "1.0.0", "mode", cfg.Mode, "cache", cfg.Cache.Backend)

	app := &App{config: cfg, logger: log}
	if err := app.start(); err != nil {
		log.Error("startup failed", "error", err)
		app.shutdown()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down gracefully")
	app.shutdown()
}

func (a *App) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	cfg := a.config

	memory, err := a.initCache()
	if err != nil {
		return err
	}

	defs, err := a.sourceDefinitions(ctx)
	if err != nil {
		return err
	}

	renderers := source.Renderers{HTTP: source.NewHTTPRenderer(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)}
	if cfg.Browser.Enabled && cfg.Mode == config.ModeLive {
		a.browser, err = source.NewBrowserRenderer(cfg.Browser.ControlURL, cfg.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
		renderers.Browser = a.browser
	}

	sources, err := source.Build(defs, renderers, a.logger)
	if err != nil {
		return fmt.Errorf("failed to build sources: %w", err)
	}

	scraper, err := pickSource(sources, cfg.ScrapeSource)
	if err != nil {
		return err
	}
	defaultSource := cfg.DefaultSource
	if defaultSource == "" {
		defaultSource = sources[0].Name()
	}

	aggregator := service.NewAggregator(sources, a.cache, service.AggregatorConfig{
		CacheTTL:     cfg.Cache.TTL,
		FetchTimeout: cfg.Fetch.Timeout,
	}, a.logger)
	comparator := service.NewComparator(aggregator, defaultSource, cfg.Limits.Parallelism, a.logger)
	optimizer := service.NewOptimizer(aggregator, cfg.Limits.Parallelism, a.logger)

	priceUseCase := usecase.NewPriceUseCase(aggregator, comparator, optimizer, scraper, usecase.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxItems:       cfg.Limits.MaxItems,
		Batch: source.BatchOptions{
			MaxBatch:    cfg.Limits.MaxBatch,
			Concurrency: cfg.Limits.BatchConcurrency,
		},
	}, a.logger)

	rateLimiter := limiter.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	tasks := []service.SweepTask{{Name: "rate-limiter", Sweep: rateLimiter.Prune}}
	if memory != nil {
		tasks = append(tasks, service.SweepTask{Name: "quotation-cache", Sweep: memory.Purge})
	}
	a.janitor = service.NewJanitor(a.logger, tasks...)
	a.janitor.Start(ctx, cfg.Janitor.Interval)

	var catalog port.SourceCatalog
	if a.catalog != nil {
		catalog = a.catalog
	}

	router := handler.NewRouter(
		handler.NewPriceHandler(priceUseCase, a.logger),
		handler.NewScrapeHandler(priceUseCase, rateLimiter, a.logger),
		handler.NewHealthHandler(a.cache, catalog, a.logger),
		a.logger,
	)

	a.server = server.NewServer(cfg.Server.Port, router, server.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
	}, a.logger)

	go func() {
		if err := a.server.Start(); err != nil {
			a.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	a.logger.Info("engine ready",
		"sources", source.Names(sources),
		"scrape_source", scraper.Name(),
		"default_source", defaultSource,
		"rate_limit", cfg.RateLimit.Limit,
		"rate_window", cfg.RateLimit.Window.String())
	return nil
}

// initCache sets a.cache and returns the memory cache when that backend is
// used, so the janitor can purge it.
func (a *App) initCache() (*cache.Memory, error) {
	cfg := a.config
	if cfg.Cache.Backend == config.CacheRedis {
		redisAdapter, err := cache.NewRedisAdapter(
			cfg.RedisAddr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Cache.TTL,
			cache.WithPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.cache = redisAdapter
		return nil, nil
	}

	memory := cache.NewMemory(cfg.Cache.TTL)
	a.cache = memory
	return memory, nil
}

// sourceDefinitions reads sources from the Postgres catalog when it is
// enabled in live mode, otherwise from the config file.
func (a *App) sourceDefinitions(ctx context.Context) ([]model.SourceDefinition, error) {
	cfg := a.config
	if cfg.Mode == config.ModeDemo || !cfg.Catalog.Enabled {
		return cfg.ActiveSources(), nil
	}

	catalog, err := storage.NewPostgresCatalog(cfg.PostgresDSN(), storage.PoolOptions{
		MaxOpenConns:    cfg.PostgreSQL.MaxOpenConns,
		MaxIdleConns:    cfg.PostgreSQL.MaxIdleConns,
		ConnMaxLifetime: cfg.PostgreSQL.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	a.catalog = catalog

	if err := catalog.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	defs, err := catalog.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 && cfg.Catalog.Seed {
		a.logger.Info("seeding source catalog from config", "sources", len(cfg.Sources))
		for i, def := range cfg.Sources {
			if err := catalog.SaveSource(ctx, def, i); err != nil {
				return nil, err
			}
		}
		return catalog.ListSources(ctx)
	}
	return defs, nil
}

func pickSource(sources []port.SourcePort, name string) (port.SourcePort, error) {
	if name == "" {
		return sources[0], nil
	}
	for _, s := range sources {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("scrape_source %q is not an enabled source", name)
}

func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.janitor != nil {
		a.janitor.Stop()
	}

	if a.server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown error", "error", err)
		}
	}

	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			a.logger.Error("failed to close browser", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", "error", err)
		}
	}
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.logger.Error("failed to close catalog", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  canasta [--port <N>] [--config <path>]")
	fmt.Println("  canasta --help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --port N         Port number")
	fmt.Println("  --config PATH    YAML config file (default configs/config.yaml)")
}
