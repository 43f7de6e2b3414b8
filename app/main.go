package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/ai"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/api"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/cache"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/cfg"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/deals"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/feed"
	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting DevelopersMatrix ingestion service", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount())

	articleRepo := database.NewArticleRepository(db)
	dealRepo := database.NewDealRepository(db)

	httpClient := feed.NewHTTPClient()

	summarizer := ai.New(appCfg.AIURL, appCfg.AIModel, appCfg.AITimeoutDuration(), nil)
	extractor := feed.NewContentExtractor(httpClient, appCfg.UserAgent, appCfg.FetchTimeoutDuration())
	scraper := feed.NewScraper(httpClient, feed.NewParser(), extractor, summarizer, feed.ScraperOptions{
		UserAgent: appCfg.UserAgent,
		Timeout:   appCfg.FetchTimeoutDuration(),
		Delay:     appCfg.EntryDelayDuration(),
		MaxItems:  appCfg.MaxItems,
	})
	collector := deals.NewCatalogCollector(appCfg.DealsFile)

	var slugCache tasks.SlugCache
	var cacheHealth api.CacheHealth
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewSlugCache(context.Background(), appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisTTLDuration())
		if err != nil {
			slog.Warn("Slug cache disabled", "error", err)
		} else {
			defer redisCache.Close()
			slugCache = redisCache
			cacheHealth = redisCache
		}
	}

	pipeline := tasks.NewPipeline(configCache, scraper, collector, articleRepo, dealRepo, slugCache)

	if interval := appCfg.SchedulerIntervalDuration(); interval > 0 {
		scheduler := tasks.NewScheduler(pipeline, interval)
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("Scheduler disabled, runs are triggered through the API only")
	}

	handler := api.NewHandler(pipeline, articleRepo, dealRepo, configCache,
		feed.NewGenerator(appCfg.BaseUrl, cfg.GetVersion()), cacheHealth, cfg.GetVersion())
	server := api.NewServer(handler, appCfg.CronSecret)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
