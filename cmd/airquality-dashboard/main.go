package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/airquality-dashboard/internal/api/http"
	"github.com/i474232898/airquality-dashboard/internal/config"
	"github.com/i474232898/airquality-dashboard/internal/export"
	"github.com/i474232898/airquality-dashboard/internal/geocode"
	"github.com/i474232898/airquality-dashboard/internal/history"
	"github.com/i474232898/airquality-dashboard/internal/playback"
	"github.com/i474232898/airquality-dashboard/internal/scheduler"
	"github.com/i474232898/airquality-dashboard/internal/session"
	"github.com/i474232898/airquality-dashboard/internal/store"
)

func main() {
	issue := flag.String("issue-token", "", "print a session token for the given subject and exit")
	role := flag.String("role", "viewer", "role embedded in an issued token")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sessions := session.NewManager(cfg.AuthSecret, cfg.SessionTTL)
	if *issue != "" {
		s, err := sessions.Issue(*issue, *role)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Println(s.Token)
		return
	}

	// Shared HTTP client for outbound history calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// History backend with circuit breaker; synthetic data only when enabled.
	client := history.NewClient(httpClient, cfg.HistoryBaseURL, cfg.HTTPTimeout)
	source := &history.Fallback{
		Primary:   client,
		Synthetic: history.NewSynthetic(cfg.MapFallback.Lat, cfg.MapFallback.Lng),
		Enabled:   cfg.SyntheticFallback,
	}

	registry, err := store.OpenRegistry(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open device registry: %v", err)
	}
	defer registry.Close()

	// In-memory reading cache with configured retention.
	cache := store.NewReadingCache(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Refresher that periodically syncs devices and latest readings.
	refresher := scheduler.New(client, source, registry, cache, cfg.RefreshInterval)
	if err := refresher.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer refresher.Stop()

	views := playback.NewManager(source, cfg.PlaybackBaseInterval, cfg.MapFallback)
	if err := views.StartEviction(cfg.PlaybackIdleTTL); err != nil {
		log.Fatalf("failed to start playback eviction: %v", err)
	}
	defer views.CloseAll()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "airquality-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "airquality-dashboard",
			"synthetic": cfg.SyntheticFallback,
			"playback":  views.Len(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Devices:  registry,
		Latest:   cache,
		Exporter: export.NewAggregator(source),
		Playback: views,
		Sessions: sessions,
		Places:   geocode.New(cfg.GeocoderAPIKey),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s (history %s)", cfg.Port, cfg.HistoryBaseURL)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
