package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"boothnow-backend/config"
	"boothnow-backend/internal/api"
	"boothnow-backend/internal/booking"
	"boothnow-backend/internal/db"
	"boothnow-backend/internal/identity"
	"boothnow-backend/internal/metrics"
	"boothnow-backend/internal/mw"
	"boothnow-backend/internal/notification"
	"boothnow-backend/internal/store"
	"boothnow-backend/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "boothnow ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	verifier, err := identity.NewVerifier(cfg.Auth)
	if err != nil {
		logger.Fatalf("failed to configure token verification: %v", err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	feed := notification.NewFeed()
	registry := metrics.New()

	bookingSvc := booking.NewService(appStore, feed, booking.NopPayments{}, registry, booking.Config{
		CancellationCutoff:    time.Duration(cfg.Booking.CancellationCutoffMinutes) * time.Minute,
		DefaultCostPerMinute:  cfg.Booking.DefaultCostPerMinute,
		MaxSessionMinutes:     cfg.Booking.MaxSessionMinutes,
		MaxReservationMinutes: cfg.Booking.MaxReservationMinutes,
	})

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	} else {
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
		workerPool.Start(ctx)
		events, unsubscribe := feed.Subscribe(64)
		defer unsubscribe()
		go workerPool.Listen(ctx, events)
	}

	cacheStore := cache.New(time.Duration(cfg.Server.CacheTTLSeconds)*time.Second, 10*time.Minute)
	cacheEvents, unsubscribeCache := feed.Subscribe(64)
	defer unsubscribeCache()
	go mw.FlushOnEvents(ctx, cacheStore, cacheEvents)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := limiter.Prune(30 * time.Minute); n > 0 {
					logger.Printf("pruned %d idle rate limiters", n)
				}
			}
		}
	}()

	go sweeper.NewService(cfg.Sweeper, bookingSvc).Run(ctx)

	handler := api.NewHandler(bookingSvc, appStore, &webpushOptions, feed)
	router := api.NewRouter(handler, api.RouterOptions{
		Server:   cfg.Server,
		Metrics:  cfg.Metrics,
		Verifier: verifier,
		Cache:    cacheStore,
		Limiter:  limiter,
		Registry: registry,
	})
	// Request contexts derive from ctx so cancel() also ends event streams.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
