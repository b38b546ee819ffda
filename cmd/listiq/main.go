package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/listiq/internal/adapter/fsm"
	otelx "github.com/neomorfeo/listiq/internal/adapter/otel"
	redisx "github.com/neomorfeo/listiq/internal/adapter/redis"
	riverx "github.com/neomorfeo/listiq/internal/adapter/river"
	"github.com/neomorfeo/listiq/internal/adapter/sqlite"
	"github.com/neomorfeo/listiq/internal/app"
	"github.com/neomorfeo/listiq/internal/domain"

	handler "github.com/neomorfeo/listiq/internal/adapter/http"
)

func main() {
	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "listiq.db")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	providers, err := otelx.Setup(ctx, otelx.ConfigFromEnv())
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelx.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	repos, err := sqlite.NewFromDB(db)
	if err != nil {
		log.Fatalf("migrations: %v", err)
	}
	defer repos.Close()

	riverClient, err := riverx.Setup(ctx, repos.DB())
	if err != nil {
		log.Fatalf("river: %v", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		log.Fatalf("river start: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			log.Printf("river stop: %v", err)
		}
	}()

	var cache domain.KVStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
		c := redisx.New(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err := c.Ping(ctx); err != nil {
			log.Printf("redis unavailable, statistics cache disabled: %v", err)
		} else {
			cache = c
			defer c.Close()
		}
	}

	listings := otelx.NewTracingListingRepository(repos.Listings)
	publisher := otelx.NewTracingPublisher(riverx.NewPublisher(riverClient))

	// --- Application ---
	listingSvc := app.NewListingService(listings, repos.Units, repos.Audit, publisher, fsm.New())
	services := handler.Services{
		Listings:    listingSvc,
		Bulk:        app.NewBulkService(listingSvc),
		Eligibility: app.NewEligibilityService(listings, repos.Units),
		Maintenance: app.NewMaintenanceCoordinator(listings, repos.Units, repos.Audit, publisher, nil),
		Statistics:  app.NewStatisticsService(repos.Audit, cache, 30*time.Second),
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("listiq", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("listiq", "0.1.0"))
	handler.Register(api, services)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listiq listening on :%s", port)
		log.Printf("API docs: http://localhost:%s/docs", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	log.Println("stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
