package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/lumenpress/mailroom/internal/api"
	"github.com/lumenpress/mailroom/internal/config"
	"github.com/lumenpress/mailroom/internal/newsletter"
	"github.com/lumenpress/mailroom/internal/pkg/logger"
	"github.com/lumenpress/mailroom/internal/rendering"
	"github.com/lumenpress/mailroom/internal/settings"
)

// checkPortAvailable verifies that the target port is not already in use, so
// a stale process doesn't silently answer in our place.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Redis settings backend. Optional: without it the settings cache runs
	// on its defaults layer.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, settings cache degrades to defaults", "addr", cfg.Redis.Addr, "error", err.Error())
		}
		cancel()
	}

	// Postgres newsletter/post store. Optional: without it post URLs fall
	// back to the site root and newsletter lookups return nothing.
	var store *newsletter.Store
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("database unreachable at startup", "error", err.Error())
		}
		cancel()
		store = newsletter.NewStore(db)
	}

	cache := settings.New(rdb, cfg.Site.SettingsDefaults())
	urls := newsletter.NewURLService(store, cfg.Site.URL)
	renderer := rendering.New(cache, urls, cache)

	router := api.SetupRoutes(api.NewRenderService(renderer, store), cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("render server listening", "addr", srv.Addr, "site", cfg.Site.URL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err.Error())
	}
}
