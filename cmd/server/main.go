// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mercadofacil/backend-go/internal/api"
	"github.com/mercadofacil/backend-go/internal/cache"
	"github.com/mercadofacil/backend-go/internal/config"
	"github.com/mercadofacil/backend-go/internal/service"
	"github.com/mercadofacil/backend-go/internal/store"
	"github.com/mercadofacil/backend-go/internal/store/memory"
	"github.com/mercadofacil/backend-go/internal/store/postgres"
	"github.com/mercadofacil/backend-go/internal/store/sheet"
	"github.com/mercadofacil/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetMode(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the snapshot store
	st, err := newStore(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to initialize store")
	}

	// Shopping list cache (noop unless CACHE_ENABLED)
	listCache, err := cache.NewShoppingListCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		listCache = cache.NewNoopShoppingListCache()
	}

	pantryService := service.NewPantryService(st, listCache, service.SystemClock())

	// Initialize HTTP server
	router := api.NewRouter(pantryService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), nil
	case "sheet":
		return sheet.New(cfg.Store.SheetPath), nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pg := postgres.New(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
