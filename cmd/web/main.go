package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/config"
	"github.com/AdamBeresnev/aux-analytics/internal/db"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/middleware"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	app := newApp(cfg, database, sessionManager, newMetadataRegistry(cfg))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Shutdown error:", err)
	}
}

// newMetadataRegistry registers a lookup client for every source with credentials. Sources
// without one fall back to manual entry.
func newMetadataRegistry(cfg config.Config) *metadata.Registry {
	registry := metadata.NewRegistry()
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		registry.Register(metadata.SourceSpotify, metadata.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.MetadataTimeout))
	} else {
		log.Println("Spotify credentials not set, Spotify links need manual details")
	}
	if cfg.YouTubeAPIKey != "" {
		registry.Register(metadata.SourceYouTube, metadata.NewYouTubeClient(cfg.YouTubeAPIKey, cfg.MetadataTimeout))
	} else {
		log.Println("YouTube API key not set, YouTube links need manual details")
	}
	return registry
}
