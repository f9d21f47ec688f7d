package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

func (p OAuthProvider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type Config struct {
	Addr                  string
	DatabasePath          string
	SessionLifetime       time.Duration
	MaxSubmissionsPerUser int
	MetadataTimeout       time.Duration

	SpotifyClientID     string
	SpotifyClientSecret string
	YouTubeAPIKey       string

	Discord     OAuthProvider
	Google      OAuthProvider
	AdminEmails []string
}

func Default() Config {
	return Config{
		Addr:                  ":8080",
		DatabasePath:          "aux_analytics.db",
		SessionLifetime:       24 * time.Hour,
		MaxSubmissionsPerUser: bracket.DefaultMaxSubmissionsPerUser,
		MetadataTimeout:       10 * time.Second,
	}
}

// LoadDotEnv reads a .env file into the process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Println("No .env file found, using environment variables")
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from environment variables on top of Default.
func Load() (Config, error) {
	cfg := Default()

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	hours, err := envInt("SESSION_LIFETIME_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionLifetime = time.Duration(hours) * time.Hour

	if cfg.MaxSubmissionsPerUser, err = envInt("MAX_SUBMISSIONS_PER_USER", cfg.MaxSubmissionsPerUser); err != nil {
		return Config{}, err
	}

	seconds, err := envInt("METADATA_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.MetadataTimeout = time.Duration(seconds) * time.Second

	cfg.SpotifyClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	cfg.SpotifyClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")

	cfg.Discord = OAuthProvider{
		Key:         os.Getenv("DISCORD_KEY"),
		Secret:      os.Getenv("DISCORD_SECRET"),
		CallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
	}
	cfg.Google = OAuthProvider{
		Key:         os.Getenv("GOOGLE_KEY"),
		Secret:      os.Getenv("GOOGLE_SECRET"),
		CallbackURL: os.Getenv("GOOGLE_CALLBACK_URL"),
	}

	for _, email := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if email = strings.TrimSpace(email); email != "" {
			cfg.AdminEmails = append(cfg.AdminEmails, email)
		}
	}

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
