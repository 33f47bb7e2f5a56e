package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Config struct {
	Addr        string
	BaseURL     string
	HTTPTimeout time.Duration
	PerPage     int
	// CacheDir is the badger directory. Empty keeps the cache in memory.
	CacheDir string
	// CacheTTL of zero disables the response cache.
	CacheTTL    time.Duration
	LogLevel    string
	SessionKey  []byte
	CORSOrigins []string
	// GeneratedSessionKey is set when SESSION_KEY was empty and a random key is in use.
	GeneratedSessionKey bool
}

// Load reads .env files (missing files are fine) and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:     getEnv("ADDR", ":8080"),
		BaseURL:  getEnv("UMDIO_BASE_URL", "https://api.umd.io/v1"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	// an explicitly empty CACHE_DIR selects the in-memory cache
	cfg.CacheDir = "./db/"
	if dir, ok := os.LookupEnv("CACHE_DIR"); ok {
		cfg.CacheDir = strings.TrimSpace(dir)
	}

	var err error
	if cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "15s")); err != nil {
		return Config{}, errors.Wrap(err, "invalid HTTP_TIMEOUT")
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "10m")); err != nil {
		return Config{}, errors.Wrap(err, "invalid CACHE_TTL")
	}
	if cfg.PerPage, err = strconv.Atoi(getEnv("PER_PAGE", "100")); err != nil {
		return Config{}, errors.Wrap(err, "invalid PER_PAGE")
	}
	if cfg.PerPage < 1 {
		return Config{}, errors.Errorf("invalid PER_PAGE %d: must be positive", cfg.PerPage)
	}

	cfg.CORSOrigins = lo.FilterMap(strings.Split(getEnv("CORS_ORIGINS", "*"), ","), func(origin string, _ int) (string, bool) {
		origin = strings.TrimSpace(origin)
		return origin, origin != ""
	})

	if key := os.Getenv("SESSION_KEY"); key != "" {
		cfg.SessionKey = []byte(key)
	} else {
		cfg.SessionKey = securecookie.GenerateRandomKey(32)
		cfg.GeneratedSessionKey = true
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
