package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"coursefinder/internal/cache"
	"coursefinder/internal/config"
	"coursefinder/internal/finder"
	"coursefinder/internal/umdio"
	"coursefinder/internal/web"
)

func init() {
	log.Logger = zerolog.New(logSplitter{}).With().Timestamp().Logger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "UMD.io API base URL")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "response cache lifetime, 0 disables it")
	flag.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "response cache directory, empty keeps it in memory")
	flag.Parse()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	store, err := cache.Open(cache.Options{
		Dir:      cfg.CacheDir,
		InMemory: cfg.CacheDir == "",
		TTL:      cfg.CacheTTL,
		Logger:   newBadgerLogger(level),
	})
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.CacheDir).Msg("Failed to open cache")
	}
	defer store.Close()

	client, err := umdio.NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.HTTPTimeout},
		umdio.WithCache(store), umdio.WithPerPage(cfg.PerPage))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create UMD.io client")
	}

	if cfg.GeneratedSessionKey {
		log.Warn().Msg("SESSION_KEY is not set, saved searches will not survive a restart")
	}
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	server := web.NewServer(finder.NewResolver(client), sessionStore, cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// a cold search may wait on two upstream calls
		WriteTimeout: 2*cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("upstream", cfg.BaseURL).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
