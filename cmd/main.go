package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/auth"
	"github.com/desertthunder/jam/internal/cache"
	"github.com/desertthunder/jam/internal/repositories"
	"github.com/desertthunder/jam/internal/services"
	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("JAM_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	if err := shared.ApplyEnv(config); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Logging.Level))

	runner, closeAll, err := build(config, configPath, logger)
	if err != nil {
		logger.Fatalf("startup error: %v", err)
	}
	defer closeAll()

	app := &cli.Command{
		Name:     "jam",
		Usage:    "Search Spotify, build a playlist and save it to your account",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		closeAll()
		if errors.Is(err, shared.ErrUnauthorized) {
			logger.Fatal("not authorized", "error", err, "hint", "run 'jam auth login'")
		}
		logger.Fatalf("application error: %v", err)
	}
}

// build wires storage, the credential manager and the API client into a [Runner].
func build(config *shared.Config, configPath string, logger *log.Logger) (*Runner, func(), error) {
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := credentialStore(config, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	closeAll := func() {
		if closeStore != nil {
			if err := closeStore(); err != nil {
				logger.Warn("failed to close credential cache", "error", err)
			}
		}
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}

	manager := auth.NewManager(auth.Options{
		ClientID:    config.Credentials.Spotify.ClientID,
		RedirectURI: config.Credentials.Spotify.RedirectURI,
		Scope:       config.Credentials.Spotify.Scope,
		Store:       store,
		Navigate:    shared.OpenBrowser,
		Logger:      logger,
	})

	tracks := repositories.NewTrackRepository(db)
	client, err := services.NewSpotifyClient(services.SpotifyOpts{
		Credentials: manager,
		HTTPClient:  &http.Client{Timeout: config.API.Timeout()},
		BaseURL:     config.API.BaseURL,
		Logger:      logger,
		Cache:       tracks,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Auth:       manager,
		Client:     client,
		Drafts:     repositories.NewDraftRepository(db),
		Tracks:     tracks,
		Logger:     logger,
	})
	return runner, closeAll, nil
}

// credentialStore returns the cache selected by [cache] driver and its closer, if any.
func credentialStore(config *shared.Config, db *sql.DB) (auth.Store, func() error, error) {
	switch config.Cache.Driver {
	case "bolt":
		s, err := cache.NewBoltStore(config.Cache.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return auth.NewMemoryStore(), nil, nil
	case "sqlite", "":
		return repositories.NewKVStore(db), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown cache driver %q", shared.ErrInvalidConfig, config.Cache.Driver)
	}
}
