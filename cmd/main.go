package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/oauth2"

	"podsift/internal/repositories"
	"podsift/internal/services"
	"podsift/internal/shared"

	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var history *repositories.RunRepository
	var tokens *repositories.TokenRepository
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			history = repositories.NewRunRepository(db)
			tokens = repositories.NewTokenRepository(db)
		} else {
			logger.Warnf("failed to open database: %v", err)
		}
	}

	var spotifyService services.EpisodeService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
				if tokens == nil {
					return
				}
				if err := tokens.Save(svc.Name(), token); err != nil {
					logger.Warnf("failed to persist refreshed token: %v", err)
				}
			})

			token := config.Credentials.Spotify.Token()
			if tokens != nil {
				if cached, err := tokens.Get(svc.Name()); err == nil && cached != nil {
					token = cached
				}
			}
			if token != nil {
				if err := svc.OAuthenticate(context.Background(), token); err != nil {
					logger.Warnf("stored token rejected: %v", err)
				}
			}

			spotifyService = svc
		}
	}

	opts := RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Logger:  logger,
	}
	// A nil *RunRepository must not become a non-nil interface value.
	if history != nil {
		opts.History = history
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "podsift",
		Usage:    "Add new podcast episodes matching title patterns to Spotify playlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
