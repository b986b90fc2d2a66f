package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
	"github.com/justestif/spotify-playlist-relay/internal/authenticator"
	"github.com/justestif/spotify-playlist-relay/internal/config"
	"github.com/justestif/spotify-playlist-relay/internal/db"
	"github.com/justestif/spotify-playlist-relay/internal/logging"
	"github.com/justestif/spotify-playlist-relay/internal/session"
	"github.com/justestif/spotify-playlist-relay/internal/spotify"
	"github.com/justestif/spotify-playlist-relay/internal/web"
	webfs "github.com/justestif/spotify-playlist-relay/web"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the web server",
		Action: serve,
	}
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.Debug())

	secret, fallback := cfg.CookieSecret()
	if fallback {
		logger.Warn().Msg("SESSION_SECRET is not set, signing session cookies with the client secret")
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	exchanger := auth.NewExchanger(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Timeout:      cfg.UpstreamTimeout,
	})

	factory := spotify.NewFactory(spotify.Options{
		Timeout:   cfg.UpstreamTimeout,
		RateLimit: cfg.UpstreamRateLimit,
	})

	sessions := session.NewManager(store, session.Options{
		Secret:   secret,
		Secure:   cfg.CookieSecure,
		Lifetime: cfg.SessionLifetime,
	})

	// Create sub-filesystems for templates and static files
	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr(),
		Exchanger:   exchanger,
		Clients:     authenticator.New(exchanger, store, factory),
		Sessions:    sessions,
		TemplatesFS: templates,
		StaticFS:    static,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// openStore picks the Postgres store when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info().Msg("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	logger.Info().Msg("using postgres session store")
	return session.NewPostgresStore(database), database.Close, nil
}
