package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/justestif/spotify-playlist-relay/internal/config"
	"github.com/justestif/spotify-playlist-relay/internal/db"
	"github.com/justestif/spotify-playlist-relay/internal/logging"
	"github.com/justestif/spotify-playlist-relay/internal/session"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

// sessionsCommand groups maintenance of the Postgres session store.
func sessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Maintain the Postgres session store",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the sessions table",
				Action: migrateSessions,
			},
			{
				Name:   "prune",
				Usage:  "Delete expired sessions",
				Action: pruneSessions,
			},
		},
	}
}

func migrateSessions(ctx context.Context, _ *cli.Command) error {
	return withDatabase(ctx, func(database *db.DB) error {
		return database.Migrate(ctx)
	})
}

func pruneSessions(ctx context.Context, _ *cli.Command) error {
	return withDatabase(ctx, func(database *db.DB) error {
		n, err := session.NewPostgresStore(database).DeleteExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d expired sessions\n", n)
		return nil
	})
}

func withDatabase(ctx context.Context, fn func(*db.DB) error) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errNoDatabase
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.Debug())

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := fn(database); err != nil {
		return err
	}
	logger.Info().Msg("session store maintenance done")
	return nil
}
