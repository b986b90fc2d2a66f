// Command playlist-relay runs the Spotify playlist relay web application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "playlist-relay",
		Usage: "Log in with Spotify and manage playlists through a small web app",
		Commands: []*cli.Command{
			serveCommand(),
			sessionsCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
