package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// List prints every playlist of the authorized account in listing order.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	session, account, err := r.spotifySession(ctx, cmd.String("config"), cmd.String("account"))
	if err != nil {
		return err
	}

	r.logger.Infof("listing playlists for account %v", account)

	catalog := tasks.NewCatalog(session, r.logger)
	playlists, err := catalog.ListPlaylists(ctx, nil)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	return r.writePlain("%s", formatter.PlaylistListing(playlists))
}
