package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/urfave/cli/v3"
)

// Lists prints the signed-in user's saved vocabulary lists, newest first.
func (r *Runner) Lists(ctx context.Context, cmd *cli.Command) error {
	s, err := r.loadSession()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: run 'lyra auth login' first", shared.ErrNotAuthenticated)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	lists, err := repositories.NewListRepository(db).ListByUser(s.UserID)
	if err != nil {
		return fmt.Errorf("failed to load lists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(lists, cmd.Bool("pretty"))
	}

	if len(lists) == 0 {
		return r.writePlain("No vocabulary lists yet. Run 'lyra extract \"artist - song\"' to create one.\n")
	}

	r.writePlainHeader("Vocabulary Lists")
	for _, list := range lists {
		r.writePlain("%s  %s\n", list.CreatedAt.Format("2006-01-02"), list.Title)
		r.writePlain("    %d words", len(list.Entries))
		if list.SongArtist != "" {
			r.writePlain(" · %s", list.SongArtist)
		}
		r.writePlain("  (id %s)\n", list.ID)
	}

	return nil
}
