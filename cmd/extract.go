package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Extract runs the extraction pipeline for one song query.
//
// Signed-in runs persist words, a list snapshot, and a watch event. Anonymous
// runs (no session or --anonymous) only print the result.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	userID := ""
	if !cmd.Bool("anonymous") {
		if s, err := r.loadSession(); err != nil {
			return err
		} else if s != nil {
			userID = s.UserID
		}
	}

	var db *sql.DB
	if userID != "" {
		var err error
		if db, err = r.openDatabase(); err != nil {
			return err
		}
		defer db.Close()
	} else {
		r.logger.Info("running anonymously, results will not be saved")
	}

	engine := r.buildEngine(db)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.Extract(ctx, userID, query, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s - %s", result.Song.Artist, result.Song.Title))
	r.writePlain("%d words (%s, %s)\n\n", len(result.Entries), result.Options.Language, result.Options.Level)

	for i, entry := range result.Entries {
		line := fmt.Sprintf("%2d. %s", i+1, entry.Word)
		if entry.Score != nil {
			line += fmt.Sprintf(" (score %.0f)", *entry.Score)
		}
		if entry.Occurrences > 1 {
			line += fmt.Sprintf(" ×%d", entry.Occurrences)
		}
		r.writePlain("%s\n", line)

		if entry.Meaning != nil && *entry.Meaning != "" {
			r.writePlain("    %s\n", *entry.Meaning)
		}
		if len(entry.Synonyms) > 0 {
			r.writePlain("    synonyms: %s\n", strings.Join(entry.Synonyms, ", "))
		}
	}

	if result.ListID != "" {
		r.writePlainln("Saved as list %s", result.ListID)
	}

	return nil
}
