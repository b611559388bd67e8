package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes all of the signed-in user's vocabulary lists to disk.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
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
	if len(lists) == 0 {
		return r.writePlain("No vocabulary lists to export\n")
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

	result, err := engine.BulkExport(ctx, progress, lists, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Exported: %d/%d lists\n", result.SuccessfulExports, result.TotalLists)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  ✗ %s: %v\n", res.Title, res.Error)
			}
		}
	}
	r.writePlain("Output directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}
