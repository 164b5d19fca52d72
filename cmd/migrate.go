package main

import (
	"context"
	"sync"

	"github.com/urfave/cli/v3"

	"tuneport/internal/formatter"
	"tuneport/internal/models"
	"tuneport/internal/shared"
	"tuneport/internal/tasks"
)

// Migrate creates a migration job and runs it to completion, streaming
// progress to the log.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := r.jobRepository(db)

	job := &models.MigrationJob{
		ID:               shared.GenerateID(),
		Status:           models.JobQueued,
		SourceProvider:   cmd.String("from"),
		SourcePlaylistID: cmd.String("playlist"),
		DestProvider:     cmd.String("to"),
		DestPlaylistName: cmd.String("name"),
	}
	if err := repo.Create(job); err != nil {
		return err
	}

	r.logger.Info("migration queued",
		"job", job.ID,
		"source", job.SourceProvider,
		"playlist", job.SourcePlaylistID,
		"dest", job.DestProvider)

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if update.Message != "" {
				r.logger.Info(update.Message, "phase", update.Phase, "percent", int(update.Percent))
			} else {
				r.logger.Debug("progress", "phase", update.Phase, "percent", int(update.Percent))
			}
		}
	}()

	finished, runErr := r.engine(repo).Run(ctx, job.ID, progress)
	close(progress)
	wg.Wait()

	if finished != nil {
		if cmd.Bool("json") {
			if err := r.writeJSON(finished, true); err != nil {
				return err
			}
		} else if err := r.writePlain("%s", formatter.RenderJob(finished)); err != nil {
			return err
		}
	}

	return runErr
}
