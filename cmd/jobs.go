package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tuneport/internal/formatter"
	"tuneport/internal/models"
	"tuneport/internal/shared"
)

// JobsList prints persisted jobs, optionally filtered by status.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	status := models.JobStatus(cmd.String("status"))
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	jobs, err := r.jobRepository(db).List(status)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(jobs, true)
	}

	if len(jobs) == 0 {
		return r.writePlain("no jobs found\n")
	}

	for _, job := range jobs {
		r.writePlain("%s  %-9s  %s/%s -> %s  %s\n",
			job.ID, job.Status,
			job.SourceProvider, job.SourcePlaylistID, job.DestProvider,
			job.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// JobsShow prints one job with its report, optionally writing a Markdown
// report file.
func (r *Runner) JobsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	job, err := r.jobRepository(db).Get(id)
	if err != nil {
		return err
	}

	if path := cmd.String("report"); path != "" {
		written, err := formatter.WriteReportMarkdown(job, path)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written)
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}
	return r.writePlain("%s", formatter.RenderJob(job))
}
