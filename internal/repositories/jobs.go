// Package repositories implements persistence for migration jobs.
//
// JobRepository stores [models.MigrationJob] records in SQLite with the match
// report serialized as JSON. Terminal job states are enforced here: once a job
// is succeeded or failed, further transitions are rejected.
package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tuneport/internal/models"
	"tuneport/internal/shared"
)

// JobRepository persists migration jobs in SQLite.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a repository over an open database connection. The
// jobs table must already exist (see shared.RunMigrations).
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job, generating an id when absent and stamping
// created/updated times.
func (r *JobRepository) Create(job *models.MigrationJob) error {
	if job.ID == "" {
		job.ID = shared.GenerateID()
	}
	if job.Status == "" {
		job.Status = models.JobQueued
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidJob, err)
	}

	query := `
		INSERT INTO jobs (
			id, status, source_provider, source_playlist_id, dest_provider,
			dest_playlist_name, dest_playlist_id, report, error_message,
			created_at, updated_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		job.ID,
		string(job.Status),
		job.SourceProvider,
		job.SourcePlaylistID,
		job.DestProvider,
		nullable(job.DestPlaylistName),
		nullable(job.DestPlaylistID),
		reportJSON(job.Report),
		nullable(job.ErrorMessage),
		job.CreatedAt,
		job.UpdatedAt,
		job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// Get retrieves a job by id, or [shared.ErrJobNotFound].
func (r *JobRepository) Get(id string) (*models.MigrationJob, error) {
	query := `
		SELECT id, status, source_provider, source_playlist_id, dest_provider,
			dest_playlist_name, dest_playlist_id, report, error_message,
			created_at, updated_at, completed_at
		FROM jobs
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// UpdateStatus transitions a job's status. Transitions out of a terminal state
// return [shared.ErrJobTerminal].
func (r *JobRepository) UpdateStatus(id string, status models.JobStatus) error {
	current, err := r.Get(id)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", shared.ErrJobTerminal, id, current.Status)
	}

	_, err = r.db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// SaveResult records a job's terminal outcome: status, report, destination
// playlist id, and error note, stamping completion time.
func (r *JobRepository) SaveResult(job *models.MigrationJob) error {
	current, err := r.Get(job.ID)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", shared.ErrJobTerminal, job.ID, current.Status)
	}

	now := time.Now().UTC()
	job.UpdatedAt = now
	if job.Status.Terminal() && job.CompletedAt == nil {
		job.CompletedAt = &now
	}

	query := `
		UPDATE jobs
		SET status = ?, dest_playlist_id = ?, report = ?, error_message = ?,
			updated_at = ?, completed_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		string(job.Status),
		nullable(job.DestPlaylistID),
		reportJSON(job.Report),
		nullable(job.ErrorMessage),
		job.UpdatedAt,
		job.CompletedAt,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}
	return nil
}

// List returns jobs filtered by status; an empty status returns everything,
// newest first.
func (r *JobRepository) List(status models.JobStatus) ([]*models.MigrationJob, error) {
	query := `
		SELECT id, status, source_provider, source_playlist_id, dest_provider,
			dest_playlist_name, dest_playlist_id, report, error_message,
			created_at, updated_at, completed_at
		FROM jobs
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.MigrationJob
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) scanOne(row *sql.Row) (*models.MigrationJob, error) {
	job, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrJobNotFound
	}
	return job, err
}

func scanJob(scan func(...any) error) (*models.MigrationJob, error) {
	var (
		job          models.MigrationJob
		status       string
		destName     sql.NullString
		destID       sql.NullString
		report       sql.NullString
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := scan(
		&job.ID, &status, &job.SourceProvider, &job.SourcePlaylistID, &job.DestProvider,
		&destName, &destID, &report, &errorMessage,
		&job.CreatedAt, &job.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(status)
	job.DestPlaylistName = destName.String
	job.DestPlaylistID = destID.String
	job.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	if report.Valid && report.String != "" {
		var mr models.MatchReport
		if err := json.Unmarshal([]byte(report.String), &mr); err != nil {
			return nil, fmt.Errorf("failed to decode stored report: %w", err)
		}
		job.Report = &mr
	}
	return &job, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reportJSON(report *models.MatchReport) any {
	if report == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil
	}
	return string(data)
}
