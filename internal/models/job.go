package models

import (
	"fmt"
	"time"
)

// JobStatus enumerates migration job states.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Valid reports whether s is one of the known job states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobSucceeded, JobFailed:
		return true
	}
	return false
}

// MigrationJob is the persistent record of one playlist migration. It is
// created by an external enqueue collaborator and transitioned only by the
// orchestrator; terminal states are final.
type MigrationJob struct {
	ID               string       `json:"id"`
	Status           JobStatus    `json:"status"`
	SourceProvider   string       `json:"source_provider"`
	SourcePlaylistID string       `json:"source_playlist_id"`
	DestProvider     string       `json:"dest_provider"`
	DestPlaylistName string       `json:"dest_playlist_name,omitempty"`
	DestPlaylistID   string       `json:"dest_playlist_id,omitempty"`
	Report           *MatchReport `json:"report,omitempty"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
}

// Validate checks the job's structural invariants.
func (j *MigrationJob) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("invalid job status %q", j.Status)
	}
	if j.SourceProvider == "" || j.DestProvider == "" {
		return fmt.Errorf("source and destination providers are required")
	}
	if j.SourcePlaylistID == "" {
		return fmt.Errorf("source playlist id is required")
	}
	return nil
}

// UnresolvedTrack identifies one source track the resolver could not
// confidently place, in source order.
type UnresolvedTrack struct {
	Position int      `json:"position"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists"`
	ISRC     string   `json:"isrc,omitempty"`
}

// MatchReport quantifies the matching outcome of a migration. Percentages are
// in [0,100] rounded to two decimals.
type MatchReport struct {
	MatchedISRCPct  float64           `json:"matched_isrc_pct"`
	MatchedFuzzyPct float64           `json:"matched_fuzzy_pct"`
	Unresolved      []UnresolvedTrack `json:"unresolved"`
	Write           *WriteReport      `json:"write,omitempty"`
}

// WriteReport aggregates per-chunk outcomes of a batched destination write.
// Attempted counts tracks with a usable destination id; Skipped counts tracks
// that had none and were never submitted; Failed = Attempted - Added.
type WriteReport struct {
	Attempted int      `json:"attempted"`
	Added     int      `json:"added"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}

// WriteResult is the outcome of a destination playlist write.
type WriteResult struct {
	DestID string      `json:"dest_id"`
	Report WriteReport `json:"report"`
}
