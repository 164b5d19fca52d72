// Package tasks runs playlist migrations end to end. The engine drives a
// persisted job through its lifecycle (queued, running, then succeeded or
// failed), reading from the source provider, resolving tracks against the
// destination catalog when the destination supports search, and writing
// the result in batches.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"tuneport/internal/match"
	"tuneport/internal/models"
	"tuneport/internal/services"
	"tuneport/internal/shared"
)

// JobStore is the engine's view of job persistence.
type JobStore interface {
	Get(id string) (*models.MigrationJob, error)
	UpdateStatus(id string, status models.JobStatus) error
	SaveResult(job *models.MigrationJob) error
}

// ProviderFactory builds token-bound provider adapters by name.
type ProviderFactory interface {
	Provider(name, token string) (services.Provider, error)
}

// Engine executes migration jobs. Each job runs on a single goroutine;
// concurrent jobs get independent Run calls.
type Engine struct {
	jobs       JobStore
	auth       services.AuthLookup
	providers  ProviderFactory
	thresholds match.Thresholds
	readOpts   services.ReadOptions
	writeOpts  services.WriteOptions
	logger     *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides the matcher thresholds used during resolution.
func WithThresholds(th match.Thresholds) EngineOption {
	return func(e *Engine) { e.thresholds = th }
}

// WithReadOptions sets the page size used when reading source playlists.
func WithReadOptions(opts services.ReadOptions) EngineOption {
	return func(e *Engine) { e.readOpts = opts }
}

// WithWriteOptions sets the batch size used when writing destinations.
func WithWriteOptions(opts services.WriteOptions) EngineOption {
	return func(e *Engine) { e.writeOpts = opts }
}

// WithEngineLogger attaches a logger to the engine.
func WithEngineLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine wires an engine from its collaborators.
func NewEngine(jobs JobStore, auth services.AuthLookup, providers ProviderFactory, opts ...EngineOption) *Engine {
	engine := &Engine{
		jobs:       jobs,
		auth:       auth,
		providers:  providers,
		thresholds: match.DefaultThresholds(),
		logger:     log.Default(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Run executes the job with the given id and returns it in its final
// state. Errors in the migration itself are recorded on the job as a
// failure; the returned error then wraps the cause. Progress updates are
// emitted on the channel when non-nil and never block.
func (e *Engine) Run(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*models.MigrationJob, error) {
	job, err := e.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		return job, fmt.Errorf("%w: job %s is %s", shared.ErrJobTerminal, job.ID, job.Status)
	}

	sendProgress(progress, ProgressUpdate{JobID: job.ID, Phase: PhaseLoad, Status: string(models.JobRunning)})

	if err := e.jobs.UpdateStatus(job.ID, models.JobRunning); err != nil {
		return nil, err
	}
	job.Status = models.JobRunning

	result, report, err := e.migrate(ctx, job, progress)
	if err != nil {
		return e.fail(job, progress, err)
	}

	job.Status = models.JobSucceeded
	job.Report = report
	job.DestPlaylistID = result.DestID
	job.ErrorMessage = ""

	sendProgress(progress, ProgressUpdate{JobID: job.ID, Phase: PhasePersist, Status: string(job.Status), Percent: 100})

	if err := e.jobs.SaveResult(job); err != nil {
		return job, fmt.Errorf("persisting result for job %s: %w", job.ID, err)
	}

	e.logger.Info("migration succeeded",
		"job", job.ID,
		"source", job.SourceProvider,
		"dest", job.DestProvider,
		"dest_playlist", job.DestPlaylistID)

	return job, nil
}

// migrate performs the provider work for a running job: fetch, normalize,
// resolve, write.
func (e *Engine) migrate(ctx context.Context, job *models.MigrationJob, progress chan<- ProgressUpdate) (*models.WriteResult, *models.MatchReport, error) {
	source, err := e.provider(ctx, job.SourceProvider)
	if err != nil {
		return nil, nil, err
	}
	dest, err := e.provider(ctx, job.DestProvider)
	if err != nil {
		return nil, nil, err
	}

	sendProgress(progress, ProgressUpdate{
		JobID:   job.ID,
		Phase:   PhaseFetch,
		Status:  string(models.JobRunning),
		Message: fmt.Sprintf("reading playlist %s from %s", job.SourcePlaylistID, job.SourceProvider),
	})

	doc, err := source.ReadPlaylist(ctx, job.SourcePlaylistID, e.readOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source playlist: %w", err)
	}

	sendProgress(progress, ProgressUpdate{JobID: job.ID, Phase: PhaseNormalize, Status: string(models.JobRunning), Percent: 25})

	normalized := doc.Normalized(job.DestPlaylistName)
	if len(normalized.Tracks) == 0 {
		return nil, nil, fmt.Errorf("%w: playlist %s has nothing to migrate", shared.ErrEmptyPlaylist, job.SourcePlaylistID)
	}

	report := e.buildReport(ctx, job, normalized, dest, progress)

	sendProgress(progress, ProgressUpdate{
		JobID:   job.ID,
		Phase:   PhaseWrite,
		Status:  string(models.JobRunning),
		Percent: 75,
		Message: fmt.Sprintf("writing %d tracks to %s", len(normalized.Tracks), job.DestProvider),
	})

	result, err := dest.WritePlaylist(ctx, normalized, e.writeOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("writing destination playlist: %w", err)
	}

	report.Write = &result.Report
	return result, report, nil
}

// buildReport classifies every track in the normalized document. When the
// destination supports catalog search, tracks are resolved against it and
// matched ids are attached to the document so the writer can submit them.
// Otherwise the report falls back to counting source ISRC coverage.
func (e *Engine) buildReport(ctx context.Context, job *models.MigrationJob, doc *models.Document, dest services.Provider, progress chan<- ProgressUpdate) *models.MatchReport {
	searcher, searchable := dest.(services.CatalogSearcher)
	total := len(doc.Tracks)

	var isrcCount, fuzzyCount int
	var unresolved []models.UnresolvedTrack

	for i, track := range doc.Tracks {
		sendProgress(progress, ProgressUpdate{
			JobID:   job.ID,
			Phase:   PhaseResolve,
			Status:  string(models.JobRunning),
			Percent: 25 + 50*float64(i)/float64(total),
			Message: fmt.Sprintf("resolving %q", track.Title),
		})

		if !searchable {
			if track.ISRC != "" {
				isrcCount++
			} else {
				unresolved = append(unresolved, unresolvedTrack(track))
			}
			continue
		}

		candidates, err := searcher.SearchCatalog(ctx, track.Title, track.PrimaryArtist())
		if err != nil {
			e.logger.Warn("catalog search failed", "job", job.ID, "track", track.Title, "error", err)
			unresolved = append(unresolved, unresolvedTrack(track))
			continue
		}

		result := match.Resolve(match.Input{Track: track, Catalog: candidates, Thresholds: e.thresholds})
		if result == nil {
			unresolved = append(unresolved, unresolvedTrack(track))
			continue
		}

		doc.Tracks[i] = track.WithProviderID(dest.Name(), result.ID)
		switch result.Rule {
		case models.RuleMBID, models.RuleISRC:
			isrcCount++
		default:
			fuzzyCount++
		}
	}

	return &models.MatchReport{
		MatchedISRCPct:  round2(100 * float64(isrcCount) / float64(total)),
		MatchedFuzzyPct: round2(100 * float64(fuzzyCount) / float64(total)),
		Unresolved:      unresolved,
	}
}

// provider resolves credentials and constructs the adapter for a provider
// name.
func (e *Engine) provider(ctx context.Context, name string) (services.Provider, error) {
	token, err := e.auth.ProviderAuth(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.providers.Provider(name, token)
}

// fail records a terminal failure on the job. The persistence error, if
// any, is logged and swallowed so the migration cause is what surfaces.
func (e *Engine) fail(job *models.MigrationJob, progress chan<- ProgressUpdate, cause error) (*models.MigrationJob, error) {
	job.Status = models.JobFailed
	job.ErrorMessage = cause.Error()
	now := time.Now().UTC()
	job.CompletedAt = &now

	sendProgress(progress, ProgressUpdate{
		JobID:   job.ID,
		Phase:   PhasePersist,
		Status:  string(job.Status),
		Message: cause.Error(),
	})

	if err := e.jobs.SaveResult(job); err != nil && !errors.Is(err, shared.ErrJobTerminal) {
		e.logger.Error("recording failure", "job", job.ID, "cause", cause, "error", err)
	}

	e.logger.Error("migration failed", "job", job.ID, "error", cause)
	return job, cause
}

func unresolvedTrack(track models.Track) models.UnresolvedTrack {
	return models.UnresolvedTrack{
		Position: track.Position,
		Title:    track.Title,
		Artists:  track.Artists,
		ISRC:     track.ISRC,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
