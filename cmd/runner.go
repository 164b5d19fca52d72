package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"tuneport/internal/cache"
	"tuneport/internal/match"
	"tuneport/internal/repositories"
	"tuneport/internal/services"
	"tuneport/internal/shared"
	"tuneport/internal/tasks"
	"tuneport/internal/transport"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, providersCommand, migrateCommand, jobsCommand, exportCommand, resolveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig replaces the runner's config when the given path exists.
func (r *Runner) reloadConfig(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	r.config = config
	return nil
}

// database opens the configured database with pool settings applied.
func (r *Runner) database() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// factory builds the provider factory backed by shared breaker and cache
// state.
func (r *Runner) factory() *services.Factory {
	breakers := transport.NewRegistry(
		r.config.Breaker.FailureThreshold,
		time.Duration(r.config.Breaker.CooldownMS)*time.Millisecond,
	)

	var store cache.Store
	if r.config.Transport.CacheTTLMS > 0 {
		store = cache.NewTTLStore(time.Duration(r.config.Transport.CacheTTLMS) * time.Millisecond)
	}

	return services.NewFactory(r.config, breakers, store, r.logger)
}

// engine wires the migration engine against the given job store.
func (r *Runner) engine(jobs tasks.JobStore) *tasks.Engine {
	m := r.config.Matcher
	return tasks.NewEngine(jobs, services.NewConfigAuth(r.config), r.factory(),
		tasks.WithEngineLogger(r.logger),
		tasks.WithThresholds(match.Thresholds{
			DurationToleranceMS:    m.DurationToleranceMS,
			FuzzyDurationPenaltyMS: m.FuzzyDurationPenaltyMS,
			FuzzyMin:               m.FuzzyMin,
			TitleWeight:            m.TitleWeight,
			ArtistWeight:           m.ArtistWeight,
			DurationWeight:         m.DurationWeight,
		}),
		tasks.WithWriteOptions(services.WriteOptions{BatchSize: r.config.Writer.BatchSize}),
	)
}

func (r *Runner) jobRepository(db *sql.DB) *repositories.JobRepository {
	return repositories.NewJobRepository(db)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
