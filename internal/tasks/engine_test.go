package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tuneport/internal/models"
	"tuneport/internal/services"
	"tuneport/internal/shared"
	apptest "tuneport/internal/testing"
)

func sourceDoc(tracks ...models.Track) *models.Document {
	return &models.Document{
		Name:             "Road Trip",
		SourceService:    "spotify",
		SourcePlaylistID: "p1",
		Tracks:           tracks,
	}
}

func testJob() *models.MigrationJob {
	return &models.MigrationJob{
		ID:               "job1",
		Status:           models.JobQueued,
		SourceProvider:   "spotify",
		SourcePlaylistID: "p1",
		DestProvider:     "deezer",
		DestPlaylistName: "Road Trip (Deezer)",
	}
}

func testAuth() *apptest.StaticAuth {
	return &apptest.StaticAuth{Tokens: map[string]string{"spotify": "s-tok", "deezer": "d-tok"}}
}

func newFixture(source services.Provider, dest services.Provider) (*Engine, *apptest.MemoryJobStore) {
	store := apptest.NewMemoryJobStore(testJob())
	factory := &apptest.MockProviderFactory{Providers: map[string]services.Provider{
		"spotify": source,
		"deezer":  dest,
	}}
	return NewEngine(store, testAuth(), factory), store
}

func TestEngineRunSucceedsWithCatalogResolution(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "Karma Police", Artists: []string{"Radiohead"}, DurationMS: 264000, ISRC: "GBAYE9700164"},
		models.Track{Title: "Creep", Artists: []string{"Radiohead"}, DurationMS: 239000},
		models.Track{Title: "Obscure B-Side", Artists: []string{"Nobody"}, DurationMS: 120000},
	)}
	dest := &apptest.SearchingProvider{MockProvider: apptest.MockProvider{
		ProviderName: "deezer",
		WriteResult:  &models.WriteResult{DestID: "dz-42", Report: models.WriteReport{Attempted: 2, Added: 2}},
		Candidates: map[string][]models.Candidate{
			"Karma Police|Radiohead": {
				{ID: "dz-1", Title: "Karma Police", PrimaryArtist: "Radiohead", DurationMS: 264000, ISRC: "GBAYE9700164"},
			},
			"Creep|Radiohead": {
				{ID: "dz-2", Title: "Creep", PrimaryArtist: "Radiohead", DurationMS: 239000},
			},
		},
	}}

	engine, store := newFixture(source, dest)
	job, err := engine.Run(context.Background(), "job1", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if job.Status != models.JobSucceeded {
		t.Errorf("Status = %s, want succeeded", job.Status)
	}
	if job.DestPlaylistID != "dz-42" {
		t.Errorf("DestPlaylistID = %q, want dz-42", job.DestPlaylistID)
	}

	report := job.Report
	if report == nil {
		t.Fatal("Report = nil")
	}
	if report.MatchedISRCPct != 33.33 {
		t.Errorf("MatchedISRCPct = %v, want 33.33", report.MatchedISRCPct)
	}
	if report.MatchedFuzzyPct != 33.33 {
		t.Errorf("MatchedFuzzyPct = %v, want 33.33", report.MatchedFuzzyPct)
	}
	if len(report.Unresolved) != 1 || report.Unresolved[0].Title != "Obscure B-Side" {
		t.Errorf("Unresolved = %+v", report.Unresolved)
	}
	if report.Write == nil || report.Write.Added != 2 {
		t.Errorf("Write = %+v", report.Write)
	}

	if len(dest.WrittenDocs) != 1 {
		t.Fatalf("write count = %d, want 1", len(dest.WrittenDocs))
	}
	written := dest.WrittenDocs[0]
	if written.Name != "Road Trip (Deezer)" {
		t.Errorf("written name = %q, want the destination name", written.Name)
	}
	if written.Tracks[0].ProviderID("deezer") != "dz-1" || written.Tracks[1].ProviderID("deezer") != "dz-2" {
		t.Errorf("resolved ids = %q, %q, want dz-1, dz-2",
			written.Tracks[0].ProviderID("deezer"), written.Tracks[1].ProviderID("deezer"))
	}
	if written.Tracks[2].ProviderID("deezer") != "" {
		t.Errorf("unresolved track got id %q", written.Tracks[2].ProviderID("deezer"))
	}

	saved, err := store.Get("job1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if saved.Status != models.JobSucceeded || saved.Report == nil {
		t.Errorf("persisted job = %+v", saved)
	}
}

func TestEngineRunWithoutCatalogSearchFallsBackToISRC(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "One", Artists: []string{"A"}, ISRC: "USAAA0000001"},
		models.Track{Title: "Two", Artists: []string{"B"}, ISRC: "USAAA0000002"},
		models.Track{Title: "Three", Artists: []string{"C"}},
	)}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	engine, _ := newFixture(source, dest)
	job, err := engine.Run(context.Background(), "job1", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if job.Report.MatchedISRCPct != 66.67 {
		t.Errorf("MatchedISRCPct = %v, want 66.67", job.Report.MatchedISRCPct)
	}
	if job.Report.MatchedFuzzyPct != 0 {
		t.Errorf("MatchedFuzzyPct = %v, want 0", job.Report.MatchedFuzzyPct)
	}
	if len(job.Report.Unresolved) != 1 || job.Report.Unresolved[0].Title != "Three" {
		t.Errorf("Unresolved = %+v", job.Report.Unresolved)
	}
}

func TestEngineRunSingleISRCTrackFullDirectMatch(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "One", Artists: []string{"A"}, ISRC: "USAAA0000001"},
	)}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	engine, _ := newFixture(source, dest)
	job, err := engine.Run(context.Background(), "job1", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if job.Status != models.JobSucceeded {
		t.Errorf("Status = %v, want succeeded", job.Status)
	}
	if job.Report.MatchedISRCPct != 100 {
		t.Errorf("MatchedISRCPct = %v, want 100", job.Report.MatchedISRCPct)
	}
	if job.Report.MatchedFuzzyPct != 0 {
		t.Errorf("MatchedFuzzyPct = %v, want 0", job.Report.MatchedFuzzyPct)
	}
	if len(job.Report.Unresolved) != 0 {
		t.Errorf("Unresolved = %+v, want empty", job.Report.Unresolved)
	}
}

func TestEngineRunFailsOnEmptyPlaylist(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc()}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	engine, store := newFixture(source, dest)
	job, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, shared.ErrEmptyPlaylist) {
		t.Fatalf("Run() error = %v, want ErrEmptyPlaylist", err)
	}

	if job.Status != models.JobFailed {
		t.Errorf("Status = %s, want failed", job.Status)
	}
	if len(dest.WrittenDocs) != 0 {
		t.Error("destination write attempted for an empty playlist")
	}

	saved, _ := store.Get("job1")
	if saved.Status != models.JobFailed || !strings.Contains(saved.ErrorMessage, "nothing to migrate") {
		t.Errorf("persisted job = %+v", saved)
	}
}

func TestEngineRunFailsOnSourceError(t *testing.T) {
	boom := errors.New("spotify down")
	source := &apptest.MockProvider{ProviderName: "spotify", ReadErr: boom}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	engine, store := newFixture(source, dest)
	job, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want the read error", err)
	}
	if job.Status != models.JobFailed {
		t.Errorf("Status = %s, want failed", job.Status)
	}

	saved, _ := store.Get("job1")
	if !strings.Contains(saved.ErrorMessage, "spotify down") {
		t.Errorf("ErrorMessage = %q", saved.ErrorMessage)
	}
}

func TestEngineRunFailsOnMissingAuth(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "One", Artists: []string{"A"}},
	)}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	store := apptest.NewMemoryJobStore(testJob())
	factory := &apptest.MockProviderFactory{Providers: map[string]services.Provider{
		"spotify": source,
		"deezer":  dest,
	}}
	auth := &apptest.StaticAuth{Tokens: map[string]string{"spotify": "s-tok"}}

	engine := NewEngine(store, auth, factory)
	job, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, shared.ErrMissingProviderAuth) {
		t.Fatalf("Run() error = %v, want ErrMissingProviderAuth", err)
	}
	if job.Status != models.JobFailed {
		t.Errorf("Status = %s, want failed", job.Status)
	}
}

func TestEngineRunFailsOnWriteError(t *testing.T) {
	boom := errors.New("deezer rejected the write")
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "One", Artists: []string{"A"}, ISRC: "USAAA0000001"},
	)}
	dest := &apptest.MockProvider{ProviderName: "deezer", WriteErr: boom}

	engine, store := newFixture(source, dest)
	_, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want the write error", err)
	}

	saved, _ := store.Get("job1")
	if saved.Status != models.JobFailed {
		t.Errorf("persisted status = %s, want failed", saved.Status)
	}
}

func TestEngineRunSwallowsFailurePersistenceErrors(t *testing.T) {
	boom := errors.New("spotify down")
	source := &apptest.MockProvider{ProviderName: "spotify", ReadErr: boom}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	store := apptest.NewMemoryJobStore(testJob())
	store.SaveErr = errors.New("disk full")
	factory := &apptest.MockProviderFactory{Providers: map[string]services.Provider{
		"spotify": source,
		"deezer":  dest,
	}}

	engine := NewEngine(store, testAuth(), factory)
	_, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want the migration cause, not the persistence error", err)
	}
}

func TestEngineRunRejectsTerminalJobs(t *testing.T) {
	done := testJob()
	done.Status = models.JobSucceeded
	store := apptest.NewMemoryJobStore(done)

	engine := NewEngine(store, testAuth(), &apptest.MockProviderFactory{})
	_, err := engine.Run(context.Background(), "job1", nil)
	if !errors.Is(err, shared.ErrJobTerminal) {
		t.Errorf("Run() error = %v, want ErrJobTerminal", err)
	}
}

func TestEngineRunUnknownJob(t *testing.T) {
	store := apptest.NewMemoryJobStore()
	engine := NewEngine(store, testAuth(), &apptest.MockProviderFactory{})

	_, err := engine.Run(context.Background(), "missing", nil)
	if !errors.Is(err, shared.ErrJobNotFound) {
		t.Errorf("Run() error = %v, want ErrJobNotFound", err)
	}
}

func TestEngineProgressNeverBlocks(t *testing.T) {
	source := &apptest.MockProvider{ProviderName: "spotify", Doc: sourceDoc(
		models.Track{Title: "One", Artists: []string{"A"}, ISRC: "USAAA0000001"},
		models.Track{Title: "Two", Artists: []string{"B"}, ISRC: "USAAA0000002"},
	)}
	dest := &apptest.MockProvider{ProviderName: "deezer"}

	engine, _ := newFixture(source, dest)

	// Nobody reads from the channel; a full buffer must not stall the run.
	progress := make(chan ProgressUpdate, 1)
	job, err := engine.Run(context.Background(), "job1", progress)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if job.Status != models.JobSucceeded {
		t.Errorf("Status = %s, want succeeded", job.Status)
	}
	if len(progress) != 1 {
		t.Errorf("buffered updates = %d, want the single update that fit", len(progress))
	}
}
