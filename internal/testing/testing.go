// package testing contains shared test doubles for providers, job storage,
// and HTTP exchanges.
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"tuneport/internal/models"
	"tuneport/internal/services"
	"tuneport/internal/shared"
)

// MockProvider is a configurable test double for [services.Provider]. Zero
// value behaves as an empty provider named "mock".
type MockProvider struct {
	ProviderName string
	Doc          *models.Document
	ReadErr      error
	WriteResult  *models.WriteResult
	WriteErr     error
	Candidates   map[string][]models.Candidate
	SearchErr    error

	ReadCalls   []string
	WrittenDocs []*models.Document
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockProvider) ReadPlaylist(_ context.Context, playlistID string, _ services.ReadOptions) (*models.Document, error) {
	m.ReadCalls = append(m.ReadCalls, playlistID)
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if m.Doc == nil {
		return &models.Document{SourceService: m.Name(), SourcePlaylistID: playlistID}, nil
	}
	return m.Doc, nil
}

func (m *MockProvider) WritePlaylist(_ context.Context, doc *models.Document, _ services.WriteOptions) (*models.WriteResult, error) {
	m.WrittenDocs = append(m.WrittenDocs, doc)
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	if m.WriteResult != nil {
		return m.WriteResult, nil
	}
	return &models.WriteResult{DestID: "mock-dest"}, nil
}

// SearchingProvider is a MockProvider that also satisfies
// [services.CatalogSearcher], keyed on "title|artist".
type SearchingProvider struct {
	MockProvider
}

func (s *SearchingProvider) SearchCatalog(_ context.Context, title, artist string) ([]models.Candidate, error) {
	if s.SearchErr != nil {
		return nil, s.SearchErr
	}
	return s.Candidates[title+"|"+artist], nil
}

// MockProviderFactory hands out pre-registered providers by name.
type MockProviderFactory struct {
	Providers map[string]services.Provider
}

func (f *MockProviderFactory) Provider(name, _ string) (services.Provider, error) {
	p, ok := f.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProvider, name)
	}
	return p, nil
}

// StaticAuth returns a fixed token for every provider in Tokens and
// [shared.ErrMissingProviderAuth] otherwise.
type StaticAuth struct {
	Tokens map[string]string
}

func (a *StaticAuth) ProviderAuth(_ context.Context, provider string) (string, error) {
	token, ok := a.Tokens[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingProviderAuth, provider)
	}
	return token, nil
}

// MemoryJobStore is an in-memory job store enforcing the same terminal
// guards as the SQLite repository.
type MemoryJobStore struct {
	mu         sync.Mutex
	jobs       map[string]*models.MigrationJob
	SaveErr    error
	StatusLog  []models.JobStatus
	SavedFinal []*models.MigrationJob
}

func NewMemoryJobStore(jobs ...*models.MigrationJob) *MemoryJobStore {
	store := &MemoryJobStore{jobs: map[string]*models.MigrationJob{}}
	for _, job := range jobs {
		copied := *job
		store.jobs[job.ID] = &copied
	}
	return store
}

func (s *MemoryJobStore) Get(id string) (*models.MigrationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryJobStore) UpdateStatus(id string, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", shared.ErrJobTerminal, id, job.Status)
	}
	job.Status = status
	s.StatusLog = append(s.StatusLog, status)
	return nil
}

func (s *MemoryJobStore) SaveResult(job *models.MigrationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	current, ok := s.jobs[job.ID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID)
	}
	if current.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", shared.ErrJobTerminal, job.ID, current.Status)
	}
	copied := *job
	s.jobs[job.ID] = &copied
	s.SavedFinal = append(s.SavedFinal, &copied)
	return nil
}

// MockRoundTripper replays a scripted sequence of HTTP responses. Once the
// script is exhausted the last entry repeats.
type MockRoundTripper struct {
	Responses []*http.Response
	Errs      []error
	Requests  []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{Responses: []*http.Response{r}, Errs: []error{e}}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	if idx < 0 {
		return nil, errors.New("no scripted response")
	}
	var err error
	if idx < len(m.Errs) {
		err = m.Errs[idx]
	}
	return m.Responses[idx], err
}
