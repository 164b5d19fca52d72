package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"tuneport/internal/cache"
	"tuneport/internal/models"
	"tuneport/internal/shared"
	"tuneport/internal/transport"
)

// ReadOptions tunes a playlist read.
type ReadOptions struct {
	// PageSize bounds each page request; 0 uses the provider default.
	PageSize int
}

// WriteOptions tunes a playlist write.
type WriteOptions struct {
	// BatchSize bounds each chunk submission; 0 uses the provider default.
	BatchSize int
}

// Provider is the contract every streaming service adapter implements.
type Provider interface {
	// Name returns the provider identifier (e.g. "spotify", "deezer").
	Name() string

	// ReadPlaylist reads the playlist into a canonical document, handling
	// pagination internally.
	ReadPlaylist(ctx context.Context, playlistID string, opts ReadOptions) (*models.Document, error)

	// WritePlaylist creates a destination playlist and submits the document's
	// tracks in ordered batches.
	WritePlaylist(ctx context.Context, doc *models.Document, opts WriteOptions) (*models.WriteResult, error)
}

// CatalogSearcher is an optional provider capability: searching the provider's
// catalog for candidates matching a title/artist pair.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, title, artist string) ([]models.Candidate, error)
}

// AuthLookup resolves provider credentials. Implementations raise
// [shared.ErrMissingProviderAuth] when no credentials are linked.
type AuthLookup interface {
	ProviderAuth(ctx context.Context, provider string) (string, error)
}

// ConfigAuth backs [AuthLookup] with the TOML configuration.
type ConfigAuth struct {
	cfg *shared.Config
}

func NewConfigAuth(cfg *shared.Config) *ConfigAuth {
	return &ConfigAuth{cfg: cfg}
}

func (a *ConfigAuth) ProviderAuth(_ context.Context, provider string) (string, error) {
	pc, ok := a.cfg.Providers[provider]
	if !ok || pc.Token == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingProviderAuth, provider)
	}
	return pc.Token, nil
}

// Registry maps provider names to constructed [Provider] instances. Safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider, keyed by its Name().
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for name or [shared.ErrUnknownProvider].
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProvider, name)
	}
	return p, nil
}

// Available returns the names of all registered providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Factory constructs token-bound providers on demand. The per-provider
// breaker comes from a shared [transport.Registry] so concurrent jobs hitting
// the same provider share failure state.
type Factory struct {
	cfg      *shared.Config
	breakers *transport.Registry
	store    cache.Store
	logger   *log.Logger
}

// NewFactory creates a provider factory. store may be nil to disable response
// caching; logger may be nil for a default.
func NewFactory(cfg *shared.Config, breakers *transport.Registry, store cache.Store, logger *log.Logger) *Factory {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Factory{cfg: cfg, breakers: breakers, store: store, logger: logger}
}

// Provider constructs the named provider bound to the given bearer token.
func (f *Factory) Provider(name, token string) (Provider, error) {
	client := f.client(name, token)
	switch name {
	case "spotify":
		return NewSpotifyProvider(client, f.logger), nil
	case "deezer":
		return NewDeezerProvider(client, f.logger), nil
	case "tidal":
		return NewTidalProvider(client, f.logger), nil
	case "youtube":
		return NewYouTubeProvider(client, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProvider, name)
	}
}

func (f *Factory) client(name, token string) *transport.Client {
	tc := f.cfg.Transport
	cfg := transport.Config{
		Provider:       name,
		BaseURL:        f.cfg.Providers[name].BaseURL,
		Token:          token,
		TimeoutSeconds: tc.TimeoutSeconds,
		MaxRetries:     tc.MaxRetries,
		Backoff: transport.Backoff{
			Base: time.Duration(tc.BackoffBaseMS) * time.Millisecond,
			Max:  time.Duration(tc.BackoffMaxMS) * time.Millisecond,
		},
		RatePerSecond: tc.RatePerSecond,
		CacheTTL:      time.Duration(tc.CacheTTLMS) * time.Millisecond,
	}

	opts := []transport.Option{transport.WithLogger(f.logger)}
	if f.store != nil {
		opts = append(opts, transport.WithCache(f.store))
	}
	return transport.NewClient(cfg, f.breakers.Get(name), opts...)
}
