// Spotify Web API implementation of [Provider]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"tuneport/internal/models"
	"tuneport/internal/shared"
	"tuneport/internal/transport"
)

const (
	spotifyName        = "spotify"
	spotifyPageSize    = 50
	spotifySearchLimit = 10
)

type spotifyExternalIDs struct {
	ISRC string `json:"isrc"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyTrack struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Artists     []spotifyArtist    `json:"artists"`
	Album       spotifyAlbum       `json:"album"`
	DurationMS  int                `json:"duration_ms"`
	Explicit    bool               `json:"explicit"`
	ExternalIDs spotifyExternalIDs `json:"external_ids"`
}

type spotifyPlaylistTrack struct {
	Track spotifyTrack `json:"track"`
}

type spotifyTracksPage struct {
	Items  []spotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

type spotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type spotifySearch struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyProvider implements [Provider] and [CatalogSearcher] for the Spotify
// Web API.
type SpotifyProvider struct {
	client *transport.Client
	logger *log.Logger
}

// NewSpotifyProvider creates a Spotify provider over the given transport.
func NewSpotifyProvider(client *transport.Client, logger *log.Logger) *SpotifyProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyProvider{client: client, logger: logger.With("provider", spotifyName)}
}

func (p *SpotifyProvider) Name() string { return spotifyName }

// ReadPlaylist reads playlist metadata and every track page into a canonical
// document.
func (p *SpotifyProvider) ReadPlaylist(ctx context.Context, playlistID string, opts ReadOptions) (*models.Document, error) {
	raw, err := p.client.Request(ctx, http.MethodGet, "/playlists/"+playlistID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var pl spotifyPlaylist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist response: %w", err)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > spotifyPageSize {
		pageSize = spotifyPageSize
	}

	doc := &models.Document{
		Name:             pl.Name,
		Description:      pl.Description,
		SourceService:    spotifyName,
		SourcePlaylistID: pl.ID,
	}

	for offset := 0; ; {
		query := url.Values{
			"limit":  {strconv.Itoa(pageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		raw, err := p.client.Request(ctx, http.MethodGet, "/playlists/"+playlistID+"/tracks", &transport.RequestOptions{Query: query})
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist tracks: %w", err)
		}

		var page spotifyTracksPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("failed to parse tracks response: %w", err)
		}

		for _, item := range page.Items {
			if item.Track.ID == "" {
				continue // local or unavailable track
			}
			doc.Tracks = append(doc.Tracks, spotifyToTrack(item.Track, len(doc.Tracks)+1))
		}

		offset += len(page.Items)
		if page.Next == nil || len(page.Items) == 0 {
			break
		}
	}

	p.logger.Debug("playlist read", "playlist", playlistID, "tracks", len(doc.Tracks))
	return doc, nil
}

// WritePlaylist creates a private playlist for the current user and adds the
// document's Spotify track ids in ordered batches of at most 100 URIs.
func (p *SpotifyProvider) WritePlaylist(ctx context.Context, doc *models.Document, opts WriteOptions) (*models.WriteResult, error) {
	raw, err := p.client.Request(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	payload := map[string]any{
		"name":        doc.Name,
		"description": doc.Description,
		"public":      false,
	}
	raw, err = p.client.Request(ctx, http.MethodPost, "/users/"+user.ID+"/playlists", &transport.RequestOptions{Body: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create playlist response: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize // Spotify accepts up to 100 URIs per request
	}

	report, err := WriteBatches(ctx, spotifyName, doc, batchSize, func(ctx context.Context, ids []string) error {
		uris := make([]string, len(ids))
		for i, id := range ids {
			uris[i] = "spotify:track:" + id
		}
		_, err := p.client.Request(ctx, http.MethodPost, "/playlists/"+created.ID+"/tracks",
			&transport.RequestOptions{Body: map[string]any{"uris": uris}})
		return err
	})

	result := &models.WriteResult{DestID: created.ID, Report: report}
	if err != nil {
		return result, fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return result, nil
}

// SearchCatalog searches Spotify for candidate recordings matching the
// title/artist pair.
func (p *SpotifyProvider) SearchCatalog(ctx context.Context, title, artist string) ([]models.Candidate, error) {
	query := url.Values{
		"type":  {"track"},
		"limit": {strconv.Itoa(spotifySearchLimit)},
		"q":     {fmt.Sprintf("track:%s artist:%s", title, artist)},
	}
	raw, err := p.client.Request(ctx, http.MethodGet, "/search", &transport.RequestOptions{Query: query})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp spotifySearch
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		candidates = append(candidates, models.Candidate{
			ID:            t.ID,
			Title:         t.Name,
			PrimaryArtist: firstArtist(t.Artists),
			DurationMS:    t.DurationMS,
			ISRC:          t.ExternalIDs.ISRC,
		})
	}
	return candidates, nil
}

func spotifyToTrack(t spotifyTrack, position int) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return models.Track{
		Position:    position,
		Title:       t.Name,
		Artists:     artists,
		Album:       t.Album.Name,
		DurationMS:  t.DurationMS,
		Explicit:    t.Explicit,
		ReleaseDate: t.Album.ReleaseDate,
		ISRC:        models.NormalizeISRC(t.ExternalIDs.ISRC),
		ProviderIDs: map[string]string{spotifyName: t.ID},
	}
}

func firstArtist(artists []spotifyArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}
