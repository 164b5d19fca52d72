// YouTube Music implementation of [Provider]
//
// Communicates with a ytmusicapi-style proxy exposing playlist and search
// endpoints; the proxy handles YouTube Music authentication complexities.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"tuneport/internal/models"
	"tuneport/internal/shared"
	"tuneport/internal/transport"
)

const (
	youtubeName      = "youtube"
	youtubeBatchSize = 50
)

type youtubeArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type youtubeAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type youtubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []youtubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	DurationSec int             `json:"duration_seconds"`
	IsExplicit  bool            `json:"isExplicit"`
	ISRC        string          `json:"isrc,omitempty"`
}

type youtubePlaylist struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TrackCount  int            `json:"trackCount"`
	Tracks      []youtubeTrack `json:"tracks"`
}

// YouTubeProvider implements [Provider] and [CatalogSearcher] for YouTube
// Music through the proxy API.
type YouTubeProvider struct {
	client *transport.Client
	logger *log.Logger
}

// NewYouTubeProvider creates a YouTube Music provider over the given transport.
func NewYouTubeProvider(client *transport.Client, logger *log.Logger) *YouTubeProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &YouTubeProvider{client: client, logger: logger.With("provider", youtubeName)}
}

func (p *YouTubeProvider) Name() string { return youtubeName }

// ReadPlaylist fetches the playlist with its full track listing; the proxy
// returns all tracks in one response.
func (p *YouTubeProvider) ReadPlaylist(ctx context.Context, playlistID string, _ ReadOptions) (*models.Document, error) {
	raw, err := p.client.Request(ctx, http.MethodGet, "/playlists/"+playlistID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var pl youtubePlaylist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist response: %w", err)
	}

	doc := &models.Document{
		Name:             pl.Title,
		Description:      pl.Description,
		SourceService:    youtubeName,
		SourcePlaylistID: pl.ID,
	}
	for _, t := range pl.Tracks {
		if t.VideoID == "" {
			continue // unavailable video
		}
		doc.Tracks = append(doc.Tracks, youtubeToTrack(t, len(doc.Tracks)+1))
	}

	p.logger.Debug("playlist read", "playlist", playlistID, "tracks", len(doc.Tracks))
	return doc, nil
}

func (p *YouTubeProvider) WritePlaylist(ctx context.Context, doc *models.Document, opts WriteOptions) (*models.WriteResult, error) {
	payload := map[string]any{
		"title":       doc.Name,
		"description": doc.Description,
		"privacy":     "PRIVATE",
	}
	raw, err := p.client.Request(ctx, http.MethodPost, "/playlists", &transport.RequestOptions{Body: payload})
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
	if batchSize <= 0 || batchSize > youtubeBatchSize {
		batchSize = youtubeBatchSize
	}

	report, err := WriteBatches(ctx, youtubeName, doc, batchSize, func(ctx context.Context, ids []string) error {
		_, err := p.client.Request(ctx, http.MethodPost, "/playlists/"+created.ID+"/items",
			&transport.RequestOptions{Body: map[string]any{"videoIds": ids}})
		return err
	})

	result := &models.WriteResult{DestID: created.ID, Report: report}
	if err != nil {
		return result, fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return result, nil
}

// SearchCatalog searches YouTube Music for candidate recordings.
func (p *YouTubeProvider) SearchCatalog(ctx context.Context, title, artist string) ([]models.Candidate, error) {
	query := url.Values{
		"query":  {title + " " + artist},
		"filter": {"songs"},
	}
	raw, err := p.client.Request(ctx, http.MethodGet, "/search", &transport.RequestOptions{Query: query})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var results []youtubeTrack
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, t := range results {
		if t.VideoID == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			ID:            t.VideoID,
			Title:         t.Title,
			PrimaryArtist: firstYouTubeArtist(t.Artists),
			DurationMS:    t.DurationSec * 1000,
			ISRC:          t.ISRC,
		})
	}
	return candidates, nil
}

func youtubeToTrack(t youtubeTrack, position int) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	album := ""
	if t.Album != nil {
		album = t.Album.Name
	}

	return models.Track{
		Position:    position,
		Title:       t.Title,
		Artists:     artists,
		Album:       album,
		DurationMS:  t.DurationSec * 1000,
		Explicit:    t.IsExplicit,
		ISRC:        models.NormalizeISRC(t.ISRC),
		ProviderIDs: map[string]string{youtubeName: t.VideoID},
	}
}

func firstYouTubeArtist(artists []youtubeArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}
