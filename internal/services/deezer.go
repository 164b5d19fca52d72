// Deezer API implementation of [Provider]
//
// Deezer reports durations in whole seconds and paginates with index/limit.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"tuneport/internal/models"
	"tuneport/internal/shared"
	"tuneport/internal/transport"
)

const (
	deezerName      = "deezer"
	deezerPageSize  = 100
	deezerBatchSize = 100
)

type deezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deezerAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

type deezerTrack struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Artist         deezerArtist `json:"artist"`
	Album          deezerAlbum  `json:"album"`
	Duration       int          `json:"duration"` // seconds
	ExplicitLyrics bool         `json:"explicit_lyrics"`
	ISRC           string       `json:"isrc"`
}

type deezerTracksPage struct {
	Data  []deezerTrack `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next"`
}

type deezerPlaylist struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NbTracks    int    `json:"nb_tracks"`
}

// DeezerProvider implements [Provider] and [CatalogSearcher] for the Deezer API.
type DeezerProvider struct {
	client *transport.Client
	logger *log.Logger
}

// NewDeezerProvider creates a Deezer provider over the given transport.
func NewDeezerProvider(client *transport.Client, logger *log.Logger) *DeezerProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DeezerProvider{client: client, logger: logger.With("provider", deezerName)}
}

func (p *DeezerProvider) Name() string { return deezerName }

func (p *DeezerProvider) ReadPlaylist(ctx context.Context, playlistID string, opts ReadOptions) (*models.Document, error) {
	raw, err := p.client.Request(ctx, http.MethodGet, "/playlist/"+playlistID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var pl deezerPlaylist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist response: %w", err)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > deezerPageSize {
		pageSize = deezerPageSize
	}

	doc := &models.Document{
		Name:             pl.Title,
		Description:      pl.Description,
		SourceService:    deezerName,
		SourcePlaylistID: strconv.FormatInt(pl.ID, 10),
	}

	for index := 0; ; {
		query := url.Values{
			"index": {strconv.Itoa(index)},
			"limit": {strconv.Itoa(pageSize)},
		}
		raw, err := p.client.Request(ctx, http.MethodGet, "/playlist/"+playlistID+"/tracks", &transport.RequestOptions{Query: query})
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist tracks: %w", err)
		}

		var page deezerTracksPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("failed to parse tracks response: %w", err)
		}
		if len(page.Data) == 0 {
			break
		}

		for _, t := range page.Data {
			doc.Tracks = append(doc.Tracks, deezerToTrack(t, len(doc.Tracks)+1))
		}

		index += len(page.Data)
		if page.Next == "" {
			break
		}
	}

	p.logger.Debug("playlist read", "playlist", playlistID, "tracks", len(doc.Tracks))
	return doc, nil
}

func (p *DeezerProvider) WritePlaylist(ctx context.Context, doc *models.Document, opts WriteOptions) (*models.WriteResult, error) {
	payload := map[string]any{"title": doc.Name}
	raw, err := p.client.Request(ctx, http.MethodPost, "/user/me/playlists", &transport.RequestOptions{Body: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create playlist response: %w", err)
	}
	destID := strconv.FormatInt(created.ID, 10)

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > deezerBatchSize {
		batchSize = deezerBatchSize
	}

	report, err := WriteBatches(ctx, deezerName, doc, batchSize, func(ctx context.Context, ids []string) error {
		_, err := p.client.Request(ctx, http.MethodPost, "/playlist/"+destID+"/tracks",
			&transport.RequestOptions{Body: map[string]any{"songs": strings.Join(ids, ",")}})
		return err
	})

	result := &models.WriteResult{DestID: destID, Report: report}
	if err != nil {
		return result, fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return result, nil
}

// SearchCatalog searches the Deezer catalog for candidate recordings.
func (p *DeezerProvider) SearchCatalog(ctx context.Context, title, artist string) ([]models.Candidate, error) {
	query := url.Values{
		"q": {fmt.Sprintf(`track:"%s" artist:"%s"`, title, artist)},
	}
	raw, err := p.client.Request(ctx, http.MethodGet, "/search/track", &transport.RequestOptions{Query: query})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp deezerTracksPage
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(resp.Data))
	for _, t := range resp.Data {
		candidates = append(candidates, models.Candidate{
			ID:            strconv.FormatInt(t.ID, 10),
			Title:         t.Title,
			PrimaryArtist: t.Artist.Name,
			DurationMS:    t.Duration * 1000,
			ISRC:          t.ISRC,
		})
	}
	return candidates, nil
}

func deezerToTrack(t deezerTrack, position int) models.Track {
	return models.Track{
		Position:    position,
		Title:       t.Title,
		Artists:     []string{t.Artist.Name},
		Album:       t.Album.Title,
		DurationMS:  t.Duration * 1000,
		Explicit:    t.ExplicitLyrics,
		ReleaseDate: t.Album.ReleaseDate,
		ISRC:        models.NormalizeISRC(t.ISRC),
		ProviderIDs: map[string]string{deezerName: strconv.FormatInt(t.ID, 10)},
	}
}
