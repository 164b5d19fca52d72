// Tidal API implementation of [Provider]
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
	tidalName      = "tidal"
	tidalPageSize  = 100
	tidalBatchSize = 20
)

type tidalArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tidalAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate"`
}

type tidalTrack struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Artists  []tidalArtist `json:"artists"`
	Album    tidalAlbum    `json:"album"`
	Duration int           `json:"duration"` // seconds
	Explicit bool          `json:"explicit"`
	ISRC     string        `json:"isrc"`
}

type tidalItemsPage struct {
	Items []struct {
		Item tidalTrack `json:"item"`
	} `json:"items"`
	TotalNumberOfItems int `json:"totalNumberOfItems"`
}

type tidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	NumberOfTracks int    `json:"numberOfTracks"`
}

// TidalProvider implements [Provider] for the Tidal API.
type TidalProvider struct {
	client *transport.Client
	logger *log.Logger
}

// NewTidalProvider creates a Tidal provider over the given transport.
func NewTidalProvider(client *transport.Client, logger *log.Logger) *TidalProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TidalProvider{client: client, logger: logger.With("provider", tidalName)}
}

func (p *TidalProvider) Name() string { return tidalName }

func (p *TidalProvider) ReadPlaylist(ctx context.Context, playlistID string, opts ReadOptions) (*models.Document, error) {
	raw, err := p.client.Request(ctx, http.MethodGet, "/playlists/"+playlistID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var pl tidalPlaylist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist response: %w", err)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > tidalPageSize {
		pageSize = tidalPageSize
	}

	doc := &models.Document{
		Name:             pl.Title,
		Description:      pl.Description,
		SourceService:    tidalName,
		SourcePlaylistID: pl.UUID,
	}

	for offset := 0; ; {
		query := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(pageSize)},
		}
		raw, err := p.client.Request(ctx, http.MethodGet, "/playlists/"+playlistID+"/items", &transport.RequestOptions{Query: query})
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}

		var page tidalItemsPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("failed to parse items response: %w", err)
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			doc.Tracks = append(doc.Tracks, tidalToTrack(item.Item, len(doc.Tracks)+1))
		}

		offset += len(page.Items)
		if offset >= page.TotalNumberOfItems {
			break
		}
	}

	p.logger.Debug("playlist read", "playlist", playlistID, "tracks", len(doc.Tracks))
	return doc, nil
}

func (p *TidalProvider) WritePlaylist(ctx context.Context, doc *models.Document, opts WriteOptions) (*models.WriteResult, error) {
	payload := map[string]any{
		"title":       doc.Name,
		"description": doc.Description,
	}
	raw, err := p.client.Request(ctx, http.MethodPost, "/playlists", &transport.RequestOptions{Body: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	var created tidalPlaylist
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create playlist response: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > tidalBatchSize {
		batchSize = tidalBatchSize
	}

	report, err := WriteBatches(ctx, tidalName, doc, batchSize, func(ctx context.Context, ids []string) error {
		_, err := p.client.Request(ctx, http.MethodPost, "/playlists/"+created.UUID+"/items",
			&transport.RequestOptions{Body: map[string]any{"trackIds": ids}})
		return err
	})

	result := &models.WriteResult{DestID: created.UUID, Report: report}
	if err != nil {
		return result, fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return result, nil
}

func tidalToTrack(t tidalTrack, position int) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return models.Track{
		Position:    position,
		Title:       t.Title,
		Artists:     artists,
		Album:       t.Album.Title,
		DurationMS:  t.Duration * 1000,
		Explicit:    t.Explicit,
		ReleaseDate: t.Album.ReleaseDate,
		ISRC:        models.NormalizeISRC(t.ISRC),
		ProviderIDs: map[string]string{tidalName: strconv.FormatInt(t.ID, 10)},
	}
}
