package models

import "strings"

// Document is the canonical playlist interchange value. A provider read or file
// import produces one; the resolver and provider writes consume it read-only.
type Document struct {
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	SourceService    string  `json:"source_service,omitempty"`
	SourcePlaylistID string  `json:"source_playlist_id,omitempty"`
	Tracks           []Track `json:"tracks"`
}

// Normalized returns a copy of the document ready for a destination write:
// the name is overridden when destName is non-blank (trimmed, falling back to
// the source name), track positions are renumbered to a dense 1-based sequence
// regardless of source gaps, ISRCs are normalized, and empty artist lists fall
// back to [UnknownArtist]. The receiver is never mutated.
func (d *Document) Normalized(destName string) *Document {
	out := &Document{
		Name:             d.Name,
		Description:      d.Description,
		SourceService:    d.SourceService,
		SourcePlaylistID: d.SourcePlaylistID,
		Tracks:           make([]Track, len(d.Tracks)),
	}

	if name := strings.TrimSpace(destName); name != "" {
		out.Name = name
	}

	for i, track := range d.Tracks {
		t := track
		t.Position = i + 1
		t.Title = strings.TrimSpace(t.Title)
		t.ISRC = NormalizeISRC(t.ISRC)

		artists := make([]string, 0, len(t.Artists))
		for _, artist := range t.Artists {
			if a := strings.TrimSpace(artist); a != "" {
				artists = append(artists, a)
			}
		}
		if len(artists) == 0 {
			artists = []string{UnknownArtist}
		}
		t.Artists = artists

		out.Tracks[i] = t
	}

	return out
}
