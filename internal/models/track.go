package models

import (
	"regexp"
	"strings"
)

// UnknownArtist is the fallback primary artist assigned during normalization
// when a track carries no artist credits at all.
const UnknownArtist = "Unknown Artist"

// Track represents one recording inside a canonical document.
//
// Position is 1-based and unique within a document. Artists is ordered with the
// primary artist first and is never empty after normalization. DurationMS is -1
// when the source service did not report a duration.
type Track struct {
	Position      int               `json:"position"`
	Title         string            `json:"title"`
	Artists       []string          `json:"artists"`
	Album         string            `json:"album,omitempty"`
	DurationMS    int               `json:"duration_ms,omitempty"`
	Explicit      bool              `json:"explicit,omitempty"`
	ReleaseDate   string            `json:"release_date,omitempty"`
	ISRC          string            `json:"isrc,omitempty"`
	MBRecordingID string            `json:"mb_recording_id,omitempty"`
	MBReleaseID   string            `json:"mb_release_id,omitempty"`
	ProviderIDs   map[string]string `json:"provider_ids,omitempty"`
}

// PrimaryArtist returns the first artist credit, or the empty string for an
// un-normalized track without credits.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ProviderID returns the service-native track id for the given provider name,
// or the empty string when the track has not been resolved for that provider.
func (t Track) ProviderID(provider string) string {
	return t.ProviderIDs[provider]
}

// WithProviderID returns a copy of the track with the given provider id set.
// The receiver is not mutated.
func (t Track) WithProviderID(provider, id string) Track {
	ids := make(map[string]string, len(t.ProviderIDs)+1)
	for k, v := range t.ProviderIDs {
		ids[k] = v
	}
	ids[provider] = id
	t.ProviderIDs = ids
	return t
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeISRC strips separators from an ISRC and uppercases it, so that
// "US-ABC-12-34567" and "usabc1234567" compare equal.
func NormalizeISRC(isrc string) string {
	return strings.ToUpper(nonAlnum.ReplaceAllString(isrc, ""))
}
