package models

import "testing"

func TestDocumentNormalized(t *testing.T) {
	doc := &Document{
		Name:             "Road Trip",
		SourceService:    "spotify",
		SourcePlaylistID: "p1",
		Tracks: []Track{
			{Position: 3, Title: "  First  ", Artists: []string{" Queen "}, ISRC: "gb-aye-97-00164"},
			{Position: 9, Title: "Second", Artists: []string{"", "  "}},
		},
	}

	t.Run("renumbers positions densely from 1", func(t *testing.T) {
		got := doc.Normalized("")
		if got.Tracks[0].Position != 1 || got.Tracks[1].Position != 2 {
			t.Errorf("positions = %d, %d, want 1, 2", got.Tracks[0].Position, got.Tracks[1].Position)
		}
	})

	t.Run("normalizes isrc and trims fields", func(t *testing.T) {
		got := doc.Normalized("")
		if got.Tracks[0].ISRC != "GBAYE9700164" {
			t.Errorf("ISRC = %q, want GBAYE9700164", got.Tracks[0].ISRC)
		}
		if got.Tracks[0].Title != "First" {
			t.Errorf("Title = %q, want First", got.Tracks[0].Title)
		}
		if got.Tracks[0].Artists[0] != "Queen" {
			t.Errorf("Artists[0] = %q, want Queen", got.Tracks[0].Artists[0])
		}
	})

	t.Run("empty artists fall back to unknown", func(t *testing.T) {
		got := doc.Normalized("")
		if len(got.Tracks[1].Artists) != 1 || got.Tracks[1].Artists[0] != UnknownArtist {
			t.Errorf("Artists = %v, want [%s]", got.Tracks[1].Artists, UnknownArtist)
		}
	})

	t.Run("destination name overrides when non-blank", func(t *testing.T) {
		if got := doc.Normalized("  Mix Tape  "); got.Name != "Mix Tape" {
			t.Errorf("Name = %q, want Mix Tape", got.Name)
		}
		if got := doc.Normalized("   "); got.Name != "Road Trip" {
			t.Errorf("Name = %q, want fallback Road Trip", got.Name)
		}
	})

	t.Run("receiver is not mutated", func(t *testing.T) {
		doc.Normalized("Other")
		if doc.Tracks[0].Position != 3 || doc.Tracks[0].ISRC != "gb-aye-97-00164" || doc.Name != "Road Trip" {
			t.Error("Normalized mutated the receiver")
		}
	})
}
