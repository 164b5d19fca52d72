package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tuneport/internal/transport"
)

func spotifyTestProvider(t *testing.T, handler http.Handler) *SpotifyProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := transport.NewClient(transport.Config{
		Provider: "spotify",
		BaseURL:  server.URL,
		Token:    "test-token",
	}, transport.NewBreaker("spotify", 5, time.Minute))
	return NewSpotifyProvider(client, nil)
}

func TestSpotifyReadPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/p1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","name":"Road Trip","description":"songs","tracks":{"total":3}}`)
	})
	pageCalls := 0
	mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		pageCalls++
		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprintf(w, `{
				"items": [
					{"track": {"id": "t1", "name": "First", "artists": [{"name": "Queen"}], "album": {"name": "A"}, "duration_ms": 200000, "external_ids": {"isrc": "gb-aye-97-00164"}}},
					{"track": {"id": "", "name": "Local Only", "artists": [{"name": "Nobody"}]}}
				],
				"total": 3, "offset": 0, "next": %q
			}`, "page2")
		default:
			fmt.Fprint(w, `{
				"items": [
					{"track": {"id": "t2", "name": "Second", "artists": [{"name": "Muse"}, {"name": "Guest"}], "album": {"name": "B"}, "duration_ms": 180000}}
				],
				"total": 3, "offset": 2, "next": null
			}`)
		}
	})

	provider := spotifyTestProvider(t, mux)
	doc, err := provider.ReadPlaylist(context.Background(), "p1", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadPlaylist() error = %v", err)
	}

	if doc.Name != "Road Trip" || doc.SourceService != "spotify" || doc.SourcePlaylistID != "p1" {
		t.Errorf("document header = %+v", doc)
	}
	if pageCalls != 2 {
		t.Errorf("page requests = %d, want 2", pageCalls)
	}
	if len(doc.Tracks) != 2 {
		t.Fatalf("track count = %d, want 2 (local track skipped)", len(doc.Tracks))
	}
	if doc.Tracks[0].ISRC != "GBAYE9700164" {
		t.Errorf("ISRC = %q, want normalized GBAYE9700164", doc.Tracks[0].ISRC)
	}
	if doc.Tracks[0].ProviderID("spotify") != "t1" {
		t.Errorf("ProviderID = %q, want t1", doc.Tracks[0].ProviderID("spotify"))
	}
	if doc.Tracks[1].PrimaryArtist() != "Muse" || len(doc.Tracks[1].Artists) != 2 {
		t.Errorf("artists = %v, want Muse first of 2", doc.Tracks[1].Artists)
	}
}

func TestSpotifyWritePlaylist(t *testing.T) {
	var createdName string
	var batches [][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"user1"}`)
	})
	mux.HandleFunc("/users/user1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Name   string `json:"name"`
			Public bool   `json:"public"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		createdName = payload.Name
		if payload.Public {
			t.Error("created playlist should be private")
		}
		fmt.Fprint(w, `{"id":"new-pl"}`)
	})
	mux.HandleFunc("/playlists/new-pl/tracks", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			URIs []string `json:"uris"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		batches = append(batches, payload.URIs)
		fmt.Fprint(w, `{"snapshot_id":"s1"}`)
	})

	provider := spotifyTestProvider(t, mux)
	doc := writerDoc("spotify", "t1", "t2", "t3")
	doc.Name = "Mix Tape"

	result, err := provider.WritePlaylist(context.Background(), doc, WriteOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("WritePlaylist() error = %v", err)
	}

	if result.DestID != "new-pl" {
		t.Errorf("DestID = %q, want new-pl", result.DestID)
	}
	if createdName != "Mix Tape" {
		t.Errorf("created playlist name = %q, want Mix Tape", createdName)
	}
	if len(batches) != 2 {
		t.Fatalf("batch count = %d, want 2", len(batches))
	}
	if batches[0][0] != "spotify:track:t1" {
		t.Errorf("first URI = %q, want spotify:track:t1", batches[0][0])
	}
	if result.Report.Attempted != 3 || result.Report.Added != 3 {
		t.Errorf("report = %+v, want attempted 3, added 3", result.Report)
	}
}

func TestSpotifySearchCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "track" {
			t.Errorf("type = %q, want track", got)
		}
		fmt.Fprint(w, `{"tracks":{"items":[
			{"id":"c1","name":"Creep","artists":[{"name":"Radiohead"}],"duration_ms":239000,"external_ids":{"isrc":"USCA29600165"}}
		]}}`)
	})

	provider := spotifyTestProvider(t, mux)
	candidates, err := provider.SearchCatalog(context.Background(), "Creep", "Radiohead")
	if err != nil {
		t.Fatalf("SearchCatalog() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidate count = %d, want 1", len(candidates))
	}
	cand := candidates[0]
	if cand.ID != "c1" || cand.PrimaryArtist != "Radiohead" || cand.ISRC != "USCA29600165" {
		t.Errorf("candidate = %+v", cand)
	}
}

func TestSpotifyWritePlaylistRetriesRateLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"user1"}`)
	})
	mux.HandleFunc("/users/user1/playlists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"pl-new"}`)
	})
	batchCalls := 0
	mux.HandleFunc("/playlists/pl-new/tracks", func(w http.ResponseWriter, r *http.Request) {
		batchCalls++
		if batchCalls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"snapshot_id":"snap"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	client := transport.NewClient(transport.Config{
		Provider: "spotify",
		BaseURL:  server.URL,
		Token:    "test-token",
	}, transport.NewBreaker("spotify", 5, time.Minute),
		transport.WithSleeper(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}))
	provider := NewSpotifyProvider(client, nil)

	doc := writerDoc("spotify", "t1", "t2", "t3")
	result, err := provider.WritePlaylist(context.Background(), doc, WriteOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("WritePlaylist() error = %v", err)
	}

	if batchCalls != 3 {
		t.Errorf("batch requests = %d, want 3 (retry of first chunk plus second chunk)", batchCalls)
	}
	if len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Errorf("sleeps = %v, want one 1s Retry-After wait", sleeps)
	}
	if result.Report.Attempted != 3 || result.Report.Added != 3 || result.Report.Failed != 0 {
		t.Errorf("report = %+v, want all 3 added", result.Report)
	}
}
