package main

import (
	"bytes"
	"strings"
	"testing"

	"tuneport/internal/models"
	"tuneport/internal/shared"
)

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(RunnerOpts{})
	if r.config == nil {
		t.Error("config not defaulted")
	}
	if r.logger == nil {
		t.Error("logger not defaulted")
	}
	if r.output == nil {
		t.Error("output not defaulted")
	}
}

func TestRunnerWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerOpts{Output: &buf})

	data := map[string]string{"name": "Road Trip"}

	t.Run("compact", func(t *testing.T) {
		buf.Reset()
		if err := r.writeJSON(data, false); err != nil {
			t.Fatalf("writeJSON() error = %v", err)
		}
		if got := buf.String(); got != "{\"name\":\"Road Trip\"}\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		buf.Reset()
		if err := r.writeJSON(data, true); err != nil {
			t.Fatalf("writeJSON() error = %v", err)
		}
		if !strings.Contains(buf.String(), "  \"name\": \"Road Trip\"") {
			t.Errorf("output = %q, want indented JSON", buf.String())
		}
	})
}

func TestRunnerWritePlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerOpts{Output: &buf})

	if err := r.writePlain("%d tracks\n", 5); err != nil {
		t.Fatalf("writePlain() error = %v", err)
	}
	if got := buf.String(); got != "5 tracks\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunnerReloadConfig(t *testing.T) {
	r := NewRunner(RunnerOpts{})

	t.Run("missing file keeps current config", func(t *testing.T) {
		before := r.config
		if err := r.reloadConfig("does-not-exist.toml"); err != nil {
			t.Fatalf("reloadConfig() error = %v", err)
		}
		if r.config != before {
			t.Error("config replaced despite missing file")
		}
	})

	t.Run("factory builds providers from config", func(t *testing.T) {
		r.config = shared.DefaultConfig()
		factory := r.factory()
		if _, err := factory.Provider("spotify", "tok"); err != nil {
			t.Errorf("Provider() error = %v", err)
		}
	})
}

func TestPrintResolution(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerOpts{Output: &buf})

	result := &models.MatchResult{
		ID:         "yt-42",
		Rule:       models.RuleFuzzy,
		Confidence: 0.812,
		Candidates: []models.ScoredCandidate{
			{
				Candidate:  models.Candidate{ID: "yt-42", Title: "Karma Police", PrimaryArtist: "Radiohead"},
				Confidence: 0.812,
			},
			{
				Candidate:  models.Candidate{ID: "yt-7", Title: "Karma Police (Live)", PrimaryArtist: "Radiohead"},
				Confidence: 0.701,
			},
		},
	}

	if err := r.printResolution(result); err != nil {
		t.Fatalf("printResolution() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "matched yt-42 via fuzzy (confidence 0.812)") {
		t.Errorf("verdict line missing from output:\n%s", out)
	}
	if !strings.Contains(out, "Radiohead - Karma Police ") || !strings.Contains(out, "0.812") {
		t.Errorf("top candidate line missing from output:\n%s", out)
	}
	if !strings.Contains(out, "yt-7") || !strings.Contains(out, "Karma Police (Live)") {
		t.Errorf("runner-up candidate line missing from output:\n%s", out)
	}
}
