package transport

import (
	"net/http"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	noJitter := func() float64 { return 0 }

	tc := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{
			name:    "first attempt uses base",
			backoff: Backoff{Base: 500 * time.Millisecond, Max: 15 * time.Second, Jitter: noJitter},
			attempt: 0,
			want:    500 * time.Millisecond,
		},
		{
			name:    "doubles per attempt",
			backoff: Backoff{Base: 500 * time.Millisecond, Max: 15 * time.Second, Jitter: noJitter},
			attempt: 2,
			want:    2 * time.Second,
		},
		{
			name:    "capped at max",
			backoff: Backoff{Base: 500 * time.Millisecond, Max: 4 * time.Second, Jitter: noJitter},
			attempt: 10,
			want:    4 * time.Second,
		},
		{
			name:    "zero values fall back to defaults",
			backoff: Backoff{Jitter: noJitter},
			attempt: 0,
			want:    500 * time.Millisecond,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.backoff.Delay(tt.attempt)
			if got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}

	t.Run("jitter stays within ten percent", func(t *testing.T) {
		b := Backoff{Base: time.Second, Max: 15 * time.Second, Jitter: func() float64 { return 1 }}
		got := b.Delay(0)
		if got != time.Second+100*time.Millisecond {
			t.Errorf("Delay(0) = %v, want %v", got, time.Second+100*time.Millisecond)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tc := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "numeric seconds", value: "2", want: 2 * time.Second, wantOK: true},
		{name: "zero seconds", value: "0", want: 0, wantOK: true},
		{name: "negative seconds rejected", value: "-3", wantOK: false},
		{name: "http date", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second, wantOK: true},
		{name: "past http date clamps to zero", value: now.Add(-time.Minute).Format(http.TimeFormat), want: 0, wantOK: true},
		{name: "empty", value: "", wantOK: false},
		{name: "garbage", value: "soon", wantOK: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.value, now)
			if ok != tt.wantOK {
				t.Fatalf("ParseRetryAfter(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
