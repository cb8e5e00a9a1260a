package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
	"github.com/sonroyaalmerol/kumaplay/internal/library"
	"github.com/sonroyaalmerol/kumaplay/internal/player"
	"github.com/sonroyaalmerol/kumaplay/internal/repository"
)

func TestProgressBar(t *testing.T) {
	if ProgressBar(0, 0.5) != "" {
		t.Error("zero width should render nothing")
	}
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		bar := ProgressBar(10, p)
		if utf8.RuneCountInString(bar) != 10 || strings.Count(bar, "●") != 1 {
			t.Errorf("ProgressBar(10, %v) = %q", p, bar)
		}
	}
	if !strings.HasPrefix(ProgressBar(4, 0), "●") || !strings.HasSuffix(ProgressBar(4, 1), "●") {
		t.Error("knob not at the ends")
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Report(&acquire.Report{
		Reference: "lofi",
		Items: []*acquire.Item{
			{Label: "one", Status: acquire.StatusSucceeded},
			{Label: "two", Status: acquire.StatusFailed, Err: errors.New("private video")},
		},
		Succeeded:    1,
		Failed:       1,
		UsedFallback: true,
	})
	out := buf.String()
	for _, want := range []string{"lofi", "one", "two", "private video", "1 track acquired, 1 failed", "fallback"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestEvent(t *testing.T) {
	tests := []struct {
		ev   player.Event
		want string
	}{
		{player.Event{Kind: player.EventPlaying, Track: library.Track{Name: "Song"}, Index: 1, Total: 3}, "Song"},
		{player.Event{Kind: player.EventNoTracks}, "no tracks loaded"},
		{player.Event{Kind: player.EventNotPlaying}, "not playing"},
		{player.Event{Kind: player.EventUnknownCommand}, "unknown command"},
		{player.Event{Kind: player.EventLoadFailed, Track: library.Track{Name: "Bad"}, Err: errors.New("corrupt")}, "corrupt"},
		{player.Event{Kind: player.EventStopped, Err: player.ErrAllTracksFailed}, "every track failed"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewPrinter(&buf).Event(tt.ev)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("event %v rendered %q, want %q", tt.ev.Kind, buf.String(), tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.History(nil)
	if !strings.Contains(buf.String(), "no acquisitions") {
		t.Errorf("empty history = %q", buf.String())
	}

	buf.Reset()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	p.History([]repository.Run{{
		Reference: "https://youtu.be/x", Profile: "fallback", Succeeded: 3, Failed: 2,
		StartedAt: start, FinishedAt: start.Add(75 * time.Second),
	}})
	for _, want := range []string{"2024-05-01 12:00", "https://youtu.be/x", "3 ok / 2 failed", "fallback", "1:15"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("history missing %q: %q", want, buf.String())
		}
	}
}
