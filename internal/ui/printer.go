// Package ui prints user-facing status to the terminal. Diagnostics go
// through slog instead.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
	"github.com/sonroyaalmerol/kumaplay/internal/player"
	"github.com/sonroyaalmerol/kumaplay/internal/repository"
	"github.com/sonroyaalmerol/kumaplay/internal/utils"
)

// Printer is safe for use from several goroutines.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}

func (p *Printer) Prompt(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, styles.title.Render(s)+" ")
}

func (p *Printer) Info(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

func (p *Printer) Error(err error) {
	p.println(styles.err.Render("error: ") + err.Error())
}

// Controls prints the command vocabulary.
func (p *Printer) Controls() {
	var b strings.Builder
	b.WriteString(styles.title.Render("Controls") + "\n")
	for _, row := range [][2]string{
		{"n, next", "next track"},
		{"p, prev", "previous track"},
		{"pause", "pause or resume"},
		{"s, stop", "stop playback"},
		{"q, quit", "exit"},
	} {
		fmt.Fprintf(&b, "  %-8s %s\n", row[0], styles.help.Render(row[1]))
	}
	p.println(strings.TrimRight(b.String(), "\n"))
}

// Report summarizes one acquisition run.
func (p *Printer) Report(rep *acquire.Report) {
	var b strings.Builder
	title := rep.Title
	if title == "" {
		title = string(rep.Reference)
	}
	b.WriteString(styles.title.Render("Downloaded "+title) + "\n")
	for i, it := range rep.Items {
		mark := styles.ok.Render("✓")
		if it.Status != acquire.StatusSucceeded {
			mark = styles.err.Render("✗")
		}
		fmt.Fprintf(&b, "  %s %2d. %s", mark, i+1, it.Label)
		if it.Status == acquire.StatusFailed && it.Err != nil {
			b.WriteString(" " + styles.help.Render(it.Err.Error()))
		}
		b.WriteString("\n")
	}
	summary := fmt.Sprintf("%s acquired, %d failed", utils.Plural(rep.Succeeded, "track"), rep.Failed)
	if rep.UsedFallback {
		summary += styles.warn.Render(" (fallback profile)")
	}
	b.WriteString(summary)
	if rep.BatchErr != nil {
		b.WriteString("\n" + styles.err.Render("batch failed: ") + rep.BatchErr.Error())
	}
	p.println(b.String())
}

// Event renders one controller event.
func (p *Printer) Event(ev player.Event) {
	switch ev.Kind {
	case player.EventPlaying:
		pos := float64(ev.Index) / float64(max(ev.Total-1, 1))
		p.println(fmt.Sprintf("%s %s  %s %d/%d",
			styles.ok.Render("▶"), styles.track.Render(ev.Track.Name),
			ProgressBar(12, pos), ev.Index+1, ev.Total))
	case player.EventPaused:
		p.println(styles.warn.Render("⏸ paused"))
	case player.EventResumed:
		p.println(styles.ok.Render("▶ resumed ") + ev.Track.Name)
	case player.EventStopped:
		if ev.Err != nil {
			p.println(styles.err.Render("■ stopped: ") + ev.Err.Error())
			return
		}
		p.println(styles.warn.Render("■ stopped"))
	case player.EventNoTracks:
		p.println(styles.warn.Render("no tracks loaded"))
	case player.EventNotPlaying:
		p.println(styles.warn.Render("not playing"))
	case player.EventLoadFailed:
		p.println(styles.err.Render("cannot play ") + ev.Track.Name + ": " + errString(ev.Err))
	case player.EventUnknownCommand:
		p.println(styles.warn.Render("unknown command") + " " + styles.help.Render("(n, p, pause, s, q)"))
	case player.EventQuit:
		p.println("bye")
	}
}

// History lists recorded acquisition runs.
func (p *Printer) History(runs []repository.Run) {
	if len(runs) == 0 {
		p.println(styles.help.Render("no acquisitions recorded"))
		return
	}
	var b strings.Builder
	for _, r := range runs {
		title := r.Title
		if title == "" {
			title = r.Reference
		}
		fmt.Fprintf(&b, "%s  %s  %d ok / %d failed  [%s, %s]",
			r.StartedAt.Format("2006-01-02 15:04"), styles.track.Render(title),
			r.Succeeded, r.Failed, r.Profile, utils.PrettyTime(int(r.Duration().Seconds())))
		if r.BatchError != "" {
			b.WriteString(" " + styles.err.Render(r.BatchError))
		}
		b.WriteString("\n")
	}
	p.println(strings.TrimRight(b.String(), "\n"))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
