package input

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sonroyaalmerol/kumaplay/internal/player"
)

func TestParse(t *testing.T) {
	tests := map[string]player.Command{
		"n":        player.CmdNext,
		"NEXT":     player.CmdNext,
		"  next  ": player.CmdNext,
		"p":        player.CmdPrevious,
		"Prev":     player.CmdPrevious,
		"s":        player.CmdStop,
		"stop":     player.CmdStop,
		"pause":    player.CmdPauseToggle,
		"PAUSE":    player.CmdPauseToggle,
		"q":        player.CmdQuit,
		"Quit":     player.CmdQuit,
		"blah":     player.CmdUnknown,
		"previous": player.CmdUnknown,
		"next 2":   player.CmdUnknown,
	}
	for line, want := range tests {
		if got := Parse(line); got != want {
			t.Errorf("Parse(%q) = %v, want %v", line, got, want)
		}
	}
}

// collect runs the listener against a single-slot channel with a concurrent
// consumer, the way the controller reads it.
func collect(t *testing.T, ctx context.Context, l *Listener) ([]player.Command, error) {
	t.Helper()
	out := make(chan player.Command, 1)
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, out) }()

	var got []player.Command
	for {
		select {
		case cmd := <-out:
			got = append(got, cmd)
		case err := <-errc:
			// drain anything delivered right before return
			for {
				select {
				case cmd := <-out:
					got = append(got, cmd)
				default:
					return got, err
				}
			}
		case <-time.After(2 * time.Second):
			t.Fatal("listener did not finish")
			return nil, nil
		}
	}
}

func equal(a, b []player.Command) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListenerRun(t *testing.T) {
	t.Run("stops after quit", func(t *testing.T) {
		var unknown []string
		l := NewListener(strings.NewReader("next\nblah\nquit\nnext\n"))
		l.OnUnknown = func(line string) { unknown = append(unknown, line) }

		got, err := collect(t, context.Background(), l)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := []player.Command{player.CmdNext, player.CmdUnknown, player.CmdQuit}
		if !equal(got, want) {
			t.Errorf("commands = %v, want %v", got, want)
		}
		if len(unknown) != 1 || unknown[0] != "blah" {
			t.Errorf("unknown lines = %q", unknown)
		}
	})

	t.Run("end of input delivers nothing extra", func(t *testing.T) {
		l := NewListener(strings.NewReader("\n  \npause\nprev"))
		got, err := collect(t, context.Background(), l)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := []player.Command{player.CmdPauseToggle, player.CmdPrevious}
		if !equal(got, want) {
			t.Errorf("commands = %v, want %v", got, want)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := collect(t, context.Background(), NewListener(strings.NewReader("")))
		if err != nil || len(got) != 0 {
			t.Errorf("got %v, %v; want nothing", got, err)
		}
	})

	t.Run("regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cmds.txt")
		if err := os.WriteFile(path, []byte("next\nquit\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		got, err := collect(t, context.Background(), NewListener(f))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := []player.Command{player.CmdNext, player.CmdQuit}
		if !equal(got, want) {
			t.Errorf("commands = %v, want %v", got, want)
		}
	})

	t.Run("cancel while blocked", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		ctx, cancel := context.WithCancel(context.Background())
		l := NewListener(pr)
		errc := make(chan error, 1)
		go func() { errc <- l.Run(ctx, make(chan player.Command, 1)) }()

		cancel()
		select {
		case err := <-errc:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("listener ignored cancellation")
		}
	})
}
