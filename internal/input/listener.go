// Package input turns line-oriented user input into player commands.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/muesli/cancelreader"

	"github.com/sonroyaalmerol/kumaplay/internal/player"
)

// Parse maps one line of input to a command. Matching is case-insensitive
// and ignores surrounding whitespace.
func Parse(line string) player.Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "n", "next":
		return player.CmdNext
	case "p", "prev":
		return player.CmdPrevious
	case "s", "stop":
		return player.CmdStop
	case "pause":
		return player.CmdPauseToggle
	case "q", "quit":
		return player.CmdQuit
	default:
		return player.CmdUnknown
	}
}

type Listener struct {
	r io.Reader
	// OnUnknown is called with the raw line before CmdUnknown is delivered.
	OnUnknown func(line string)
}

func NewListener(r io.Reader) *Listener {
	return &Listener{r: r}
}

// Run reads commands until quit is delivered, input ends or ctx is done.
// Commands go to out one at a time; out is never closed. End of input is
// not an error and delivers nothing.
func (l *Listener) Run(ctx context.Context, out chan<- player.Command) error {
	var src io.Reader = l.r
	if cr, err := cancelreader.NewReader(l.r); err != nil {
		// regular files cannot be polled; they reach EOF instead of blocking
		slog.Debug("input is not cancelable, reading it directly", "err", err)
	} else {
		src = cr
		defer cr.Close()
		// unblocks the reader goroutine when the input is a terminal or pipe file
		defer cr.Cancel()
	}

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(src)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
					return fmt.Errorf("read input: %w", err)
				}
				slog.Debug("input closed")
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}

			cmd := Parse(line)
			if cmd == player.CmdUnknown && l.OnUnknown != nil {
				l.OnUnknown(line)
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return nil
			}
			if cmd == player.CmdQuit {
				return nil
			}
		}
	}
}
