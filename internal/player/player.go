package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sonroyaalmerol/kumaplay/internal/library"
)

const DefaultPollInterval = 100 * time.Millisecond

// Controller is the playback state machine. Every transition holds mu, so a
// command and a natural completion can never both advance the cursor.
type Controller struct {
	mu      sync.Mutex
	dev     AudioDevice
	lib     *library.Library
	state   State
	index   int
	poll    time.Duration
	onEvent func(Event)
}

type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithEvents registers fn for transition events. fn runs with the controller
// locked and must not call back into it.
func WithEvents(fn func(Event)) Option {
	return func(c *Controller) { c.onEvent = fn }
}

func New(dev AudioDevice, lib *library.Library, opts ...Option) *Controller {
	c := &Controller{
		dev:   dev,
		lib:   lib,
		state: StateStopped,
		poll:  DefaultPollInterval,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the track under the cursor.
func (c *Controller) Current() (library.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib.Empty() {
		return library.Track{}, false
	}
	return c.lib.At(c.index), true
}

func (c *Controller) emit(kind EventKind, err error) {
	if c.onEvent == nil {
		return
	}
	ev := Event{Kind: kind, Index: c.index, Total: c.lib.Len(), Err: err}
	if !c.lib.Empty() {
		ev.Track = c.lib.At(c.index)
	}
	c.onEvent(ev)
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib.Empty() {
		c.emit(EventNoTracks, ErrNoTracks)
		return ErrNoTracks
	}
	if c.state != StateStopped {
		return nil
	}
	c.index = 0
	return c.playLocked(1)
}

func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepLocked(1)
}

func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepLocked(-1)
}

func (c *Controller) stepLocked(dir int) error {
	if c.lib.Empty() {
		c.emit(EventNoTracks, ErrNoTracks)
		return ErrNoTracks
	}
	c.index = c.wrap(c.index + dir)
	return c.playLocked(dir)
}

func (c *Controller) wrap(i int) int {
	n := c.lib.Len()
	return ((i % n) + n) % n
}

// playLocked loads and plays the track under the cursor. A track that fails
// to load is skipped in direction dir; after one full lap of failures the
// controller stops.
func (c *Controller) playLocked(dir int) error {
	n := c.lib.Len()
	for attempt := 0; attempt < n; attempt++ {
		tr := c.lib.At(c.index)
		if err := c.dev.Stop(); err != nil {
			slog.Debug("device stop before load failed", "err", err)
		}
		err := c.dev.Load(tr.Path)
		if err == nil {
			err = c.dev.Play()
		}
		if err == nil {
			c.state = StatePlaying
			slog.Info("playback started", "track", tr.Name, "index", c.index)
			c.emit(EventPlaying, nil)
			return nil
		}
		slog.Warn("track failed to load, skipping", "track", tr.Name, "err", err)
		c.emit(EventLoadFailed, err)
		c.index = c.wrap(c.index + dir)
	}
	c.stopLocked()
	c.emit(EventStopped, ErrAllTracksFailed)
	return ErrAllTracksFailed
}

func (c *Controller) PauseToggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StatePlaying:
		if err := c.dev.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		c.state = StatePaused
		c.emit(EventPaused, nil)
	case StatePaused:
		if err := c.dev.Resume(); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		c.state = StatePlaying
		c.emit(EventResumed, nil)
	default:
		c.emit(EventNotPlaying, nil)
	}
	return nil
}

func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateStopped {
		return nil
	}
	err := c.stopLocked()
	c.emit(EventStopped, nil)
	return err
}

func (c *Controller) stopLocked() error {
	c.state = StateStopped
	return c.dev.Stop()
}

// checkCompletion advances to the next track when the device went idle on
// its own while playing.
func (c *Controller) checkCompletion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying || c.dev.IsBusy() {
		return
	}
	slog.Debug("track finished", "index", c.index)
	if err := c.stepLocked(1); err != nil {
		slog.Warn("could not continue playback", "err", err)
	}
}

// Handle applies one command and reports whether the controller should quit.
func (c *Controller) Handle(cmd Command) bool {
	var err error
	switch cmd {
	case CmdNext:
		err = c.Next()
	case CmdPrevious:
		err = c.Previous()
	case CmdStop:
		err = c.Stop()
	case CmdPauseToggle:
		err = c.PauseToggle()
	case CmdQuit:
		err = c.Stop()
		c.mu.Lock()
		c.emit(EventQuit, nil)
		c.mu.Unlock()
	default:
		c.mu.Lock()
		c.emit(EventUnknownCommand, nil)
		c.mu.Unlock()
	}
	if err != nil && !errors.Is(err, ErrNoTracks) {
		slog.Warn("command failed", "cmd", cmd.String(), "err", err)
	}
	return cmd == CmdQuit
}

// Run is the monitor loop. It owns the controller until Quit arrives, cmds
// is closed or ctx is cancelled, and stops the device on the way out.
func (c *Controller) Run(ctx context.Context, cmds <-chan Command) error {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.Stop()
		case cmd, ok := <-cmds:
			if !ok {
				return c.Stop()
			}
			if c.Handle(cmd) {
				return nil
			}
		case <-ticker.C:
			c.checkCompletion()
		}
	}
}
