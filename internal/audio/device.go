// Package audio plays local files through an external PCM sink process.
// Decoding happens in-process with FFmpeg; the sink only receives raw
// s16le stereo 48k samples on stdin.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/asticode/go-astiav"

	"github.com/sonroyaalmerol/kumaplay/internal/utils"
)

var (
	ErrDeviceInUse = errors.New("audio device already in use")
	ErrNotLoaded   = errors.New("no track loaded")
	ErrClosed      = errors.New("audio device closed")
)

// only one Device may exist per process
var claimed atomic.Bool

type Device struct {
	sink []string

	mu      sync.Mutex
	path    string
	pending *decoder
	sess    *session
	closed  bool
}

type session struct {
	cancel context.CancelFunc
	gate   *gate
	done   chan struct{}
}

// Open claims the process-wide device. sink is the command line of the
// process that receives PCM on stdin.
func Open(sink []string) (*Device, error) {
	if len(sink) == 0 {
		return nil, errors.New("audio sink command is empty")
	}
	if _, err := utils.RequireBinary(sink[0]); err != nil {
		return nil, fmt.Errorf("audio sink: %w", err)
	}
	if !claimed.CompareAndSwap(false, true) {
		return nil, ErrDeviceInUse
	}
	astiav.SetLogLevel(astiav.LogLevelError)
	slog.Debug("audio device opened", "sink", strings.Join(sink, " "))
	return &Device{sink: sink}, nil
}

// Load opens and probes path. A file FFmpeg cannot decode fails here.
func (d *Device) Load(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	dec, err := openDecoder(path)
	if err != nil {
		return err
	}
	if d.pending != nil {
		d.pending.close()
	}
	d.pending, d.path = dec, path
	return nil
}

// Play starts the loaded track from the beginning.
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.path == "" {
		return ErrNotLoaded
	}
	d.stopLocked()

	dec := d.pending
	d.pending = nil
	if dec == nil {
		var err error
		if dec, err = openDecoder(d.path); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := utils.ExecWith(ctx, d.sink[0], d.sink[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		dec.close()
		return fmt.Errorf("sink stdin: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		cancel()
		dec.close()
		return fmt.Errorf("start sink: %w", err)
	}

	s := &session{cancel: cancel, gate: newGate(), done: make(chan struct{})}
	d.sess = s
	go s.run(ctx, dec, cmd, stdin, &stderr, d.path)
	return nil
}

func (s *session) run(ctx context.Context, dec *decoder, cmd *exec.Cmd, stdin io.WriteCloser, stderr *bytes.Buffer, path string) {
	defer close(s.done)
	defer dec.close()

	err := dec.decode(ctx, func(b []byte) error {
		if !s.gate.wait() {
			return context.Canceled
		}
		_, err := stdin.Write(b)
		return err
	})
	// closing stdin lets the sink play out its buffer and exit
	_ = stdin.Close()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
	case err != nil:
		slog.Warn("decode failed", "path", path, "err", err)
	case waitErr != nil:
		slog.Warn("audio sink exited", "path", path, "err", waitErr, "stderr", strings.TrimSpace(stderr.String()))
	}
}

func (s *session) stop() {
	s.gate.close()
	s.cancel()
	<-s.done
}

func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil {
		return ErrNotLoaded
	}
	d.sess.gate.setPaused(true)
	return nil
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil {
		return ErrNotLoaded
	}
	d.sess.gate.setPaused(false)
	return nil
}

// Stop ends the current session and waits for the sink to exit.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	return nil
}

func (d *Device) stopLocked() {
	if d.sess == nil {
		return
	}
	d.sess.stop()
	d.sess = nil
}

// IsBusy reports whether a session is still decoding or playing out.
func (d *Device) IsBusy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess == nil {
		return false
	}
	select {
	case <-d.sess.done:
		return false
	default:
		return true
	}
}

// Close stops playback and releases the process-wide claim.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.stopLocked()
	if d.pending != nil {
		d.pending.close()
		d.pending = nil
	}
	d.closed = true
	claimed.Store(false)
	return nil
}
