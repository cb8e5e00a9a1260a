// Package handlers wires acquisition, the library and playback together.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
	"github.com/sonroyaalmerol/kumaplay/internal/audio"
	"github.com/sonroyaalmerol/kumaplay/internal/config"
	"github.com/sonroyaalmerol/kumaplay/internal/input"
	"github.com/sonroyaalmerol/kumaplay/internal/library"
	"github.com/sonroyaalmerol/kumaplay/internal/player"
	"github.com/sonroyaalmerol/kumaplay/internal/repository"
	"github.com/sonroyaalmerol/kumaplay/internal/spotify"
	"github.com/sonroyaalmerol/kumaplay/internal/stream"
	"github.com/sonroyaalmerol/kumaplay/internal/ui"
)

type App struct {
	cfg  *config.Config
	repo *repository.Repo // nil when history is disabled
	in   io.Reader
	out  *ui.Printer
}

func NewApp(cfg *config.Config, repo *repository.Repo, in io.Reader, out io.Writer) *App {
	return &App{cfg: cfg, repo: repo, in: in, out: ui.NewPrinter(out)}
}

// Run acquires ref (unless skipDownload) and then plays the music directory
// until the user quits or ctx is done. An empty ref is asked for on stdin.
func (a *App) Run(ctx context.Context, ref string, skipDownload bool) error {
	if !skipDownload {
		if strings.TrimSpace(ref) == "" {
			a.out.Prompt("Enter playlist URL:")
			line, err := readLine(a.in)
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read playlist reference: %w", err)
			}
			ref = line
		}
		if _, err := a.Acquire(ctx, acquire.Reference(ref)); err != nil {
			// playback of whatever is already on disk still makes sense
			a.out.Error(err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return a.Play(ctx)
}

// Pipeline builds the acquisition pipeline from the configuration.
func (a *App) Pipeline() *acquire.Pipeline {
	opts := acquire.Options{
		Fetcher:    stream.NewFetcher(a.cfg.MusicDir, a.cfg.YouTubeCookiesPath, a.cfg.YouTubePOToken),
		Lister:     &stream.PlaylistLister{CookiesPath: a.cfg.YouTubeCookiesPath, POToken: a.cfg.YouTubePOToken},
		Primary:    acquire.PrimaryProfile(a.cfg.SponsorBlockRemove),
		Fallback:   acquire.FallbackProfile(a.cfg.SponsorBlockRemove),
		RatePerMin: a.cfg.FetchRatePerMin,
		OnItem: func(i int, it *acquire.Item) {
			a.out.Info("[%d] %s %s (%s)", i+1, it.Status, it.Label, it.Profile)
		},
	}
	if a.cfg.SpotifyEnabled() {
		sp, err := spotify.NewClientCredentials(a.cfg.SpotifyClientID, a.cfg.SpotifyClientSecret)
		if err != nil {
			slog.Warn("spotify client unavailable", "err", err)
		} else {
			opts.Source = sp
		}
	}
	if a.repo != nil {
		opts.History = a.repo
	}
	return acquire.New(opts)
}

func (a *App) Acquire(ctx context.Context, ref acquire.Reference) (*acquire.Report, error) {
	rep, err := a.Pipeline().Acquire(ctx, ref)
	if err != nil {
		return nil, err
	}
	a.out.Report(rep)
	return rep, nil
}

// Play scans the music directory and hands control to the player until quit.
func (a *App) Play(ctx context.Context) error {
	lib, err := library.Scan(a.cfg.MusicDir, a.cfg.PlayableExt)
	if err != nil {
		return err
	}
	if lib.Empty() {
		a.out.Event(player.Event{Kind: player.EventNoTracks})
		return nil
	}
	slog.Info("library scanned", "dir", lib.Dir(), "tracks", lib.Len())

	dev, err := audio.Open(a.cfg.AudioSink)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	defer dev.Close()

	ctrl := player.New(dev, lib,
		player.WithPollInterval(a.cfg.PollInterval),
		player.WithEvents(a.out.Event),
	)
	listener := input.NewListener(a.in)
	listener.OnUnknown = func(line string) { slog.Debug("unknown command", "input", line) }

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmds := make(chan player.Command, 1)

	a.out.Controls()
	if err := ctrl.Start(); err != nil {
		slog.Warn("playback did not start", "err", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(ctx, cmds); err != nil {
			slog.Warn("command listener stopped", "err", err)
		}
	}()

	err = ctrl.Run(ctx, cmds)
	cancel()
	wg.Wait()
	return err
}

// History prints the most recent acquisition runs.
func (a *App) History(ctx context.Context, limit int) error {
	if a.repo == nil {
		return config.ErrConfig("acquisition history is disabled (HISTORY_DB is empty)")
	}
	runs, err := a.repo.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	a.out.History(runs)
	return nil
}

// readLine reads one line without buffering past it, so the command
// listener still sees everything typed afterwards.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSpace(sb.String()), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return strings.TrimSpace(sb.String()), err
		}
	}
}
