package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/sonroyaalmerol/kumaplay/internal/config"
	"github.com/sonroyaalmerol/kumaplay/internal/handlers"
	"github.com/sonroyaalmerol/kumaplay/internal/repository"
	"github.com/sonroyaalmerol/kumaplay/internal/sentryhelper"
	"github.com/sonroyaalmerol/kumaplay/internal/utils"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &cli.Command{
		Name:    "kumaplay",
		Usage:   "Download a playlist and play it from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "kumaplay.toml",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Music directory (overrides MUSIC_DIR)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist reference; asked for on stdin when empty",
			},
			&cli.BoolFlag{
				Name:  "skip-download",
				Usage: "Play what is already in the music directory",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Play the music directory without downloading",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(a *handlers.App) error {
						return a.Play(ctx)
					})
				},
			},
			{
				Name:  "history",
				Usage: "Show recent playlist downloads",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(a *handlers.App) error {
						return a.History(ctx, int(cmd.Int("limit")))
					})
				},
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "reference",
				UsageText: "playlist URL, Spotify URI or search phrase",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(a *handlers.App) error {
				ref := cmd.String("playlist")
				if ref == "" {
					ref = cmd.StringArg("reference")
				}
				return a.Run(ctx, ref, cmd.Bool("skip-download"))
			})
		},
	}
	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("kumaplay failed", "err", err)
		sentryhelper.Flush()
		os.Exit(1)
	}
	sentryhelper.Flush()
}

// withApp loads configuration, logging, error reporting and history, then
// runs fn.
func withApp(cmd *cli.Command, fn func(*handlers.App) error) error {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.MusicDir = dir
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	utils.InstallDefault(utils.NewLogger(os.Stderr, cfg.LogLevel))

	if err := sentryhelper.Init(cfg.SentryDSN, version); err != nil {
		slog.Warn("sentry init failed", "err", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	var repo *repository.Repo
	if cfg.HistoryDB != "" {
		db, err := repository.OpenDB(cfg.HistoryDB)
		if err != nil {
			slog.Warn("acquisition history unavailable", "path", cfg.HistoryDB, "err", err)
		} else {
			repo = repository.NewRepo(db)
			defer repo.Close()
		}
	}

	if err := fn(handlers.NewApp(cfg, repo, os.Stdin, os.Stdout)); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}
