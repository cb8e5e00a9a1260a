package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"
)

const (
	DefaultExt       = ".mp3"
	DefaultSink      = "ffplay -nodisp -autoexit -loglevel error -f s16le -ar 48000 -ac 2 -i pipe:0"
	defaultPollMs    = 100
	defaultRatePerMn = 30
)

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getenvInt(key string, def, lo, hi int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// LoadConfig layers defaults, the TOML file at path (if it exists), a .env file
// in the working directory and finally the process environment.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var fc fileConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dataDir := getenv("DATA_DIR", orDefault(fc.DataDir, "./data"))
	musicDir := getenv("MUSIC_DIR", orDefault(fc.MusicDir, filepath.Join(dataDir, "mp3")))

	history, ok := os.LookupEnv("HISTORY_DB")
	if !ok {
		history = orDefault(fc.History, filepath.Join(dataDir, "history.db"))
	}

	pollDef := defaultPollMs
	if fc.Playback.PollIntervalMs > 0 {
		pollDef = clamp(fc.Playback.PollIntervalMs, 20, 1000)
	}
	rateDef := defaultRatePerMn
	if fc.YouTube.RatePerMin > 0 {
		rateDef = clamp(fc.YouTube.RatePerMin, 1, 600)
	}

	sinkLine := getenv("AUDIO_SINK", orDefault(fc.Playback.Sink, DefaultSink))
	sink, err := shellquote.Split(sinkLine)
	if err != nil {
		return nil, fmt.Errorf("parse AUDIO_SINK: %w", err)
	}
	if len(sink) == 0 {
		return nil, ErrConfig("AUDIO_SINK must name a command")
	}

	ext := getenv("PLAYABLE_EXT", orDefault(fc.Playback.Extension, DefaultExt))
	if ext[0] != '.' {
		ext = "." + ext
	}

	cfg := &Config{
		SpotifyClientID:     getenv("SPOTIFY_CLIENT_ID", fc.Spotify.ClientID),
		SpotifyClientSecret: getenv("SPOTIFY_CLIENT_SECRET", fc.Spotify.ClientSecret),
		DataDir:             dataDir,
		MusicDir:            musicDir,
		HistoryDB:           history,
		PlayableExt:         ext,
		PollInterval:        time.Duration(getenvInt("POLL_INTERVAL_MS", pollDef, 20, 1000)) * time.Millisecond,
		FetchRatePerMin:     getenvInt("FETCH_RATE_PER_MIN", rateDef, 1, 600),
		SponsorBlockRemove:  getenv("SPONSORBLOCK_REMOVE", fc.YouTube.SponsorBlock),
		AudioSink:           sink,
		LogLevel:            getenv("LOG_LEVEL", orDefault(fc.Log.Level, "info")),
		SentryDSN:           getenv("SENTRY_DSN", fc.Log.SentryDSN),
		YouTubeCookiesPath:  getenv("YOUTUBE_COOKIES_PATH", fc.YouTube.CookiesPath),
		YouTubePOToken:      getenv("YOUTUBE_PO_TOKEN", fc.YouTube.POToken),
	}
	return cfg, nil
}

// EnsureDirs creates the data and music directories.
func (c *Config) EnsureDirs() error {
	for _, d := range []string{c.DataDir, c.MusicDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// SpotifyEnabled reports whether streaming-service credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
