package config

import "time"

type Config struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	DataDir             string
	MusicDir            string
	HistoryDB           string // empty disables acquisition history
	PlayableExt         string
	PollInterval        time.Duration
	FetchRatePerMin     int
	SponsorBlockRemove  string // yt-dlp categories, e.g. "music_offtopic"
	AudioSink           []string
	LogLevel            string
	SentryDSN           string
	YouTubeCookiesPath  string
	YouTubePOToken      string
}

// fileConfig mirrors the optional TOML file. Zero values mean "not set".
type fileConfig struct {
	DataDir  string `toml:"data_dir"`
	MusicDir string `toml:"music_dir"`
	History  string `toml:"history_db"`

	Spotify struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
	} `toml:"spotify"`

	YouTube struct {
		CookiesPath  string `toml:"cookies_path"`
		POToken      string `toml:"po_token"`
		SponsorBlock string `toml:"sponsorblock_remove"`
		RatePerMin   int    `toml:"fetch_rate_per_min"`
	} `toml:"youtube"`

	Playback struct {
		Extension      string `toml:"extension"`
		PollIntervalMs int    `toml:"poll_interval_ms"`
		Sink           string `toml:"sink"`
	} `toml:"playback"`

	Log struct {
		Level     string `toml:"level"`
		SentryDSN string `toml:"sentry_dsn"`
	} `toml:"log"`
}
