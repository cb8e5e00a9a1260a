package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp isolates tests from a stray .env in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "MUSIC_DIR", "PLAYABLE_EXT", "POLL_INTERVAL_MS",
		"FETCH_RATE_PER_MIN", "AUDIO_SINK", "SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET", "LOG_LEVEL", "SENTRY_DSN",
	} {
		t.Setenv(k, "")
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 100},
		{"invalid", "abc", 100},
		{"zero", "0", 100},
		{"negative", "-5", 100},
		{"below_min", "5", 20},
		{"valid", "250", 250},
		{"above_max", "5000", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POLL_INTERVAL_MS", tt.env)
			if got := getenvInt("POLL_INTERVAL_MS", 100, 20, 1000); got != tt.want {
				t.Errorf("getenvInt() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		chdirTemp(t)
		clearEnv(t)

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.DataDir != "./data" {
			t.Errorf("DataDir = %q, want ./data", cfg.DataDir)
		}
		if cfg.MusicDir != filepath.Join("./data", "mp3") {
			t.Errorf("MusicDir = %q", cfg.MusicDir)
		}
		if cfg.PlayableExt != ".mp3" {
			t.Errorf("PlayableExt = %q, want .mp3", cfg.PlayableExt)
		}
		if cfg.PollInterval != 100*time.Millisecond {
			t.Errorf("PollInterval = %v, want 100ms", cfg.PollInterval)
		}
		if len(cfg.AudioSink) == 0 || cfg.AudioSink[0] != "ffplay" {
			t.Errorf("AudioSink = %v", cfg.AudioSink)
		}
		if cfg.SpotifyEnabled() {
			t.Error("expected spotify to be disabled without credentials")
		}
	})

	t.Run("toml file then env override", func(t *testing.T) {
		dir := chdirTemp(t)
		clearEnv(t)

		path := filepath.Join(dir, "kumaplay.toml")
		content := `
data_dir = "/tmp/kp"

[spotify]
client_id = "file-id"
client_secret = "file-secret"

[playback]
extension = "ogg"
poll_interval_ms = 50
sink = "aplay -q -f S16_LE"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.DataDir != "/tmp/kp" {
			t.Errorf("DataDir = %q, want /tmp/kp", cfg.DataDir)
		}
		if cfg.SpotifyClientID != "env-id" {
			t.Errorf("SpotifyClientID = %q, want env-id", cfg.SpotifyClientID)
		}
		if cfg.SpotifyClientSecret != "file-secret" {
			t.Errorf("SpotifyClientSecret = %q, want file-secret", cfg.SpotifyClientSecret)
		}
		if cfg.PlayableExt != ".ogg" {
			t.Errorf("PlayableExt = %q, want .ogg", cfg.PlayableExt)
		}
		if cfg.PollInterval != 50*time.Millisecond {
			t.Errorf("PollInterval = %v, want 50ms", cfg.PollInterval)
		}
		want := []string{"aplay", "-q", "-f", "S16_LE"}
		if len(cfg.AudioSink) != len(want) {
			t.Fatalf("AudioSink = %v, want %v", cfg.AudioSink, want)
		}
		for i := range want {
			if cfg.AudioSink[i] != want[i] {
				t.Errorf("AudioSink[%d] = %q, want %q", i, cfg.AudioSink[i], want[i])
			}
		}
		if !cfg.SpotifyEnabled() {
			t.Error("expected spotify to be enabled")
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		chdirTemp(t)
		clearEnv(t)
		if _, err := LoadConfig("does-not-exist.toml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := chdirTemp(t)
		clearEnv(t)
		os.Unsetenv("LOG_LEVEL")
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o644); err != nil {
			t.Fatalf("write .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	})

	t.Run("bad sink quoting", func(t *testing.T) {
		chdirTemp(t)
		clearEnv(t)
		t.Setenv("AUDIO_SINK", `ffplay "unterminated`)
		if _, err := LoadConfig(""); err == nil {
			t.Fatal("expected error for unterminated quote")
		}
	})
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{DataDir: filepath.Join(root, "data"), MusicDir: filepath.Join(root, "data", "mp3")}
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	if info, err := os.Stat(cfg.MusicDir); err != nil || !info.IsDir() {
		t.Errorf("music dir not created: %v", err)
	}
}
