package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
)

// PlaylistLister enumerates video-sharing playlists without downloading them.
type PlaylistLister struct {
	CookiesPath string
	POToken     string
}

// CanList reports whether raw is a playlist this lister can enumerate.
func (l *PlaylistLister) CanList(raw string) bool { return IsPlaylistURL(raw) }

// IsPlaylistURL reports whether raw is a video-sharing URL carrying a list id.
func IsPlaylistURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host != "youtube.com" && host != "music.youtube.com" && host != "m.youtube.com" && host != "youtu.be" {
		return false
	}
	return u.Query().Get("list") != ""
}

func (l *PlaylistLister) command(rawURL string) *ytdlp.Command {
	cmd := ytdlp.New().
		FlatPlaylist().
		YesPlaylist().
		DumpSingleJSON()

	if l.CookiesPath != "" {
		cmd = cmd.Cookies(l.CookiesPath)
	}
	if strings.Contains(rawURL, "youtube.com") || strings.Contains(rawURL, "youtu.be") {
		extractorArgs := "youtube:player-client=default,mweb"
		if l.POToken != "" {
			extractorArgs += ";po_token=" + l.POToken
		}
		cmd = cmd.ExtractorArgs(extractorArgs)
	}
	return cmd
}

// List returns the playlist title and its entries in order.
func (l *PlaylistLister) List(ctx context.Context, rawURL string) (string, []acquire.Entry, error) {
	ensureInstalled(ctx)

	slog.Debug("fetching playlist", "url", rawURL)
	res, err := l.command(rawURL).Run(ctx, rawURL)
	if err != nil {
		if strings.Contains(err.Error(), "Sign in to confirm") {
			return "", nil, fmt.Errorf("yt-dlp playlist fetch failed (PO token may be required): %w", err)
		}
		return "", nil, fmt.Errorf("yt-dlp playlist fetch failed for %s: %w", rawURL, err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return "", nil, fmt.Errorf("parse yt-dlp playlist json for %s: %w", rawURL, err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return "", nil, fmt.Errorf("yt-dlp returned empty playlist info for %s", rawURL)
	}

	pl := infos[0]
	out := make([]acquire.Entry, 0, len(pl.Entries))
	for i, e := range pl.Entries {
		if e == nil || e.ID == "" {
			slog.Debug("skipping empty playlist entry", "index", i)
			continue
		}
		title := deref(e.Title)
		if title == "" {
			title = e.ID
		}
		out = append(out, acquire.Entry{
			Label: title,
			Ref:   "https://www.youtube.com/watch?v=" + e.ID,
		})
	}

	slog.Debug("playlist processed", "entries", len(out))
	return deref(pl.Title), out, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
