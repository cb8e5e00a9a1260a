package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

type Track struct {
	Name   string
	Artist string
}

// Query is the search phrase used to find the track on the video service.
func (t Track) Query() string {
	return strings.TrimSpace(t.Name + " " + t.Artist)
}

type PlaylistMeta struct {
	Title  string
	Source string
}

type Client struct {
	raw *spotify.Client
}

func NewClientCredentials(clientID, clientSecret string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client credentials are not configured")
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	cl := spotify.New(httpClient, spotify.WithRetry(true))
	return &Client{raw: cl}, nil
}

// NewWithHTTP builds a client against an arbitrary API base URL.
func NewWithHTTP(httpClient *http.Client, baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{raw: spotify.New(httpClient, spotify.WithBaseURL(baseURL))}
}

// IsSpotify reports whether raw looks like a Spotify URL or URI.
func IsSpotify(raw string) bool {
	return strings.HasPrefix(raw, "spotify:") || strings.Contains(raw, "open.spotify.com")
}

func ParseID(raw string) (typ string, id spotify.ID, err error) {
	if strings.HasPrefix(raw, "spotify:") {
		parts := strings.Split(raw, ":")
		if len(parts) == 3 && parts[2] != "" {
			return parts[1], spotify.ID(parts[2]), nil
		}
		return "", "", fmt.Errorf("invalid spotify URI")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host != "open.spotify.com" && u.Host != "www.open.spotify.com" {
		return "", "", fmt.Errorf("not a spotify URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// localized links look like /intl-de/playlist/<id>
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) < 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid spotify URL path")
	}
	switch parts[0] {
	case "album", "playlist", "track":
		return parts[0], spotify.ID(parts[1]), nil
	}
	return "", "", fmt.Errorf("unsupported spotify type %q", parts[0])
}

// ListTracks resolves any supported Spotify reference to its ordered tracks,
// draining every page before returning.
func (c *Client) ListTracks(ctx context.Context, raw string) ([]Track, PlaylistMeta, error) {
	typ, id, err := ParseID(raw)
	if err != nil {
		return nil, PlaylistMeta{}, err
	}
	switch typ {
	case "playlist":
		return c.GetPlaylist(ctx, id)
	case "album":
		return c.GetAlbum(ctx, id)
	default:
		t, err := c.GetTrack(ctx, id)
		if err != nil {
			return nil, PlaylistMeta{}, err
		}
		return []Track{t}, PlaylistMeta{Title: t.Query(), Source: raw}, nil
	}
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) > 0 {
		return artists[0].Name
	}
	return ""
}

func (c *Client) GetAlbum(ctx context.Context, id spotify.ID) ([]Track, PlaylistMeta, error) {
	alb, err := c.raw.GetAlbum(ctx, id)
	if err != nil {
		return nil, PlaylistMeta{}, err
	}
	page, err := c.raw.GetAlbumTracks(ctx, id)
	if err != nil {
		return nil, PlaylistMeta{}, err
	}
	out := make([]Track, 0, page.Total)
	add := func(items []spotify.SimpleTrack) {
		for _, t := range items {
			out = append(out, Track{Name: t.Name, Artist: firstArtist(t.Artists)})
		}
	}
	add(page.Tracks)
	for page.Next != "" {
		if err := c.raw.NextPage(ctx, page); err != nil {
			return nil, PlaylistMeta{}, fmt.Errorf("album page: %w", err)
		}
		add(page.Tracks)
	}
	meta := PlaylistMeta{Title: alb.Name, Source: alb.ExternalURLs["spotify"]}
	return out, meta, nil
}

func (c *Client) GetPlaylist(ctx context.Context, id spotify.ID) ([]Track, PlaylistMeta, error) {
	pl, err := c.raw.GetPlaylist(ctx, id)
	if err != nil {
		return nil, PlaylistMeta{}, err
	}
	page, err := c.raw.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, PlaylistMeta{}, err
	}
	out := make([]Track, 0, page.Total)
	add := func(items []spotify.PlaylistItem) {
		for _, it := range items {
			// local files and podcast episodes have no Track
			if it.Track.Track == nil {
				continue
			}
			t := it.Track.Track
			out = append(out, Track{Name: t.Name, Artist: firstArtist(t.Artists)})
		}
	}
	add(page.Items)
	for page.Next != "" {
		if err := c.raw.NextPage(ctx, page); err != nil {
			return nil, PlaylistMeta{}, fmt.Errorf("playlist page: %w", err)
		}
		add(page.Items)
	}
	meta := PlaylistMeta{Title: pl.Name, Source: pl.ExternalURLs["spotify"]}
	return out, meta, nil
}

func (c *Client) GetTrack(ctx context.Context, id spotify.ID) (Track, error) {
	t, err := c.raw.GetTrack(ctx, id)
	if err != nil {
		return Track{}, err
	}
	return Track{Name: t.Name, Artist: firstArtist(t.Artists)}, nil
}
