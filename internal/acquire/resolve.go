package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sonroyaalmerol/kumaplay/internal/spotify"
)

// searchPrefix makes the fetcher take the first search hit for a phrase.
const searchPrefix = "ytsearch1:"

// PlaylistSource lists the tracks of a streaming-service playlist, draining
// every page before returning.
type PlaylistSource interface {
	ListTracks(ctx context.Context, ref string) ([]spotify.Track, spotify.PlaylistMeta, error)
}

// PlaylistLister enumerates a video-sharing playlist without downloading it.
type PlaylistLister interface {
	CanList(raw string) bool
	List(ctx context.Context, raw string) (string, []Entry, error)
}

// Resolve turns ref into the ordered items to acquire and a display title.
func (p *Pipeline) Resolve(ctx context.Context, ref Reference) (string, []*Item, error) {
	raw := strings.TrimSpace(string(ref))
	if raw == "" {
		return "", nil, fmt.Errorf("%w: empty reference", ErrResolve)
	}

	if spotify.IsSpotify(raw) {
		if p.source == nil {
			return "", nil, fmt.Errorf("%w: spotify credentials are not configured", ErrResolve)
		}
		tracks, meta, err := p.source.ListTracks(ctx, raw)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrResolve, err)
		}
		items := make([]*Item, 0, len(tracks))
		for _, t := range tracks {
			q := t.Query()
			if q == "" {
				continue
			}
			items = append(items, &Item{Label: q, Ref: searchPrefix + q})
		}
		return meta.Title, items, nil
	}

	if p.lister != nil && p.lister.CanList(raw) {
		title, entries, err := p.lister.List(ctx, raw)
		if err == nil {
			items := make([]*Item, 0, len(entries))
			for _, e := range entries {
				items = append(items, &Item{Label: e.Label, Ref: e.Ref})
			}
			return title, items, nil
		}
		slog.Warn("playlist listing failed, treating reference as a single item", "ref", raw, "err", err)
	}

	if isURL(raw) {
		return raw, []*Item{{Label: raw, Ref: raw}}, nil
	}
	return raw, []*Item{{Label: raw, Ref: searchPrefix + raw}}, nil
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
