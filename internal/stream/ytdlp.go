package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/sonroyaalmerol/kumaplay/internal/acquire"
	"github.com/sonroyaalmerol/kumaplay/internal/utils"
)

// OutputTemplate names files after the item title. Two items with the same
// title overwrite each other; the last download wins.
const OutputTemplate = "%(title)s.%(ext)s"

var installOnce sync.Once

func ensureInstalled(ctx context.Context) {
	installOnce.Do(func() {
		// a failed install surfaces again as a Run error
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			slog.Warn("yt-dlp install check failed", "err", err)
		}
	})
}

// Fetcher is the yt-dlp backed MediaFetcher.
type Fetcher struct {
	Dir         string
	CookiesPath string
	POToken     string
}

func NewFetcher(dir, cookiesPath, poToken string) *Fetcher {
	return &Fetcher{Dir: dir, CookiesPath: cookiesPath, POToken: poToken}
}

// Command builds the yt-dlp invocation for one negotiation profile.
func (f *Fetcher) Command(p acquire.Profile) (*ytdlp.Command, error) {
	headers, err := utils.HeaderArgs(map[string]string{"User-Agent": p.UserAgent})
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}

	cmd := ytdlp.New().
		Format(p.Format).
		ExtractAudio().
		AudioFormat(p.AudioFormat).
		AudioQuality(p.AudioQuality).
		Output(filepath.Join(f.Dir, OutputTemplate)).
		Retries(strconv.Itoa(p.Retries)).
		FragmentRetries(strconv.Itoa(p.FragmentRetries)).
		DefaultSearch("ytsearch1").
		Print("after_move:filepath").
		NoSimulate()

	if p.SkipUnavailable {
		cmd = cmd.SkipUnavailableFragments()
	}
	for _, h := range headers {
		cmd = cmd.AddHeaders(h)
	}
	if args := f.extractorArgs(p); args != "" {
		cmd = cmd.ExtractorArgs(args)
	}
	if !p.WriteInfoJSON {
		cmd = cmd.NoWriteInfoJSON()
	}
	if !p.WriteSubs {
		cmd = cmd.NoWriteSubs().NoWriteAutoSubs()
	}
	if p.SponsorBlock != "" {
		cmd = cmd.SponsorblockRemove(p.SponsorBlock)
	}
	if f.CookiesPath != "" {
		cmd = cmd.Cookies(f.CookiesPath)
	}
	return cmd, nil
}

func (f *Fetcher) extractorArgs(p acquire.Profile) string {
	var parts []string
	if len(p.PlayerClients) > 0 {
		parts = append(parts, "player_client="+strings.Join(p.PlayerClients, ","))
	}
	if len(p.SkipProtocols) > 0 {
		parts = append(parts, "skip="+strings.Join(p.SkipProtocols, ","))
	}
	if f.POToken != "" {
		parts = append(parts, "po_token="+f.POToken)
	}
	if len(parts) == 0 {
		return ""
	}
	return "youtube:" + strings.Join(parts, ";")
}

// Fetch downloads ref with profile p and returns the produced files.
func (f *Fetcher) Fetch(ctx context.Context, ref string, p acquire.Profile) ([]string, error) {
	cmd, err := f.Command(p)
	if err != nil {
		return nil, err
	}
	ensureInstalled(ctx)

	res, err := cmd.Run(ctx, ref)
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		return nil, Classify(err, stderr)
	}

	paths := parsePrinted(res.Stdout)
	if len(paths) == 0 {
		return nil, &acquire.FetchError{Kind: acquire.Unavailable, Err: errors.New("yt-dlp produced no file")}
	}
	slog.Debug("yt-dlp fetched", "ref", ref, "profile", p.Name, "files", len(paths))
	return paths, nil
}

func parsePrinted(stdout string) []string {
	var out []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

var (
	networkMarkers = []string{
		"unable to download webpage",
		"getaddrinfo",
		"name or service not known",
		"temporary failure in name resolution",
		"network is unreachable",
		"no route to host",
		"connection refused",
		"connection reset",
		"timed out",
		"sign in to confirm you're not a bot",
		"sign in to confirm you’re not a bot",
		"http error 403",
		"http error 429",
	}
	// access gates belong to one video, even when yt-dlp asks to sign in
	gateMarkers = []string{
		"confirm your age",
		"age-restricted",
		"members-only",
		"join this channel",
		"private video",
	}
	formatMarkers = []string{
		"requested format is not available",
		"no video formats found",
		"unsupported url",
		"postprocessing",
		"audio conversion failed",
	}
)

// Classify maps a yt-dlp failure onto the fetch failure taxonomy. Access
// gates and anything unrecognized are treated as an unavailable item.
func Classify(err error, stderr string) *acquire.FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &acquire.FetchError{Kind: acquire.NetworkFailure, Err: err}
	}
	text := strings.ToLower(err.Error() + "\n" + stderr)
	kind := acquire.Unavailable
	switch {
	case containsAny(text, gateMarkers):
	case containsAny(text, networkMarkers):
		kind = acquire.NetworkFailure
	case containsAny(text, formatMarkers):
		kind = acquire.FormatUnsupported
	}
	msg := lastLine(stderr)
	if msg == "" {
		return &acquire.FetchError{Kind: kind, Err: err}
	}
	return &acquire.FetchError{Kind: kind, Err: fmt.Errorf("%w: %s", err, msg)}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
