package utils

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// DesktopUserAgent is the fixed Chrome identity the primary fetch profile presents.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// MobileUserAgent is the identity presented by the fallback profile.
const MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1"

// ErrNoUserAgent is returned by HeaderArgs when no User-Agent is given.
var ErrNoUserAgent = errors.New("user agent is required")

func canonHeader(k string) string {
	k = strings.TrimSpace(k)
	switch strings.ToLower(k) {
	case "user-agent":
		return "User-Agent"
	case "referer":
		return "Referer"
	case "accept":
		return "Accept"
	case "accept-language":
		return "Accept-Language"
	case "origin":
		return "Origin"
	default:
		if len(k) == 0 {
			return k
		}
		return strings.ToUpper(k[:1]) + k[1:]
	}
}

// HeaderArgs normalizes base into sorted "Key:Value" pairs as yt-dlp's
// --add-headers expects. Every fetch presents an explicit identity, so a
// missing User-Agent is an error.
func HeaderArgs(base map[string]string) ([]string, error) {
	h := make(map[string]string, len(base)+1)
	for k, v := range maps.Clone(base) {
		if k = canonHeader(k); k != "" {
			h[k] = strings.TrimSpace(v)
		}
	}
	if h["User-Agent"] == "" {
		return nil, ErrNoUserAgent
	}

	keys := slices.Sorted(maps.Keys(h))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+":"+h[k])
	}
	return out, nil
}
