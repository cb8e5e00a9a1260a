package acquire

import "github.com/sonroyaalmerol/kumaplay/internal/utils"

const (
	PrimaryName  = "primary"
	FallbackName = "fallback"
)

// PrimaryProfile asks for the best audio the source will hand out.
func PrimaryProfile(sponsorBlock string) Profile {
	return Profile{
		Name:            PrimaryName,
		Format:          "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio/best",
		AudioFormat:     "mp3",
		AudioQuality:    "192",
		Retries:         10,
		FragmentRetries: 10,
		SkipUnavailable: true,
		UserAgent:       utils.DesktopUserAgent,
		PlayerClients:   []string{"android", "web"},
		SkipProtocols:   []string{"dash", "hls"},
		SponsorBlock:    sponsorBlock,
	}
}

// FallbackProfile is a distinct, cheaper negotiation: lower quality, a
// smaller retry budget and a mobile client identity.
func FallbackProfile(sponsorBlock string) Profile {
	return Profile{
		Name:            FallbackName,
		Format:          "worst[ext=m4a]/worst[ext=webm]/worst",
		AudioFormat:     "mp3",
		AudioQuality:    "128",
		Retries:         5,
		FragmentRetries: 5,
		SkipUnavailable: true,
		UserAgent:       utils.MobileUserAgent,
		PlayerClients:   []string{"ios", "android"},
		SkipProtocols:   []string{"hls"},
		SponsorBlock:    sponsorBlock,
	}
}
