package acquire

import (
	"errors"
	"fmt"
	"time"
)

// Reference is an opaque playlist identifier: a URL, URI or search phrase.
type Reference string

type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item is one playlist entry on its way to becoming a local file. Only the
// pipeline mutates it.
type Item struct {
	Label   string
	Ref     string
	Status  Status
	Profile string // profile that produced the file, or the last one tried
	Paths   []string
	Err     error
}

// Entry is one playlist entry as reported by a lister, before acquisition.
type Entry struct {
	Label string
	Ref   string
}

// Profile is a negotiation profile handed to a MediaFetcher.
type Profile struct {
	Name            string
	Format          string // container preference, yt-dlp selector syntax
	AudioFormat     string
	AudioQuality    string // kbps, e.g. "192"
	Retries         int
	FragmentRetries int
	SkipUnavailable bool
	UserAgent       string
	PlayerClients   []string
	SkipProtocols   []string
	WriteInfoJSON   bool
	WriteSubs       bool
	SponsorBlock    string
}

type Report struct {
	RunID        string
	Reference    Reference
	Title        string
	Items        []*Item
	Succeeded    int
	Failed       int
	Profile      string // profile in force when the batch finished
	UsedFallback bool
	BatchErr     error
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (r *Report) tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, it := range r.Items {
		switch it.Status {
		case StatusSucceeded:
			r.Succeeded++
		case StatusFailed:
			r.Failed++
		}
	}
}

var (
	// ErrResolve marks a reference that could not be turned into items at all.
	ErrResolve = errors.New("cannot resolve playlist reference")
	// ErrBatchFailed marks a batch that failed under both profiles.
	ErrBatchFailed = errors.New("acquisition batch failed")
)

type FailureKind int

const (
	Unavailable FailureKind = iota
	FormatUnsupported
	NetworkFailure
)

func (k FailureKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case FormatUnsupported:
		return "format unsupported"
	case NetworkFailure:
		return "network failure"
	default:
		return "unknown"
	}
}

// FetchError is what a MediaFetcher returns on failure.
type FetchError struct {
	Kind FailureKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BatchScoped reports whether err should abort the whole pass rather than one item.
func BatchScoped(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == NetworkFailure
}
