package player

import (
	"errors"

	"github.com/sonroyaalmerol/kumaplay/internal/library"
)

type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Command is a user request for the controller.
type Command int

const (
	CmdNext Command = iota
	CmdPrevious
	CmdStop
	CmdPauseToggle
	CmdQuit
	CmdUnknown
)

func (c Command) String() string {
	switch c {
	case CmdNext:
		return "next"
	case CmdPrevious:
		return "prev"
	case CmdStop:
		return "stop"
	case CmdPauseToggle:
		return "pause"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventPlaying EventKind = iota
	EventPaused
	EventResumed
	EventStopped
	EventNoTracks
	EventNotPlaying
	EventLoadFailed
	EventUnknownCommand
	EventQuit
)

// Event describes a transition or a rejected request, for display.
type Event struct {
	Kind  EventKind
	Index int
	Track library.Track
	Total int
	Err   error
}

// AudioDevice is the sound output the controller drives.
type AudioDevice interface {
	Load(path string) error
	Play() error
	Pause() error
	Resume() error
	Stop() error
	IsBusy() bool
}

var (
	ErrNoTracks = errors.New("no tracks loaded")
	// ErrAllTracksFailed is returned when no track in the library could be loaded.
	ErrAllTracksFailed = errors.New("every track failed to load")
)
