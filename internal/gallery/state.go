package gallery

import (
	"errors"

	"github.com/google/uuid"
)

// State is a Session's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StateFailed
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Transition is reported every time a session changes state.
type Transition struct {
	Session uuid.UUID
	Video   string
	From    State
	To      State
}

// Catalog is the ordered, fixed list of video ids.
type Catalog struct {
	videos []string
}

// NewCatalog copies videos into a catalog. The list must not be empty.
func NewCatalog(videos ...string) (Catalog, error) {
	if len(videos) == 0 {
		return Catalog{}, errors.New("catalog must not be empty")
	}
	v := make([]string, len(videos))
	copy(v, videos)
	return Catalog{videos: v}, nil
}

func (c Catalog) Len() int { return len(c.videos) }

// At returns the video id at index i.
func (c Catalog) At(i int) string { return c.videos[i] }

// Next returns the index after i, wrapping to 0 past the end.
func (c Catalog) Next(i int) int { return (i + 1) % len(c.videos) }

// PlaybackState is the advancer's cursor plus the session it owns.
type PlaybackState struct {
	Index  int
	Active *Session
}
