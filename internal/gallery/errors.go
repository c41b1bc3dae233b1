package gallery

import (
	"errors"

	"github.com/ivlev/argallery/internal/assets"
)

var (
	// ErrResourceNotFound means the catalog video has no bundled media.
	ErrResourceNotFound = assets.ErrResourceNotFound
	// ErrPlaybackFailed means the media pipeline reported an error.
	ErrPlaybackFailed = errors.New("playback failed")
	// ErrDuplicateAnchor marks a recognition while a gallery anchor exists.
	// It is logged and ignored.
	ErrDuplicateAnchor = errors.New("duplicate anchor")
	// ErrStaleCallback marks a notification for a superseded session. It is
	// logged and ignored.
	ErrStaleCallback = errors.New("stale callback")
)
