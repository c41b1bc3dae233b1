// Package script describes a recorded sequence of tracking, tap and media
// events in YAML and replays it against a Driver.
package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/ivlev/argallery/internal/assets"
)

// Action names a step kind.
type Action string

const (
	ActionAnchorAdded   Action = "anchor_added"
	ActionAnchorRemoved Action = "anchor_removed"
	ActionTap           Action = "tap"
	ActionReady         Action = "ready"
	ActionFail          Action = "fail"
	ActionWait          Action = "wait"
)

// DefaultDistance is how far in front of the camera a poster is placed when
// a step does not say.
const DefaultDistance = 1.0

// Script is a complete event sequence.
type Script struct {
	Version string `yaml:"version"`
	Steps   []Step `yaml:"steps"`
}

// Step is one event. Which fields apply depends on Action.
type Step struct {
	Action   Action        `yaml:"action"`
	Label    string        `yaml:"label,omitempty"`
	Distance float32       `yaml:"distance,omitempty"`
	X        *float32      `yaml:"x,omitempty"`
	Y        *float32      `yaml:"y,omitempty"`
	Video    string        `yaml:"video,omitempty"`
	Error    string        `yaml:"error,omitempty"`
	Delay    time.Duration `yaml:"delay,omitempty"`
}

func (s Step) String() string {
	switch s.Action {
	case ActionAnchorAdded, ActionAnchorRemoved:
		return fmt.Sprintf("%s(%s)", s.Action, s.Label)
	case ActionReady, ActionFail:
		return fmt.Sprintf("%s(%s)", s.Action, s.Video)
	case ActionTap:
		if s.X == nil || s.Y == nil {
			return "tap(center)"
		}
		return fmt.Sprintf("tap(%.0f,%.0f)", *s.X, *s.Y)
	case ActionWait:
		return fmt.Sprintf("wait(%s)", s.Delay)
	}
	return string(s.Action)
}

// Validate checks every step has what its action needs.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("script has no steps")
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionAnchorAdded, ActionAnchorRemoved:
		if s.Label == "" {
			return fmt.Errorf("%s needs a label", s.Action)
		}
		if s.Distance < 0 {
			return fmt.Errorf("%s: negative distance", s.Action)
		}
	case ActionReady, ActionFail:
		if s.Video == "" {
			return fmt.Errorf("%s needs a video", s.Action)
		}
	case ActionTap:
		if (s.X == nil) != (s.Y == nil) {
			return errors.New("tap needs both x and y, or neither")
		}
	case ActionWait:
		if s.Delay <= 0 {
			return errors.New("wait needs a positive delay")
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

// Default walks the whole catalog once: recognise the poster, play and tap
// through every video back to the first, then lose the poster.
func Default(m *assets.Manifest) *Script {
	s := &Script{Version: "1"}
	s.Steps = append(s.Steps, Step{Action: ActionAnchorAdded, Label: m.PosterLabel, Distance: DefaultDistance})
	for _, v := range m.Videos {
		s.Steps = append(s.Steps,
			Step{Action: ActionReady, Video: v},
			Step{Action: ActionTap},
		)
	}
	if len(m.Videos) > 0 {
		s.Steps = append(s.Steps, Step{Action: ActionReady, Video: m.Videos[0]})
	}
	s.Steps = append(s.Steps, Step{Action: ActionAnchorRemoved, Label: m.PosterLabel})
	return s
}
