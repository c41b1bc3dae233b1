package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	applog "github.com/ivlev/argallery/internal/log"
)

// ErrUnsupported is returned by a Driver for a step it cannot perform. The
// runner logs it and moves on.
var ErrUnsupported = errors.New("step not supported by driver")

// Driver performs script steps against a running gallery.
type Driver interface {
	Detect(label string, distance float32) error
	Lose(label string) error
	// Tap taps at (x, y). Negative coordinates tap the screen center.
	Tap(x, y float32) error
	Ready(video string) error
	Fail(video string, reason error) error
}

// Runner replays scripts.
type Runner struct {
	Driver Driver
	// Settle, when set, runs after every step so the gallery catches up
	// before the next one.
	Settle func(ctx context.Context) error
	log    zerolog.Logger
}

func NewRunner(d Driver, settle func(context.Context) error) *Runner {
	return &Runner{Driver: d, Settle: settle, log: applog.WithComponent("script")}
}

// Run executes the steps in order. It stops at the first failing step or
// when ctx is done.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.log.Debug().Int("step", i+1).Stringer("event", st).Msg("replay")

		err := r.step(ctx, st)
		if errors.Is(err, ErrUnsupported) {
			r.log.Warn().Int("step", i+1).Stringer("event", st).Msg("skipped")
			err = nil
		}
		if err != nil {
			return fmt.Errorf("step %d %s: %w", i+1, st, err)
		}

		if r.Settle != nil {
			if err := r.Settle(ctx); err != nil {
				return fmt.Errorf("step %d %s: settle: %w", i+1, st, err)
			}
		}
	}
	return nil
}

func (r *Runner) step(ctx context.Context, st Step) error {
	switch st.Action {
	case ActionAnchorAdded:
		d := st.Distance
		if d == 0 {
			d = DefaultDistance
		}
		return r.Driver.Detect(st.Label, d)
	case ActionAnchorRemoved:
		return r.Driver.Lose(st.Label)
	case ActionTap:
		if st.X == nil || st.Y == nil {
			return r.Driver.Tap(-1, -1)
		}
		return r.Driver.Tap(*st.X, *st.Y)
	case ActionReady:
		return r.Driver.Ready(st.Video)
	case ActionFail:
		reason := st.Error
		if reason == "" {
			reason = "scripted failure"
		}
		return r.Driver.Fail(st.Video, errors.New(reason))
	case ActionWait:
		t := time.NewTimer(st.Delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("unknown action %q", st.Action)
}
