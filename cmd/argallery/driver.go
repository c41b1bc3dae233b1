package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ivlev/argallery/internal/gallery"
	"github.com/ivlev/argallery/internal/script"
	"github.com/ivlev/argallery/internal/sim"
)

const (
	readyWait = 10 * time.Second
	readyPoll = 20 * time.Millisecond
)

// autoReady drives a gallery whose players become ready by themselves. A
// ready step waits for the video to play instead of resolving it.
type autoReady struct {
	*sim.World
	loop  *gallery.Loop
	coord *gallery.Coordinator
}

func (d *autoReady) Ready(video string) error {
	ctx, cancel := context.WithTimeout(context.Background(), readyWait)
	defer cancel()

	tick := time.NewTicker(readyPoll)
	defer tick.Stop()
	for {
		snap, err := snapshot(ctx, d.loop, d.coord)
		if err != nil {
			return fmt.Errorf("wait for %s: %w", video, err)
		}
		if snap.Active && snap.Video == video {
			switch snap.State {
			case gallery.StatePlaying:
				return nil
			case gallery.StateFailed:
				return fmt.Errorf("%s failed to load", video)
			}
		}

		select {
		case <-tick.C:
		case <-ctx.Done():
			return fmt.Errorf("wait for %s: %w", video, ctx.Err())
		}
	}
}

func (d *autoReady) Fail(string, error) error {
	return script.ErrUnsupported
}
