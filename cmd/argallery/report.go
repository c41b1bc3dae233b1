package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivlev/argallery/internal/config"
	"github.com/ivlev/argallery/internal/gallery"
	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/system"
)

var reportStates = []gallery.State{
	gallery.StateLoading,
	gallery.StateReady,
	gallery.StatePlaying,
	gallery.StateFailed,
	gallery.StateReleased,
}

func formatReport(cfg *config.Config, res result) string {
	var transitions []string
	for _, s := range reportStates {
		transitions = append(transitions, fmt.Sprintf("%s=%d", s, res.Final.Stats.Transitions[s]))
	}
	st := res.Final.Stats

	return fmt.Sprintf(
		"--- [RUN REPORT] ---\n"+
			"Build: %s\n"+
			"Media: %s\n"+
			"Steps: %d\n"+
			"Total Time: %.2fs\n"+
			"Transitions: %s\n"+
			"Taps: %d (hits %d, advances %d)\n"+
			"Players: opened %d, peak playing %d, live at exit %d\n"+
			"--------------------\n",
		cfg.BuildVersion,
		cfg.MediaBackend,
		res.Steps,
		res.Duration.Seconds(),
		strings.Join(transitions, " "),
		st.Taps, st.TapHits, st.Advances,
		res.Media.Opened, res.Media.PeakPlaying, res.Media.Live,
	)
}

func printReport(ctx context.Context, cfg *config.Config, res result) {
	fmt.Print(formatReport(cfg, res))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	r, err := system.CurrentProcess(ctx)
	if err != nil {
		applog.L().Warn().Err(err).Msg("process report unavailable")
		return
	}
	applog.L().Info().EmbedObject(r).Msg("process")
}
