package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/argallery/internal/assets"
	"github.com/ivlev/argallery/internal/config"
	"github.com/ivlev/argallery/internal/gallery"
	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/media"
	"github.com/ivlev/argallery/internal/platform"
	"github.com/ivlev/argallery/internal/script"
	"github.com/ivlev/argallery/internal/sim"
)

// result is what a run leaves behind for the report.
type result struct {
	Steps    int
	Final    gallery.Snapshot
	Duration time.Duration
	Media    mediaStats
}

type mediaStats struct {
	Opened      int
	PeakPlaying int
	Live        int
	Tracked     bool
}

// playerCounter is implemented by providers that count their players.
type playerCounter interface {
	Opened() int
	PeakPlaying() int
	Live() int
}

func countPlayers(p platform.MediaProvider) mediaStats {
	c, ok := p.(playerCounter)
	if !ok {
		return mediaStats{}
	}
	return mediaStats{Opened: c.Opened(), PeakPlaying: c.PeakPlaying(), Live: c.Live()}
}

// run replays a script against a gallery wired to the simulated platform.
func run(ctx context.Context, cfg *config.Config, m *assets.Manifest) (result, error) {
	start := time.Now()
	logger := applog.L()

	resolver, err := newResolver(cfg, m)
	if err != nil {
		return result{}, err
	}
	if missing := assets.Missing(resolver, m.Videos); len(missing) > 0 {
		logger.Warn().Strs("videos", missing).Msg("catalog videos missing from the bundle")
	}

	sc, err := loadScript(cfg, m)
	if err != nil {
		return result{}, err
	}
	if cfg.ScriptSaveDir != "" {
		path := script.GeneratePath(cfg.ScriptSaveDir)
		if err := script.Write(sc, path); err != nil {
			return result{}, fmt.Errorf("save script: %w", err)
		}
		logger.Info().Str("path", path).Msg("script saved")
	}

	world := sim.NewWorld(sim.DefaultCamera())
	world.Media.ReadyDelay = cfg.ReadyDelay

	var provider platform.MediaProvider = world.Media
	if cfg.MediaBackend == config.BackendProbe {
		probe, err := media.LookupFFProbe()
		if err != nil {
			return result{}, err
		}
		provider = media.NewProvider(probe)
	}

	catalog, err := gallery.NewCatalog(m.Videos...)
	if err != nil {
		return result{}, err
	}

	loop := gallery.NewLoop()
	transitions := applog.WithComponent("transition")
	coord, err := gallery.NewCoordinator(gallery.Deps{
		Owner:  loop,
		Scene:  world.Scene,
		Media:  provider,
		Hits:   world.Hits,
		Assets: resolver,
	}, gallery.Settings{
		PosterLabel: m.PosterLabel,
		Catalog:     catalog,
		SurfaceSize: platform.Size{Width: m.Surface.Width, Height: m.Surface.Height},
		OnTransition: func(t gallery.Transition) {
			transitions.Debug().
				Str("video", t.Video).
				Stringer("from", t.From).
				Stringer("to", t.To).
				Msg("session")
		},
	})
	if err != nil {
		return result{}, err
	}
	world.Attach(coord)

	var driver script.Driver = world
	if cfg.MediaBackend == config.BackendProbe || cfg.ReadyDelay > 0 {
		driver = &autoReady{World: world, loop: loop, coord: coord}
	}
	runner := script.NewRunner(driver, loop.Sync)

	res := result{Steps: len(sc.Steps)}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	g, gctx := errgroup.WithContext(loopCtx)

	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		defer stopLoop()

		err := runner.Run(gctx, sc)
		coord.Shutdown()
		if serr := loop.Sync(gctx); serr != nil && err == nil {
			err = fmt.Errorf("shutdown: %w", serr)
		}
		if snap, serr := snapshot(gctx, loop, coord); serr == nil {
			res.Final = snap
		}
		return err
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}

	res.Duration = time.Since(start)
	res.Media = countPlayers(provider)
	if world.Tracker != nil {
		_, res.Media.Tracked = world.Tracker.Tracked(m.PosterLabel)
	}
	return res, err
}

func newResolver(cfg *config.Config, m *assets.Manifest) (assets.Resolver, error) {
	if cfg.AssetDir == "" {
		return assets.NewVirtual(m), nil
	}
	return assets.NewDirBundle(cfg.AssetDir, m.VideoExt)
}

func loadScript(cfg *config.Config, m *assets.Manifest) (*script.Script, error) {
	var (
		sc  *script.Script
		err error
	)
	switch {
	case cfg.ScriptPath != "":
		sc, err = script.Read(cfg.ScriptPath)
	case cfg.ScriptDir != "":
		path, ferr := script.FindLatest(cfg.ScriptDir)
		if ferr != nil {
			return nil, ferr
		}
		applog.L().Info().Str("script", path).Msg("using newest script")
		sc, err = script.Read(path)
	default:
		sc = script.Default(m)
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// snapshot reads the coordinator state on the owner goroutine.
func snapshot(ctx context.Context, loop *gallery.Loop, coord *gallery.Coordinator) (gallery.Snapshot, error) {
	ch := make(chan gallery.Snapshot, 1)
	if !loop.Post(func() { ch <- coord.Snapshot() }) {
		return gallery.Snapshot{}, gallery.ErrLoopClosed
	}
	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return gallery.Snapshot{}, ctx.Err()
	}
}
