package gallery

import (
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivlev/argallery/internal/assets"
	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/platform"
	"github.com/ivlev/argallery/internal/sim"
)

const poster = "Apple_Poster"

var testSurface = platform.Size{Width: 0.4, Height: 0.225}

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard, zerolog.Disabled)
	os.Exit(m.Run())
}

// harness runs a coordinator against the simulated platform. Posted work is
// executed by drain on the test goroutine.
type harness struct {
	t           *testing.T
	loop        *Loop
	world       *sim.World
	assets      *assets.Virtual
	coord       *Coordinator
	transitions []Transition
	playing     int
	maxPlaying  int
}

func newHarness(t *testing.T, videos ...string) *harness {
	t.Helper()
	if len(videos) == 0 {
		videos = []string{"v0", "v1", "v2", "v3"}
	}

	h := &harness{
		t:     t,
		loop:  NewLoop(),
		world: sim.NewWorld(sim.DefaultCamera()),
		assets: assets.NewVirtual(&assets.Manifest{
			PosterLabel: poster,
			VideoExt:    "mp4",
			Videos:      videos,
		}),
	}

	catalog, err := NewCatalog(videos...)
	if err != nil {
		t.Fatal(err)
	}
	h.coord, err = NewCoordinator(Deps{
		Owner:  h.loop,
		Scene:  h.world.Scene,
		Media:  h.world.Media,
		Hits:   h.world.Hits,
		Assets: h.assets,
	}, Settings{
		PosterLabel:  poster,
		Catalog:      catalog,
		SurfaceSize:  testSurface,
		OnTransition: h.record,
	})
	if err != nil {
		t.Fatal(err)
	}
	h.world.Attach(h.coord)
	return h
}

// record tracks how many sessions are Playing at once.
func (h *harness) record(tr Transition) {
	h.transitions = append(h.transitions, tr)
	if tr.To == StatePlaying {
		h.playing++
	}
	if tr.From == StatePlaying {
		h.playing--
	}
	if h.playing > h.maxPlaying {
		h.maxPlaying = h.playing
	}
}

func (h *harness) drain() { h.loop.Drain() }

func (h *harness) detect() platform.TrackedAnchor {
	h.t.Helper()
	a, ok := h.world.Tracker.Detect(poster, 1)
	if !ok {
		h.t.Fatal("poster already tracked")
	}
	h.drain()
	return a
}

func (h *harness) lose() {
	h.t.Helper()
	if err := h.world.Lose(poster); err != nil {
		h.t.Fatal(err)
	}
	h.drain()
}

func (h *harness) ready(video string) {
	h.t.Helper()
	if err := h.world.Ready(video); err != nil {
		h.t.Fatal(err)
	}
	h.drain()
}

func (h *harness) tapVideo() {
	h.coord.Tap(h.world.Hits.Camera.Center())
	h.drain()
}

func (h *harness) tapMiss() {
	h.coord.Tap(platform.ScreenPoint{X: 5, Y: 5})
	h.drain()
}

func (h *harness) snapshot() Snapshot {
	return h.coord.Snapshot()
}

// reached reports whether video ever entered state to.
func (h *harness) reached(video string, to State) bool {
	for _, tr := range h.transitions {
		if tr.Video == video && tr.To == to {
			return true
		}
	}
	return false
}

func (h *harness) requireState(want State) {
	h.t.Helper()
	s := h.snapshot()
	if !s.Active {
		h.t.Fatalf("no active session, want %s", want)
	}
	if s.State != want {
		h.t.Fatalf("active state = %s, want %s", s.State, want)
	}
}
