package gallery

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ivlev/argallery/internal/assets"
	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/platform"
)

// Deps are the host collaborators a Coordinator drives.
type Deps struct {
	Owner  Owner
	Scene  platform.Scene
	Media  platform.MediaProvider
	Hits   platform.HitTester
	Assets assets.Resolver
}

// Settings are the build-time constants of the gallery.
type Settings struct {
	PosterLabel string
	Catalog     Catalog
	SurfaceSize platform.Size
	// OnTransition, when set, observes every session state change. It runs
	// on the owner goroutine.
	OnTransition func(Transition)
}

// Stats counts what the coordinator has seen. Read it through Snapshot.
type Stats struct {
	Transitions map[State]int
	Taps        int
	TapHits     int
	Advances    int
}

// Snapshot is a copy of the coordinator state.
type Snapshot struct {
	Index         int
	Video         string
	Active        bool
	State         State
	Anchor        platform.AnchorID
	AnchorInScene bool
	Surface       bool
	Stats         Stats
}

// Coordinator is the platform event sink. It redispatches every event onto
// its Owner and from there drives the Controller and the Advancer.
type Coordinator struct {
	owner      Owner
	state      PlaybackState
	catalog    Catalog
	controller *Controller
	advancer   *Advancer
	stats      Stats
	log        zerolog.Logger
}

var _ platform.Sink = (*Coordinator)(nil)

// NewCoordinator wires the gallery components together.
func NewCoordinator(deps Deps, settings Settings) (*Coordinator, error) {
	switch {
	case deps.Owner == nil:
		return nil, errors.New("coordinator: owner is required")
	case deps.Scene == nil:
		return nil, errors.New("coordinator: scene is required")
	case deps.Media == nil:
		return nil, errors.New("coordinator: media provider is required")
	case deps.Assets == nil:
		return nil, errors.New("coordinator: asset resolver is required")
	case settings.PosterLabel == "":
		return nil, errors.New("coordinator: poster label is required")
	case settings.Catalog.Len() == 0:
		return nil, errors.New("coordinator: catalog is empty")
	}

	c := &Coordinator{
		owner:   deps.Owner,
		catalog: settings.Catalog,
		stats:   Stats{Transitions: make(map[State]int)},
		log:     applog.WithComponent("coordinator"),
	}

	env := &sessionEnv{
		assets: deps.Assets,
		media:  deps.Media,
		scene:  deps.Scene,
		size:   settings.SurfaceSize,
		owner:  deps.Owner,
		transition: func(t Transition) {
			c.stats.Transitions[t.To]++
			if settings.OnTransition != nil {
				settings.OnTransition(t)
			}
		},
		log: applog.WithComponent("session"),
	}

	c.advancer = newAdvancer(settings.Catalog, &c.state, func(video string) *Session {
		return newSession(env, c.controller.Slot(), video)
	}, applog.WithComponent("advancer"))
	c.controller = newController(settings.PosterLabel, deps.Scene, deps.Hits, c.advancer, applog.WithComponent("controller"))

	env.notify = c.advancer.readiness
	env.playing = c.controller.playbackStarted
	return c, nil
}

// AnchorsAdded handles a batch of anchors from the tracking layer.
func (c *Coordinator) AnchorsAdded(anchors []platform.TrackedAnchor) {
	batch := append([]platform.TrackedAnchor(nil), anchors...)
	c.post("anchors added", func() {
		for _, a := range batch {
			c.controller.AnchorAdded(a)
		}
	})
}

// AnchorsRemoved handles a batch of anchors the tracking layer lost.
func (c *Coordinator) AnchorsRemoved(anchors []platform.TrackedAnchor) {
	batch := append([]platform.TrackedAnchor(nil), anchors...)
	c.post("anchors removed", func() {
		for _, a := range batch {
			c.controller.AnchorRemoved(a)
		}
	})
}

// Tap handles a tap at p. Only a tap that hits the live video advances it.
func (c *Coordinator) Tap(p platform.ScreenPoint) {
	c.post("tap", func() { c.handleTap(p) })
}

// Shutdown tears down the gallery as if the anchor had been lost.
func (c *Coordinator) Shutdown() {
	c.post("shutdown", c.controller.Reset)
}

func (c *Coordinator) handleTap(p platform.ScreenPoint) {
	c.stats.Taps++

	slot := c.controller.Slot()
	if slot == nil || slot.Current() == nil {
		c.log.Debug().Msg("tap ignored: no video showing")
		return
	}
	if !slot.HitTest(p) {
		c.log.Debug().Float32("x", p.X).Float32("y", p.Y).Msg("tap missed the video")
		return
	}
	c.stats.TapHits++

	if c.advancer.Advance() {
		c.stats.Advances++
	}
}

func (c *Coordinator) post(event string, fn func()) {
	if !c.owner.Post(fn) {
		c.log.Warn().Str("event", event).Msg("owner stopped, event dropped")
	}
}

// Snapshot copies the current state. It must run on the owner goroutine.
func (c *Coordinator) Snapshot() Snapshot {
	s := Snapshot{
		Index: c.state.Index,
		Video: c.catalog.At(c.state.Index),
		Stats: Stats{
			Transitions: make(map[State]int, len(c.stats.Transitions)),
			Taps:        c.stats.Taps,
			TapHits:     c.stats.TapHits,
			Advances:    c.stats.Advances,
		},
	}
	for k, v := range c.stats.Transitions {
		s.Stats.Transitions[k] = v
	}
	if active := c.state.Active; active != nil {
		s.Active = true
		s.State = active.State()
	}
	if a := c.controller.anchor; a != nil {
		s.Anchor = a.id
		s.AnchorInScene = a.inScene
		s.Surface = a.slot.Current() != nil
	}
	return s
}

// Active returns the active session, or nil. It must run on the owner
// goroutine.
func (c *Coordinator) Active() *Session {
	return c.state.Active
}

// Slot returns the gallery slot, or nil. It must run on the owner goroutine.
func (c *Coordinator) Slot() *Slot {
	return c.controller.Slot()
}
