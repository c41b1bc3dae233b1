package sim

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/ivlev/argallery/internal/platform"
)

// Tracker plays the role of the image tracking layer. Detecting a reference
// image creates an anchor with a fresh identity and reports it to the sink;
// losing it reports the removal.
type Tracker struct {
	scene *Scene
	sink  platform.Sink

	mu      sync.Mutex
	tracked map[string]platform.TrackedAnchor
}

func NewTracker(scene *Scene, sink platform.Sink) *Tracker {
	return &Tracker{
		scene:   scene,
		sink:    sink,
		tracked: make(map[string]platform.TrackedAnchor),
	}
}

// Detect places label at distance metres in front of the world origin. A
// label that is already tracked is reported unchanged and no event fires.
func (t *Tracker) Detect(label string, distance float32) (platform.TrackedAnchor, bool) {
	t.mu.Lock()
	if a, ok := t.tracked[label]; ok {
		t.mu.Unlock()
		return a, false
	}
	a := platform.TrackedAnchor{
		ID:             platform.AnchorID(uuid.NewString()),
		ReferenceImage: label,
		Pose:           mgl32.Translate3D(0, 0, -distance),
	}
	t.tracked[label] = a
	t.mu.Unlock()

	t.scene.SetPose(a.ID, a.Pose)
	t.sink.AnchorsAdded([]platform.TrackedAnchor{a})
	return a, true
}

// Lose reports the anchor for label as removed.
func (t *Tracker) Lose(label string) (platform.TrackedAnchor, bool) {
	t.mu.Lock()
	a, ok := t.tracked[label]
	if ok {
		delete(t.tracked, label)
	}
	t.mu.Unlock()

	if !ok {
		return platform.TrackedAnchor{}, false
	}
	t.sink.AnchorsRemoved([]platform.TrackedAnchor{a})
	return a, true
}

// Tracked returns the anchor currently tracked for label.
func (t *Tracker) Tracked(label string) (platform.TrackedAnchor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.tracked[label]
	return a, ok
}

// World bundles the simulated collaborators and drives them by name.
type World struct {
	Scene   *Scene
	Media   *Media
	Hits    *HitTester
	Tracker *Tracker
	sink    platform.Sink
}

// NewWorld builds a scene, media provider and hit tester. Attach wires the
// event sink once it exists.
func NewWorld(cam Camera) *World {
	scene := NewScene()
	return &World{
		Scene: scene,
		Media: NewMedia(),
		Hits:  NewHitTester(scene, cam),
	}
}

// Attach connects the world's tracker and taps to sink.
func (w *World) Attach(sink platform.Sink) {
	w.sink = sink
	w.Tracker = NewTracker(w.Scene, sink)
}

func (w *World) Detect(label string, distance float32) error {
	if w.Tracker == nil {
		return fmt.Errorf("detect %s: world not attached", label)
	}
	w.Tracker.Detect(label, distance)
	return nil
}

func (w *World) Lose(label string) error {
	if w.Tracker == nil {
		return fmt.Errorf("lose %s: world not attached", label)
	}
	if _, ok := w.Tracker.Lose(label); !ok {
		return fmt.Errorf("lose %s: not tracked", label)
	}
	return nil
}

// Tap taps at (x, y) in pixels. Negative coordinates tap the screen center.
func (w *World) Tap(x, y float32) error {
	if w.sink == nil {
		return fmt.Errorf("tap: world not attached")
	}
	p := platform.ScreenPoint{X: x, Y: y}
	if x < 0 || y < 0 {
		p = w.Hits.Camera.Center()
	}
	w.sink.Tap(p)
	return nil
}

func (w *World) Ready(video string) error {
	if !w.Media.Resolve(video, nil) {
		return fmt.Errorf("ready %s: no pending player", video)
	}
	return nil
}

func (w *World) Fail(video string, reason error) error {
	if !w.Media.Resolve(video, reason) {
		return fmt.Errorf("fail %s: no pending player", video)
	}
	return nil
}
