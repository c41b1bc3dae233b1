package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ivlev/argallery/internal/platform"
)

type recordingSink struct {
	added   []platform.TrackedAnchor
	removed []platform.TrackedAnchor
	taps    []platform.ScreenPoint
}

func (r *recordingSink) AnchorsAdded(a []platform.TrackedAnchor)   { r.added = append(r.added, a...) }
func (r *recordingSink) AnchorsRemoved(a []platform.TrackedAnchor) { r.removed = append(r.removed, a...) }
func (r *recordingSink) Tap(p platform.ScreenPoint)                { r.taps = append(r.taps, p) }

func TestSceneParenting(t *testing.T) {
	s := NewScene()
	anchor := s.NewAnchorNode("a1")
	slot := s.NewNode("slot")
	surface := s.NewVideoSurface("plane", platform.Size{Width: 1, Height: 1}, nil)

	if slot.Parent() != nil {
		t.Fatal("fresh node must have a nil parent")
	}

	anchor.AddChild(slot)
	slot.AddChild(surface)
	if surface.Parent() != slot {
		t.Fatal("surface not parented to slot")
	}

	other := s.NewNode("other")
	other.AddChild(surface)
	if got := len(slot.(*Node).Children()); got != 0 {
		t.Fatalf("reparenting must remove the child from the old parent, %d left", got)
	}

	surface.RemoveFromParent()
	if surface.Parent() != nil {
		t.Fatal("surface still parented after RemoveFromParent")
	}
	if n := len(s.AttachedSurfaces()); n != 0 {
		t.Fatalf("attached surfaces = %d, want 0", n)
	}
	if s.SurfacesCreated() != 1 {
		t.Fatalf("surfaces created = %d, want 1", s.SurfacesCreated())
	}
}

func TestSceneAnchors(t *testing.T) {
	s := NewScene()
	a := s.NewAnchorNode("a1")

	s.AddAnchor(a)
	s.AddAnchor(a)
	if s.Anchors() != 1 {
		t.Fatalf("anchors = %d, want 1", s.Anchors())
	}
	if s.AddAnchorCalls() != 2 {
		t.Fatalf("add calls = %d, want 2", s.AddAnchorCalls())
	}
	if !s.HasAnchor(a) {
		t.Fatal("anchor missing")
	}
	s.RemoveAnchor(a)
	if s.HasAnchor(a) || s.Anchors() != 0 {
		t.Fatal("anchor not removed")
	}
}

func TestMediaResolve(t *testing.T) {
	m := NewMedia()
	p, err := m.Open(context.Background(), "videos/iphone15.mp4")
	if err != nil {
		t.Fatal(err)
	}

	var got []error
	calls := 0
	p.Observe(func(err error) { calls++; got = append(got, err) })

	if pending := m.Pending(); len(pending) != 1 || pending[0] != "iphone15" {
		t.Fatalf("pending = %v", pending)
	}
	if m.Resolve("macbook", nil) {
		t.Fatal("resolved a video that was never opened")
	}

	boom := errors.New("decode error")
	if !m.Resolve("iphone15", boom) {
		t.Fatal("expected a pending player")
	}
	if calls != 1 || !errors.Is(got[0], boom) {
		t.Fatalf("observer calls = %d, errs = %v", calls, got)
	}
	if m.Resolve("iphone15", nil) {
		t.Fatal("a player resolves only once")
	}

	late := 0
	p.Observe(func(error) { late++ })
	if late != 1 {
		t.Fatal("observer registered after resolution must be told immediately")
	}
}

func TestMediaObserveStop(t *testing.T) {
	m := NewMedia()
	p, _ := m.Open(context.Background(), "airpods.mp4")
	calls := 0
	stop := p.Observe(func(error) { calls++ })
	stop()
	m.Resolve("airpods", nil)
	if calls != 0 {
		t.Fatal("stopped observer was called")
	}
}

func TestMediaCounters(t *testing.T) {
	m := NewMedia()
	a, _ := m.Open(context.Background(), "a.mp4")
	b, _ := m.Open(context.Background(), "b.mp4")

	a.Play()
	a.Play()
	if m.Playing() != 1 {
		t.Fatalf("playing = %d, want 1", m.Playing())
	}
	b.Play()
	a.Pause()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); !errors.Is(err, ErrPlayerClosed) {
		t.Fatalf("second close err = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	if m.Live() != 0 || m.Playing() != 0 {
		t.Fatalf("live = %d playing = %d after closing everything", m.Live(), m.Playing())
	}
	if m.PeakLive() != 2 || m.PeakPlaying() != 2 {
		t.Fatalf("peaks = %d/%d, want 2/2", m.PeakLive(), m.PeakPlaying())
	}
	if m.Opened() != 2 {
		t.Fatalf("opened = %d", m.Opened())
	}
}

func TestMediaRejectOpen(t *testing.T) {
	m := NewMedia()
	m.RejectOpen("broken", errors.New("unsupported codec"))
	if _, err := m.Open(context.Background(), "broken.mp4"); err == nil {
		t.Fatal("expected open error")
	}
	if m.Live() != 0 {
		t.Fatal("rejected open must not count as live")
	}
}

func TestMediaReadyDelay(t *testing.T) {
	m := NewMedia()
	m.ReadyDelay = time.Millisecond
	m.FailOn("bad", errors.New("corrupt"))

	check := func(src string, wantErr bool) {
		t.Helper()
		p, err := m.Open(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		done := make(chan error, 1)
		p.Observe(func(err error) { done <- err })
		select {
		case err := <-done:
			if (err != nil) != wantErr {
				t.Fatalf("%s: err = %v, wantErr %v", src, err, wantErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: readiness never reported", src)
		}
	}
	check("good.mp4", false)
	check("bad.mp4", true)
}

func TestHitTester(t *testing.T) {
	s := NewScene()
	cam := DefaultCamera()
	h := NewHitTester(s, cam)

	anchor := s.NewAnchorNode("a1")
	s.SetPose("a1", mgl32.Translate3D(0, 0, -1))
	slot := s.NewNode("slot")
	anchor.AddChild(slot)
	surface := s.NewVideoSurface("plane", platform.Size{Width: 0.4, Height: 0.225}, nil)
	slot.AddChild(surface)

	if _, ok := h.NodeAt(cam.Center()); ok {
		t.Fatal("hit before the anchor is in the scene")
	}
	s.AddAnchor(anchor)
	if _, ok := h.NodeAt(cam.Center()); ok {
		t.Fatal("hit before a collision shape exists")
	}
	surface.GenerateCollisionShape()

	n, ok := h.NodeAt(cam.Center())
	if !ok || n != platform.Node(surface) {
		t.Fatalf("center tap: got %v, %v", n, ok)
	}
	if _, ok := h.NodeAt(platform.ScreenPoint{X: 10, Y: 10}); ok {
		t.Fatal("corner tap must miss")
	}

	surface.RemoveFromParent()
	if _, ok := h.NodeAt(cam.Center()); ok {
		t.Fatal("detached surface must not be hit")
	}
}

func TestTracker(t *testing.T) {
	s := NewScene()
	sink := &recordingSink{}
	tr := NewTracker(s, sink)

	a, fresh := tr.Detect("Apple_Poster", 1.2)
	if !fresh || a.ID == "" {
		t.Fatalf("detect = %+v, %v", a, fresh)
	}
	again, fresh := tr.Detect("Apple_Poster", 1.2)
	if fresh || again.ID != a.ID {
		t.Fatal("re-detecting a tracked label must not create a new anchor")
	}
	if len(sink.added) != 1 {
		t.Fatalf("added events = %d, want 1", len(sink.added))
	}

	if _, ok := tr.Lose("Apple_Poster"); !ok {
		t.Fatal("lose failed")
	}
	if _, ok := tr.Lose("Apple_Poster"); ok {
		t.Fatal("second lose must report false")
	}
	if len(sink.removed) != 1 || sink.removed[0].ID != a.ID {
		t.Fatalf("removed = %+v", sink.removed)
	}

	b, _ := tr.Detect("Apple_Poster", 1)
	if b.ID == a.ID {
		t.Fatal("re-detection after loss must carry a new identity")
	}
}

func TestWorldDriver(t *testing.T) {
	w := NewWorld(DefaultCamera())
	if err := w.Detect("x", 1); err == nil {
		t.Fatal("detect before attach must fail")
	}
	sink := &recordingSink{}
	w.Attach(sink)

	if err := w.Detect("Apple_Poster", 1); err != nil {
		t.Fatal(err)
	}
	if err := w.Tap(-1, -1); err != nil {
		t.Fatal(err)
	}
	if len(sink.taps) != 1 || sink.taps[0] != w.Hits.Camera.Center() {
		t.Fatalf("taps = %v", sink.taps)
	}
	if err := w.Ready("iphone15"); err == nil {
		t.Fatal("ready with nothing pending must fail")
	}
	if err := w.Lose("Apple_Poster"); err != nil {
		t.Fatal(err)
	}
	if err := w.Lose("Apple_Poster"); err == nil {
		t.Fatal("losing an untracked label must fail")
	}
}

func TestCameraRay(t *testing.T) {
	cam := DefaultCamera()
	cam.Pose = mgl32.Translate3D(0, 1, 0).Mul4(mgl32.HomogRotate3DY(math.Pi / 2))

	ray := cam.Ray(cam.Center())
	if !ray.Origin.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("origin = %v", ray.Origin)
	}
	// Turned a quarter left, the camera looks down world -X.
	if !ray.Dir.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5) {
		t.Fatalf("dir = %v", ray.Dir)
	}

	right := cam.Ray(platform.ScreenPoint{X: cam.Width, Y: cam.Height / 2})
	if right.Dir.Z() >= 0 {
		t.Fatalf("right edge dir = %v, want a -Z component", right.Dir)
	}
}

func TestHitTesterFacingSurface(t *testing.T) {
	s := NewScene()
	cam := DefaultCamera()
	h := NewHitTester(s, cam)

	// The poster is seen edge-on, so a plane lying in it cannot be struck.
	anchor := s.NewAnchorNode("a1")
	s.SetPose("a1", mgl32.Translate3D(0, 0, -1).Mul4(mgl32.HomogRotate3DY(math.Pi/2)))
	surface := s.NewVideoSurface("plane", platform.Size{Width: 0.4, Height: 0.225}, nil)
	anchor.AddChild(surface)
	s.AddAnchor(anchor)
	surface.GenerateCollisionShape()

	if _, ok := h.NodeAt(cam.Center()); ok {
		t.Fatal("edge-on plane must not be hit")
	}

	surface.FaceCamera()
	if !surface.(*Node).FacesCamera() {
		t.Fatal("orientation not recorded")
	}
	n, ok := h.NodeAt(cam.Center())
	if !ok || n != platform.Node(surface) {
		t.Fatalf("camera-facing plane: got %v, %v", n, ok)
	}
	if _, ok := h.NodeAt(platform.ScreenPoint{X: 10, Y: 10}); ok {
		t.Fatal("corner tap must miss")
	}
}
