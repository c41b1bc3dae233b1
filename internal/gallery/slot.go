package gallery

import "github.com/ivlev/argallery/internal/platform"

// Slot is the child of the gallery anchor that holds the live video
// surface. It holds at most one surface at a time.
type Slot struct {
	node    platform.Node
	hits    platform.HitTester
	current platform.Surface
}

func newSlot(node platform.Node, hits platform.HitTester) *Slot {
	return &Slot{node: node, hits: hits}
}

// Node returns the scene node backing the slot.
func (s *Slot) Node() platform.Node { return s.node }

// Current returns the attached surface, or nil.
func (s *Slot) Current() platform.Surface { return s.current }

// Attach replaces the current surface with surface.
func (s *Slot) Attach(surface platform.Surface) {
	s.Detach()
	s.node.AddChild(surface)
	s.current = surface
}

// Detach removes the current surface. No-op when empty.
func (s *Slot) Detach() {
	if s.current == nil {
		return
	}
	s.current.RemoveFromParent()
	s.current = nil
}

// HitTest reports whether the camera ray through p strikes the attached
// surface.
func (s *Slot) HitTest(p platform.ScreenPoint) bool {
	if s.current == nil || s.hits == nil {
		return false
	}
	n, ok := s.hits.NodeAt(p)
	return ok && n == platform.Node(s.current)
}
