// Package sim provides in-memory implementations of the platform
// collaborators: a scene graph, a media provider with controllable
// readiness, a ray-casting hit tester and a scripted image tracker.
//
// All types are safe for concurrent use so tests and the demo can inspect
// them while the gallery owner goroutine mutates them.
package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ivlev/argallery/internal/platform"
)

type nodeKind int

const (
	kindPlain nodeKind = iota
	kindAnchor
	kindSurface
)

// Node is the single concrete node type of the simulated scene. Depending on
// how it was created it also satisfies platform.AnchorNode or
// platform.Surface.
type Node struct {
	scene    *Scene
	kind     nodeKind
	name     string
	parent   *Node
	children []*Node

	anchor    platform.AnchorID
	size      platform.Size
	player    platform.Player
	collision bool
	billboard bool
}

func (n *Node) Name() string { return n.name }

func (n *Node) AddChild(child platform.Node) {
	c, ok := child.(*Node)
	if !ok || c == n {
		return
	}
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	c.detachLocked()
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) RemoveFromParent() {
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	n.detachLocked()
}

func (n *Node) detachLocked() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) Parent() platform.Node {
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// AnchorID is set for anchor nodes only.
func (n *Node) AnchorID() platform.AnchorID { return n.anchor }

func (n *Node) Size() platform.Size { return n.size }

func (n *Node) GenerateCollisionShape() {
	n.scene.mu.Lock()
	n.collision = true
	n.scene.mu.Unlock()
}

func (n *Node) FaceCamera() {
	n.scene.mu.Lock()
	n.billboard = true
	n.scene.mu.Unlock()
}

// FacesCamera reports whether FaceCamera was called.
func (n *Node) FacesCamera() bool {
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	return n.billboard
}

// Collidable reports whether GenerateCollisionShape was called.
func (n *Node) Collidable() bool {
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	return n.collision
}

// Player returns the player a surface renders.
func (n *Node) Player() platform.Player { return n.player }

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	n.scene.mu.Lock()
	defer n.scene.mu.Unlock()
	return append([]*Node(nil), n.children...)
}

// rootLocked walks to the top of the node's tree.
func (n *Node) rootLocked() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Scene is an in-memory scene graph.
type Scene struct {
	mu       sync.Mutex
	anchors  []*Node
	poses    map[platform.AnchorID]mgl32.Mat4
	surfaces []*Node
	adds     int
}

var _ platform.Scene = (*Scene)(nil)

func NewScene() *Scene {
	return &Scene{poses: make(map[platform.AnchorID]mgl32.Mat4)}
}

func (s *Scene) NewAnchorNode(id platform.AnchorID) platform.AnchorNode {
	return &Node{scene: s, kind: kindAnchor, name: "Anchor_" + string(id), anchor: id}
}

func (s *Scene) NewNode(name string) platform.Node {
	return &Node{scene: s, kind: kindPlain, name: name}
}

func (s *Scene) NewVideoSurface(name string, size platform.Size, player platform.Player) platform.Surface {
	n := &Node{scene: s, kind: kindSurface, name: name, size: size, player: player}
	s.mu.Lock()
	s.surfaces = append(s.surfaces, n)
	s.mu.Unlock()
	return n
}

func (s *Scene) AddAnchor(a platform.AnchorNode) {
	n, ok := a.(*Node)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds++
	for _, x := range s.anchors {
		if x == n {
			return
		}
	}
	s.anchors = append(s.anchors, n)
}

func (s *Scene) RemoveAnchor(a platform.AnchorNode) {
	n, ok := a.(*Node)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.anchors {
		if x == n {
			s.anchors = append(s.anchors[:i], s.anchors[i+1:]...)
			return
		}
	}
}

func (s *Scene) HasAnchor(a platform.AnchorNode) bool {
	n, ok := a.(*Node)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.anchors {
		if x == n {
			return true
		}
	}
	return false
}

// SetPose records where the tracking layer places an anchor.
func (s *Scene) SetPose(id platform.AnchorID, pose mgl32.Mat4) {
	s.mu.Lock()
	s.poses[id] = pose
	s.mu.Unlock()
}

// Anchors returns the number of anchors in the scene.
func (s *Scene) Anchors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anchors)
}

// AddAnchorCalls returns how many times AddAnchor was called.
func (s *Scene) AddAnchorCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds
}

// AttachedSurfaces returns the surfaces that currently have a parent.
func (s *Scene) AttachedSurfaces() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Node
	for _, n := range s.surfaces {
		if n.parent != nil {
			out = append(out, n)
		}
	}
	return out
}

// SurfacesCreated returns how many video surfaces were ever created.
func (s *Scene) SurfacesCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.surfaces)
}

// visibleSurface is a collidable surface under an anchor that is in the
// scene, with its world pose.
type visibleSurface struct {
	node      *Node
	pose      mgl32.Mat4
	billboard bool
}

func (s *Scene) visibleSurfaces() []visibleSurface {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []visibleSurface
	for _, n := range s.surfaces {
		if n.parent == nil || !n.collision {
			continue
		}
		root := n.rootLocked()
		if root.kind != kindAnchor || !s.hasAnchorLocked(root) {
			continue
		}
		pose, ok := s.poses[root.anchor]
		if !ok {
			pose = mgl32.Ident4()
		}
		out = append(out, visibleSurface{node: n, pose: pose, billboard: n.billboard})
	}
	return out
}

func (s *Scene) hasAnchorLocked(n *Node) bool {
	for _, x := range s.anchors {
		if x == n {
			return true
		}
	}
	return false
}
