// Package platform describes the host collaborators the gallery core runs
// against: image tracking, the scene graph, media playback and hit testing.
//
// Implementations are supplied by the host. Callbacks into a Sink and
// readiness notifications from a Player may arrive on any goroutine.
package platform

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
)

// AnchorID is the opaque identifier the tracking layer assigns to an anchor.
type AnchorID string

// TrackedAnchor is a platform anchor bound to a recognised reference image.
type TrackedAnchor struct {
	ID             AnchorID
	ReferenceImage string
	// Pose maps anchor-local coordinates to world coordinates.
	Pose mgl32.Mat4
}

// ScreenPoint is a position in view coordinates (pixels, origin top-left).
type ScreenPoint struct {
	X, Y float32
}

// Size is the extent of a flat surface in meters.
type Size struct {
	Width, Height float32
}

// Node is an entity in the scene graph.
type Node interface {
	Name() string
	// AddChild reparents child under this node.
	AddChild(child Node)
	// RemoveFromParent detaches the node. No-op when it has no parent.
	RemoveFromParent()
	// Parent returns nil for detached nodes.
	Parent() Node
}

// AnchorNode is a root node that follows a tracked anchor.
type AnchorNode interface {
	Node
	AnchorID() AnchorID
}

// Surface is a flat node rendering a video player's output.
type Surface interface {
	Node
	Size() Size
	// GenerateCollisionShape makes the surface visible to hit testing.
	GenerateCollisionShape()
	// FaceCamera keeps the surface turned toward the viewer regardless of
	// the anchor's orientation.
	FaceCamera()
}

// Scene creates nodes and owns the set of anchors that are rendered.
type Scene interface {
	NewAnchorNode(id AnchorID) AnchorNode
	NewNode(name string) Node
	NewVideoSurface(name string, size Size, player Player) Surface
	AddAnchor(a AnchorNode)
	RemoveAnchor(a AnchorNode)
	HasAnchor(a AnchorNode) bool
}

// Player is a looping media player created by a MediaProvider.
type Player interface {
	// Observe registers fn for the readiness outcome: nil once the media can
	// play, an error when the pipeline fails. fn runs at most once and may be
	// called on any goroutine. After stop returns fn is not called again.
	Observe(fn func(err error)) (stop func())
	SetLooping(on bool)
	Play()
	Pause()
	Close() error
}

// MediaProvider opens players for media resources.
type MediaProvider interface {
	Open(ctx context.Context, src string) (Player, error)
}

// HitTester maps a screen point to the node struck by the camera ray.
type HitTester interface {
	NodeAt(p ScreenPoint) (Node, bool)
}

// Sink receives platform events. Every method may be called from any
// goroutine.
type Sink interface {
	AnchorsAdded(anchors []TrackedAnchor)
	AnchorsRemoved(anchors []TrackedAnchor)
	Tap(p ScreenPoint)
}
