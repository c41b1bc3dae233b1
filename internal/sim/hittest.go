package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ivlev/argallery/internal/platform"
)

// Camera is a pinhole camera. Screen coordinates are in pixels with the
// origin at the top-left; the camera looks down its local -Z axis.
type Camera struct {
	Width  float32
	Height float32
	Focal  float32
	Pose   mgl32.Mat4
}

// DefaultCamera approximates a portrait phone screen at the world origin.
func DefaultCamera() Camera {
	return Camera{Width: 1170, Height: 2532, Focal: 1500, Pose: mgl32.Ident4()}
}

// Center returns the screen point in the middle of the view.
func (c Camera) Center() platform.ScreenPoint {
	return platform.ScreenPoint{X: c.Width / 2, Y: c.Height / 2}
}

// Ray returns the world-space ray through screen point p.
func (c Camera) Ray(p platform.ScreenPoint) platform.Ray {
	local := mgl32.Vec4{
		(p.X - c.Width/2) / c.Focal,
		-(p.Y - c.Height/2) / c.Focal,
		-1,
		0,
	}
	return platform.Ray{
		Origin: c.Pose.Col(3).Vec3(),
		Dir:    c.Pose.Mul4x1(local).Vec3().Normalize(),
	}
}

// facing keeps the position of pose and turns its local +Z toward eye.
func facing(pose mgl32.Mat4, eye mgl32.Vec3) mgl32.Mat4 {
	pos := pose.Col(3).Vec3()
	toEye := eye.Sub(pos)
	if toEye.Len() < 1e-6 {
		return pose
	}
	up := mgl32.Vec3{0, 1, 0}
	if d := toEye.Normalize().Dot(up); d > 0.999 || d < -0.999 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(pos, pos.Sub(toEye), up).Inv()
}

// HitTester casts screen rays against the collidable surfaces of a Scene.
type HitTester struct {
	Scene  *Scene
	Camera Camera
}

var _ platform.HitTester = (*HitTester)(nil)

func NewHitTester(scene *Scene, cam Camera) *HitTester {
	return &HitTester{Scene: scene, Camera: cam}
}

// NodeAt returns the nearest surface under p.
func (h *HitTester) NodeAt(p platform.ScreenPoint) (platform.Node, bool) {
	ray := h.Camera.Ray(p)

	var (
		best *Node
		dist float32
	)
	for _, v := range h.Scene.visibleSurfaces() {
		pose := v.pose
		if v.billboard {
			pose = facing(pose, ray.Origin)
		}
		d, ok := platform.IntersectQuad(ray, pose, v.node.size)
		if !ok {
			continue
		}
		if best == nil || d < dist {
			best, dist = v.node, d
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
