package platform

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Dir is expected to be unit length.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// IntersectQuad intersects r with a quad of the given size centered on the
// origin of pose, lying in the local XY plane. It returns the distance along
// the ray to the hit.
func IntersectQuad(r Ray, pose mgl32.Mat4, size Size) (float32, bool) {
	local := pose.Inv()
	o := local.Mul4x1(r.Origin.Vec4(1)).Vec3()
	d := local.Mul4x1(r.Dir.Vec4(0)).Vec3()

	if d.Z() > -1e-6 && d.Z() < 1e-6 {
		return 0, false
	}
	t := -o.Z() / d.Z()
	if t < 0 {
		return 0, false
	}

	x := o.X() + t*d.X()
	y := o.Y() + t*d.Y()
	if x < -size.Width/2 || x > size.Width/2 || y < -size.Height/2 || y > size.Height/2 {
		return 0, false
	}
	return t, true
}
