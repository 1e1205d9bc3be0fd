// package accel builds the ray-query acceleration structures: per-shape
// axis-aligned bounding boxes and a flat SAH-binned BVH ready for GPU upload.
package accel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
)

// AabbEps pads any zero-extent AABB axis so ray-slab intersection never
// divides a degenerate slab.
const AabbEps = 0.0001

// Aabb is an axis-aligned bounding box.
type Aabb struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAabb returns the inverted-infinite box that unions as the identity.
func EmptyAabb() Aabb {
	inf := float32(math.Inf(1))
	return Aabb{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// FromPoint returns the degenerate box containing a single point.
func FromPoint(p mgl32.Vec3) Aabb {
	return Aabb{Min: p, Max: p}
}

func vecMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Min(float64(a[0]), float64(b[0]))),
		float32(math.Min(float64(a[1]), float64(b[1]))),
		float32(math.Min(float64(a[2]), float64(b[2]))),
	}
}

func vecMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Max(float64(a[0]), float64(b[0]))),
		float32(math.Max(float64(a[1]), float64(b[1]))),
		float32(math.Max(float64(a[2]), float64(b[2]))),
	}
}

// Union returns the smallest box containing both operands.
func (a Aabb) Union(b Aabb) Aabb {
	return Aabb{Min: vecMin(a.Min, b.Min), Max: vecMax(a.Max, b.Max)}
}

// Expand grows the box to contain point p.
func (a Aabb) Expand(p mgl32.Vec3) Aabb {
	return Aabb{Min: vecMin(a.Min, p), Max: vecMax(a.Max, p)}
}

// SurfaceArea is the metric used by the SAH cost function.
func (a Aabb) SurfaceArea() float32 {
	d := a.Max.Sub(a.Min)
	return 2.0 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}

// Center returns the box centroid.
func (a Aabb) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Contains reports whether b fits entirely inside a.
func (a Aabb) Contains(b Aabb) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] < a.Min[axis] || b.Max[axis] > a.Max[axis] {
			return false
		}
	}
	return true
}

// Pad expands any axis thinner than AabbEps by AabbEps on each side.
func (a Aabb) Pad() Aabb {
	for axis := 0; axis < 3; axis++ {
		if a.Max[axis]-a.Min[axis] < AabbEps {
			a.Min[axis] -= AabbEps
			a.Max[axis] += AabbEps
		}
	}
	return a
}

func splat(v float32) mgl32.Vec3 {
	return mgl32.Vec3{v, v, v}
}

// ShapeAabb computes the closed-form world-space bounds for a shape.
//
// Infinite primitives (planes, skybox) get a large finite box so callers
// that do not partition them out still behave; the scene builder excludes
// them from the BVH and tests planes linearly.
func ShapeAabb(s *scene.Shape) Aabb {
	pos := mgl32.Vec3(s.Position)

	switch s.Type {
	case scene.ShapeSphere:
		r := splat(s.Radius)
		return Aabb{Min: pos.Sub(r), Max: pos.Add(r)}
	case scene.ShapeCube:
		half := splat(s.Radius)
		return Aabb{Min: pos.Sub(half), Max: pos.Add(half)}
	case scene.ShapeCylinder:
		extent := mgl32.Vec3{s.Radius, s.Height * 0.5, s.Radius}
		return Aabb{Min: pos.Sub(extent), Max: pos.Add(extent)}
	case scene.ShapeCone, scene.ShapeParaboloid, scene.ShapePyramid:
		r, h := s.Radius, s.Height
		return Aabb{
			Min: pos.Sub(mgl32.Vec3{r, 0, r}),
			Max: pos.Add(mgl32.Vec3{r, h, r}),
		}
	case scene.ShapeTorus:
		extent := s.Radius + s.Radius2
		e := mgl32.Vec3{extent, s.Radius2, extent}
		return Aabb{Min: pos.Sub(e), Max: pos.Add(e)}
	case scene.ShapeDisc:
		r := splat(s.Radius)
		return Aabb{Min: pos.Sub(r), Max: pos.Add(r)}.Pad()
	case scene.ShapeTriangle:
		return FromPoint(mgl32.Vec3(s.V0)).
			Expand(mgl32.Vec3(s.V1)).
			Expand(mgl32.Vec3(s.V2)).
			Pad()
	case scene.ShapeMandelbulb, scene.ShapeJulia:
		// 1.5x safety margin: the distance estimator can momentarily report
		// surface points slightly outside the nominal bounding radius.
		r := splat(s.Radius * 1.5)
		return Aabb{Min: pos.Sub(r), Max: pos.Add(r)}
	case scene.ShapeEllipsoid:
		// Radius = x-radius, Radius2 = z-radius, Height = y-radius.
		extent := mgl32.Vec3{
			s.Radius,
			maxf(s.Height, s.Radius),
			maxf(s.Radius2, s.Radius),
		}
		return Aabb{Min: pos.Sub(extent), Max: pos.Add(extent)}
	case scene.ShapeHyperboloid:
		h := s.Height * 0.5
		extent := mgl32.Vec3{s.Radius + h, h, s.Radius + h}
		return Aabb{Min: pos.Sub(extent), Max: pos.Add(extent)}
	case scene.ShapeMebius:
		extent := splat(s.Radius * 1.5)
		return Aabb{Min: pos.Sub(extent), Max: pos.Add(extent)}
	case scene.ShapeTetrahedron:
		extent := splat(s.Radius)
		return Aabb{Min: pos.Sub(extent), Max: pos.Add(extent)}
	default: // ShapePlane, ShapeSkybox
		big := splat(1e6)
		return Aabb{Min: big.Mul(-1), Max: big}
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
