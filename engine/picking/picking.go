// package picking casts rays against the scene on the CPU: a BVH-accelerated
// closest-hit query with the same per-shape intersection formulas the WGSL
// dispatch uses, including CSG subtraction advancement. The editor uses it
// for object selection; the test suite uses it to pin the traversal and
// intersection laws without a GPU.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/camera"
	"github.com/Stronautt/PathTracer/engine/scene"
)

// Epsilon mirrors the shader's intersection epsilon.
const Epsilon = 1e-4

// CsgMaxIterations bounds the subtraction advancement loop; scenes deeper
// than this render with visible holes rather than looping forever.
const CsgMaxIterations = 8

// Ray is an origin/direction pair with the precomputed reciprocal direction
// for slab tests.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
	InvDir mgl32.Vec3
}

// NewRay builds a ray; dir must be unit length.
func NewRay(origin, dir mgl32.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: mgl32.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]},
	}
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// PickingRay constructs a world-space ray from the camera through a screen
// pixel. Pixel coordinates use a top-left origin.
func PickingRay(cam *camera.Camera, pixelX, pixelY float32, width, height uint32) Ray {
	right, up, forward := cam.BasisVectors()
	aspect := float32(width) / float32(height)
	focal := cam.FocalLength()

	ndcX := (2*pixelX/float32(width) - 1) * aspect
	ndcY := 1 - 2*pixelY/float32(height)

	dir := forward.Mul(focal).Add(right.Mul(ndcX)).Add(up.Mul(ndcY)).Normalize()
	return NewRay(cam.Position, dir)
}

// closestPositive returns the smallest positive of two roots, or a miss.
func closestPositive(t1, t2 float32) (float32, bool) {
	if t1 > 0 {
		return t1, true
	}
	if t2 > 0 {
		return t2, true
	}
	return 0, false
}

// RaySphere solves the half-b quadratic against a sphere.
func RaySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))
	return closestPositive(-b-sqrtD, -b+sqrtD)
}

func rayPlane(origin, dir, point, normal mgl32.Vec3) (float32, bool) {
	denom := dir.Dot(normal)
	if float32(math.Abs(float64(denom))) <= 1e-6 {
		return 0, false
	}
	t := point.Sub(origin).Dot(normal) / denom
	return t, t > 0
}

func rayDisc(origin, dir, center, normal mgl32.Vec3, radius float32) (float32, bool) {
	t, ok := rayPlane(origin, dir, center, normal)
	if !ok {
		return 0, false
	}
	hit := origin.Add(dir.Mul(t))
	if hit.Sub(center).LenSqr() > radius*radius {
		return 0, false
	}
	return t, true
}

// RayCube slab-tests an axis-aligned cube of the given half extent.
func RayCube(origin mgl32.Vec3, invDir mgl32.Vec3, center mgl32.Vec3, half float32) (float32, bool) {
	box := accel.Aabb{
		Min: center.Sub(mgl32.Vec3{half, half, half}),
		Max: center.Add(mgl32.Vec3{half, half, half}),
	}
	return RayAabb(origin, invDir, box)
}

func rayCylinder(origin, dir, center, axis mgl32.Vec3, radius, height float32) (float32, bool) {
	oc := origin.Sub(center)
	dAlong := dir.Dot(axis)
	ocAlong := oc.Dot(axis)
	dPerp := dir.Sub(axis.Mul(dAlong))
	ocPerp := oc.Sub(axis.Mul(ocAlong))

	a := dPerp.Dot(dPerp)
	b := 2 * dPerp.Dot(ocPerp)
	c := ocPerp.Dot(ocPerp) - radius*radius

	halfH := height * 0.5
	best := float32(math.Inf(1))
	found := false

	// Side surface: near root first, far root if the near one misses the cap.
	discriminant := b*b - 4*a*c
	if discriminant >= 0 && float32(math.Abs(float64(a))) > 1e-12 {
		sqrtD := float32(math.Sqrt(float64(discriminant)))
		for _, t := range [2]float32{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
			if t > 0 {
				y := ocAlong + dAlong*t
				if float32(math.Abs(float64(y))) <= halfH && t < best {
					best, found = t, true
					break
				}
			}
		}
	}

	// Top and bottom caps.
	if float32(math.Abs(float64(dAlong))) > 1e-6 {
		for _, capY := range [2]float32{-halfH, halfH} {
			t := (capY - ocAlong) / dAlong
			if t > 0 && t < best {
				hitPerp := ocPerp.Add(dPerp.Mul(t))
				if hitPerp.LenSqr() <= radius*radius {
					best, found = t, true
				}
			}
		}
	}

	return best, found
}

func rayCone(origin, dir, center, axis mgl32.Vec3, tanSq, height float32) (float32, bool) {
	// Base disc at center, apex at center + axis*height; tanSq is
	// tan²(half-angle).
	apex := center.Add(axis.Mul(height))
	oc := origin.Sub(apex)
	cosSq := 1 / (1 + tanSq)

	dDotV := dir.Dot(axis)
	ocDotV := oc.Dot(axis)
	a := dDotV*dDotV - cosSq*dir.Dot(dir)
	b := 2 * (dDotV*ocDotV - cosSq*dir.Dot(oc))
	c := ocDotV*ocDotV - cosSq*oc.Dot(oc)

	best := float32(math.Inf(1))
	found := false

	discriminant := b*b - 4*a*c
	if discriminant >= 0 && float32(math.Abs(float64(a))) > 1e-12 {
		sqrtD := float32(math.Sqrt(float64(discriminant)))
		for _, t := range [2]float32{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
			if t > 0 && t < best {
				hit := origin.Add(dir.Mul(t))
				y := hit.Sub(center).Dot(axis)
				if y >= 0 && y <= height {
					best, found = t, true
					break
				}
			}
		}
	}

	baseRadius := height * float32(math.Sqrt(float64(tanSq)))
	if t, ok := rayDisc(origin, dir, center, axis.Mul(-1), baseRadius); ok && t < best {
		best, found = t, true
	}

	return best, found
}

// RayTriangle is the Möller-Trumbore intersection.
func RayTriangle(origin, dir, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if float32(math.Abs(float64(a))) < 1e-7 {
		return 0, false
	}
	f := 1 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * e2.Dot(q)
	return t, t > 0
}

func rayEllipsoid(origin, dir, center, radii mgl32.Vec3) (float32, bool) {
	invR := mgl32.Vec3{1 / radii[0], 1 / radii[1], 1 / radii[2]}
	oc := mulElem(origin.Sub(center), invR)
	d := mulElem(dir, invR)
	a := d.Dot(d)
	b := 2 * oc.Dot(d)
	c := oc.Dot(oc) - 1
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))
	return closestPositive((-b-sqrtD)/(2*a), (-b+sqrtD)/(2*a))
}

func rayParaboloid(origin, dir, center mgl32.Vec3, radius, height float32) (float32, bool) {
	// x² + z² = radius*y, y in [0, height].
	oc := origin.Sub(center)
	a := dir[0]*dir[0] + dir[2]*dir[2]
	b := 2*(oc[0]*dir[0]+oc[2]*dir[2]) - radius*dir[1]
	c := oc[0]*oc[0] + oc[2]*oc[2] - radius*oc[1]

	best := float32(math.Inf(1))
	found := false

	discriminant := b*b - 4*a*c
	if discriminant >= 0 && float32(math.Abs(float64(a))) > 1e-12 {
		sqrtD := float32(math.Sqrt(float64(discriminant)))
		for _, t := range [2]float32{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
			if t > 0 && t < best {
				y := oc[1] + dir[1]*t
				if y >= 0 && y <= height {
					best, found = t, true
					break
				}
			}
		}
	}

	// Top cap.
	capRSq := radius * height
	if float32(math.Abs(float64(dir[1]))) > 1e-6 {
		t := (height - oc[1]) / dir[1]
		if t > 0 && t < best {
			hx := oc[0] + dir[0]*t
			hz := oc[2] + dir[2]*t
			if hx*hx+hz*hz <= capRSq {
				best, found = t, true
			}
		}
	}

	return best, found
}

func rayHyperboloid(origin, dir, center mgl32.Vec3, radius, height float32) (float32, bool) {
	// One-sheet: (x² + z² − y²)/r² = 1, y capped at ±height/2.
	oc := origin.Sub(center)
	rSq := radius * radius
	a := (dir[0]*dir[0] + dir[2]*dir[2] - dir[1]*dir[1]) / rSq
	b := 2 * (oc[0]*dir[0] + oc[2]*dir[2] - oc[1]*dir[1]) / rSq
	c := (oc[0]*oc[0]+oc[2]*oc[2]-oc[1]*oc[1])/rSq - 1

	halfH := height * 0.5
	best := float32(math.Inf(1))
	found := false

	discriminant := b*b - 4*a*c
	if discriminant >= 0 && float32(math.Abs(float64(a))) > 1e-12 {
		sqrtD := float32(math.Sqrt(float64(discriminant)))
		for _, t := range [2]float32{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
			if t > 0 && t < best {
				y := oc[1] + dir[1]*t
				if float32(math.Abs(float64(y))) <= halfH {
					best, found = t, true
					break
				}
			}
		}
	}

	capRSq := rSq * (1 + (halfH/radius)*(halfH/radius))
	if float32(math.Abs(float64(dir[1]))) > 1e-6 {
		for _, capY := range [2]float32{-halfH, halfH} {
			t := (capY - oc[1]) / dir[1]
			if t > 0 && t < best {
				hx := oc[0] + dir[0]*t
				hz := oc[2] + dir[2]*t
				if hx*hx+hz*hz <= capRSq {
					best, found = t, true
				}
			}
		}
	}

	return best, found
}

func rayPyramid(origin, dir, center mgl32.Vec3, radius, height float32) (float32, bool) {
	// Square base (side 2*radius) in the xz-plane, apex at y = height.
	apex := center.Add(mgl32.Vec3{0, height, 0})
	v := [4]mgl32.Vec3{
		center.Add(mgl32.Vec3{-radius, 0, -radius}),
		center.Add(mgl32.Vec3{radius, 0, -radius}),
		center.Add(mgl32.Vec3{radius, 0, radius}),
		center.Add(mgl32.Vec3{-radius, 0, radius}),
	}

	best := float32(math.Inf(1))
	found := false
	check := func(t float32, ok bool) {
		if ok && t > 0 && t < best {
			best, found = t, true
		}
	}

	check(RayTriangle(origin, dir, v[0], v[1], apex))
	check(RayTriangle(origin, dir, v[1], v[2], apex))
	check(RayTriangle(origin, dir, v[2], v[3], apex))
	check(RayTriangle(origin, dir, v[3], v[0], apex))
	check(RayTriangle(origin, dir, v[0], v[2], v[1]))
	check(RayTriangle(origin, dir, v[0], v[3], v[2]))

	return best, found
}

func rayTetrahedron(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	// Regular tetrahedron inscribed in a sphere of the given radius.
	sqrt89 := radius * 0.94280904
	oneThird := radius * 0.33333334
	sqrt29 := radius * 0.4714045
	sqrt23 := radius * 0.8164966

	v0 := center.Add(mgl32.Vec3{0, radius, 0})
	v1 := center.Add(mgl32.Vec3{sqrt89, -oneThird, 0})
	v2 := center.Add(mgl32.Vec3{-sqrt29, -oneThird, sqrt23})
	v3 := center.Add(mgl32.Vec3{-sqrt29, -oneThird, -sqrt23})

	best := float32(math.Inf(1))
	found := false
	check := func(t float32, ok bool) {
		if ok && t > 0 && t < best {
			best, found = t, true
		}
	}

	check(RayTriangle(origin, dir, v0, v1, v2))
	check(RayTriangle(origin, dir, v0, v2, v3))
	check(RayTriangle(origin, dir, v0, v3, v1))
	check(RayTriangle(origin, dir, v1, v3, v2))

	return best, found
}

// RayAabb is the slab-method box intersection. Returns the closest positive
// entry t (or the exit t when the origin is inside) and whether it hit.
func RayAabb(origin, invDir mgl32.Vec3, box accel.Aabb) (float32, bool) {
	tEnter := float32(math.Inf(-1))
	tExit := float32(math.Inf(1))
	for axis := 0; axis < 3; axis++ {
		t1 := (box.Min[axis] - origin[axis]) * invDir[axis]
		t2 := (box.Max[axis] - origin[axis]) * invDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
		}
		if t2 < tExit {
			tExit = t2
		}
	}
	if tEnter > tExit || tExit < 0 {
		return 0, false
	}
	if tEnter > 0 {
		return tEnter, true
	}
	return tExit, true
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// IntersectShape is the per-shape closest-hit dispatch, matching the WGSL
// shader formulas. SDF-based shapes (torus, Mebius, fractals) fall back to
// their AABB proxy, which is sufficient for picking.
//
// Returns:
//   - float32: the hit parameter t
//   - bool: whether the ray hits
func IntersectShape(r Ray, s *scene.Shape) (float32, bool) {
	pos := mgl32.Vec3(s.Position)
	normal := mgl32.Vec3(s.Normal)
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}

	switch s.Type {
	case scene.ShapeSkybox:
		return 0, false
	case scene.ShapePlane:
		return rayPlane(r.Origin, r.Dir, pos, normal)
	case scene.ShapeSphere:
		return RaySphere(r.Origin, r.Dir, pos, s.Radius)
	case scene.ShapeDisc:
		return rayDisc(r.Origin, r.Dir, pos, normal, s.Radius)
	case scene.ShapeCube:
		return RayCube(r.Origin, r.InvDir, pos, s.Radius)
	case scene.ShapeCylinder:
		return rayCylinder(r.Origin, r.Dir, pos, normal, s.Radius, s.Height)
	case scene.ShapeCone:
		return rayCone(r.Origin, r.Dir, pos, normal, s.Radius2, s.Height)
	case scene.ShapeTriangle:
		return RayTriangle(r.Origin, r.Dir, mgl32.Vec3(s.V0), mgl32.Vec3(s.V1), mgl32.Vec3(s.V2))
	case scene.ShapeEllipsoid:
		radii := mgl32.Vec3{
			s.Radius,
			maxf(s.Height, s.Radius),
			maxf(s.Radius2, s.Radius),
		}
		return rayEllipsoid(r.Origin, r.Dir, pos, radii)
	case scene.ShapeParaboloid:
		return rayParaboloid(r.Origin, r.Dir, pos, s.Radius, s.Height)
	case scene.ShapeHyperboloid:
		return rayHyperboloid(r.Origin, r.Dir, pos, s.Radius, s.Height)
	case scene.ShapePyramid:
		return rayPyramid(r.Origin, r.Dir, pos, s.Radius, s.Height)
	case scene.ShapeTetrahedron:
		return rayTetrahedron(r.Origin, r.Dir, pos, s.Radius)
	default: // Torus, Mebius, Mandelbulb, Julia: SDF shapes
		return RayAabb(r.Origin, r.InvDir, accel.ShapeAabb(s))
	}
}

// Result is a successful pick.
type Result struct {
	ShapeIndex int
	T          float32
	Point      mgl32.Vec3
}

// Pick returns the closest hit along the ray, or false. Subtraction-tagged
// shapes are never reported directly; when the hit point lies inside one,
// the ray is advanced past the nearest exit of the containing negatives and
// re-traced, accumulating the offset, up to CsgMaxIterations times.
//
// Parameters:
//   - r: the query ray
//   - sa: the scene acceleration data (BVH + infinite list)
//   - shapes: the global shape array the BVH indexes into
//
// Returns:
//   - Result: the hit, valid when the bool is true
//   - bool: whether anything was hit
func Pick(r Ray, sa *accel.SceneAccel, shapes []scene.Shape) (Result, bool) {
	if len(shapes) == 0 {
		return Result{}, false
	}

	totalOffset := float32(0)
	ray := r

	for iter := 0; iter < CsgMaxIterations; iter++ {
		res, ok := closestHit(ray, sa, shapes)
		if !ok {
			return Result{}, false
		}

		exitT, inside := nearestNegativeExit(ray, res.T, shapes)
		if !inside {
			res.T += totalOffset
			res.Point = r.At(res.T)
			return res, true
		}

		// Advance past the exit of the containing negatives and re-trace.
		advance := exitT + Epsilon*2
		ray = NewRay(ray.At(advance), ray.Dir)
		totalOffset += advance
	}

	return Result{}, false
}

func closestHit(r Ray, sa *accel.SceneAccel, shapes []scene.Shape) (Result, bool) {
	closestT := float32(math.Inf(1))
	closestIdx := -1

	// The empty-scene sentinel is a zeroed inner root with both child
	// pointers at 0; traversing it would cycle.
	root := sa.Bvh.Nodes[0]
	sentinel := root.PrimCount == 0 && root.LeftOrPrim == 0

	if !sentinel {
		var stack [64]uint32
		sp := 0
		stack[sp] = 0
		sp++

		for sp > 0 {
			sp--
			node := &sa.Bvh.Nodes[stack[sp]]
			nodeIdx := stack[sp]

			box := accel.Aabb{Min: mgl32.Vec3(node.AabbMin), Max: mgl32.Vec3(node.AabbMax)}
			tNode, ok := RayAabb(r.Origin, r.InvDir, box)
			if !ok || tNode > closestT {
				continue
			}

			if node.PrimCount > 0 {
				first := int(node.LeftOrPrim)
				for i := first; i < first+int(node.PrimCount); i++ {
					shapeIdx := int(sa.Bvh.PrimIndices[i])
					shape := &shapes[shapeIdx]
					if shape.Negative {
						continue
					}
					if t, hit := IntersectShape(r, shape); hit && t > 0 && t < closestT {
						closestT = t
						closestIdx = shapeIdx
					}
				}
			} else {
				stack[sp] = node.LeftOrPrim
				sp++
				stack[sp] = nodeIdx + 1
				sp++
			}
		}
	}

	for _, idx := range sa.InfiniteIndices {
		shape := &shapes[idx]
		if shape.Negative {
			continue
		}
		if t, hit := IntersectShape(r, shape); hit && t > 0 && t < closestT {
			closestT = t
			closestIdx = int(idx)
		}
	}

	if closestIdx < 0 {
		return Result{}, false
	}
	return Result{ShapeIndex: closestIdx, T: closestT, Point: r.At(closestT)}, true
}

// nearestNegativeExit finds, among the subtraction shapes containing the hit
// point, the nearest exit parameter along the ray. Returns false when the
// point is outside all negatives or no exit can be found.
func nearestNegativeExit(r Ray, hitT float32, shapes []scene.Shape) (float32, bool) {
	point := r.At(hitT)
	best := float32(math.Inf(1))
	found := false

	for i := range shapes {
		s := &shapes[i]
		if !s.Negative {
			continue
		}
		if !insideShape(point, s) {
			continue
		}
		if exit, ok := shapeExitT(r, s); ok && exit > hitT && exit < best {
			best = exit
			found = true
		}
	}

	return best, found
}

func insideShape(p mgl32.Vec3, s *scene.Shape) bool {
	pos := mgl32.Vec3(s.Position)
	switch s.Type {
	case scene.ShapeSphere:
		return p.Sub(pos).LenSqr() < s.Radius*s.Radius
	case scene.ShapeCube:
		d := p.Sub(pos)
		return float32(math.Abs(float64(d[0]))) < s.Radius &&
			float32(math.Abs(float64(d[1]))) < s.Radius &&
			float32(math.Abs(float64(d[2]))) < s.Radius
	default:
		box := accel.ShapeAabb(s)
		return p[0] > box.Min[0] && p[0] < box.Max[0] &&
			p[1] > box.Min[1] && p[1] < box.Max[1] &&
			p[2] > box.Min[2] && p[2] < box.Max[2]
	}
}

// shapeExitT returns the far intersection of the ray with a negative shape.
func shapeExitT(r Ray, s *scene.Shape) (float32, bool) {
	pos := mgl32.Vec3(s.Position)
	switch s.Type {
	case scene.ShapeSphere:
		oc := r.Origin.Sub(pos)
		b := oc.Dot(r.Dir)
		c := oc.Dot(oc) - s.Radius*s.Radius
		discriminant := b*b - c
		if discriminant < 0 {
			return 0, false
		}
		t := -b + float32(math.Sqrt(float64(discriminant)))
		return t, t > 0
	default:
		box := accel.ShapeAabb(s)
		tExit := float32(math.Inf(1))
		for axis := 0; axis < 3; axis++ {
			t1 := (box.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t2 < tExit {
				tExit = t2
			}
		}
		return tExit, tExit > 0
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
