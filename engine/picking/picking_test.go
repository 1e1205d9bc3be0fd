package picking

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/camera"
	"github.com/Stronautt/PathTracer/engine/scene"
)

// A ray hitting a sphere with a known closed-form solution must return that
// t and a position on the sphere surface, both within 1e-4.
func TestSphereRoundtrip(t *testing.T) {
	center := mgl32.Vec3{0, 0, 5}
	radius := float32(1)
	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})

	tHit, ok := RaySphere(r.Origin, r.Dir, center, radius)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(float64(tHit-4)) > 1e-4 {
		t.Fatalf("t = %v; want 4", tHit)
	}
	pos := r.At(tHit)
	if math.Abs(float64(pos.Sub(center).Len()-radius)) > 1e-4 {
		t.Fatalf("hit position %v not on sphere surface", pos)
	}

	// Oblique ray with an analytically known hit.
	origin := mgl32.Vec3{3, 4, 0}
	dir := center.Sub(origin).Normalize()
	wantT := center.Sub(origin).Len() - radius
	tHit, ok = RaySphere(origin, dir, center, radius)
	if !ok {
		t.Fatal("expected oblique hit")
	}
	if math.Abs(float64(tHit-wantT)) > 1e-4 {
		t.Fatalf("oblique t = %v; want %v", tHit, wantT)
	}
}

// For a ray intersecting an AABB from outside, the returned entry t is the
// true near t; from inside, 0-or-positive exit; misses return false.
func TestRayAabb(t *testing.T) {
	box := accel.Aabb{Min: mgl32.Vec3{-1, -1, 4}, Max: mgl32.Vec3{1, 1, 6}}

	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	tHit, ok := RayAabb(r.Origin, r.InvDir, box)
	if !ok || math.Abs(float64(tHit-4)) > 1e-5 {
		t.Fatalf("entry t = %v, hit %v; want 4, true", tHit, ok)
	}

	// Origin inside: the slab test reports the exit.
	r = NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1})
	tHit, ok = RayAabb(r.Origin, r.InvDir, box)
	if !ok || tHit < 0 {
		t.Fatalf("inside-origin t = %v, hit %v", tHit, ok)
	}

	// Miss.
	r = NewRay(mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 0, 1})
	if _, ok = RayAabb(r.Origin, r.InvDir, box); ok {
		t.Fatal("expected miss")
	}
}

// Replacing a shape by a non-shrinking scaled copy must never lose hits.
func TestIntersectionMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	shapesFor := func(scale float32) []scene.Shape {
		sphere := scene.DefaultShape(scene.ShapeSphere)
		sphere.Position = [3]float32{0, 0, 5}
		sphere.Radius = 1 * scale

		cube := scene.DefaultShape(scene.ShapeCube)
		cube.Position = [3]float32{4, 0, 5}
		cube.Radius = 0.8 * scale

		return []scene.Shape{sphere, cube}
	}

	small := shapesFor(1)
	big := shapesFor(1.5)

	for i := 0; i < 2000; i++ {
		origin := mgl32.Vec3{rng.Float32()*4 - 2, rng.Float32()*4 - 2, -2}
		target := mgl32.Vec3{rng.Float32()*8 - 1, rng.Float32()*4 - 2, 5}
		dir := target.Sub(origin).Normalize()
		r := NewRay(origin, dir)

		for s := range small {
			if _, hit := IntersectShape(r, &small[s]); hit {
				if _, hitBig := IntersectShape(r, &big[s]); !hitBig {
					t.Fatalf("ray %d: shape %d hit at scale 1 but missed at scale 1.5", i, s)
				}
			}
		}
	}
}

func buildSceneOf(shapes []scene.Shape) *accel.SceneAccel {
	return accel.BuildScene(shapes)
}

// A subtraction sphere carving the entry face of a cube: the ray must skip
// the carved entry and report the far cube face instead.
func TestCsgHole(t *testing.T) {
	cube := scene.DefaultShape(scene.ShapeCube)
	cube.Position = [3]float32{0, 0, 5}
	cube.Radius = 1 // faces at z=4 and z=6

	hole := scene.DefaultShape(scene.ShapeSphere)
	hole.Position = [3]float32{0, 0, 4} // centered on the entry face
	hole.Radius = 0.8
	hole.Negative = true

	shapes := []scene.Shape{cube, hole}
	sa := buildSceneOf(shapes)

	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	res, ok := Pick(r, sa, shapes)
	if !ok {
		t.Fatal("expected a hit on the far cube face")
	}
	if res.ShapeIndex != 0 {
		t.Fatalf("hit shape %d; want the cube (0)", res.ShapeIndex)
	}
	// Entry face at t=4 is inside the hole; advancement exits the sphere at
	// z=4.8 and the re-trace reports the far face at z=6.
	if math.Abs(float64(res.T-6)) > 1e-2 {
		t.Fatalf("hit t = %v; want the far face at 6", res.T)
	}
}

// A subtraction sphere that swallows both faces along the ray lets the ray
// pass straight through.
func TestCsgThroughHole(t *testing.T) {
	cube := scene.DefaultShape(scene.ShapeCube)
	cube.Position = [3]float32{0, 0, 5}
	cube.Radius = 1

	hole := scene.DefaultShape(scene.ShapeSphere)
	hole.Position = [3]float32{0, 0, 5}
	hole.Radius = 1.2 // spans z in [3.8, 6.2] on the axis
	hole.Negative = true

	shapes := []scene.Shape{cube, hole}
	sa := buildSceneOf(shapes)

	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	if _, ok := Pick(r, sa, shapes); ok {
		t.Fatal("axis ray should pass through the drilled cube")
	}
}

// Same hole setup but with the sphere fully inside the cube: entry face
// survives and is reported.
func TestCsgEntryFaceSurvives(t *testing.T) {
	cube := scene.DefaultShape(scene.ShapeCube)
	cube.Position = [3]float32{0, 0, 5}
	cube.Radius = 1

	hole := scene.DefaultShape(scene.ShapeSphere)
	hole.Position = [3]float32{0, 0, 5}
	hole.Radius = 0.5
	hole.Negative = true

	shapes := []scene.Shape{cube, hole}
	sa := buildSceneOf(shapes)

	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	res, ok := Pick(r, sa, shapes)
	if !ok {
		t.Fatal("expected entry-face hit")
	}
	if math.Abs(float64(res.T-4)) > 1e-3 {
		t.Fatalf("hit t = %v; want the entry face at 4", res.T)
	}
}

// The CSG loop must terminate within its iteration cap even when negatives
// tile the whole ray.
func TestCsgTerminates(t *testing.T) {
	var shapes []scene.Shape
	cube := scene.DefaultShape(scene.ShapeCube)
	cube.Position = [3]float32{0, 0, 50}
	cube.Radius = 45
	shapes = append(shapes, cube)

	for i := 0; i < 20; i++ {
		hole := scene.DefaultShape(scene.ShapeSphere)
		hole.Position = [3]float32{0, 0, float32(5 + i*5)}
		hole.Radius = 3
		hole.Negative = true
		shapes = append(shapes, hole)
	}
	sa := buildSceneOf(shapes)

	r := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	// Result does not matter; the call must return.
	Pick(r, sa, shapes)
}

// BVH-accelerated picking agrees with brute force over random scenes.
func TestPickMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	shapes := make([]scene.Shape, 80)
	for i := range shapes {
		s := scene.DefaultShape(scene.ShapeSphere)
		s.Position = [3]float32{
			rng.Float32()*40 - 20,
			rng.Float32()*40 - 20,
			rng.Float32()*40 + 5,
		}
		s.Radius = rng.Float32() + 0.2
		shapes[i] = s
	}
	sa := buildSceneOf(shapes)

	for i := 0; i < 500; i++ {
		dir := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			1,
		}.Normalize()
		r := NewRay(mgl32.Vec3{0, 0, 0}, dir)

		bestT := float32(math.Inf(1))
		bestIdx := -1
		for j := range shapes {
			if tHit, ok := IntersectShape(r, &shapes[j]); ok && tHit < bestT {
				bestT = tHit
				bestIdx = j
			}
		}

		res, ok := Pick(r, sa, shapes)
		if (bestIdx >= 0) != ok {
			t.Fatalf("ray %d: brute force hit=%v, pick hit=%v", i, bestIdx >= 0, ok)
		}
		if ok && res.ShapeIndex != bestIdx {
			t.Fatalf("ray %d: pick chose %d, brute force %d", i, res.ShapeIndex, bestIdx)
		}
	}
}

func TestPickingRayCenter(t *testing.T) {
	cam := camera.New(mgl32.Vec3{0, 0, 0}, [3]float32{0, 0, 0}, 60, 1)
	r := PickingRay(cam, 400, 300, 800, 600)

	// Center pixel looks straight down the forward axis.
	if math.Abs(float64(r.Dir[0])) > 1e-3 || math.Abs(float64(r.Dir[1])) > 1e-3 {
		t.Fatalf("center ray dir = %v; want +Z", r.Dir)
	}
	if r.Dir[2] <= 0.99 {
		t.Fatalf("center ray dir = %v; want +Z", r.Dir)
	}
}
