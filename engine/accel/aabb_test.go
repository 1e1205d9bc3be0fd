package accel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
)

func TestShapeAabbSphere(t *testing.T) {
	s := scene.DefaultShape(scene.ShapeSphere)
	s.Position = [3]float32{1, 2, 3}
	s.Radius = 2

	box := ShapeAabb(&s)
	if box.Min != (mgl32.Vec3{-1, 0, 1}) || box.Max != (mgl32.Vec3{3, 4, 5}) {
		t.Fatalf("sphere AABB = %v..%v", box.Min, box.Max)
	}
}

func TestShapeAabbFractalMargin(t *testing.T) {
	s := scene.DefaultShape(scene.ShapeMandelbulb)
	s.Radius = 2

	box := ShapeAabb(&s)
	if box.Max[0] != 3 {
		t.Fatalf("fractal AABB should use the 1.5x margin; max.x = %v", box.Max[0])
	}
}

func TestShapeAabbTorus(t *testing.T) {
	s := scene.DefaultShape(scene.ShapeTorus)
	s.Radius = 2
	s.Radius2 = 0.5

	box := ShapeAabb(&s)
	if box.Max[0] != 2.5 || box.Max[1] != 0.5 || box.Max[2] != 2.5 {
		t.Fatalf("torus AABB max = %v", box.Max)
	}
}

// Discs are planar; the pad must open the normal axis so the slab test
// never degenerates.
func TestShapeAabbDiscPadded(t *testing.T) {
	s := scene.DefaultShape(scene.ShapeDisc)
	s.Position = [3]float32{0, 5, 0}

	box := ShapeAabb(&s)
	for axis := 0; axis < 3; axis++ {
		if box.Max[axis]-box.Min[axis] <= 0 {
			t.Fatalf("axis %d has zero extent after pad", axis)
		}
	}
}

func TestShapeAabbTriangle(t *testing.T) {
	s := scene.DefaultShape(scene.ShapeTriangle)
	s.V0 = [3]float32{0, 0, 0}
	s.V1 = [3]float32{1, 0, 0}
	s.V2 = [3]float32{0, 1, 0}

	box := ShapeAabb(&s)
	if box.Max[0] < 1 || box.Max[1] < 1 {
		t.Fatalf("triangle AABB max = %v", box.Max)
	}
	// Z axis is flat and must be padded.
	if box.Max[2]-box.Min[2] <= 0 {
		t.Fatal("triangle AABB not padded on the flat axis")
	}
}

func TestPadExpandsThinAxes(t *testing.T) {
	box := Aabb{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 0, 1}}.Pad()
	if box.Max[1]-box.Min[1] < 2*AabbEps {
		t.Fatalf("pad did not open the thin axis: %v..%v", box.Min, box.Max)
	}
}

func TestBuildScenePartition(t *testing.T) {
	shapes := []scene.Shape{
		scene.DefaultShape(scene.ShapeSphere),
		scene.DefaultShape(scene.ShapePlane),
		scene.DefaultShape(scene.ShapeSkybox),
		scene.DefaultShape(scene.ShapeCube),
	}
	sa := BuildScene(shapes)

	if len(sa.InfiniteIndices) != 1 || sa.InfiniteIndices[0] != 1 {
		t.Fatalf("infinite indices = %v; want [1]", sa.InfiniteIndices)
	}

	// Finite set: sphere (0) and cube (3); skybox excluded entirely.
	if len(sa.Bvh.PrimIndices) != 2 {
		t.Fatalf("prim indices = %v; want two entries", sa.Bvh.PrimIndices)
	}
	seen := map[uint32]bool{}
	for _, idx := range sa.Bvh.PrimIndices {
		seen[idx] = true
	}
	if !seen[0] || !seen[3] {
		t.Fatalf("prim indices = %v; want global indices {0, 3}", sa.Bvh.PrimIndices)
	}
}

func TestBuildSceneDegenerateTriangle(t *testing.T) {
	tri := scene.DefaultShape(scene.ShapeTriangle)
	tri.V0 = [3]float32{0, 0, 0}
	tri.V1 = [3]float32{1, 1, 1}
	tri.V2 = [3]float32{2, 2, 2} // collinear

	shapes := []scene.Shape{scene.DefaultShape(scene.ShapeSphere), tri}
	sa := BuildScene(shapes)

	if len(sa.Bvh.PrimIndices) != 1 || sa.Bvh.PrimIndices[0] != 0 {
		t.Fatalf("degenerate triangle not omitted: prims = %v", sa.Bvh.PrimIndices)
	}
}

func TestBuildSceneEmpty(t *testing.T) {
	sa := BuildScene(nil)
	if len(sa.Bvh.Nodes) != 1 || sa.Bvh.Nodes[0].PrimCount != 0 {
		t.Fatalf("empty scene should yield the sentinel leaf; got %+v", sa.Bvh.Nodes)
	}
}
