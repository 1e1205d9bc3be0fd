package accel

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func randomAabbs(n int, seed int64) []Aabb {
	rng := rand.New(rand.NewSource(seed))
	aabbs := make([]Aabb, n)
	for i := range aabbs {
		center := mgl32.Vec3{
			rng.Float32()*100 - 50,
			rng.Float32()*100 - 50,
			rng.Float32()*100 - 50,
		}
		half := splat(rng.Float32()*2 + 0.1)
		aabbs[i] = Aabb{Min: center.Sub(half), Max: center.Add(half)}
	}
	return aabbs
}

// Every primitive index must appear in exactly one leaf slot; the union of
// leaf index sets equals the input index set.
func TestBuildCompleteness(t *testing.T) {
	for _, n := range []int{1, 3, 4, 5, 17, 256, 1000} {
		aabbs := randomAabbs(n, 42)
		bvh := Build(aabbs)

		if len(bvh.PrimIndices) != n {
			t.Fatalf("n=%d: expected %d prim indices; got %d", n, n, len(bvh.PrimIndices))
		}

		seen := make(map[uint32]int)
		var walk func(idx uint32)
		walk = func(idx uint32) {
			node := bvh.Nodes[idx]
			if node.PrimCount > 0 {
				for i := node.LeftOrPrim; i < node.LeftOrPrim+node.PrimCount; i++ {
					seen[bvh.PrimIndices[i]]++
				}
				return
			}
			walk(idx + 1)
			walk(node.LeftOrPrim)
		}
		walk(0)

		if len(seen) != n {
			t.Fatalf("n=%d: leaves cover %d distinct indices; want %d", n, len(seen), n)
		}
		for idx, count := range seen {
			if count != 1 {
				t.Fatalf("n=%d: index %d covered %d times", n, idx, count)
			}
		}
	}
}

// Every inner node's AABB must contain both children's AABBs; every leaf's
// AABB must contain each of its primitives' AABBs.
func TestBuildBounding(t *testing.T) {
	aabbs := randomAabbs(500, 7)
	bvh := Build(aabbs)

	var walk func(idx uint32)
	walk = func(idx uint32) {
		node := bvh.Nodes[idx]
		box := Aabb{Min: mgl32.Vec3(node.AabbMin), Max: mgl32.Vec3(node.AabbMax)}

		if node.PrimCount > 0 {
			for i := node.LeftOrPrim; i < node.LeftOrPrim+node.PrimCount; i++ {
				prim := aabbs[bvh.PrimIndices[i]]
				if !box.Contains(prim) {
					t.Fatalf("leaf %d does not contain primitive %d", idx, bvh.PrimIndices[i])
				}
			}
			return
		}

		for _, child := range []uint32{idx + 1, node.LeftOrPrim} {
			c := bvh.Nodes[child]
			childBox := Aabb{Min: mgl32.Vec3(c.AabbMin), Max: mgl32.Vec3(c.AabbMax)}
			if !box.Contains(childBox) {
				t.Fatalf("inner node %d does not contain child %d", idx, child)
			}
		}
		walk(idx + 1)
		walk(node.LeftOrPrim)
	}
	walk(0)
}

// Building twice on the same input must produce byte-identical buffers.
func TestBuildDeterminism(t *testing.T) {
	aabbs := randomAabbs(300, 99)
	a := Build(aabbs)
	b := Build(aabbs)

	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Fatal("node arrays differ between identical builds")
	}
	if !reflect.DeepEqual(a.PrimIndices, b.PrimIndices) {
		t.Fatal("prim index arrays differ between identical builds")
	}
}

// An empty input yields the single sentinel node that traversal never hits.
func TestBuildEmpty(t *testing.T) {
	bvh := Build(nil)
	if len(bvh.Nodes) != 1 {
		t.Fatalf("expected 1 sentinel node; got %d", len(bvh.Nodes))
	}
	if bvh.Nodes[0] != (GpuBvhNode{}) {
		t.Fatalf("sentinel node not zeroed: %+v", bvh.Nodes[0])
	}
	if len(bvh.PrimIndices) != 0 {
		t.Fatalf("expected no prim indices; got %d", len(bvh.PrimIndices))
	}
}

// Coincident centroids cannot be split; they must collapse into one leaf.
func TestBuildCoincidentCentroids(t *testing.T) {
	aabbs := make([]Aabb, 64)
	for i := range aabbs {
		aabbs[i] = Aabb{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	}
	bvh := Build(aabbs)
	if len(bvh.Nodes) != 1 {
		t.Fatalf("expected a single leaf; got %d nodes", len(bvh.Nodes))
	}
	if bvh.Nodes[0].PrimCount != 64 {
		t.Fatalf("leaf prim count = %d; want 64", bvh.Nodes[0].PrimCount)
	}
}

// The traversal stack holds 32 entries. A SAH build over leaf-max-4 leaves
// must stay below that even on adversarial spacing.
func TestDepthBound(t *testing.T) {
	// Quadratically spaced spheres along one axis.
	aabbs := make([]Aabb, 1024)
	for i := range aabbs {
		x := float32(i) * float32(i) * 0.01
		center := mgl32.Vec3{x, 0, 0}
		aabbs[i] = Aabb{Min: center.Sub(splat(0.5)), Max: center.Add(splat(0.5))}
	}
	bvh := Build(aabbs)

	if d := bvh.Depth(); d > 32 {
		t.Fatalf("BVH depth %d exceeds the 32-entry traversal stack", d)
	}

	// Clustered pathological case: two tight clusters far apart.
	aabbs = aabbs[:0]
	for i := 0; i < 512; i++ {
		center := mgl32.Vec3{float32(i) * 0.001, 0, 0}
		aabbs = append(aabbs, Aabb{Min: center.Sub(splat(0.01)), Max: center.Add(splat(0.01))})
		far := mgl32.Vec3{1e5 + float32(i)*0.001, 0, 0}
		aabbs = append(aabbs, Aabb{Min: far.Sub(splat(0.01)), Max: far.Add(splat(0.01))})
	}
	bvh = Build(aabbs)
	if d := bvh.Depth(); d > 32 {
		t.Fatalf("clustered BVH depth %d exceeds the 32-entry traversal stack", d)
	}
}

func TestSurfaceArea(t *testing.T) {
	box := Aabb{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	want := float32(2 * (1*2 + 2*3 + 3*1))
	if got := box.SurfaceArea(); got != want {
		t.Fatalf("surface area = %v; want %v", got, want)
	}
}
