package accel

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("accel")

// aabbPool computes per-shape bounds in parallel during scene rebuilds.
// Workers persist across rebuilds, avoiding goroutine spawn/teardown
// overhead; a WaitGroup provides the per-rebuild barrier.
var (
	aabbPool     worker.DynamicWorkerPool
	aabbPoolOnce sync.Once
)

func pool() worker.DynamicWorkerPool {
	aabbPoolOnce.Do(func() {
		workers := runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
		aabbPool = worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	})
	return aabbPool
}

// SceneAccel bundles the acceleration data the GPU buffers are built from.
type SceneAccel struct {
	Bvh *Bvh

	// InfiniteIndices lists global shape indices excluded from the BVH
	// (planes) that the shader tests linearly each ray.
	InfiniteIndices []uint32
}

// BuildScene partitions shapes into a BVH over finite shapes and a flat list
// of infinite-shape indices.
//
// Planes are infinite and would produce degenerate AABBs that corrupt the
// tree, so they are excluded and tested separately. Skybox shapes are
// excluded entirely; the shader samples the environment on miss. Degenerate
// triangles are warned about and omitted so traversal never reports them.
//
// The BVH leaf index array is remapped from finite-local back to global
// shape indices before returning.
func BuildScene(shapes []scene.Shape) *SceneAccel {
	finiteToGlobal := make([]int, 0, len(shapes))
	var infiniteIndices []uint32

	for i := range shapes {
		s := &shapes[i]
		switch s.Type {
		case scene.ShapePlane:
			infiniteIndices = append(infiniteIndices, uint32(i))
		case scene.ShapeSkybox:
		case scene.ShapeTriangle:
			if degenerateTriangle(s) {
				logger.Warningf("Degenerate triangle at shape %d omitted from BVH", i)
				continue
			}
			finiteToGlobal = append(finiteToGlobal, i)
		default:
			finiteToGlobal = append(finiteToGlobal, i)
		}
	}

	finiteAabbs := make([]Aabb, len(finiteToGlobal))
	var wg sync.WaitGroup
	for slot, global := range finiteToGlobal {
		wg.Add(1)
		slot, global := slot, global
		pool().SubmitTask(worker.Task{
			ID: slot,
			Do: func() (any, error) {
				defer wg.Done()
				finiteAabbs[slot] = ShapeAabb(&shapes[global])
				return nil, nil
			},
		})
	}
	wg.Wait()

	bvh := Build(finiteAabbs)

	// Remap leaf prim indices from finite-local back to global shape indices.
	for i, idx := range bvh.PrimIndices {
		bvh.PrimIndices[i] = uint32(finiteToGlobal[idx])
	}

	return &SceneAccel{Bvh: bvh, InfiniteIndices: infiniteIndices}
}

func degenerateTriangle(s *scene.Shape) bool {
	e1 := mgl32.Vec3(s.V1).Sub(mgl32.Vec3(s.V0))
	e2 := mgl32.Vec3(s.V2).Sub(mgl32.Vec3(s.V0))
	return e1.Cross(e2).Len() < 1e-7
}
