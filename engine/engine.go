// package engine orchestrates the frame loop: window events, camera
// control, scene rebuilds between frames, and the per-frame GPU submission.
package engine

import (
	"fmt"
	"time"

	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/camera"
	"github.com/Stronautt/PathTracer/engine/model"
	"github.com/Stronautt/PathTracer/engine/profiler"
	"github.com/Stronautt/PathTracer/engine/renderer"
	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/engine/texture"
	"github.com/Stronautt/PathTracer/engine/window"
	"github.com/Stronautt/PathTracer/log"
)

var logger = log.New("engine")

// Default window dimensions.
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
)

// Engine runs the path tracer: it owns the window, the renderer, the
// logical scene, and the acceleration data, and enforces the frame-phase
// ownership discipline — scene mutation and buffer rebuilds happen strictly
// between submitted frames.
type Engine interface {
	// Run enters the main loop on the calling (main) OS thread and blocks
	// until the window closes.
	//
	// Returns:
	//   - error: a fatal render error
	Run() error

	// RequestScreenshot schedules a PNG screenshot after the next frame.
	//
	// Parameters:
	//   - path: the destination file path
	RequestScreenshot(path string)

	// MarkSceneDirty schedules a scene rebuild (AABBs, BVH, light list,
	// buffers) before the next frame. Shape mutation is only legal between
	// frames, under this flag.
	MarkSceneDirty()

	// SaveScene writes the current scene back to a YAML file.
	SaveScene(path string) error

	// Shutdown releases the GPU and window resources.
	Shutdown()
}

type engine struct {
	win window.Window
	r   renderer.Renderer

	scn    *scene.Scene
	shapes []scene.Shape

	atlas    *texture.Atlas
	texCache map[string]int32

	sa *accel.SceneAccel

	cam         *camera.Camera
	controller  *camera.Controller
	accumulator *renderer.Accumulator
	prof        *profiler.Profiler

	frameIndex     uint32
	sceneDirty     bool
	pendingResize  bool
	screenshotPath string

	lastFrame time.Time
}

var _ Engine = &engine{}

// New loads the scene (ingesting referenced OBJ models and textures),
// creates the window and the renderer, and uploads the initial GPU state.
//
// Parameters:
//   - scenePath: scene file path; empty loads the empty scene
//
// Returns:
//   - Engine: the ready engine
//   - error: a fatal initialization error (window, adapter, shader, scene)
func New(scenePath string) (Engine, error) {
	var scn *scene.Scene
	var err error
	if scenePath != "" {
		scn, err = scene.Load(scenePath)
		if err != nil {
			return nil, err
		}
	} else {
		scn = scene.Empty()
	}

	e := &engine{
		scn:         scn,
		controller:  camera.NewController(),
		accumulator: renderer.NewAccumulator(),
		prof:        profiler.NewProfiler(),
		lastFrame:   time.Now(),
	}

	e.cam = camera.FromConfig(&scn.Camera)
	e.shapes = append([]scene.Shape(nil), scn.Shapes...)

	// Ingest referenced models as triangle soup. A missing model degrades
	// to a logged diagnostic, not a failed load.
	for _, ref := range scn.Models {
		tris, loadErr := model.Load(ref.Path, ref.Position, ref.Scale, &ref.Material)
		if loadErr != nil {
			logger.Errorf("Failed to load model '%s': %v", ref.Path, loadErr)
			continue
		}
		e.shapes = append(e.shapes, tris...)
	}

	e.win, err = window.New(DefaultWindowWidth, DefaultWindowHeight, "PathTracer")
	if err != nil {
		return nil, err
	}

	e.r, err = renderer.New(e.win.SurfaceDescriptor(), e.win.Width(), e.win.Height())
	if err != nil {
		return nil, err
	}

	e.rebuildScene()
	e.registerCallbacks()

	return e, nil
}

func (e *engine) registerCallbacks() {
	e.win.SetKeyCallbacks(
		func(key uint32) { e.controller.HandleKey(key, true) },
		func(key uint32) { e.controller.HandleKey(key, false) },
	)
	e.win.SetMouseCallbacks(
		func(x, y int32) { e.controller.HandleCursor(float32(x), float32(y)) },
		func(x, y int32) {
			e.controller.MouseCaptured = true
			e.win.SetCursorCaptured(true)
		},
		func(x, y int32) {
			e.controller.MouseCaptured = false
			e.win.SetCursorCaptured(false)
		},
	)
	e.win.SetResizeCallback(func(width, height int) {
		e.pendingResize = true
	})
}

// rebuildScene runs the full scene build pipeline between frames: texture
// atlas, GPU lowering, AABBs + BVH + light list, buffer upload.
func (e *engine) rebuildScene() {
	e.atlas = texture.NewAtlas()
	paths := make([]string, 0, len(e.shapes))
	for i := range e.shapes {
		paths = append(paths, e.shapes[i].Texture)
	}
	e.texCache = texture.BuildCache(e.atlas, paths)

	gpuShapes, gpuMaterials, lights := scene.BuildGPUData(e.shapes, e.texCache)
	e.sa = accel.BuildScene(e.shapes)

	e.r.UploadScene(gpuShapes, gpuMaterials, e.sa, lights, e.atlas)
	e.accumulator.Reset()
	e.sceneDirty = false

	logger.Infof("Scene built: %d shapes, %d BVH nodes, %d lights, %d infinite",
		len(e.shapes), len(e.sa.Bvh.Nodes), len(lights), len(e.sa.InfiniteIndices))
}

// MarkSceneDirty schedules a rebuild before the next frame. Mutators must
// only touch the shape list between frames.
func (e *engine) MarkSceneDirty() {
	e.sceneDirty = true
}

func (e *engine) Run() error {
	for e.win.PollEvents() {
		if err := e.frame(); err != nil {
			return err
		}
	}
	return nil
}

// frame advances one frame: input, between-frame rebuilds, camera uniform
// write, dispatch, present.
func (e *engine) frame() error {
	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	if e.pendingResize {
		e.pendingResize = false
		e.r.Resize(e.win.Width(), e.win.Height())
		e.accumulator.Reset()
	}

	if e.sceneDirty {
		e.rebuildScene()
	}

	moved := e.controller.Update(e.cam, dt)
	rotated := e.controller.ApplyMouseLook(e.cam)
	if moved || rotated {
		e.accumulator.Reset()
	}

	needsClear := e.accumulator.Advance()

	e.r.WriteCamera(e.cam.ToGpu(
		e.r.Width(), e.r.Height(),
		e.frameIndex, e.accumulator.SampleCount,
	))
	e.frameIndex++

	err := e.r.RenderFrame(needsClear, false)
	if renderer.IsSurfaceLost(err) {
		// Drop the frame; reconfigure and resume next iteration.
		e.r.Resize(e.win.Width(), e.win.Height())
		e.accumulator.Reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if e.screenshotPath != "" {
		e.saveScreenshot(e.screenshotPath)
		e.screenshotPath = ""
	}

	e.prof.Tick(e.accumulator.SampleCount)

	return nil
}

func (e *engine) RequestScreenshot(path string) {
	e.screenshotPath = path
}

func (e *engine) saveScreenshot(path string) {
	pixels, err := e.r.Screenshot()
	if err != nil {
		logger.Errorf("Screenshot failed: %v", err)
		return
	}
	if err := writePNG(path, pixels, int(e.r.Width()), int(e.r.Height())); err != nil {
		logger.Errorf("Screenshot write failed: %v", err)
		return
	}
	logger.Infof("Screenshot saved to %s", path)
}

func (e *engine) SaveScene(path string) error {
	out := &scene.Scene{
		Camera: e.cam.ToConfig(),
		Shapes: e.shapes,
		Models: e.scn.Models,
	}
	return scene.Save(out, path)
}

func (e *engine) Shutdown() {
	e.r.Release()
	if err := e.win.Close(); err != nil {
		logger.Warningf("Window close: %v", err)
	}
}
