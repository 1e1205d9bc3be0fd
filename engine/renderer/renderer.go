// package renderer owns every GPU resource: device and surface, the scene
// storage buffers and bind groups, the three pipelines (path trace, post
// process, blit), and the per-frame dispatch sequence.
package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/camera"
	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/engine/shader"
	"github.com/Stronautt/PathTracer/engine/texture"
	"github.com/Stronautt/PathTracer/log"
	"github.com/Stronautt/PathTracer/shaders"
)

var logger = log.New("renderer")

// WorkgroupSize is the compute dispatch tile edge; every kernel runs 8x8.
const WorkgroupSize = 8

// AccumBytesPerPixel is one vec4<f32> per pixel.
const AccumBytesPerPixel = 16

// Renderer drives the GPU path tracer. All methods must be called from the
// main thread between frames; the scene buffer writers follow the
// frame-phase ownership discipline, never touching buffers mid-frame.
type Renderer interface {
	// Width returns the current surface width in pixels.
	Width() uint32

	// Height returns the current surface height in pixels.
	Height() uint32

	// Resize reconfigures the surface and recreates the size-dependent
	// resources (accumulation buffer, output texture, dependent bind groups).
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// UploadScene uploads freshly built scene data, reallocating buffers and
	// rebinding the geometry bind group. Must be called between frames.
	//
	// Parameters:
	//   - shapes: lowered GPU shape records
	//   - mats: lowered GPU material records
	//   - sa: BVH and infinite-shape indices
	//   - lights: light index list
	//   - atlas: the texture atlas to upload alongside
	UploadScene(shapes []scene.GpuShape, mats []scene.GpuMaterial, sa *accel.SceneAccel, lights []uint32, atlas *texture.Atlas)

	// UpdateScene writes scene data into the existing buffers in place when
	// they fit, falling back to UploadScene when any buffer grew. The texture
	// atlas is left untouched.
	UpdateScene(shapes []scene.GpuShape, mats []scene.GpuMaterial, sa *accel.SceneAccel, lights []uint32)

	// WriteCamera uploads the camera uniform for the coming frame.
	//
	// Parameters:
	//   - cam: the camera uniform record
	WriteCamera(cam camera.GpuCamera)

	// SetPostEffects replaces the post-process chain. An empty chain skips
	// the post pass entirely.
	//
	// Parameters:
	//   - effects: ordered effect chain, at most PostMaxEffects entries
	SetPostEffects(effects []PostEffect)

	// RenderFrame runs one frame: optional accumulation clear, path-trace
	// dispatch, optional post-process dispatch, blit, present. Returns
	// ErrSurfaceLost when the swapchain needs reconfiguring; the caller drops
	// the frame and retries after Resize.
	//
	// Parameters:
	//   - clearAccum: clear the accumulation buffer before dispatch
	//   - paused: skip the compute dispatches, still blit and present
	//
	// Returns:
	//   - error: nil, ErrSurfaceLost, or a fatal encoder error
	RenderFrame(clearAccum, paused bool) error

	// Screenshot reads back the output texture as tightly packed RGBA pixels.
	//
	// Returns:
	//   - []byte: width*height*4 bytes, row-major
	//   - error: a map or copy error
	Screenshot() ([]byte, error)

	// Release frees every GPU resource.
	Release()
}

type renderer struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width         uint32
	height        uint32

	tracePipeline *wgpu.ComputePipeline
	postPipeline  *wgpu.ComputePipeline
	blitPipeline  *wgpu.RenderPipeline

	bgLayout0    *wgpu.BindGroupLayout
	bgLayout1    *wgpu.BindGroupLayout
	blitBGLayout *wgpu.BindGroupLayout
	postBGLayout *wgpu.BindGroupLayout

	bindGroup0    *wgpu.BindGroup
	bindGroup1    *wgpu.BindGroup
	blitBindGroup *wgpu.BindGroup
	postBindGroup *wgpu.BindGroup

	cameraBuffer     *wgpu.Buffer
	accumBuffer      *wgpu.Buffer
	shapeBuffer      *wgpu.Buffer
	materialBuffer   *wgpu.Buffer
	bvhNodeBuffer    *wgpu.Buffer
	bvhPrimBuffer    *wgpu.Buffer
	lightIndexBuffer *wgpu.Buffer
	infIndexBuffer   *wgpu.Buffer
	texPixelsBuffer  *wgpu.Buffer
	texInfosBuffer   *wgpu.Buffer
	postParamsBuffer *wgpu.Buffer

	outputTexture *wgpu.Texture
	outputView    *wgpu.TextureView
	blitSampler   *wgpu.Sampler

	activeEffects []PostEffect
}

var _ Renderer = (*renderer)(nil)

// ErrSurfaceLost marks a lost or outdated swapchain; the frame is dropped
// and the surface reconfigured on the next resume.
var ErrSurfaceLost = fmt.Errorf("surface lost")

// New creates the full GPU stack against a window surface: adapter, device,
// composed shader pipelines, and empty scene buffers sized for one sentinel
// entry each. Initialization failures are fatal.
//
// Parameters:
//   - surfaceDescriptor: the platform surface from the window package
//   - width, height: initial framebuffer size in pixels
//
// Returns:
//   - Renderer: the ready renderer
//   - error: a fatal adapter, device, compose, or pipeline error
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int) (Renderer, error) {
	r := &renderer{
		instance: wgpu.CreateInstance(nil),
	}
	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
		CompatibleSurface: r.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("no suitable GPU adapter found: %w", err)
	}
	r.adapter = adapter

	info := adapter.GetInfo()
	logger.Infof("Using GPU: %s (backend: %v)", info.Name, info.BackendType)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "PathTracer Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	r.device = device
	r.queue = device.GetQueue()

	r.configureSurface(uint32(width), uint32(height))

	if err := r.createPipelines(); err != nil {
		return nil, err
	}

	r.createStaticResources()
	r.createSizeDependentResources()

	return r, nil
}

func (r *renderer) configureSurface(width, height uint32) {
	caps := r.surface.GetCapabilities(r.adapter)

	// Prefer a non-sRGB format; the shaders encode sRGB manually after tone
	// mapping.
	r.surfaceFormat = caps.Formats[0]
	for _, f := range caps.Formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			r.surfaceFormat = f
			break
		}
	}

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       max(width, 1),
		Height:      max(height, 1),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	})
	r.width = max(width, 1)
	r.height = max(height, 1)
}

func (r *renderer) createPipelines() error {
	composer, err := shader.FromFS(shaders.FS, shaders.Root)
	if err != nil {
		return fmt.Errorf("failed to load shader modules: %w", err)
	}

	traceSource, err := composer.Compose("path_trace")
	if err != nil {
		return fmt.Errorf("failed to compose path_trace: %w", err)
	}
	blitSource, err := composer.Compose("blit")
	if err != nil {
		return fmt.Errorf("failed to compose blit: %w", err)
	}
	postSource, err := composer.Compose("post_process")
	if err != nil {
		return fmt.Errorf("failed to compose post_process: %w", err)
	}

	r.createBindGroupLayouts()

	r.tracePipeline, err = r.createComputePipeline(traceSource, "path trace",
		[]*wgpu.BindGroupLayout{r.bgLayout0, r.bgLayout1})
	if err != nil {
		return err
	}

	r.postPipeline, err = r.createComputePipeline(postSource, "post process",
		[]*wgpu.BindGroupLayout{r.postBGLayout})
	if err != nil {
		return err
	}

	r.blitPipeline, err = r.createBlitPipeline(blitSource)
	return err
}

func (r *renderer) createComputePipeline(source, label string, layouts []*wgpu.BindGroupLayout) (*wgpu.ComputePipeline, error) {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s shader: %w", label, err)
	}

	layout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + " layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := r.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

func (r *renderer) createBlitPipeline(source string) (*wgpu.RenderPipeline, error) {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "blit shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile blit shader: %w", err)
	}

	layout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "blit pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.blitBGLayout},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "blit pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit pipeline: %w", err)
	}
	return pipeline, nil
}

func (r *renderer) Width() uint32 {
	return r.width
}

func (r *renderer) Height() uint32 {
	return r.height
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.configureSurface(uint32(width), uint32(height))
	r.createSizeDependentResources()
}

func (r *renderer) Release() {
	for _, b := range []*wgpu.Buffer{
		r.cameraBuffer, r.accumBuffer, r.shapeBuffer, r.materialBuffer,
		r.bvhNodeBuffer, r.bvhPrimBuffer, r.lightIndexBuffer, r.infIndexBuffer,
		r.texPixelsBuffer, r.texInfosBuffer, r.postParamsBuffer,
	} {
		if b != nil {
			b.Release()
		}
	}
	if r.outputView != nil {
		r.outputView.Release()
	}
	if r.outputTexture != nil {
		r.outputTexture.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
}

func max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
