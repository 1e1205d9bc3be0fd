package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Stronautt/PathTracer/engine/accel"
	"github.com/Stronautt/PathTracer/engine/camera"
	"github.com/Stronautt/PathTracer/engine/scene"
	"github.com/Stronautt/PathTracer/engine/texture"
)

// IndexSentinel pads empty index lists: wgpu rejects zero-sized buffers, so
// an empty light or infinite list uploads this single value and the shader
// detects it.
const IndexSentinel = uint32(0xFFFFFFFF)

func nonemptyIndices(indices []uint32) []uint32 {
	if len(indices) == 0 {
		return []uint32{IndexSentinel}
	}
	return indices
}

func nonemptyShapes(shapes []scene.GpuShape) []scene.GpuShape {
	if len(shapes) == 0 {
		return make([]scene.GpuShape, 1)
	}
	return shapes
}

func nonemptyMaterials(mats []scene.GpuMaterial) []scene.GpuMaterial {
	if len(mats) == 0 {
		return make([]scene.GpuMaterial, 1)
	}
	return mats
}

// createStaticResources allocates the camera uniform, post params, sampler,
// and placeholder scene buffers so the bind groups are always valid.
func (r *renderer) createStaticResources() {
	gpuCam := camera.GpuCamera{}
	r.cameraBuffer = createUniformBuffer(r.device, r.queue, &gpuCam, "camera")

	params := buildPostParams(r.width, r.height, nil, DefaultOilRadius, DefaultComicLevels)
	r.postParamsBuffer = createUniformBuffer(r.device, r.queue, &params, "post_params")

	sampler, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "blit sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic("renderer: blit sampler: " + err.Error())
	}
	r.blitSampler = sampler

	empty := accel.BuildScene(nil)
	r.uploadGeometry(nil, nil, empty, nil)
	r.uploadAtlas(texture.NewAtlas())
	r.createBindGroup1()
}

// createSizeDependentResources rebuilds the accumulation buffer, output
// texture, and the bind groups that reference them. Called at startup and on
// every resize.
func (r *renderer) createSizeDependentResources() {
	if r.accumBuffer != nil {
		r.accumBuffer.Release()
	}
	if r.outputView != nil {
		r.outputView.Release()
	}
	if r.outputTexture != nil {
		r.outputTexture.Release()
	}

	accumSize := uint64(r.width) * uint64(r.height) * AccumBytesPerPixel
	r.accumBuffer = createEmptyStorageBuffer(r.device, accumSize, "accumulation")
	r.createOutputTexture(r.width, r.height)

	r.createBindGroup0()
	r.createBlitBindGroup()
	r.createPostBindGroup()

	params := buildPostParams(r.width, r.height, r.activeEffects, DefaultOilRadius, DefaultComicLevels)
	updateUniformBuffer(r.queue, r.postParamsBuffer, &params)
}

// uploadGeometry reallocates the geometry buffers from scratch and rebinds
// bind group 1.
func (r *renderer) uploadGeometry(shapes []scene.GpuShape, mats []scene.GpuMaterial, sa *accel.SceneAccel, lights []uint32) {
	for _, b := range []*wgpu.Buffer{
		r.shapeBuffer, r.materialBuffer, r.bvhNodeBuffer,
		r.bvhPrimBuffer, r.lightIndexBuffer, r.infIndexBuffer,
	} {
		if b != nil {
			b.Release()
		}
	}

	r.shapeBuffer = createStorageBuffer(r.device, r.queue, nonemptyShapes(shapes), "shapes")
	r.materialBuffer = createStorageBuffer(r.device, r.queue, nonemptyMaterials(mats), "materials")
	r.bvhNodeBuffer = createStorageBuffer(r.device, r.queue, sa.Bvh.Nodes, "bvh_nodes")
	r.bvhPrimBuffer = createStorageBuffer(r.device, r.queue, nonemptyIndices(sa.Bvh.PrimIndices), "bvh_prims")
	r.lightIndexBuffer = createStorageBuffer(r.device, r.queue, nonemptyIndices(lights), "light_indices")
	r.infIndexBuffer = createStorageBuffer(r.device, r.queue, nonemptyIndices(sa.InfiniteIndices), "infinite_indices")
}

func (r *renderer) uploadAtlas(atlas *texture.Atlas) {
	if r.texPixelsBuffer != nil {
		r.texPixelsBuffer.Release()
	}
	if r.texInfosBuffer != nil {
		r.texInfosBuffer.Release()
	}
	r.texPixelsBuffer = createStorageBuffer(r.device, r.queue, atlas.Pixels, "tex_pixels")
	r.texInfosBuffer = createStorageBuffer(r.device, r.queue, atlas.Infos, "tex_infos")
}

func (r *renderer) UploadScene(shapes []scene.GpuShape, mats []scene.GpuMaterial, sa *accel.SceneAccel, lights []uint32, atlas *texture.Atlas) {
	r.uploadGeometry(shapes, mats, sa, lights)
	if atlas != nil {
		r.uploadAtlas(atlas)
	}
	r.createBindGroup1()
}

// UpdateScene writes into the existing buffers when everything fits;
// otherwise it falls back to a full reallocation and rebind.
func (r *renderer) UpdateScene(shapes []scene.GpuShape, mats []scene.GpuMaterial, sa *accel.SceneAccel, lights []uint32) {
	paddedShapes := nonemptyShapes(shapes)
	paddedMats := nonemptyMaterials(mats)
	paddedPrims := nonemptyIndices(sa.Bvh.PrimIndices)
	paddedLights := nonemptyIndices(lights)
	paddedInf := nonemptyIndices(sa.InfiniteIndices)

	grown := uint64(len(paddedShapes)*112) > r.shapeBuffer.GetSize() ||
		uint64(len(paddedMats)*48) > r.materialBuffer.GetSize() ||
		uint64(len(sa.Bvh.Nodes)*32) > r.bvhNodeBuffer.GetSize() ||
		uint64(len(paddedPrims)*4) > r.bvhPrimBuffer.GetSize() ||
		uint64(len(paddedLights)*4) > r.lightIndexBuffer.GetSize() ||
		uint64(len(paddedInf)*4) > r.infIndexBuffer.GetSize()

	if grown {
		r.uploadGeometry(shapes, mats, sa, lights)
		r.createBindGroup1()
		return
	}

	updateStorageBuffer(r.queue, r.shapeBuffer, paddedShapes)
	updateStorageBuffer(r.queue, r.materialBuffer, paddedMats)
	updateStorageBuffer(r.queue, r.bvhNodeBuffer, sa.Bvh.Nodes)
	updateStorageBuffer(r.queue, r.bvhPrimBuffer, paddedPrims)
	updateStorageBuffer(r.queue, r.lightIndexBuffer, paddedLights)
	updateStorageBuffer(r.queue, r.infIndexBuffer, paddedInf)
}

func (r *renderer) WriteCamera(cam camera.GpuCamera) {
	updateUniformBuffer(r.queue, r.cameraBuffer, &cam)
}
