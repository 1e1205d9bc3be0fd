package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group layouts are the shader-facing interface contract:
//
//	group 0: camera uniform, accumulation storage (rw), output storage texture
//	group 1: shapes, materials, bvh nodes, bvh prims, lights, tex pixels,
//	         tex infos, infinite indices (all read-only storage)
//	post:    params uniform, accumulation storage (r), output storage texture
//	blit:    sampled output texture, linear sampler

func (r *renderer) createBindGroupLayouts() {
	uniformEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}
	}
	storageEntry := func(binding uint32, readOnly bool) wgpu.BindGroupLayoutEntry {
		t := wgpu.BufferBindingTypeStorage
		if readOnly {
			t = wgpu.BufferBindingTypeReadOnlyStorage
		}
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer: wgpu.BufferBindingLayout{
				Type: t,
			},
		}
	}
	outputEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			StorageTexture: wgpu.StorageTextureBindingLayout{
				Access:        wgpu.StorageTextureAccessWriteOnly,
				Format:        wgpu.TextureFormatRGBA8Unorm,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}

	var err error
	r.bgLayout0, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "compute bg0 layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0),
			storageEntry(1, false),
			outputEntry(2),
		},
	})
	if err != nil {
		panic("renderer: bg0 layout: " + err.Error())
	}

	r.bgLayout1, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "compute bg1 layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			storageEntry(0, true),
			storageEntry(1, true),
			storageEntry(2, true),
			storageEntry(3, true),
			storageEntry(4, true),
			storageEntry(5, true),
			storageEntry(6, true),
			storageEntry(7, true),
		},
	})
	if err != nil {
		panic("renderer: bg1 layout: " + err.Error())
	}

	r.postBGLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "post bg layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0),
			storageEntry(1, true),
			outputEntry(2),
		},
	})
	if err != nil {
		panic("renderer: post layout: " + err.Error())
	}

	r.blitBGLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "blit bg layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		panic("renderer: blit layout: " + err.Error())
	}
}

func bufferEntry(binding uint32, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  buf,
		Size:    wgpu.WholeSize,
	}
}

func (r *renderer) createBindGroup0() {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "compute bg0",
		Layout: r.bgLayout0,
		Entries: []wgpu.BindGroupEntry{
			bufferEntry(0, r.cameraBuffer),
			bufferEntry(1, r.accumBuffer),
			{Binding: 2, TextureView: r.outputView},
		},
	})
	if err != nil {
		panic("renderer: bg0: " + err.Error())
	}
	r.bindGroup0 = bg
}

func (r *renderer) createBindGroup1() {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "compute bg1",
		Layout: r.bgLayout1,
		Entries: []wgpu.BindGroupEntry{
			bufferEntry(0, r.shapeBuffer),
			bufferEntry(1, r.materialBuffer),
			bufferEntry(2, r.bvhNodeBuffer),
			bufferEntry(3, r.bvhPrimBuffer),
			bufferEntry(4, r.lightIndexBuffer),
			bufferEntry(5, r.texPixelsBuffer),
			bufferEntry(6, r.texInfosBuffer),
			bufferEntry(7, r.infIndexBuffer),
		},
	})
	if err != nil {
		panic("renderer: bg1: " + err.Error())
	}
	r.bindGroup1 = bg
}

func (r *renderer) createPostBindGroup() {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "post bg",
		Layout: r.postBGLayout,
		Entries: []wgpu.BindGroupEntry{
			bufferEntry(0, r.postParamsBuffer),
			bufferEntry(1, r.accumBuffer),
			{Binding: 2, TextureView: r.outputView},
		},
	})
	if err != nil {
		panic("renderer: post bg: " + err.Error())
	}
	r.postBindGroup = bg
}

func (r *renderer) createBlitBindGroup() {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blit bg",
		Layout: r.blitBGLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.outputView},
			{Binding: 1, Sampler: r.blitSampler},
		},
	})
	if err != nil {
		panic("renderer: blit bg: " + err.Error())
	}
	r.blitBindGroup = bg
}
