package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Stronautt/PathTracer/common"
)

// Buffer creation and update helpers. Storage buffers carry CopySrc so the
// screenshot and debug readback paths can copy out of them.

func createStorageBuffer[T any](device *wgpu.Device, queue *wgpu.Queue, data []T, label string) *wgpu.Buffer {
	bytes := common.SliceToBytes(data)
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(bytes)),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		panic("renderer: failed to create storage buffer " + label + ": " + err.Error())
	}
	queue.WriteBuffer(buf, 0, bytes)
	return buf
}

func createUniformBuffer[T any](device *wgpu.Device, queue *wgpu.Queue, data *T, label string) *wgpu.Buffer {
	bytes := common.StructToBytes(data)
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(bytes)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic("renderer: failed to create uniform buffer " + label + ": " + err.Error())
	}
	queue.WriteBuffer(buf, 0, bytes)
	return buf
}

func createEmptyStorageBuffer(device *wgpu.Device, size uint64, label string) *wgpu.Buffer {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		panic("renderer: failed to create storage buffer " + label + ": " + err.Error())
	}
	return buf
}

func updateStorageBuffer[T any](queue *wgpu.Queue, buf *wgpu.Buffer, data []T) {
	queue.WriteBuffer(buf, 0, common.SliceToBytes(data))
}

func updateUniformBuffer[T any](queue *wgpu.Queue, buf *wgpu.Buffer, data *T) {
	queue.WriteBuffer(buf, 0, common.StructToBytes(data))
}

// dispatchSize is the ceil-div workgroup count for one dimension.
func dispatchSize(dimension, workgroupSize uint32) uint32 {
	return (dimension + workgroupSize - 1) / workgroupSize
}

func (r *renderer) createOutputTexture(width, height uint32) {
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "output",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage: wgpu.TextureUsageStorageBinding |
			wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		panic("renderer: failed to create output texture: " + err.Error())
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic("renderer: failed to create output texture view: " + err.Error())
	}
	r.outputTexture = tex
	r.outputView = view
}
