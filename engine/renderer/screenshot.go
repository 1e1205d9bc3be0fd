package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// copyAlign is the wgpu bytes-per-row alignment for texture copies.
const copyAlign = 256

// Screenshot copies the output texture into a mappable staging buffer,
// blocks on the map, and returns tightly packed RGBA pixels with the row
// padding removed. This is the only place besides present where the CPU
// waits on the GPU.
func (r *renderer) Screenshot() ([]byte, error) {
	width := r.width
	height := r.height
	unpadded := width * 4
	padded := (unpadded + copyAlign - 1) / copyAlign * copyAlign

	staging, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "screenshot staging",
		Size:  uint64(padded) * uint64(height),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  r.outputTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  padded,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return nil, err
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()

	done := make(chan wgpu.BufferMapAsyncStatus, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, staging.GetSize(),
		func(status wgpu.BufferMapAsyncStatus) {
			done <- status
		})
	if err != nil {
		return nil, err
	}
	r.device.Poll(true, nil)

	if status := <-done; status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("failed to map screenshot buffer: status %d", status)
	}

	data := staging.GetMappedRange(0, uint(staging.GetSize()))
	pixels := make([]byte, 0, width*height*4)
	for row := uint32(0); row < height; row++ {
		start := row * padded
		pixels = append(pixels, data[start:start+unpadded]...)
	}
	staging.Unmap()

	return pixels, nil
}
