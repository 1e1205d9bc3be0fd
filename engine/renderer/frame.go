package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// RenderFrame encodes and submits one frame:
//
//	optional accumulation clear -> path-trace dispatch -> optional
//	post-process dispatch -> blit to the swapchain -> present
//
// The accumulation clear happens on the GPU, inside the same submission,
// strictly before the path-trace pass.
func (r *renderer) RenderFrame(clearAccum, paused bool) error {
	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		// Lost/outdated surfaces are soft: drop the frame, reconfigure.
		logger.Warningf("Surface acquire failed: %v", err)
		return ErrSurfaceLost
	}

	surfaceView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	defer surfaceView.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	if !paused {
		if clearAccum {
			encoder.ClearBuffer(r.accumBuffer, 0, r.accumBuffer.GetSize())
		}

		r.dispatchCompute(encoder, r.tracePipeline,
			[]*wgpu.BindGroup{r.bindGroup0, r.bindGroup1}, "path trace pass")

		if len(r.activeEffects) > 0 {
			r.dispatchCompute(encoder, r.postPipeline,
				[]*wgpu.BindGroup{r.postBindGroup}, "post process pass")
		}
	}

	blitPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "blit pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       surfaceView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			},
		},
	})
	blitPass.SetPipeline(r.blitPipeline)
	blitPass.SetBindGroup(0, r.blitBindGroup, nil)
	blitPass.Draw(3, 1, 0, 0)
	blitPass.End()

	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	r.queue.Submit(commandBuffer)
	commandBuffer.Release()

	r.surface.Present()
	surfaceTexture.Release()

	return nil
}

func (r *renderer) dispatchCompute(encoder *wgpu.CommandEncoder, pipeline *wgpu.ComputePipeline, bindGroups []*wgpu.BindGroup, label string) {
	pass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipeline)
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg, nil)
	}
	pass.DispatchWorkgroups(
		dispatchSize(r.width, WorkgroupSize),
		dispatchSize(r.height, WorkgroupSize),
		1,
	)
	pass.End()
}

// IsSurfaceLost reports whether err is the recoverable lost-surface signal.
func IsSurfaceLost(err error) bool {
	return errors.Is(err, ErrSurfaceLost)
}
