package renderer

import "time"

// Accumulator tracks progressive sampling state. A reset is raised on any
// camera, scene, resolution, exposure or tone-mapper mutation; the GPU
// buffer clear happens at the start of the next frame.
type Accumulator struct {
	SampleCount uint32
	RenderStart time.Time

	dirty bool
}

// NewAccumulator starts dirty so the first frame clears the buffer.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		dirty:       true,
		RenderStart: time.Now(),
	}
}

// Reset marks that the scene or camera changed and accumulation must
// restart.
func (a *Accumulator) Reset() {
	a.SampleCount = 0
	a.dirty = true
	a.RenderStart = time.Now()
}

// Advance moves to the next sample.
//
// Returns:
//   - bool: true if the accumulation buffer needs clearing this frame
func (a *Accumulator) Advance() bool {
	a.SampleCount++
	needsClear := a.dirty
	a.dirty = false
	return needsClear
}

// NeedsReset reports whether a reset is pending.
func (a *Accumulator) NeedsReset() bool {
	return a.dirty
}
