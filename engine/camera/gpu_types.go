package camera

import "github.com/go-gl/mathgl/mgl32"

// GpuCamera is the per-frame camera uniform. Must match the WGSL Camera
// struct layout exactly: seven 16-byte rows, 112 bytes.
type GpuCamera struct {
	Position    mgl32.Vec3
	FocalLength float32

	Right  mgl32.Vec3
	Aspect float32

	Up       mgl32.Vec3
	Exposure float32

	Forward    mgl32.Vec3
	FrameIndex uint32

	Width       uint32
	Height      uint32
	SampleCount uint32
	MaxBounces  uint32

	ToneMapper        uint32
	FractalMarchSteps uint32
	FireflyClamp      float32
	SkyboxBrightness  float32

	SkyboxColor [3]float32
	Pad         float32
}
