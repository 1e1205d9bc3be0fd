// package camera models the path tracer's pinhole camera: position and
// yaw/pitch orientation, field of view and exposure, plus the per-frame
// render settings that ride along in the GPU uniform.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
)

// Camera is the mutable CPU-side camera. All angles are degrees.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FOV      float32
	Exposure float32

	MaxBounces        uint32
	ToneMapper        uint32
	FractalMarchSteps uint32
	FireflyClamp      float32
	SkyboxColor       [3]float32
	SkyboxBrightness  float32
}

// New creates a camera from pose and optics, with default render settings.
func New(position mgl32.Vec3, rotation [3]float32, fov, exposure float32) *Camera {
	return &Camera{
		Position:          position,
		Yaw:               rotation[1],
		Pitch:             rotation[0],
		FOV:               fov,
		Exposure:          exposure,
		MaxBounces:        scene.DefaultMaxBounces,
		ToneMapper:        scene.DefaultToneMapper,
		FractalMarchSteps: scene.DefaultFractalMarchSteps,
		FireflyClamp:      scene.DefaultFireflyClamp,
		SkyboxColor:       scene.DefaultSkyboxColor,
		SkyboxBrightness:  scene.DefaultSkyboxBrightness,
	}
}

// FromConfig constructs a camera fully from a scene's camera config:
// position, orientation, and all render settings.
func FromConfig(cfg *scene.CameraConfig) *Camera {
	cam := New(mgl32.Vec3(cfg.Position), cfg.Rotation, cfg.FOV, cfg.Exposure)
	cam.ApplyRenderSettings(cfg)
	return cam
}

// ToConfig serializes the camera back into a CameraConfig for scene saving.
func (c *Camera) ToConfig() scene.CameraConfig {
	return scene.CameraConfig{
		Position:          [3]float32(c.Position),
		Rotation:          [3]float32{c.Pitch, c.Yaw, 0},
		FOV:               c.FOV,
		Exposure:          c.Exposure,
		MaxBounces:        c.MaxBounces,
		FireflyClamp:      c.FireflyClamp,
		SkyboxColor:       c.SkyboxColor,
		SkyboxBrightness:  c.SkyboxBrightness,
		ToneMapper:        c.ToneMapper,
		FractalMarchSteps: c.FractalMarchSteps,
	}
}

// ApplyRenderSettings copies everything except pose/fov/exposure from a
// CameraConfig into this camera.
func (c *Camera) ApplyRenderSettings(cfg *scene.CameraConfig) {
	c.MaxBounces = cfg.MaxBounces
	c.FireflyClamp = cfg.FireflyClamp
	c.SkyboxColor = cfg.SkyboxColor
	c.SkyboxBrightness = cfg.SkyboxBrightness
	c.ToneMapper = cfg.ToneMapper
	c.FractalMarchSteps = cfg.FractalMarchSteps
}

// Orientation returns the camera rotation as a quaternion, yaw about Y then
// pitch about X.
func (c *Camera) Orientation() mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(c.Yaw),
		mgl32.DegToRad(c.Pitch),
		0,
		mgl32.YXZ,
	)
}

// BasisVectors returns the right-handed orthonormal (right, up, forward)
// frame. Recomputed on every call so mutation is always reflected.
func (c *Camera) BasisVectors() (right, up, forward mgl32.Vec3) {
	rot := c.Orientation()
	forward = rot.Rotate(mgl32.Vec3{0, 0, 1})
	right = rot.Rotate(mgl32.Vec3{1, 0, 0})
	up = rot.Rotate(mgl32.Vec3{0, 1, 0})
	return right, up, forward
}

// FocalLength is the cotangent of the half field of view.
func (c *Camera) FocalLength() float32 {
	return 1.0 / float32(math.Tan(float64(mgl32.DegToRad(c.FOV))*0.5))
}

// ToGpu lowers the camera into the uniform record for one frame.
func (c *Camera) ToGpu(width, height, frameIndex, sampleCount uint32) GpuCamera {
	right, up, forward := c.BasisVectors()
	return GpuCamera{
		Position:          c.Position,
		FocalLength:       c.FocalLength(),
		Right:             right,
		Aspect:            float32(width) / float32(height),
		Up:                up,
		Exposure:          c.Exposure,
		Forward:           forward,
		FrameIndex:        frameIndex,
		Width:             width,
		Height:            height,
		SampleCount:       sampleCount,
		MaxBounces:        c.MaxBounces,
		ToneMapper:        c.ToneMapper,
		FractalMarchSteps: c.FractalMarchSteps,
		FireflyClamp:      c.FireflyClamp,
		SkyboxBrightness:  c.SkyboxBrightness,
		SkyboxColor:       c.SkyboxColor,
	}
}
