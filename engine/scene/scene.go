package scene

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Camera and kernel defaults shared between the config schema and the
// camera package.
const (
	DefaultFOV               = 60.0
	DefaultExposure          = 1.0
	DefaultMaxBounces        = 16
	DefaultFireflyClamp      = 100.0
	DefaultSkyboxBrightness  = 0.3
	DefaultToneMapper        = 0 // ACES
	DefaultFractalMarchSteps = 256
)

// DefaultCameraPosition is where a camera starts when the scene omits one.
var DefaultCameraPosition = [3]float32{0, 2, -10}

// DefaultSkyboxColor is the zenith tint of the procedural sky gradient.
var DefaultSkyboxColor = [3]float32{0.5, 0.7, 1.0}

// CameraConfig is the persisted camera block of a scene file: pose, optics,
// and the render settings the path kernel reads each frame.
type CameraConfig struct {
	Position [3]float32 `yaml:"position,omitempty" json:"position,omitempty"`

	// Rotation is [pitch, yaw, roll] in degrees.
	Rotation [3]float32 `yaml:"rotation,omitempty" json:"rotation,omitempty"`

	FOV      float32 `yaml:"fov,omitempty" json:"fov,omitempty"`
	Exposure float32 `yaml:"exposure,omitempty" json:"exposure,omitempty"`

	MaxBounces        uint32     `yaml:"max_bounces,omitempty" json:"max_bounces,omitempty"`
	FireflyClamp      float32    `yaml:"firefly_clamp,omitempty" json:"firefly_clamp,omitempty"`
	SkyboxColor       [3]float32 `yaml:"skybox_color,omitempty" json:"skybox_color,omitempty"`
	SkyboxBrightness  float32    `yaml:"skybox_brightness,omitempty" json:"skybox_brightness,omitempty"`
	ToneMapper        uint32     `yaml:"tone_mapper,omitempty" json:"tone_mapper,omitempty"`
	FractalMarchSteps uint32     `yaml:"fractal_march_steps,omitempty" json:"fractal_march_steps,omitempty"`
}

// DefaultCameraConfig returns the camera used when a scene file has no
// camera block.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:          DefaultCameraPosition,
		FOV:               DefaultFOV,
		Exposure:          DefaultExposure,
		MaxBounces:        DefaultMaxBounces,
		FireflyClamp:      DefaultFireflyClamp,
		SkyboxColor:       DefaultSkyboxColor,
		SkyboxBrightness:  DefaultSkyboxBrightness,
		ToneMapper:        DefaultToneMapper,
		FractalMarchSteps: DefaultFractalMarchSteps,
	}
}

type rawCameraConfig CameraConfig

func (c *CameraConfig) UnmarshalYAML(value *yaml.Node) error {
	r := rawCameraConfig(DefaultCameraConfig())
	if err := value.Decode(&r); err != nil {
		return err
	}
	*c = CameraConfig(r)
	return nil
}

func (c *CameraConfig) UnmarshalJSON(data []byte) error {
	r := rawCameraConfig(DefaultCameraConfig())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = CameraConfig(r)
	return nil
}

// ModelRef points at an external OBJ model to ingest as triangles.
type ModelRef struct {
	Path     string     `yaml:"path" json:"path"`
	Position [3]float32 `yaml:"position,omitempty" json:"position,omitempty"`
	Rotation [3]float32 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Scale    float32    `yaml:"scale,omitempty" json:"scale,omitempty"`
	Material Material   `yaml:"material,omitempty" json:"material,omitempty"`
}

type rawModelRef ModelRef

func (m *ModelRef) UnmarshalYAML(value *yaml.Node) error {
	r := rawModelRef{Scale: 1, Material: DefaultMaterial()}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*m = ModelRef(r)
	return nil
}

func (m *ModelRef) UnmarshalJSON(data []byte) error {
	r := rawModelRef{Scale: 1, Material: DefaultMaterial()}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*m = ModelRef(r)
	return nil
}

// Scene is the top-level scene file document.
type Scene struct {
	Camera CameraConfig `yaml:"camera,omitempty" json:"camera,omitempty"`
	Shapes []Shape      `yaml:"figures" json:"figures"`
	Models []ModelRef   `yaml:"models,omitempty" json:"models,omitempty"`
}

// Empty returns a scene with no figures and the default camera.
func Empty() *Scene {
	return &Scene{Camera: DefaultCameraConfig()}
}
