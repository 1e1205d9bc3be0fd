package scene

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Material is a PBR metallic-roughness material (Cook-Torrance / GGX).
type Material struct {
	BaseColor        [3]float32 `yaml:"base_color,omitempty" json:"base_color,omitempty"`
	Metallic         float32    `yaml:"metallic,omitempty" json:"metallic,omitempty"`
	Roughness        float32    `yaml:"roughness,omitempty" json:"roughness,omitempty"`
	Emission         [3]float32 `yaml:"emission,omitempty" json:"emission,omitempty"`
	EmissionStrength float32    `yaml:"emission_strength,omitempty" json:"emission_strength,omitempty"`
	IOR              float32    `yaml:"ior,omitempty" json:"ior,omitempty"`
	Transmission     float32    `yaml:"transmission,omitempty" json:"transmission,omitempty"`

	// TextureID indexes the texture atlas; -1 disables sampling. Assigned by
	// the scene build, never read from scene files (the Shape.Texture path is
	// the persisted form).
	TextureID int32 `yaml:"-" json:"-"`
}

// DefaultMaterial returns the schema-default diffuse gray material.
func DefaultMaterial() Material {
	return Material{
		BaseColor: [3]float32{0.8, 0.8, 0.8},
		Roughness: 0.5,
		IOR:       1.5,
		TextureID: -1,
	}
}

type rawMaterial Material

func (m *Material) UnmarshalYAML(value *yaml.Node) error {
	r := rawMaterial(DefaultMaterial())
	if err := value.Decode(&r); err != nil {
		return err
	}
	*m = Material(r)
	return nil
}

func (m *Material) UnmarshalJSON(data []byte) error {
	r := rawMaterial(DefaultMaterial())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*m = Material(r)
	return nil
}

// IsEmissive reports whether the material contributes light. A sphere's index
// appears in the light list iff this is true; emissive shapes of other types
// still glow when hit but are not in the light list.
func (m *Material) IsEmissive() bool {
	return m.EmissionStrength > 0 &&
		(m.Emission[0] > 0 || m.Emission[1] > 0 || m.Emission[2] > 0)
}
