// package scene defines the logical scene model: shapes, materials, the
// camera configuration, and the YAML/JSON load/save surface. The GPU
// lowering step in gpu_types.go flattens this model into the fixed-stride
// records the compute shader consumes.
package scene

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ShapeType tags the 17 supported shape variants. The numeric values are a
// wire contract with the WGSL intersection dispatch.
type ShapeType uint32

const (
	ShapeSphere ShapeType = iota
	ShapePlane
	ShapeCube
	ShapeCylinder
	ShapeCone
	ShapeTorus
	ShapeDisc
	ShapeTriangle
	ShapeSkybox
	ShapeMandelbulb
	ShapeJulia
	ShapeEllipsoid
	ShapeParaboloid
	ShapeHyperboloid
	ShapeMebius
	ShapePyramid
	ShapeTetrahedron
)

var shapeTypeNames = map[ShapeType]string{
	ShapeSphere:      "sphere",
	ShapePlane:       "plane",
	ShapeCube:        "cube",
	ShapeCylinder:    "cylinder",
	ShapeCone:        "cone",
	ShapeTorus:       "torus",
	ShapeDisc:        "disc",
	ShapeTriangle:    "triangle",
	ShapeSkybox:      "skybox",
	ShapeMandelbulb:  "mandelbulb",
	ShapeJulia:       "julia",
	ShapeEllipsoid:   "ellipsoid",
	ShapeParaboloid:  "paraboloid",
	ShapeHyperboloid: "hyperboloid",
	ShapeMebius:      "mebius",
	ShapePyramid:     "pyramid",
	ShapeTetrahedron: "tetrahedron",
}

// AllShapeTypes lists every supported tag in wire order.
var AllShapeTypes = []ShapeType{
	ShapeSphere, ShapePlane, ShapeCube, ShapeCylinder, ShapeCone,
	ShapeTorus, ShapeDisc, ShapeTriangle, ShapeSkybox, ShapeMandelbulb,
	ShapeJulia, ShapeEllipsoid, ShapeParaboloid, ShapeHyperboloid,
	ShapeMebius, ShapePyramid, ShapeTetrahedron,
}

// ParseShapeType resolves a case-insensitive tag name from a scene file.
//
// Parameters:
//   - name: the tag name, e.g. "sphere" or "Mandelbulb"
//
// Returns:
//   - ShapeType: the resolved tag
//   - error: an error naming the unknown tag if resolution fails
func ParseShapeType(name string) (ShapeType, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for t, n := range shapeTypeNames {
		if n == lower {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown shape type %q", name)
}

// String returns the canonical lower-case tag name.
func (t ShapeType) String() string {
	if n, ok := shapeTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", uint32(t))
}

// Label returns the human-readable tag name for diagnostics and tables.
func (t ShapeType) Label() string {
	n := t.String()
	if n == "" {
		return n
	}
	return strings.ToUpper(n[:1]) + n[1:]
}

func (t ShapeType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *ShapeType) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseShapeType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ShapeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ShapeType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseShapeType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Shape is one scene figure. Field semantics depend on Type: Radius is the
// sphere/cylinder/disc radius, the cube half-extent, the torus major radius
// or the fractal bounding radius; Radius2 is the torus minor radius, the
// cone tan²(half-angle) or the ellipsoid z-radius; Normal doubles as the
// axis for cylinders and cones.
type Shape struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Type ShapeType `yaml:"type" json:"type"`

	// Negative marks the shape as a CSG subtraction volume.
	Negative bool `yaml:"csg_op,omitempty" json:"csg_op,omitempty"`

	Position [3]float32 `yaml:"position,omitempty" json:"position,omitempty"`

	// Normal is the direction/normal for plane, disc, cylinder and cone axes.
	Normal [3]float32 `yaml:"normal,omitempty" json:"normal,omitempty"`

	Radius  float32 `yaml:"radius,omitempty" json:"radius,omitempty"`
	Radius2 float32 `yaml:"radius2,omitempty" json:"radius2,omitempty"`
	Height  float32 `yaml:"height,omitempty" json:"height,omitempty"`

	// Rotation in degrees (Euler XYZ). Fractals reuse it as a constant carrier.
	Rotation [3]float32 `yaml:"rotation,omitempty" json:"rotation,omitempty"`

	// Triangle vertices.
	V0 [3]float32 `yaml:"v0,omitempty" json:"v0,omitempty"`
	V1 [3]float32 `yaml:"v1,omitempty" json:"v1,omitempty"`
	V2 [3]float32 `yaml:"v2,omitempty" json:"v2,omitempty"`

	// Power is the Mandelbulb exponent (default 8).
	Power float32 `yaml:"power,omitempty" json:"power,omitempty"`

	// MaxIterations bounds the fractal escape iteration (default 12).
	MaxIterations uint32 `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`

	// Texture is an image path; TextureScale tiles the UVs.
	Texture      string  `yaml:"texture,omitempty" json:"texture,omitempty"`
	TextureScale float32 `yaml:"texture_scale,omitempty" json:"texture_scale,omitempty"`

	// Per-vertex UVs for textured triangles from OBJ models. Not serialized;
	// they ride into the GPU record as packed half floats.
	UV0 [2]float32 `yaml:"-" json:"-"`
	UV1 [2]float32 `yaml:"-" json:"-"`
	UV2 [2]float32 `yaml:"-" json:"-"`

	Material Material `yaml:"material,omitempty" json:"material,omitempty"`
}

// DefaultShape returns a shape with the schema defaults applied.
func DefaultShape(t ShapeType) Shape {
	return Shape{
		Type:          t,
		Normal:        [3]float32{0, 1, 0},
		Radius:        1,
		Power:         8,
		MaxIterations: 12,
		Material:      DefaultMaterial(),
	}
}

type rawShape Shape

func (s *Shape) UnmarshalYAML(value *yaml.Node) error {
	r := rawShape(DefaultShape(ShapeSphere))
	if err := value.Decode(&r); err != nil {
		return err
	}
	*s = Shape(r)
	return nil
}

func (s *Shape) UnmarshalJSON(data []byte) error {
	r := rawShape(DefaultShape(ShapeSphere))
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*s = Shape(r)
	return nil
}

// IsFractal reports whether the shape is one of the SDF fractals.
func (s *Shape) IsFractal() bool {
	return s.Type == ShapeMandelbulb || s.Type == ShapeJulia
}
