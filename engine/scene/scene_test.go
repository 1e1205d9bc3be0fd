package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unsafe"

	"gopkg.in/yaml.v3"
)

const sampleYAML = `
camera:
  position: [0, 2, -10]
  rotation: [15, 30, 0]
  fov: 75
  exposure: 1.5
figures:
  - type: sphere
    position: [0, 0, 5]
    radius: 2
    material:
      base_color: [1, 0, 0]
  - type: Plane
    normal: [0, 1, 0]
  - type: sphere
    position: [3, 4, 5]
    material:
      emission: [1, 1, 1]
      emission_strength: 10
models:
  - path: bunny.obj
    position: [1, 0, 3]
    scale: 2
`

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Shapes) != 3 {
		t.Fatalf("expected 3 shapes; got %d", len(s.Shapes))
	}
	if s.Camera.FOV != 75 || s.Camera.Exposure != 1.5 {
		t.Fatalf("camera not parsed: %+v", s.Camera)
	}
	// Unset camera settings keep their defaults.
	if s.Camera.MaxBounces != DefaultMaxBounces {
		t.Fatalf("max bounces default lost: %d", s.Camera.MaxBounces)
	}

	sphere := s.Shapes[0]
	if sphere.Type != ShapeSphere || sphere.Radius != 2 {
		t.Fatalf("sphere not parsed: %+v", sphere)
	}
	if sphere.Material.BaseColor != [3]float32{1, 0, 0} {
		t.Fatalf("material not parsed: %+v", sphere.Material)
	}
	// Material defaults fill unspecified fields.
	if sphere.Material.Roughness != 0.5 || sphere.Material.IOR != 1.5 {
		t.Fatalf("material defaults lost: %+v", sphere.Material)
	}

	// Case-insensitive tag.
	if s.Shapes[1].Type != ShapePlane {
		t.Fatalf("plane tag not parsed: %v", s.Shapes[1].Type)
	}

	if len(s.Models) != 1 || s.Models[0].Scale != 2 {
		t.Fatalf("models not parsed: %+v", s.Models)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	body := `{"figures": [{"type": "cube", "radius": 3}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Shapes) != 1 || s.Shapes[0].Type != ShapeCube || s.Shapes[0].Radius != 3 {
		t.Fatalf("JSON scene not parsed: %+v", s.Shapes)
	}
}

func TestLoadUnknownTag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("figures:\n  - type: blob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown shape type") {
		t.Fatalf("expected unknown-tag error; got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/scene.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	s := Empty()
	shape := DefaultShape(ShapeTorus)
	shape.Radius = 2
	shape.Radius2 = 0.5
	s.Shapes = append(s.Shapes, shape)

	if err := Save(s, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Shapes) != 1 || loaded.Shapes[0].Type != ShapeTorus ||
		loaded.Shapes[0].Radius2 != 0.5 {
		t.Fatalf("roundtrip lost data: %+v", loaded.Shapes)
	}
}

func TestShapeTypeRoundtrip(t *testing.T) {
	for _, tag := range AllShapeTypes {
		parsed, err := ParseShapeType(tag.String())
		if err != nil {
			t.Fatalf("tag %v does not parse its own name: %v", tag, err)
		}
		if parsed != tag {
			t.Fatalf("tag %v roundtrips to %v", tag, parsed)
		}
	}

	if _, err := ParseShapeType("SPHERE"); err != nil {
		t.Fatalf("case-insensitive parse failed: %v", err)
	}
}

func TestShapeDefaultsViaYAML(t *testing.T) {
	var s Shape
	if err := yaml.Unmarshal([]byte("type: julia\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Radius != 1 || s.Power != 8 || s.MaxIterations != 12 {
		t.Fatalf("shape defaults not applied: %+v", s)
	}
	if s.Normal != [3]float32{0, 1, 0} {
		t.Fatalf("normal default lost: %v", s.Normal)
	}
}

// GPU record strides are wire contracts.
func TestGpuStrides(t *testing.T) {
	if size := unsafe.Sizeof(GpuShape{}); size != 112 {
		t.Fatalf("GpuShape stride = %d; want 112", size)
	}
	if size := unsafe.Sizeof(GpuMaterial{}); size != 48 {
		t.Fatalf("GpuMaterial stride = %d; want 48", size)
	}
}
