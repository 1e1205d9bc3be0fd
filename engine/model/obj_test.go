package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Stronautt/PathTracer/engine/scene"
)

const sampleOBJ = `
# simple quad, two triangles
mtllib quad.mtl
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl red
f 1/1 2/2 3/3
f 1/1 3/3 4/4
`

const sampleMTL = `
newmtl red
Kd 1 0 0
Ns 250
Ni 1.45
`

func writeModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	objPath := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(objPath, []byte(sampleOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte(sampleMTL), 0o644); err != nil {
		t.Fatal(err)
	}
	return objPath
}

func TestLoadTriangulates(t *testing.T) {
	path := writeModel(t)
	def := scene.DefaultMaterial()

	tris, err := Load(path, [3]float32{0, 0, 0}, 1, &def)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles; got %d", len(tris))
	}
	for _, tri := range tris {
		if tri.Type != scene.ShapeTriangle {
			t.Fatalf("non-triangle shape %v", tri.Type)
		}
	}
}

func TestLoadAppliesMTL(t *testing.T) {
	path := writeModel(t)
	def := scene.DefaultMaterial()

	tris, err := Load(path, [3]float32{0, 0, 0}, 1, &def)
	if err != nil {
		t.Fatal(err)
	}

	mat := tris[0].Material
	if mat.BaseColor != [3]float32{1, 0, 0} {
		t.Fatalf("Kd not mapped: %v", mat.BaseColor)
	}
	if mat.IOR != 1.45 {
		t.Fatalf("Ni not mapped: %v", mat.IOR)
	}
	// Ns 250 maps to a low roughness.
	if mat.Roughness > 0.6 {
		t.Fatalf("Ns not mapped: roughness %v", mat.Roughness)
	}
}

func TestLoadCentersAtPosition(t *testing.T) {
	path := writeModel(t)
	def := scene.DefaultMaterial()

	tris, err := Load(path, [3]float32{10, 5, 0}, 1, &def)
	if err != nil {
		t.Fatal(err)
	}

	// The quad's bounding-box centre must land at the requested position.
	var minX, maxX float32 = math.MaxFloat32, -math.MaxFloat32
	for _, tri := range tris {
		for _, v := range [][3]float32{tri.V0, tri.V1, tri.V2} {
			if v[0] < minX {
				minX = v[0]
			}
			if v[0] > maxX {
				maxX = v[0]
			}
		}
	}
	center := (minX + maxX) / 2
	if math.Abs(float64(center-10)) > 1e-4 {
		t.Fatalf("model centre x = %v; want 10", center)
	}
}

func TestLoadAutoScaled(t *testing.T) {
	path := writeModel(t)
	def := scene.DefaultMaterial()

	tris, err := LoadAutoScaled(path, [3]float32{0, 0, 0}, &def)
	if err != nil {
		t.Fatal(err)
	}

	// Largest dimension (2 units) scales to AutoScaleTarget.
	var minX, maxX float32 = math.MaxFloat32, -math.MaxFloat32
	for _, tri := range tris {
		for _, v := range [][3]float32{tri.V0, tri.V1, tri.V2} {
			if v[0] < minX {
				minX = v[0]
			}
			if v[0] > maxX {
				maxX = v[0]
			}
		}
	}
	if math.Abs(float64(maxX-minX-AutoScaleTarget)) > 1e-3 {
		t.Fatalf("auto-scaled extent = %v; want %v", maxX-minX, AutoScaleTarget)
	}
}

func TestLoadMissingFile(t *testing.T) {
	def := scene.DefaultMaterial()
	if _, err := Load("/nonexistent.obj", [3]float32{}, 1, &def); err == nil {
		t.Fatal("expected error for missing OBJ")
	}
}

func TestLoadUVFlip(t *testing.T) {
	path := writeModel(t)
	def := scene.DefaultMaterial()

	tris, err := Load(path, [3]float32{0, 0, 0}, 1, &def)
	if err != nil {
		t.Fatal(err)
	}

	// vt 0 0 flips to v=1.
	if tris[0].UV0 != [2]float32{0, 1} {
		t.Fatalf("UV0 = %v; want flipped V", tris[0].UV0)
	}
}
