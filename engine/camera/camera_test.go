package camera

import (
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/engine/scene"
)

func TestBasisOrthonormal(t *testing.T) {
	angles := [][2]float32{
		{0, 0}, {45, 0}, {0, 90}, {-30, 120}, {89, -45}, {-89, 360},
	}
	for _, a := range angles {
		cam := New(mgl32.Vec3{}, [3]float32{a[0], a[1], 0}, 60, 1)
		right, up, forward := cam.BasisVectors()

		for _, v := range []mgl32.Vec3{right, up, forward} {
			if math.Abs(float64(v.Len()-1)) > 1e-5 {
				t.Fatalf("pitch=%v yaw=%v: basis vector %v not unit", a[0], a[1], v)
			}
		}
		if math.Abs(float64(right.Dot(up))) > 1e-5 ||
			math.Abs(float64(right.Dot(forward))) > 1e-5 ||
			math.Abs(float64(up.Dot(forward))) > 1e-5 {
			t.Fatalf("pitch=%v yaw=%v: basis not orthogonal", a[0], a[1])
		}
		// Right-handed: right x up = forward.
		cross := right.Cross(up)
		if cross.Sub(forward).Len() > 1e-4 {
			t.Fatalf("pitch=%v yaw=%v: basis not right-handed (%v vs %v)", a[0], a[1], cross, forward)
		}
	}
}

func TestBasisReflectsMutation(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 60, 1)
	_, _, before := cam.BasisVectors()

	cam.Yaw = 90
	_, _, after := cam.BasisVectors()

	if before.Sub(after).Len() < 0.5 {
		t.Fatal("basis did not change after yaw mutation")
	}
}

func TestFocalLength(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 90, 1)
	// cot(45 deg) == 1.
	if math.Abs(float64(cam.FocalLength()-1)) > 1e-5 {
		t.Fatalf("focal length at 90 deg fov = %v; want 1", cam.FocalLength())
	}
}

func TestConfigRoundtrip(t *testing.T) {
	cfg := scene.DefaultCameraConfig()
	cfg.Position = [3]float32{1, 2, 3}
	cfg.Rotation = [3]float32{10, 20, 0}
	cfg.FOV = 45
	cfg.MaxBounces = 8
	cfg.ToneMapper = 1

	cam := FromConfig(&cfg)
	out := cam.ToConfig()

	if out.Position != cfg.Position || out.Rotation != cfg.Rotation ||
		out.FOV != cfg.FOV || out.MaxBounces != 8 || out.ToneMapper != 1 {
		t.Fatalf("config roundtrip lost data: %+v", out)
	}
}

func TestToGpu(t *testing.T) {
	cam := New(mgl32.Vec3{1, 2, 3}, [3]float32{0, 0, 0}, 60, 2)
	g := cam.ToGpu(1920, 1080, 7, 42)

	if g.Width != 1920 || g.Height != 1080 || g.FrameIndex != 7 || g.SampleCount != 42 {
		t.Fatalf("gpu camera frame fields: %+v", g)
	}
	if math.Abs(float64(g.Aspect-1920.0/1080.0)) > 1e-5 {
		t.Fatalf("aspect = %v", g.Aspect)
	}
	if g.Exposure != 2 {
		t.Fatalf("exposure = %v", g.Exposure)
	}
}

// The camera uniform stride is a wire contract with the WGSL Camera struct.
func TestGpuCameraStride(t *testing.T) {
	if size := unsafe.Sizeof(GpuCamera{}); size != 112 {
		t.Fatalf("GpuCamera stride = %d; want 112", size)
	}
}
