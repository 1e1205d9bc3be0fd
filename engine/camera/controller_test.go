package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/common"
)

func TestControllerMovesForward(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 60, 1)
	c := NewController()

	c.HandleKey(common.KeyW, true)
	if !c.Update(cam, 0.1) {
		t.Fatal("Update should report movement")
	}
	if cam.Position[2] <= 0 {
		t.Fatalf("camera did not move forward: %v", cam.Position)
	}

	c.HandleKey(common.KeyW, false)
	if c.Update(cam, 0.1) {
		t.Fatal("Update should report no movement after release")
	}
}

func TestControllerPitchClamp(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 60, 1)
	c := NewController()
	c.MouseCaptured = true

	c.HandleCursor(0, 0)
	c.HandleCursor(0, 10000)
	if !c.ApplyMouseLook(cam) {
		t.Fatal("mouse look should report rotation")
	}
	if cam.Pitch > PitchClamp || cam.Pitch < -PitchClamp {
		t.Fatalf("pitch %v outside clamp", cam.Pitch)
	}
}

func TestControllerIgnoresUncapturedMouse(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 60, 1)
	c := NewController()

	c.HandleCursor(0, 0)
	c.HandleCursor(100, 100)
	if c.ApplyMouseLook(cam) {
		t.Fatal("uncaptured mouse must not rotate the camera")
	}
}

func TestControllerClearMovement(t *testing.T) {
	cam := New(mgl32.Vec3{}, [3]float32{0, 0, 0}, 60, 1)
	c := NewController()

	c.HandleKey(common.KeyW, true)
	c.ClearMovement()
	if c.Update(cam, 0.1) {
		t.Fatal("movement must stop after ClearMovement")
	}
}
