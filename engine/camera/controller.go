package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Stronautt/PathTracer/common"
)

// Controller tuning constants.
const (
	DefaultMoveSpeed   = 5.0
	SprintMultiplier   = 3.0
	DefaultSensitivity = 0.15
	PitchClamp         = 89.0
	SpeedStep          = 5.0
	SpeedMin           = 0.5
	SpeedMax           = 50.0
)

// Controller is an FPS-style fly controller (WASD + QE + mouse look).
// Key state is fed from the window callbacks; Update and ApplyMouseLook run
// once per frame and report whether the camera changed, which signals an
// accumulation reset.
type Controller struct {
	MoveSpeed       float32
	LookSensitivity float32

	forward, backward bool
	left, right       bool
	up, down          bool
	sprint            bool

	// MouseCaptured gates mouse-look accumulation.
	MouseCaptured bool

	speedUp, speedDown bool

	mouseDeltaX float32
	mouseDeltaY float32

	lastCursorX float32
	lastCursorY float32
	hasCursor   bool
}

// NewController returns a controller with default speed and sensitivity.
func NewController() *Controller {
	return &Controller{
		MoveSpeed:       DefaultMoveSpeed,
		LookSensitivity: DefaultSensitivity,
	}
}

// HandleKey updates movement state for a key transition.
func (c *Controller) HandleKey(key uint32, pressed bool) {
	switch key {
	case common.KeyW:
		c.forward = pressed
	case common.KeyS:
		c.backward = pressed
	case common.KeyA:
		c.left = pressed
	case common.KeyD:
		c.right = pressed
	case common.KeyE, common.KeySpace:
		c.up = pressed
	case common.KeyQ:
		c.down = pressed
	case common.KeyLeftShift, common.KeyRightShift:
		c.sprint = pressed
	case common.KeyEqual:
		c.speedUp = pressed
	case common.KeyMinus:
		c.speedDown = pressed
	}
}

// HandleCursor accumulates mouse-look deltas from cursor positions while
// the mouse is captured.
func (c *Controller) HandleCursor(x, y float32) {
	if c.hasCursor && c.MouseCaptured {
		c.mouseDeltaX += x - c.lastCursorX
		c.mouseDeltaY += y - c.lastCursorY
	}
	c.lastCursorX = x
	c.lastCursorY = y
	c.hasCursor = true
}

// Update applies movement for one frame.
//
// Returns:
//   - bool: true if the camera moved (signals accumulation reset)
func (c *Controller) Update(cam *Camera, dt float32) bool {
	if c.speedUp {
		c.MoveSpeed = minf(c.MoveSpeed+SpeedStep*dt, SpeedMax)
	}
	if c.speedDown {
		c.MoveSpeed = maxf(c.MoveSpeed-SpeedStep*dt, SpeedMin)
	}

	speed := c.MoveSpeed * dt
	if c.sprint {
		speed *= SprintMultiplier
	}

	right, _, forward := cam.BasisVectors()

	var delta mgl32.Vec3
	if c.forward {
		delta = delta.Add(forward)
	}
	if c.backward {
		delta = delta.Sub(forward)
	}
	if c.right {
		delta = delta.Add(right)
	}
	if c.left {
		delta = delta.Sub(right)
	}
	if c.up {
		delta = delta.Add(mgl32.Vec3{0, 1, 0})
	}
	if c.down {
		delta = delta.Sub(mgl32.Vec3{0, 1, 0})
	}

	if delta.Len() == 0 {
		return false
	}
	cam.Position = cam.Position.Add(delta.Normalize().Mul(speed))
	return true
}

// ApplyMouseLook folds the accumulated mouse delta into yaw/pitch, called
// once per frame.
//
// Returns:
//   - bool: true if the camera rotated (signals accumulation reset)
func (c *Controller) ApplyMouseLook(cam *Camera) bool {
	dx, dy := c.mouseDeltaX, c.mouseDeltaY
	c.mouseDeltaX, c.mouseDeltaY = 0, 0
	if dx == 0 && dy == 0 {
		return false
	}

	cam.Yaw += dx * c.LookSensitivity
	cam.Pitch = clampf(cam.Pitch+dy*c.LookSensitivity, -PitchClamp, PitchClamp)
	return true
}

// ClearMovement resets all movement flags, called on focus loss to prevent
// runaway movement.
func (c *Controller) ClearMovement() {
	c.forward, c.backward = false, false
	c.left, c.right = false, false
	c.up, c.down = false, false
	c.sprint = false
	c.speedUp, c.speedDown = false, false
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
