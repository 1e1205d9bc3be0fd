// package window wraps GLFW windowing for the WebGPU surface: creation,
// input callbacks, and the poll loop. The render loop runs on the main OS
// thread; callbacks fire during PollEvents.
package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// engineWindow holds the shared window state; the platform file owns the
// GLFW specifics.
type engineWindow struct {
	width  int
	height int
	title  string

	internalWindow any

	onKeyDown   func(key uint32)
	onKeyUp     func(key uint32)
	onMouseMove func(x, y int32)
	onMouseDown func(x, y int32)
	onMouseUp   func(x, y int32)
	onScroll    func(delta float32)
	onResize    func(width, height int)
}

// Window is the engine's window abstraction.
type Window interface {
	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// SurfaceDescriptor returns the platform wgpu surface descriptor.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil before creation
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents pumps pending window events without blocking.
	//
	// Returns:
	//   - bool: true while the window should stay open
	PollEvents() bool

	// SetCursorCaptured toggles relative-mouse capture for mouse look.
	//
	// Parameters:
	//   - captured: true hides the cursor and locks it to the window
	SetCursorCaptured(captured bool)

	// SetKeyCallbacks registers key press/release handlers.
	SetKeyCallbacks(down, up func(key uint32))

	// SetMouseCallbacks registers cursor-move and button handlers.
	SetMouseCallbacks(move func(x, y int32), down, up func(x, y int32))

	// SetScrollCallback registers the scroll-wheel handler.
	SetScrollCallback(scroll func(delta float32))

	// SetResizeCallback registers the framebuffer-resize handler.
	SetResizeCallback(resize func(width, height int))

	// Close destroys the window and terminates the windowing library.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error
}

var _ Window = &engineWindow{}

// New creates a visible window with the given dimensions and title.
//
// Parameters:
//   - width, height: requested size in screen coordinates
//   - title: the window title
//
// Returns:
//   - Window: the created window
//   - error: a platform initialization error
func New(width, height int, title string) (Window, error) {
	w := &engineWindow{
		width:  width,
		height: height,
		title:  title,
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) SetKeyCallbacks(down, up func(key uint32)) {
	w.onKeyDown = down
	w.onKeyUp = up
}

func (w *engineWindow) SetMouseCallbacks(move func(x, y int32), down, up func(x, y int32)) {
	w.onMouseMove = move
	w.onMouseDown = down
	w.onMouseUp = up
}

func (w *engineWindow) SetScrollCallback(scroll func(delta float32)) {
	w.onScroll = scroll
}

func (w *engineWindow) SetResizeCallback(resize func(width, height int)) {
	w.onResize = resize
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}
