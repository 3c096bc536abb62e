package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const defaultWheelFactor = 1.1

// CameraController maps mouse input onto a view's camera: dragging with the
// left button pans, and the scroll wheel zooms about the cursor so the
// content under it stays put. Call Update once per tick after View.Update.
type CameraController struct {
	view *View

	// WheelFactor is the zoom multiplier applied per wheel notch.
	WheelFactor float64

	dragging     bool
	lastX, lastY int
}

// NewCameraController creates a controller driving the view's camera.
func NewCameraController(view *View) *CameraController {
	return &CameraController{view: view, WheelFactor: defaultWheelFactor}
}

// Update samples the mouse and applies pan and zoom for this tick.
func (c *CameraController) Update() {
	mx, my := ebiten.CursorPosition()

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if c.dragging {
			c.view.Camera().TranslateBy(float64(mx-c.lastX), float64(my-c.lastY))
		}
		c.dragging = true
		c.lastX, c.lastY = mx, my
	} else {
		c.dragging = false
	}

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		factor := c.WheelFactor
		if wheel < 0 {
			factor = 1 / factor
		}
		c.view.Camera().ZoomAt(factor, float64(mx), float64(my))
	}
}
