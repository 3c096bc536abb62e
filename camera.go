package aspen

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the camera pan X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera derives the world transform for a frame from pan, zoom, and
// viewport state. Pan and zoom are mutated only through the camera's own
// API; every mutation synchronously notifies its single subscriber (the
// owning View) so the next frame is marked dirty.
//
// Pan is measured in viewport pixels and applied after zoom, so panning
// moves the view by the same on-screen distance at any zoom level.
type Camera struct {
	// Pan is the viewport-pixel offset of the document origin.
	Pan Vec2
	// Zoom is the scale factor (positive; 1.0 = document pixels map 1:1).
	Zoom float64
	// Viewport is the render target size in pixels.
	Viewport Vec2
	// Bounds is the document rectangle used by ZoomToFit.
	Bounds Rect

	onChange func()

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
	zoomDone    bool
}

// NewCamera creates a camera for the given viewport size with zoom 1 and no pan.
func NewCamera(viewportWidth, viewportHeight float64) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: Vec2{X: viewportWidth, Y: viewportHeight},
	}
}

// WorldTransform composes, in order: translate by (-1,-1), scale by
// (2/viewportWidth, 2/viewportHeight), translate by pan, scale by zoom.
// The ordering is load-bearing: applied to a point it reads right to left,
// so pan lands in the post-zoom pixel space and panning behaves the same at
// every zoom level. With pan (0,0) and zoom 1 this is the pure
// pixel-to-normalized-device mapping.
func (c *Camera) WorldTransform() [6]float64 {
	m := translation(-1, -1)
	m = multiplyAffine(m, scaling(2/c.Viewport.X, 2/c.Viewport.Y))
	m = multiplyAffine(m, translation(c.Pan.X, c.Pan.Y))
	m = multiplyAffine(m, scaling(c.Zoom, c.Zoom))
	return m
}

// SetPan sets the pan offset in viewport pixels.
func (c *Camera) SetPan(x, y float64) {
	c.Pan = Vec2{X: x, Y: y}
	c.notify()
}

// TranslateBy offsets the pan by (dx, dy) viewport pixels.
func (c *Camera) TranslateBy(dx, dy float64) {
	c.Pan.X += dx
	c.Pan.Y += dy
	c.notify()
}

// SetZoom sets the zoom scale. Non-positive values are ignored.
func (c *Camera) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	c.Zoom = zoom
	c.notify()
}

// ZoomAt multiplies the zoom by factor while keeping the viewport-pixel
// anchor (x, y) fixed on screen. Non-positive factors are ignored.
func (c *Camera) ZoomAt(factor, x, y float64) {
	if factor <= 0 {
		return
	}
	// The document point under the anchor must stay under it.
	docX, docY := c.ScreenToDocument(x, y)
	c.Zoom *= factor
	c.Pan.X = x - c.Zoom*docX
	c.Pan.Y = y - c.Zoom*docY
	c.notify()
}

// ScreenToDocument maps a viewport-pixel point back to document
// coordinates by inverting the pixel-space part of the camera mapping
// (screen = zoom*doc + pan).
func (c *Camera) ScreenToDocument(x, y float64) (float64, float64) {
	m := multiplyAffine(translation(c.Pan.X, c.Pan.Y), scaling(c.Zoom, c.Zoom))
	return transformPoint(invertAffine(m), x, y)
}

// VisibleRect returns the document-space rectangle currently covered by
// the viewport.
func (c *Camera) VisibleRect() Rect {
	x0, y0 := c.ScreenToDocument(0, 0)
	x1, y1 := c.ScreenToDocument(c.Viewport.X, c.Viewport.Y)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// SetViewport resizes the camera viewport.
func (c *Camera) SetViewport(width, height float64) {
	c.Viewport = Vec2{X: width, Y: height}
	c.notify()
}

// SetBounds sets the document rectangle used by ZoomToFit.
func (c *Camera) SetBounds(bounds Rect) {
	c.Bounds = bounds
	c.notify()
}

// ZoomToFit recomputes pan and zoom so Bounds is entirely visible, centered,
// and as large as possible while preserving aspect ratio (contain policy:
// on aspect mismatch the tighter axis wins and the other axis is centered
// in the slack). Empty bounds reset the camera to zoom 1, pan (0,0).
func (c *Camera) ZoomToFit() {
	b := c.Bounds
	if b.Empty() || c.Viewport.X <= 0 || c.Viewport.Y <= 0 {
		c.Zoom = 1
		c.Pan = Vec2{}
		c.notify()
		return
	}
	c.Zoom = math.Min(c.Viewport.X/b.Width, c.Viewport.Y/b.Height)
	cx := b.X + b.Width/2
	cy := b.Y + b.Height/2
	c.Pan.X = c.Viewport.X/2 - c.Zoom*cx
	c.Pan.Y = c.Viewport.Y/2 - c.Zoom*cy
	c.notify()
}

// ScrollTo animates the pan so the document point (x, y) ends up at the
// viewport center, over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	targetX := c.Viewport.X/2 - c.Zoom*x
	targetY := c.Viewport.Y/2 - c.Zoom*y
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Pan.X), float32(targetX), duration, easeFn),
		tweenY: gween.New(float32(c.Pan.Y), float32(targetY), duration, easeFn),
	}
}

// ZoomTo animates the zoom toward the given scale over duration seconds,
// keeping the viewport center fixed. Non-positive targets are ignored.
func (c *Camera) ZoomTo(zoom float64, duration float32, easeFn ease.TweenFunc) {
	if zoom <= 0 {
		return
	}
	c.zoomTween = gween.New(float32(c.Zoom), float32(zoom), duration, easeFn)
	c.zoomDone = false
}

// update advances active tweens. Called from View.Update.
func (c *Camera) update(dt float32) {
	if c.scrollTween != nil {
		st := c.scrollTween
		if !st.doneX {
			val, done := st.tweenX.Update(dt)
			c.Pan.X = float64(val)
			st.doneX = done
		}
		if !st.doneY {
			val, done := st.tweenY.Update(dt)
			c.Pan.Y = float64(val)
			st.doneY = done
		}
		if st.doneX && st.doneY {
			c.scrollTween = nil
		}
		c.notify()
	}
	if c.zoomTween != nil && !c.zoomDone {
		val, done := c.zoomTween.Update(dt)
		c.zoomDone = done
		// Keep the viewport center anchored while the scale animates.
		factor := float64(val) / c.Zoom
		if factor > 0 {
			c.ZoomAt(factor, c.Viewport.X/2, c.Viewport.Y/2)
		}
		if done {
			c.zoomTween = nil
		}
	}
}

// notify tells the subscriber that camera state changed.
func (c *Camera) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
