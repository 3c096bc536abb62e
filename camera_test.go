package aspen

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

// toScreen maps a document point through the camera's world transform into
// viewport pixels.
func toScreen(c *Camera, x, y float64) (float64, float64) {
	nx, ny := transformPoint(c.WorldTransform(), x, y)
	return (nx + 1) / 2 * c.Viewport.X, (ny + 1) / 2 * c.Viewport.Y
}

// --- WorldTransform ---

func TestWorldTransformIdentityMapping(t *testing.T) {
	// Pan (0,0) and zoom 1 reduce to the pure pixel-to-NDC mapping: document
	// pixels land on the same screen pixels.
	c := NewCamera(640, 480)

	nx, ny := transformPoint(c.WorldTransform(), 0, 0)
	assertNear(t, "origin.nx", nx, -1)
	assertNear(t, "origin.ny", ny, -1)

	nx, ny = transformPoint(c.WorldTransform(), 640, 480)
	assertNear(t, "corner.nx", nx, 1)
	assertNear(t, "corner.ny", ny, 1)

	sx, sy := toScreen(c, 320, 240)
	assertNear(t, "center.sx", sx, 320)
	assertNear(t, "center.sy", sy, 240)
}

func TestWorldTransformPan(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetPan(10, 20)

	sx, sy := toScreen(c, 0, 0)
	assertNear(t, "sx", sx, 10)
	assertNear(t, "sy", sy, 20)
}

func TestWorldTransformZoom(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetZoom(2)

	sx, sy := toScreen(c, 100, 50)
	assertNear(t, "sx", sx, 200)
	assertNear(t, "sy", sy, 100)
}

func TestPanIsZoomIndependent(t *testing.T) {
	// Pan is applied after zoom, so the same pan moves the view the same
	// on-screen distance at any zoom level.
	for _, zoom := range []float64{0.5, 1, 4} {
		c := NewCamera(640, 480)
		c.SetZoom(zoom)
		c.SetPan(25, -40)
		sx, sy := toScreen(c, 0, 0)
		assertNear(t, "sx", sx, 25)
		assertNear(t, "sy", sy, -40)
	}
}

// --- ZoomAt ---

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetPan(30, 40)
	c.SetZoom(1.5)

	// Document point currently under the anchor.
	ax, ay := 200.0, 150.0
	docX := (ax - c.Pan.X) / c.Zoom
	docY := (ay - c.Pan.Y) / c.Zoom

	c.ZoomAt(2, ax, ay)

	sx, sy := toScreen(c, docX, docY)
	assertNear(t, "anchor.sx", sx, ax)
	assertNear(t, "anchor.sy", sy, ay)
	assertNear(t, "zoom", c.Zoom, 3)
}

func TestZoomAtRejectsNonPositiveFactor(t *testing.T) {
	c := NewCamera(640, 480)
	c.ZoomAt(0, 100, 100)
	assertNear(t, "zoom", c.Zoom, 1)
	c.ZoomAt(-2, 100, 100)
	assertNear(t, "zoom", c.Zoom, 1)
}

// --- ScreenToDocument ---

func TestScreenToDocumentInvertsMapping(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetPan(30, -40)
	c.SetZoom(2.5)

	// A document point mapped to the screen and back lands where it started.
	for _, p := range []Vec2{{0, 0}, {100, 50}, {-20, 300}} {
		sx, sy := toScreen(c, p.X, p.Y)
		dx, dy := c.ScreenToDocument(sx, sy)
		assertNear(t, "doc.x", dx, p.X)
		assertNear(t, "doc.y", dy, p.Y)
	}
}

func TestScreenToDocumentIdentity(t *testing.T) {
	c := NewCamera(640, 480)
	dx, dy := c.ScreenToDocument(123, 77)
	assertNear(t, "doc.x", dx, 123)
	assertNear(t, "doc.y", dy, 77)
}

func TestVisibleRect(t *testing.T) {
	c := NewCamera(200, 100)
	c.SetZoom(2)
	c.SetPan(-40, 20)

	// screen 0..200 maps to doc (0+40)/2 .. (200+40)/2 on X,
	// screen 0..100 to (0-20)/2 .. (100-20)/2 on Y.
	r := c.VisibleRect()
	assertNear(t, "x", r.X, 20)
	assertNear(t, "y", r.Y, -10)
	assertNear(t, "width", r.Width, 100)
	assertNear(t, "height", r.Height, 50)
}

func TestSetZoomRejectsNonPositive(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetZoom(0)
	assertNear(t, "zoom", c.Zoom, 1)
	c.SetZoom(-3)
	assertNear(t, "zoom", c.Zoom, 1)
}

// --- ZoomToFit ---

func TestZoomToFitContain(t *testing.T) {
	// 50x50 bounds in a 200x100 viewport: the tighter axis (height) wins,
	// zoom 2, and the slack on X is split evenly.
	c := NewCamera(200, 100)
	c.SetBounds(Rect{X: 0, Y: 0, Width: 50, Height: 50})
	c.ZoomToFit()

	assertNear(t, "zoom", c.Zoom, 2)
	assertNear(t, "pan.x", c.Pan.X, 50)
	assertNear(t, "pan.y", c.Pan.Y, 0)

	// Bounds center lands on the viewport center.
	sx, sy := toScreen(c, 25, 25)
	assertNear(t, "center.sx", sx, 100)
	assertNear(t, "center.sy", sy, 50)
}

func TestZoomToFitOffsetBounds(t *testing.T) {
	c := NewCamera(400, 400)
	c.SetBounds(Rect{X: 100, Y: 100, Width: 200, Height: 100})
	c.ZoomToFit()

	assertNear(t, "zoom", c.Zoom, 2)
	sx, sy := toScreen(c, 200, 150)
	assertNear(t, "center.sx", sx, 200)
	assertNear(t, "center.sy", sy, 200)
}

func TestZoomToFitEmptyBoundsResets(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetPan(100, 100)
	c.SetZoom(7)
	c.SetBounds(Rect{})
	c.ZoomToFit()

	assertNear(t, "zoom", c.Zoom, 1)
	assertNear(t, "pan.x", c.Pan.X, 0)
	assertNear(t, "pan.y", c.Pan.Y, 0)
}

// --- Change notification ---

func TestMutationsNotifySubscriber(t *testing.T) {
	c := NewCamera(640, 480)
	count := 0
	c.onChange = func() { count++ }

	c.SetPan(1, 2)
	c.TranslateBy(3, 4)
	c.SetZoom(2)
	c.ZoomAt(2, 0, 0)
	c.SetViewport(100, 100)
	c.SetBounds(Rect{Width: 10, Height: 10})
	c.ZoomToFit()

	if count != 7 {
		t.Errorf("onChange fired %d times, want 7", count)
	}
}

// --- Tweens ---

func TestScrollToAnimatesToTarget(t *testing.T) {
	c := NewCamera(640, 480)
	c.ScrollTo(100, 100, 0.5, ease.Linear)

	for i := 0; i < 20; i++ {
		c.update(0.05)
	}

	wantX := 320 - 100.0
	wantY := 240 - 100.0
	if math.Abs(c.Pan.X-wantX) > 1e-3 || math.Abs(c.Pan.Y-wantY) > 1e-3 {
		t.Errorf("pan = (%v, %v), want (%v, %v)", c.Pan.X, c.Pan.Y, wantX, wantY)
	}
	if c.scrollTween != nil {
		t.Error("scroll tween should be cleared after completion")
	}
}

func TestZoomToAnimatesToTarget(t *testing.T) {
	c := NewCamera(640, 480)
	c.ZoomTo(4, 0.5, ease.Linear)

	for i := 0; i < 20; i++ {
		c.update(0.05)
	}

	if math.Abs(c.Zoom-4) > 1e-3 {
		t.Errorf("zoom = %v, want 4", c.Zoom)
	}
	if c.zoomTween != nil {
		t.Error("zoom tween should be cleared after completion")
	}
}

func TestZoomToKeepsCenterFixed(t *testing.T) {
	c := NewCamera(640, 480)
	// Document point at the viewport center.
	cx := (320 - c.Pan.X) / c.Zoom
	cy := (240 - c.Pan.Y) / c.Zoom

	c.ZoomTo(3, 0.5, ease.Linear)
	for i := 0; i < 20; i++ {
		c.update(0.05)
	}

	sx, sy := toScreen(c, cx, cy)
	if math.Abs(sx-320) > 1e-3 || math.Abs(sy-240) > 1e-3 {
		t.Errorf("center drifted to (%v, %v), want (320, 240)", sx, sy)
	}
}

func TestUpdateWithoutTweensIsNoop(t *testing.T) {
	c := NewCamera(640, 480)
	c.SetPan(5, 6)
	count := 0
	c.onChange = func() { count++ }
	c.update(0.016)
	if count != 0 {
		t.Error("update without active tweens should not notify")
	}
	assertNear(t, "pan.x", c.Pan.X, 5)
}
