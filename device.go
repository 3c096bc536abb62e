package aspen

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Device is the GPU resource layer consumed by the view and the
// antialiasing strategies. Uploads and attachment are synchronous and
// infallible at this layer. Buffers are fully replaced on every upload;
// there is no partial patching.
type Device interface {
	// UploadColors replaces the per-path color attribute buffer.
	UploadColors(buf ColorBuffer)
	// UploadTransforms replaces the per-path transform attribute buffer.
	UploadTransforms(buf TransformBuffer)
	// AttachMeshes replaces the attached mesh collection as a single unit.
	AttachMeshes(m *MeshCollection)
	// Draw renders the attached meshes into dst using the uploaded
	// attribute buffers and the given world transform.
	Draw(dst *ebiten.Image, world [6]float64, opts *DrawOptions)
}

// DrawOptions controls a single Draw submission.
type DrawOptions struct {
	// Width and Height are the logical target size in pixels that
	// normalized device coordinates map onto. Zero means the full bounds
	// of dst. Strategies rendering into pooled (power-of-two) targets set
	// these to the logical viewport size.
	Width, Height int
	// Offset is a post-transform offset in target pixels (subpixel jitter).
	Offset Vec2
	// Tint is a per-channel weight multiplied into path colors. The zero
	// value means white (no modification).
	Tint Color
	// Blend selects the compositing operation.
	Blend BlendMode
}

// EbitenDevice renders mesh collections with ebiten. Untextured triangles
// are drawn against a shared 1x1 white pixel; per-path color and transform
// come from the uploaded attribute buffers, indexed by each vertex's path
// slot.
type EbitenDevice struct {
	meshes     *MeshCollection
	colors     ColorBuffer
	transforms TransformBuffer

	// scratch vertex buffer, high-water-mark sized.
	verts []ebiten.Vertex
}

// NewEbitenDevice creates an empty device. Nothing is drawn until meshes
// are attached and buffers uploaded.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// UploadColors implements Device.
func (d *EbitenDevice) UploadColors(buf ColorBuffer) {
	d.colors = buf
}

// UploadTransforms implements Device.
func (d *EbitenDevice) UploadTransforms(buf TransformBuffer) {
	d.transforms = buf
}

// AttachMeshes implements Device. Attaching nil detaches the current
// collection and makes Draw a no-op.
func (d *EbitenDevice) AttachMeshes(m *MeshCollection) {
	d.meshes = m
}

// Meshes returns the currently attached mesh collection, or nil.
func (d *EbitenDevice) Meshes() *MeshCollection {
	return d.meshes
}

// whitePixel is the shared untextured-triangle source image, created lazily
// (the device is single-threaded, no sync needed).
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixel
}

// Draw implements Device. Each vertex position goes through its path's
// uploaded transform, then the world transform into normalized device
// coordinates, then the viewport mapping onto the logical target size.
func (d *EbitenDevice) Draw(dst *ebiten.Image, world [6]float64, opts *DrawOptions) {
	m := d.meshes
	if m == nil || len(m.Indices) == 0 || len(d.colors) == 0 {
		return
	}

	var o DrawOptions
	if opts != nil {
		o = *opts
	}
	w, h := o.Width, o.Height
	if w == 0 || h == 0 {
		b := dst.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	tint := o.Tint
	if tint == (Color{}) {
		tint = ColorWhite
	}

	if cap(d.verts) < len(m.Vertices) {
		d.verts = make([]ebiten.Vertex, len(m.Vertices))
	}
	d.verts = d.verts[:len(m.Vertices)]

	halfW := float64(w) / 2
	halfH := float64(h) / 2
	tr, tg, tb, ta := float32(tint.R), float32(tint.G), float32(tint.B), float32(tint.A)

	for i := range m.Vertices {
		src := &m.Vertices[i]
		slot := 4 * int(src.Path)

		// Per-path transform: scale then translate.
		x := float64(src.X)
		y := float64(src.Y)
		if slot+3 < len(d.transforms) {
			x = x*float64(d.transforms[slot]) + float64(d.transforms[slot+2])
			y = y*float64(d.transforms[slot+1]) + float64(d.transforms[slot+3])
		}

		// World transform into NDC, then NDC onto the logical target.
		nx, ny := transformPoint(world, x, y)
		px := (nx+1)*halfW + o.Offset.X
		py := (ny+1)*halfH + o.Offset.Y

		var cr, cg, cb, ca float32
		if slot+3 < len(d.colors) {
			a := float32(d.colors[slot+3]) / 255
			// Premultiply at submission time.
			cr = float32(d.colors[slot]) / 255 * a
			cg = float32(d.colors[slot+1]) / 255 * a
			cb = float32(d.colors[slot+2]) / 255 * a
			ca = a
		}

		d.verts[i] = ebiten.Vertex{
			DstX:   float32(px),
			DstY:   float32(py),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: cr * tr * ta,
			ColorG: cg * tg * ta,
			ColorB: cb * tb * ta,
			ColorA: ca * ta,
		}
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.Blend = o.Blend.EbitenBlend()
	dst.DrawTriangles(d.verts, m.Indices, ensureWhitePixel(), op)
}
