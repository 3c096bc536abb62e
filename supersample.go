package aspen

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxSupersampleScale caps the per-axis supersampling factor so a high
// quality level cannot request absurd target sizes.
const maxSupersampleScale = 4

// supersampleStrategy renders at a multiple of the target resolution and
// downsamples with linear filtering. Quality level q renders at (q+1)x per
// axis (capped). With subpixel enabled the horizontal factor is tripled,
// giving extra resolution across the axis subpixel text and thin strokes
// care about.
type supersampleStrategy struct {
	scaleX, scaleY int

	pool   renderTargetPool
	target *ebiten.Image
	frame  Frame
}

func newSupersampleStrategy(quality int, subpixel bool) *supersampleStrategy {
	// Compare before adding: quality+1 wraps around at MaxInt.
	scale := maxSupersampleScale
	if quality < maxSupersampleScale-1 {
		scale = quality + 1
	}
	sx := scale
	if subpixel {
		sx *= 3
	}
	return &supersampleStrategy{scaleX: sx, scaleY: scale}
}

func (s *supersampleStrategy) Name() string { return StrategySupersampled }

func (s *supersampleStrategy) Prepare(frame Frame) {
	s.frame = frame
	s.target = s.pool.Acquire(frame.Width*s.scaleX, frame.Height*s.scaleY)
}

func (s *supersampleStrategy) Render(dev Device) {
	if s.target == nil {
		return
	}
	// The world transform maps to NDC; scaling the logical target size is
	// all it takes to rasterize at the higher resolution.
	dev.Draw(s.target, s.frame.World, &DrawOptions{
		Width:  s.frame.Width * s.scaleX,
		Height: s.frame.Height * s.scaleY,
	})
}

func (s *supersampleStrategy) Composite(screen *ebiten.Image) {
	if s.target == nil {
		return
	}
	region := s.target.SubImage(image.Rect(0, 0, s.frame.Width*s.scaleX, s.frame.Height*s.scaleY)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(1/float64(s.scaleX), 1/float64(s.scaleY))
	screen.DrawImage(region, op)
	s.pool.Release(s.target)
	s.target = nil
}
