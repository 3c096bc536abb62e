package aspen

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// coverageJitter is a rotated-grid sample pattern in pixels, chosen so the
// first four entries form the classic 4-rook layout.
// Every prefix used as a sample count (4, 8, 16) averages to (0, 0) so the
// accumulated image does not shift.
var coverageJitter = [16]Vec2{
	{-0.375, 0.125}, {0.125, 0.375}, {0.375, -0.125}, {-0.125, -0.375},
	{-0.4375, -0.1875}, {0.4375, 0.1875}, {0.0625, -0.4375}, {-0.0625, 0.4375},
	{0.3125, 0.0625}, {-0.3125, -0.0625}, {-0.1875, 0.3125}, {0.1875, -0.3125},
	{-0.25, 0.25}, {0.25, -0.25}, {0.25, 0.25}, {-0.25, -0.25},
}

// subpixelShift is the horizontal offset between color channel sample
// centers in subpixel mode, one third of a pixel for an RGB stripe layout.
const subpixelShift = 1.0 / 3.0

// coverageStrategy accumulates per-channel coverage at target resolution:
// the geometry is drawn several times with subpixel jitter offsets,
// additively blended at 1/n weight, so partially covered edge pixels end up
// with fractional color. Quality level q uses 4<<q samples (capped at 16).
// With subpixel enabled each sample is split into three channel-masked
// passes whose horizontal offsets differ by a third of a pixel, trading 3x
// the draw calls for higher apparent horizontal resolution on color
// content.
type coverageStrategy struct {
	samples  int
	subpixel bool

	pool   renderTargetPool
	target *ebiten.Image
	frame  Frame
}

func newCoverageStrategy(quality int, subpixel bool) *coverageStrategy {
	// Clamp before shifting: 4<<q overflows for large q, and the jitter
	// table tops out at 16 samples (q == 2) anyway.
	if quality > 2 {
		quality = 2
	}
	return &coverageStrategy{samples: 4 << quality, subpixel: subpixel}
}

func (s *coverageStrategy) Name() string { return StrategyCoverageMulticolor }

func (s *coverageStrategy) Prepare(frame Frame) {
	s.frame = frame
	s.target = s.pool.Acquire(frame.Width, frame.Height)
}

func (s *coverageStrategy) Render(dev Device) {
	if s.target == nil {
		return
	}
	if s.subpixel {
		s.renderSubpixel(dev)
		return
	}
	weight := 1 / float64(s.samples)
	for i := 0; i < s.samples; i++ {
		dev.Draw(s.target, s.frame.World, &DrawOptions{
			Width:  s.frame.Width,
			Height: s.frame.Height,
			Offset: coverageJitter[i],
			Tint:   Color{R: 1, G: 1, B: 1, A: weight},
			Blend:  BlendAdd,
		})
	}
}

// renderSubpixel accumulates each color channel separately. The channel
// tints are scaled by 3 with the alpha weight divided by 3, so after all
// 3n passes both color and alpha sum back to full coverage.
func (s *coverageStrategy) renderSubpixel(dev Device) {
	weight := 1 / float64(3*s.samples)
	masks := [3]Color{
		{R: 3, A: weight},
		{G: 3, A: weight},
		{B: 3, A: weight},
	}
	for i := 0; i < s.samples; i++ {
		base := coverageJitter[i]
		for ch := 0; ch < 3; ch++ {
			off := base
			off.X += float64(ch-1) * subpixelShift
			dev.Draw(s.target, s.frame.World, &DrawOptions{
				Width:  s.frame.Width,
				Height: s.frame.Height,
				Offset: off,
				Tint:   masks[ch],
				Blend:  BlendAdd,
			})
		}
	}
}

func (s *coverageStrategy) Composite(screen *ebiten.Image) {
	if s.target == nil {
		return
	}
	region := s.target.SubImage(image.Rect(0, 0, s.frame.Width, s.frame.Height)).(*ebiten.Image)
	screen.DrawImage(region, nil)
	s.pool.Release(s.target)
	s.target = nil
}
