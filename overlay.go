package aspen

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// TimingOverlay draws frame timings and the current FPS into a corner of
// the screen. Wire its Record method to ViewConfig.OnFrame and call Draw
// after View.Draw. The displayed numbers refresh every ~0.5 seconds.
type TimingOverlay struct {
	img    *ebiten.Image
	latest FrameTiming
	since  float64
	text   string
}

// NewTimingOverlay creates an overlay widget.
func NewTimingOverlay() *TimingOverlay {
	return &TimingOverlay{
		// 180x48 fits four short lines of ebitenutil debug text.
		img: ebiten.NewImage(180, 48),
	}
}

// Record stores the most recent frame timing.
func (o *TimingOverlay) Record(t FrameTiming) {
	o.latest = t
}

// Update advances the refresh timer. Call once per tick.
func (o *TimingOverlay) Update() {
	o.since += 1.0 / float64(ebiten.TPS())
	if o.since < 0.5 {
		return
	}
	o.since = 0
	o.text = fmt.Sprintf("FPS: %.1f\nsynth: %v\nrender: %v\npaths: %d",
		ebiten.ActualFPS(), o.latest.Synthesis, o.latest.Rendering, o.latest.Paths)
}

// Draw composites the overlay into the top-left corner of screen.
func (o *TimingOverlay) Draw(screen *ebiten.Image) {
	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
	screen.DrawImage(o.img, nil)
}
