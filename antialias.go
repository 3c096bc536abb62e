package aspen

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Strategy identifiers. The set is closed: NewStrategy rejects anything else.
const (
	StrategyNone               = "none"
	StrategySupersampled       = "supersampled"
	StrategyCoverageMulticolor = "coverage-multicolor"
)

// Frame carries the per-frame inputs an antialiasing strategy needs:
// the camera-derived world transform and the logical viewport size.
type Frame struct {
	World  [6]float64
	Width  int
	Height int
}

// AntialiasingStrategy is a pluggable rendering stage. Each frame the view
// calls Prepare (acquire targets, derive the adjusted transform), Render
// (draw the attached geometry into the strategy's target), and Composite
// (resolve the target into the screen and release resources), in that
// order. A strategy is selected once at view construction and never swapped
// at runtime.
type AntialiasingStrategy interface {
	// Name returns the strategy identifier.
	Name() string
	// Prepare readies render targets for a frame.
	Prepare(frame Frame)
	// Render draws the device's attached geometry into the strategy target.
	Render(dev Device)
	// Composite resolves the strategy target into the screen.
	Composite(screen *ebiten.Image)
}

// strategyFactories maps each identifier to its constructor. The registry
// is a pure mapping: construction is the only place selection occurs.
var strategyFactories = map[string]func(quality int, subpixel bool) AntialiasingStrategy{
	StrategyNone: func(quality int, subpixel bool) AntialiasingStrategy {
		return &noneStrategy{}
	},
	StrategySupersampled: func(quality int, subpixel bool) AntialiasingStrategy {
		return newSupersampleStrategy(quality, subpixel)
	},
	StrategyCoverageMulticolor: func(quality int, subpixel bool) AntialiasingStrategy {
		return newCoverageStrategy(quality, subpixel)
	},
}

// NewStrategy constructs the antialiasing strategy for the given
// identifier. Unknown identifiers fail with ErrUnknownStrategy; there is no
// default substitution. quality is a non-negative, strategy-specific level
// (negative values are treated as 0). subpixel enables subpixel-accuracy
// mode where the strategy supports it.
func NewStrategy(name string, quality int, subpixel bool) (AntialiasingStrategy, error) {
	factory, ok := strategyFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	if quality < 0 {
		quality = 0
	}
	return factory(quality, subpixel), nil
}

// StrategyNames returns the identifiers of the closed strategy set.
func StrategyNames() []string {
	return []string{StrategyNone, StrategySupersampled, StrategyCoverageMulticolor}
}

// noneStrategy is the pass-through strategy: geometry is rendered at target
// resolution with no antialiasing. It ignores both the quality level and
// the subpixel flag.
type noneStrategy struct {
	pool   renderTargetPool
	target *ebiten.Image
	frame  Frame
}

func (s *noneStrategy) Name() string { return StrategyNone }

func (s *noneStrategy) Prepare(frame Frame) {
	s.frame = frame
	s.target = s.pool.Acquire(frame.Width, frame.Height)
}

func (s *noneStrategy) Render(dev Device) {
	if s.target == nil {
		return
	}
	dev.Draw(s.target, s.frame.World, &DrawOptions{
		Width:  s.frame.Width,
		Height: s.frame.Height,
	})
}

func (s *noneStrategy) Composite(screen *ebiten.Image) {
	if s.target == nil {
		return
	}
	region := s.target.SubImage(image.Rect(0, 0, s.frame.Width, s.frame.Height)).(*ebiten.Image)
	screen.DrawImage(region, nil)
	s.pool.Release(s.target)
	s.target = nil
}
