package aspen

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// LoadState is the view's position in the load cycle.
type LoadState uint8

const (
	StateIdle         LoadState = iota // no load in progress
	StateLoading                       // document bytes being parsed
	StatePartitioning                  // partition in flight on a background goroutine
	StateReady                         // meshes attached, buffers uploaded, drawing
)

// String returns the state name for logs and errors.
func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePartitioning:
		return "partitioning"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// FrameTiming is the per-frame timing record forwarded to the host after
// each draw. The view does not interpret these values.
type FrameTiming struct {
	// Synthesis is the time spent rebuilding and uploading the attribute
	// buffers.
	Synthesis time.Duration
	// Rendering is the time spent in the antialiasing strategy's
	// prepare/render/composite stages.
	Rendering time.Duration
	// Paths is the number of path instances drawn.
	Paths int
}

// ViewConfig configures a View at construction time.
type ViewConfig struct {
	// Strategy is the antialiasing strategy identifier. Empty selects
	// StrategyNone. An unknown identifier is a construction error.
	Strategy string
	// Quality is the strategy-specific quality level.
	Quality int
	// Subpixel enables subpixel-accuracy mode where supported.
	Subpixel bool

	// Width and Height are the viewport size in pixels.
	Width, Height int

	// Background fills the screen before compositing. Zero value is
	// opaque white.
	Background *Color

	// Styles resolves paints for path instances. Nil selects
	// DocumentStyles.
	Styles StyleProvider

	// OnFrame, when set, receives the timing record after every rendered
	// frame.
	OnFrame func(FrameTiming)
	// OnError, when set, receives load and partition failures surfaced
	// from Update. Without it failures are logged to stderr.
	OnError func(error)

	// Debug logs per-frame timings to stderr.
	Debug bool
}

// View is the render orchestrator: it owns the load-partition-upload
// pipeline, the camera, and the per-frame draw, binding the asynchronous
// load cycle to the synchronous frame loop.
//
// The load cycle is Idle -> Loading -> Partitioning -> Ready. A new load
// request restarts the cycle and supersedes any in-flight partition: a
// partition result that does not correspond to the most recent request is
// discarded, so at most one Ready transition occurs per request and it is
// always the newest one. Mesh attachment and buffer upload happen together
// before the Ready transition; no partial state is ever observable.
type View struct {
	source GeometrySource
	dev    Device
	camera *Camera
	styles StyleProvider
	aa     AntialiasingStrategy

	state   LoadState
	pending <-chan PartitionResult

	// instances is the snapshot taken at the Ready transition; immutable
	// until the next load cycle.
	instances []PathInstance

	dirty      bool
	background Color
	onFrame    func(FrameTiming)
	onError    func(error)
	debug      bool

	script          *ScriptRunner
	screenshotQueue []string
}

// NewView constructs a view over the given geometry source and device.
// An unknown antialiasing strategy is fatal here: the error is returned
// and no view is constructed.
func NewView(source GeometrySource, dev Device, cfg ViewConfig) (*View, error) {
	name := cfg.Strategy
	if name == "" {
		name = StrategyNone
	}
	aa, err := NewStrategy(name, cfg.Quality, cfg.Subpixel)
	if err != nil {
		return nil, err
	}

	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("aspen: viewport %dx%d is not positive", cfg.Width, cfg.Height)
	}

	styles := cfg.Styles
	if styles == nil {
		styles = DocumentStyles{}
	}
	background := ColorWhite
	if cfg.Background != nil {
		background = *cfg.Background
	}

	v := &View{
		source:     source,
		dev:        dev,
		styles:     styles,
		aa:         aa,
		background: background,
		onFrame:    cfg.OnFrame,
		onError:    cfg.OnError,
		debug:      cfg.Debug,
	}
	v.camera = NewCamera(float64(w), float64(h))
	v.camera.onChange = func() { v.dirty = true }
	return v, nil
}

// Camera returns the view's camera. Mutations go through the camera's own
// pan/zoom API and mark the next frame dirty.
func (v *View) Camera() *Camera { return v.camera }

// HitTest reports whether the viewport-pixel point lies over the document.
// Always false before the load cycle reaches Ready.
func (v *View) HitTest(x, y float64) bool {
	if v.state != StateReady {
		return false
	}
	dx, dy := v.camera.ScreenToDocument(x, y)
	return v.camera.Bounds.Contains(dx, dy)
}

// State returns the current load state.
func (v *View) State() LoadState { return v.state }

// Strategy returns the active antialiasing strategy's identifier.
func (v *View) Strategy() string { return v.aa.Name() }

// Start begins the default load cycle with the built-in document.
func (v *View) Start() {
	v.LoadDocument([]byte(BuiltinDocument))
}

// LoadDocument starts a new load cycle with the given document bytes,
// superseding any in-flight cycle. Parse failures abort the cycle
// immediately: the state returns to Idle and the error is surfaced.
// Drawing is suspended for the whole cycle: the screen shows only the
// background fill until the new cycle reaches Ready, at which point the
// previously uploaded GPU state is replaced wholesale.
func (v *View) LoadDocument(data []byte) {
	v.state = StateLoading
	v.pending = nil

	if err := v.source.LoadDocument(data); err != nil {
		v.state = StateIdle
		v.surface(&LoadError{Err: err})
		return
	}

	v.state = StatePartitioning
	v.pending = v.source.Partition()
}

// Update advances the load state machine and the camera. Call once per
// tick, before Draw.
func (v *View) Update() {
	v.camera.update(float32(1.0 / float64(ebiten.TPS())))
	if v.script != nil {
		v.script.step(v)
	}

	if v.pending == nil {
		return
	}
	select {
	case res := <-v.pending:
		// Results from superseded loads never arrive here: LoadDocument
		// replaced v.pending, so stale channels are simply never read.
		v.pending = nil
		if res.Err != nil {
			v.state = StateIdle
			v.surface(&PartitionError{Err: res.Err})
			return
		}
		v.finishLoad(res.Meshes)
	default:
	}
}

// finishLoad attaches the partitioned meshes, synthesizes and uploads the
// initial attribute buffers, and fits the camera to the document. All of
// it happens before the Ready transition, so callers never observe a
// partially applied load.
func (v *View) finishLoad(meshes *MeshCollection) {
	v.instances = v.source.PathInstances()

	v.dev.AttachMeshes(meshes)
	v.dev.UploadColors(SynthesizeColors(v.instances, v.styles))
	v.dev.UploadTransforms(SynthesizeTransforms(v.instances))

	v.camera.SetBounds(v.source.Bounds())
	v.camera.ZoomToFit()

	v.state = StateReady
	v.dirty = true
}

// Draw renders the current document into screen. A no-op (beyond the
// background fill) until the load cycle reaches Ready.
//
// Styles are live, so both attribute buffers are rebuilt from scratch
// every frame; the world transform is likewise rederived from the camera.
func (v *View) Draw(screen *ebiten.Image) {
	v.drawFrame(screen)
	v.flushScreenshots(screen)
}

func (v *View) drawFrame(screen *ebiten.Image) {
	screen.Fill(v.background.toRGBA())
	if v.state != StateReady {
		return
	}

	b := screen.Bounds()
	if w, h := float64(b.Dx()), float64(b.Dy()); w != v.camera.Viewport.X || h != v.camera.Viewport.Y {
		v.camera.SetViewport(w, h)
	}

	t0 := time.Now()
	v.dev.UploadColors(SynthesizeColors(v.instances, v.styles))
	v.dev.UploadTransforms(SynthesizeTransforms(v.instances))
	synthesis := time.Since(t0)

	frame := Frame{
		World:  v.camera.WorldTransform(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	// Skip the strategy passes entirely when the camera has panned the
	// document fully off screen. Buffer uploads above still ran, so the
	// device state is current the moment the document scrolls back in.
	t0 = time.Now()
	if v.camera.VisibleRect().Intersects(v.camera.Bounds) {
		v.aa.Prepare(frame)
		v.aa.Render(v.dev)
		v.aa.Composite(screen)
	}
	rendering := time.Since(t0)

	v.dirty = false

	timing := FrameTiming{
		Synthesis: synthesis,
		Rendering: rendering,
		Paths:     len(v.instances),
	}
	if v.debug {
		_, _ = fmt.Fprintf(os.Stderr,
			"[aspen] synth: %v | render: %v | paths: %d | strategy: %s\n",
			timing.Synthesis, timing.Rendering, timing.Paths, v.aa.Name())
	}
	if v.onFrame != nil {
		v.onFrame(timing)
	}
}

// surface delivers a load-cycle failure to the host.
func (v *View) surface(err error) {
	if v.onError != nil {
		v.onError(err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[aspen] %v\n", err)
}
