// Package aspen turns SVG vector documents into GPU draw calls on
// [Ebitengine].
//
// Aspen is an orchestration layer, not a rasterizer: it loads a document,
// partitions it into triangle meshes on a background goroutine, synthesizes
// per-path color and transform attribute buffers every frame, and hands the
// result to a pluggable antialiasing strategy for rendering and compositing.
//
// # Quick start
//
// Implement [ebiten.Game] and drive a [View] from it:
//
//	source := aspen.NewSVGSource()
//	view, err := aspen.NewView(source, aspen.NewEbitenDevice(), aspen.ViewConfig{
//		Strategy: aspen.StrategySupersampled,
//		Quality:  1,
//		Width:    800, Height: 600,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	view.Start()
//
//	type Game struct{ view *aspen.View }
//
//	func (g *Game) Update() error         { g.view.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)  { g.view.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// [View.Start] loads the built-in document; [View.LoadDocument] loads your
// own. Loading is asynchronous: while a load is in flight the view draws
// only the background fill, and the new document appears once it is fully
// partitioned and uploaded.
//
// # Camera
//
// [View.Camera] exposes pan and zoom in screen pixels. [Camera.ZoomToFit]
// frames the whole document; [Camera.ZoomAt] zooms about a screen point so
// the content under the cursor stays put. [Camera.ScrollTo] and
// [Camera.ZoomTo] animate over time (via [gween]).
//
// # Antialiasing
//
// Three strategies are built in: [StrategyNone], [StrategySupersampled],
// and [StrategyCoverageMulticolor]. Select one by identifier in
// [ViewConfig]; unknown identifiers fail at construction.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package aspen
