package aspen

import (
	"errors"
	"testing"
	"time"
)

func waitPartition(t *testing.T, ch <-chan PartitionResult) PartitionResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("partition did not complete")
		return PartitionResult{}
	}
}

// --- Parsing ---

func TestParseSVGCollectsShapesInOrder(t *testing.T) {
	doc, err := parseSVG([]byte(BuiltinDocument))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"rect", "circle", "path", "rect", "rect", "polyline"}
	if len(doc.elements) != len(want) {
		t.Fatalf("elements = %d, want %d", len(doc.elements), len(want))
	}
	for i, el := range doc.elements {
		if el.Name != want[i] {
			t.Errorf("element %d = %q, want %q", i, el.Name, want[i])
		}
	}
}

func TestParseSVGGroupInheritance(t *testing.T) {
	doc, err := parseSVG([]byte(BuiltinDocument))
	if err != nil {
		t.Fatal(err)
	}
	// The grouped rects inherit the group's fill in the fallback tier,
	// never as an attribute of their own.
	if got := doc.elements[3].InheritedAttr("fill"); got != "#a8dadc" {
		t.Errorf("inherited fill = %q, want %q", got, "#a8dadc")
	}
	if got := doc.elements[3].Attr("fill"); got != "" {
		t.Errorf("inherited fill leaked into attrs: %q", got)
	}
	if got := doc.elements[0].Attr("fill"); got != "#1d3557" {
		t.Errorf("own fill = %q, want %q", got, "#1d3557")
	}
}

func TestParseSVGOwnAttrBeatsGroupStyle(t *testing.T) {
	// A shape's own presentation attribute outranks any inherited value,
	// even one declared in an enclosing group's style block.
	svg := `<svg><g style="fill:red;"><rect width="10" height="10" fill="blue"/></g></svg>`
	doc, err := parseSVG([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	el := doc.elements[0]
	if got := (DocumentStyles{}.Paint(PathInstance{Element: el, Kind: PaintFill})); got != "blue" {
		t.Errorf("fill = %q, want %q", got, "blue")
	}
}

func TestParseSVGGroupStyleInherits(t *testing.T) {
	// Without an own paint the group's style applies, group style beating
	// the group's presentation attribute. No trailing semicolon on purpose.
	svg := `<svg><g style="fill:red" fill="green"><rect width="10" height="10"/></g></svg>`
	doc, err := parseSVG([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	el := doc.elements[0]
	if got := (DocumentStyles{}.Paint(PathInstance{Element: el, Kind: PaintFill})); got != "red" {
		t.Errorf("fill = %q, want %q", got, "red")
	}
}

func TestParseSVGGroupScopeEnds(t *testing.T) {
	svg := `<svg>
		<g fill="red"><rect width="10" height="10"/></g>
		<rect width="10" height="10"/>
	</svg>`
	doc, err := parseSVG([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.elements[0].InheritedAttr("fill"); got != "red" {
		t.Errorf("grouped rect fill = %q, want %q", got, "red")
	}
	if got := doc.elements[1].InheritedAttr("fill"); got != "" {
		t.Errorf("ungrouped rect fill = %q, want empty", got)
	}
}

func TestParseSVGNonVoidShapeTags(t *testing.T) {
	// A shape with a separate end tag must not disturb group scoping.
	svg := `<svg><g fill="red"><path d="M0 0 L1 0 L1 1"></path><rect width="5" height="5"/></g></svg>`
	doc, err := parseSVG([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(doc.elements))
	}
	if got := doc.elements[1].InheritedAttr("fill"); got != "red" {
		t.Errorf("rect fill = %q, want %q (group scope lost)", got, "red")
	}
}

func TestParseSVGNoShapes(t *testing.T) {
	if _, err := parseSVG([]byte("<svg></svg>")); err == nil {
		t.Error("expected error for a document without shapes")
	}
}

func TestUnquoteAttr(t *testing.T) {
	tests := []struct{ in, want string }{
		{`"red"`, "red"},
		{`'red'`, "red"},
		{`red`, "red"},
		{`""`, ""},
		{`"`, `"`},
	}
	for _, tt := range tests {
		if got := unquoteAttr(tt.in); got != tt.want {
			t.Errorf("unquoteAttr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Partitioning ---

func TestPartitionWithoutDocument(t *testing.T) {
	s := NewSVGSource()
	res := waitPartition(t, s.Partition())
	if !errors.Is(res.Err, ErrNoDocument) {
		t.Errorf("err = %v, want ErrNoDocument", res.Err)
	}
}

func TestPartitionBuiltinDocument(t *testing.T) {
	s := NewSVGSource()
	if err := s.LoadDocument([]byte(BuiltinDocument)); err != nil {
		t.Fatal(err)
	}
	res := waitPartition(t, s.Partition())
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	m := res.Meshes

	// Fill instances for rect, circle, path, and the two grouped rects;
	// stroke instances for the path and the polyline.
	wantKinds := []PaintKind{
		PaintFill,              // rect
		PaintFill,              // circle
		PaintFill, PaintStroke, // path
		PaintFill,              // grouped rect
		PaintFill,              // grouped rect
		PaintStroke,            // polyline
	}
	insts := s.PathInstances()
	if len(insts) != len(wantKinds) {
		t.Fatalf("instances = %d, want %d", len(insts), len(wantKinds))
	}
	for i, inst := range insts {
		if inst.Kind != wantKinds[i] {
			t.Errorf("instance %d kind = %v, want %v", i, inst.Kind, wantKinds[i])
		}
	}
	if m.PathCount != len(insts) {
		t.Errorf("PathCount = %d, want %d", m.PathCount, len(insts))
	}

	// Every vertex references a valid 1-based instance slot.
	for i, v := range m.Vertices {
		if v.Path == 0 || int(v.Path) > len(insts) {
			t.Fatalf("vertex %d has slot %d, want 1..%d", i, v.Path, len(insts))
		}
	}
	if len(m.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}

	// The outer rect pins the bounds origin.
	assertNear(t, "bounds.x", m.Bounds.X, 32)
	assertNear(t, "bounds.y", m.Bounds.Y, 32)
	if m.Bounds.Width < 448 || m.Bounds.Height < 440 {
		t.Errorf("bounds = %+v, too small", m.Bounds)
	}
}

func TestPartitionStrokeOnlyShape(t *testing.T) {
	svg := `<svg><line x1="0" y1="0" x2="10" y2="0" stroke="black"/></svg>`
	s := NewSVGSource()
	if err := s.LoadDocument([]byte(svg)); err != nil {
		t.Fatal(err)
	}
	res := waitPartition(t, s.Partition())
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	insts := s.PathInstances()
	if len(insts) != 1 || insts[0].Kind != PaintStroke {
		t.Fatalf("instances = %+v, want one stroke", insts)
	}
	// One quad: 4 vertices, 6 indices.
	if len(res.Meshes.Vertices) != 4 || len(res.Meshes.Indices) != 6 {
		t.Errorf("got %d vertices / %d indices, want 4 / 6",
			len(res.Meshes.Vertices), len(res.Meshes.Indices))
	}
}

func TestPartitionNoGeometryFails(t *testing.T) {
	svg := `<svg><path d=""/></svg>`
	s := NewSVGSource()
	if err := s.LoadDocument([]byte(svg)); err != nil {
		t.Fatal(err)
	}
	res := waitPartition(t, s.Partition())
	if res.Err == nil {
		t.Error("expected error for a document with no geometry")
	}
}

func TestPartitionStaleResultNotCommitted(t *testing.T) {
	small := `<svg><rect width="10" height="10" fill="red"/></svg>`
	big := `<svg><rect width="100" height="100" fill="red"/></svg>`

	s := NewSVGSource()
	if err := s.LoadDocument([]byte(small)); err != nil {
		t.Fatal(err)
	}
	chSmall := s.Partition()

	// Replace the document while the first partition may still be running.
	if err := s.LoadDocument([]byte(big)); err != nil {
		t.Fatal(err)
	}
	chBig := s.Partition()

	waitPartition(t, chSmall)
	waitPartition(t, chBig)

	// Only the partition of the current document commits its bounds.
	if got := s.Bounds().Width; got != 100 {
		t.Errorf("bounds width = %v, want 100 (stale commit)", got)
	}
}

// --- Attribute helpers ---

func TestStrokeWidth(t *testing.T) {
	el := elem("line", map[string]string{"stroke-width": "6"})
	assertNear(t, "width", strokeWidth(el), 6)

	el = elem("line", nil)
	assertNear(t, "default", strokeWidth(el), 1)

	el = elem("line", map[string]string{"stroke-width": "-3"})
	assertNear(t, "negative", strokeWidth(el), 1)

	el = elem("line", map[string]string{"style": "stroke-width: 9", "stroke-width": "6"})
	assertNear(t, "style wins", strokeWidth(el), 9)

	el = elem("line", nil)
	el.Inherited = map[string]string{"stroke-width": "4"}
	assertNear(t, "inherited", strokeWidth(el), 4)
}

func TestHasStroke(t *testing.T) {
	if hasStroke(elem("line", nil)) {
		t.Error("no stroke attribute should mean no stroke")
	}
	if !hasStroke(elem("line", map[string]string{"stroke": "black"})) {
		t.Error("stroke attribute should enable stroking")
	}
	if hasStroke(elem("line", map[string]string{"stroke": "none"})) {
		t.Error("stroke none should mean no stroke")
	}
	if !hasStroke(elem("line", map[string]string{"style": "stroke: teal"})) {
		t.Error("style-declared stroke should enable stroking")
	}
}

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints("0,0 10,0 10,10")
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 || pts[2] != (Vec2{10, 10}) {
		t.Errorf("pts = %v", pts)
	}
	if _, err := parsePoints("1 2 3"); err == nil {
		t.Error("odd coordinate count should fail")
	}
}
