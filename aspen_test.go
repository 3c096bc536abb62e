package aspen

import (
	"errors"
	"testing"
)

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	if !r.Contains(10, 10) || !r.Contains(30, 30) || !r.Contains(20, 20) {
		t.Error("points on or inside the rect should be contained")
	}
	if r.Contains(9, 20) || r.Contains(20, 31) {
		t.Error("points outside the rect should not be contained")
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !a.Intersects(Rect{X: 5, Y: 5, Width: 10, Height: 10}) {
		t.Error("overlapping rects should intersect")
	}
	if !a.Intersects(Rect{X: 10, Y: 0, Width: 5, Height: 5}) {
		t.Error("edge-adjacent rects should intersect")
	}
	if a.Intersects(Rect{X: 20, Y: 20, Width: 5, Height: 5}) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{}).Empty() {
		t.Error("zero rect should be empty")
	}
	if (Rect{Width: 1, Height: 1}).Empty() {
		t.Error("1x1 rect should not be empty")
	}
	if !(Rect{Width: -1, Height: 5}).Empty() {
		t.Error("negative width should be empty")
	}
}

// --- PaintKind ---

func TestPaintKindString(t *testing.T) {
	if PaintFill.String() != "fill" || PaintStroke.String() != "stroke" {
		t.Errorf("got %q / %q", PaintFill.String(), PaintStroke.String())
	}
}

// --- Errors ---

func TestLoadErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &LoadError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("LoadError should unwrap to its cause")
	}
}

func TestPartitionErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &PartitionError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("PartitionError should unwrap to its cause")
	}
}

// --- Element ---

func TestElementAttrNilSafe(t *testing.T) {
	var el *Element
	if el.Attr("fill") != "" {
		t.Error("nil element should report empty attributes")
	}
	el = &Element{}
	if el.Attr("fill") != "" {
		t.Error("element without attrs should report empty attributes")
	}
	el.SetAttr("fill", "red")
	if el.Attr("fill") != "red" {
		t.Error("SetAttr should create the attribute map")
	}
}
