package aspen

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// circleSegments is the polygon resolution used for circles and ellipses.
const circleSegments = 32

// defaultStrokeWidth is the SVG initial stroke-width.
const defaultStrokeWidth = 1.0

// inheritedProps are the properties that flow from group elements down to
// shapes. A group's own inline style outranks its presentation attribute,
// so both are resolved into these keys when the group opens.
var inheritedProps = [...]string{"fill", "stroke", "stroke-width"}

// SVGSource is the built-in GeometrySource: it parses an SVG document and
// partitions its shapes into triangle meshes. Fills are fan-triangulated
// per subpath (convex subpaths render exactly; concave ones approximately)
// and strokes are expanded into per-segment quads.
type SVGSource struct {
	mu        sync.Mutex
	doc       *svgDocument
	bounds    Rect
	instances []PathInstance
}

// svgDocument is the parsed element list, in document order.
type svgDocument struct {
	elements []*Element
}

// NewSVGSource creates an empty source; call LoadDocument before Partition.
func NewSVGSource() *SVGSource {
	return &SVGSource{}
}

// LoadDocument implements GeometrySource. It parses the SVG markup and
// replaces the current document. Inheritable group properties are recorded
// on each shape in a tier below the shape's own attributes, so a shape's
// fill attribute still beats an enclosing group's style block.
func (s *SVGSource) LoadDocument(data []byte) error {
	doc, err := parseSVG(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Partition implements GeometrySource. The current document is captured
// before returning; the triangulation runs on a background goroutine and
// delivers exactly one result on the returned buffered channel.
func (s *SVGSource) Partition() <-chan PartitionResult {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	ch := make(chan PartitionResult, 1)
	go func() {
		if doc == nil {
			ch <- PartitionResult{Err: ErrNoDocument}
			return
		}
		meshes, instances, err := partitionDocument(doc)
		if err == nil {
			s.mu.Lock()
			// Only adopt the result if the document was not replaced while
			// partitioning was in flight.
			if s.doc == doc {
				s.bounds = meshes.Bounds
				s.instances = instances
			}
			s.mu.Unlock()
		}
		ch <- PartitionResult{Meshes: meshes, Err: err}
	}()
	return ch
}

// Bounds implements GeometrySource.
func (s *SVGSource) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// PathInstances implements GeometrySource.
func (s *SVGSource) PathInstances() []PathInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances
}

// --- Parsing ---

var shapeNames = map[string]bool{
	"path":     true,
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polygon":  true,
	"polyline": true,
}

// parseSVG lexes the markup and collects shape elements in document order.
func parseSVG(data []byte) (*svgDocument, error) {
	l := xml.NewLexer(parse.NewInputBytes(data))
	doc := &svgDocument{}

	// Stack of resolved inheritable properties from enclosing container
	// elements, plus a parallel record of whether each currently open
	// element pushed onto it (shape elements don't).
	var groupStack []map[string]string
	var openPushed []bool

	var curName string
	var curAttrs map[string]string

	// flushElement finalizes the pending start tag and reports whether it
	// pushed an inheritance frame.
	flushElement := func(selfClosing bool) bool {
		if curName == "" {
			return false
		}
		name := curName
		attrs := curAttrs
		curName = ""
		curAttrs = nil

		if shapeNames[name] {
			// Flatten the group stack, innermost group winning. The values
			// stay in a separate tier so they never outrank the shape's own
			// attributes.
			var inherited map[string]string
			for _, group := range groupStack {
				for prop, v := range group {
					if inherited == nil {
						inherited = make(map[string]string)
					}
					inherited[prop] = v
				}
			}
			doc.elements = append(doc.elements, &Element{
				Name:      name,
				ID:        attrs["id"],
				Attrs:     attrs,
				Inherited: inherited,
			})
			return false
		}

		// Container elements push their inheritable properties, resolving
		// the group's own style block against its attributes up front.
		if selfClosing {
			return false
		}
		group := make(map[string]string)
		style := attrs["style"]
		for _, prop := range inheritedProps {
			if v := styleValue(style, prop); v != "" {
				group[prop] = v
			} else if v, ok := attrs[prop]; ok {
				group[prop] = v
			}
		}
		groupStack = append(groupStack, group)
		return true
	}

	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("aspen: malformed document: %w", err)
			}
			if len(doc.elements) == 0 {
				return nil, fmt.Errorf("aspen: document has no shape elements")
			}
			return doc, nil
		case xml.StartTagToken:
			curName = string(l.Text())
			curAttrs = make(map[string]string)
		case xml.AttributeToken:
			if curAttrs != nil {
				curAttrs[string(l.Text())] = unquoteAttr(string(l.AttrVal()))
			}
		case xml.StartTagCloseToken:
			openPushed = append(openPushed, flushElement(false))
		case xml.StartTagCloseVoidToken:
			flushElement(true)
		case xml.EndTagToken:
			if n := len(openPushed); n > 0 {
				if openPushed[n-1] && len(groupStack) > 0 {
					groupStack = groupStack[:len(groupStack)-1]
				}
				openPushed = openPushed[:n-1]
			}
		}
	}
}

// unquoteAttr strips a surrounding quote pair if the lexer kept it.
func unquoteAttr(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// --- Partitioning ---

// partitionDocument flattens and triangulates every shape element of the
// captured document. Pure with respect to the document; safe to run off
// the main goroutine.
func partitionDocument(doc *svgDocument) (*MeshCollection, []PathInstance, error) {
	m := &MeshCollection{}
	var instances []PathInstance

	for _, el := range doc.elements {
		subpaths, err := elementOutline(el)
		if err != nil {
			return nil, nil, fmt.Errorf("element %s: %w", describeElement(el), err)
		}
		if len(subpaths) == 0 {
			continue
		}

		// Fill instance. Every fillable shape gets one, styled or not:
		// styles are resolved per frame, so an unstyled instance simply
		// synthesizes transparent until a paint appears.
		if el.Name != "line" && el.Name != "polyline" {
			slot, err := appendInstance(m, &instances, el, PaintFill)
			if err != nil {
				return nil, nil, err
			}
			for _, sp := range subpaths {
				if err := triangulateFill(m, sp, slot); err != nil {
					return nil, nil, err
				}
			}
		}

		// Stroke instance, only when the element carries a stroke at
		// partition time (stroke geometry needs a width to exist).
		if hasStroke(el) {
			slot, err := appendInstance(m, &instances, el, PaintStroke)
			if err != nil {
				return nil, nil, err
			}
			width := strokeWidth(el)
			for _, sp := range subpaths {
				triangulateStroke(m, sp, width, slot)
			}
		}
	}

	if len(m.Vertices) == 0 {
		return nil, nil, fmt.Errorf("aspen: document produced no geometry")
	}
	m.PathCount = len(instances)
	m.Bounds = meshBounds(m.Vertices)
	return m, instances, nil
}

// appendInstance registers a new path instance and returns its 1-based
// attribute slot.
func appendInstance(m *MeshCollection, instances *[]PathInstance, el *Element, kind PaintKind) (uint16, error) {
	if len(*instances)+1 > math.MaxUint16 {
		return 0, fmt.Errorf("aspen: too many path instances")
	}
	*instances = append(*instances, PathInstance{Element: el, Kind: kind})
	return uint16(len(*instances)), nil
}

// elementOutline returns the flattened outline subpaths for a shape element.
func elementOutline(el *Element) ([][]Vec2, error) {
	switch el.Name {
	case "path":
		d := el.Attr("d")
		if d == "" {
			return nil, nil
		}
		segs, err := parsePathData(d)
		if err != nil {
			return nil, err
		}
		return flattenSegments(segs), nil
	case "rect":
		x := floatAttr(el, "x", 0)
		y := floatAttr(el, "y", 0)
		w := floatAttr(el, "width", 0)
		h := floatAttr(el, "height", 0)
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return [][]Vec2{{
			{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y},
		}}, nil
	case "circle":
		r := floatAttr(el, "r", 0)
		return ellipseOutline(floatAttr(el, "cx", 0), floatAttr(el, "cy", 0), r, r), nil
	case "ellipse":
		return ellipseOutline(floatAttr(el, "cx", 0), floatAttr(el, "cy", 0),
			floatAttr(el, "rx", 0), floatAttr(el, "ry", 0)), nil
	case "line":
		return [][]Vec2{{
			{floatAttr(el, "x1", 0), floatAttr(el, "y1", 0)},
			{floatAttr(el, "x2", 0), floatAttr(el, "y2", 0)},
		}}, nil
	case "polygon", "polyline":
		pts, err := parsePoints(el.Attr("points"))
		if err != nil {
			return nil, err
		}
		if len(pts) < 2 {
			return nil, nil
		}
		if el.Name == "polygon" && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		return [][]Vec2{pts}, nil
	}
	return nil, nil
}

func ellipseOutline(cx, cy, rx, ry float64) [][]Vec2 {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	pts := make([]Vec2, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts = append(pts, Vec2{cx + rx*math.Cos(a), cy + ry*math.Sin(a)})
	}
	return [][]Vec2{pts}
}

// parsePoints parses a polygon/polyline points attribute.
func parsePoints(s string) ([]Vec2, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("aspen: odd coordinate count in points attribute")
	}
	pts := make([]Vec2, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("aspen: bad point %q: %w", fields[i], err)
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("aspen: bad point %q: %w", fields[i+1], err)
		}
		pts = append(pts, Vec2{x, y})
	}
	return pts, nil
}

// triangulateFill appends a fan triangulation of the subpath.
func triangulateFill(m *MeshCollection, pts []Vec2, slot uint16) error {
	// Drop a closing point that duplicates the start.
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil
	}
	if len(m.Vertices)+len(pts) > math.MaxUint16+1 {
		return fmt.Errorf("aspen: document exceeds vertex capacity")
	}

	base := uint16(len(m.Vertices))
	for _, p := range pts {
		m.Vertices = append(m.Vertices, MeshVertex{X: float32(p.X), Y: float32(p.Y), Path: slot})
	}
	// Vertex 0 of the subpath is the fan hub.
	for i := 1; i < len(pts)-1; i++ {
		m.Indices = append(m.Indices, base, base+uint16(i), base+uint16(i+1))
	}
	return nil
}

// triangulateStroke appends one quad (two triangles) per polyline segment,
// offset perpendicular to the segment by half the stroke width.
func triangulateStroke(m *MeshCollection, pts []Vec2, width float64, slot uint16) {
	half := width / 2
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		px, py := perpendicular(a, b)
		if px == 0 && py == 0 {
			continue
		}
		if len(m.Vertices)+4 > math.MaxUint16+1 {
			return
		}
		base := uint16(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			MeshVertex{X: float32(a.X + px*half), Y: float32(a.Y + py*half), Path: slot},
			MeshVertex{X: float32(a.X - px*half), Y: float32(a.Y - py*half), Path: slot},
			MeshVertex{X: float32(b.X + px*half), Y: float32(b.Y + py*half), Path: slot},
			MeshVertex{X: float32(b.X - px*half), Y: float32(b.Y - py*half), Path: slot},
		)
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+1, base+3)
	}
}

// perpendicular returns the unit normal of segment a->b, or (0,0) for a
// degenerate segment.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return -dy / length, dx / length
}

// meshBounds computes the bounding box of the triangulated vertices.
func meshBounds(verts []MeshVertex) Rect {
	if len(verts) == 0 {
		return Rect{}
	}
	minX := float64(verts[0].X)
	minY := float64(verts[0].Y)
	maxX, maxY := minX, minY
	for _, v := range verts[1:] {
		x, y := float64(v.X), float64(v.Y)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// hasStroke reports whether the element carries any stroke paint at
// partition time.
func hasStroke(el *Element) bool {
	paint := DocumentStyles{}.Paint(PathInstance{Element: el, Kind: PaintStroke})
	return paint != PaintNone && paint != ""
}

// strokeWidth resolves the element's stroke width through the same tiers
// as paints, defaulting to the SVG initial value.
func strokeWidth(el *Element) float64 {
	v := styleValue(el.Attr("style"), "stroke-width")
	if v == "" {
		v = el.Attr("stroke-width")
	}
	if v == "" {
		v = el.InheritedAttr("stroke-width")
	}
	if v != "" {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w > 0 {
			return w
		}
	}
	return defaultStrokeWidth
}

func floatAttr(el *Element, name string, def float64) float64 {
	v := el.Attr(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func describeElement(el *Element) string {
	if el.ID != "" {
		return el.Name + "#" + el.ID
	}
	return el.Name
}
