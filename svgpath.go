package aspen

import (
	"fmt"
	"math"
	"strconv"
)

// segmentKind identifies one command of a parsed path stream.
type segmentKind uint8

const (
	segMoveTo segmentKind = iota
	segLineTo
	segQuadTo
	segCubicTo
	segClose
)

// pathSegment is one absolute-coordinate command of a path stream.
// Control points are only meaningful for the curve kinds.
type pathSegment struct {
	kind     segmentKind
	cx1, cy1 float64 // first control point (quad and cubic)
	cx2, cy2 float64 // second control point (cubic only)
	x, y     float64 // endpoint
}

// parsePathData parses an SVG path data string into a stream of
// absolute-coordinate segments. Relative commands, shorthand curves, and
// repeated implicit commands are resolved during parsing. Elliptical arcs
// are approximated by a line to the arc endpoint.
func parsePathData(d string) ([]pathSegment, error) {
	p := &pathParser{data: d}
	return p.parse()
}

type pathParser struct {
	data string
	pos  int

	segs []pathSegment

	// current point, subpath start, and previous control point for the
	// S/T shorthand reflections.
	x, y           float64
	startX, startY float64
	lastCX, lastCY float64
	lastCmd        byte
}

func (p *pathParser) parse() ([]pathSegment, error) {
	for {
		p.skipSeparators()
		if p.pos >= len(p.data) {
			return p.segs, nil
		}
		cmd := p.data[p.pos]
		if !isPathCommand(cmd) {
			return nil, fmt.Errorf("aspen: bad path command %q at %d", cmd, p.pos)
		}
		p.pos++
		if err := p.command(cmd); err != nil {
			return nil, err
		}
	}
}

// command consumes one command letter plus all of its (possibly repeated)
// parameter groups.
func (p *pathParser) command(cmd byte) error {
	rel := cmd >= 'a'
	upper := cmd &^ 0x20

	for first := true; ; first = false {
		p.skipSeparators()
		if !first && (p.pos >= len(p.data) || !isNumberStart(p.data[p.pos])) {
			return nil
		}
		if upper == 'Z' {
			p.segs = append(p.segs, pathSegment{kind: segClose})
			p.x, p.y = p.startX, p.startY
			p.lastCmd = 'Z'
			return nil
		}

		switch upper {
		case 'M':
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			if first {
				p.segs = append(p.segs, pathSegment{kind: segMoveTo, x: x, y: y})
				p.startX, p.startY = x, y
			} else {
				// Extra coordinate pairs after a moveto are implicit linetos.
				p.segs = append(p.segs, pathSegment{kind: segLineTo, x: x, y: y})
			}
			p.x, p.y = x, y
		case 'L':
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			p.lineTo(x, y)
		case 'H':
			x, err := p.number()
			if err != nil {
				return err
			}
			if rel {
				x += p.x
			}
			p.lineTo(x, p.y)
		case 'V':
			y, err := p.number()
			if err != nil {
				return err
			}
			if rel {
				y += p.y
			}
			p.lineTo(p.x, y)
		case 'C':
			x1, y1, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x2, y2, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			p.cubicTo(x1, y1, x2, y2, x, y)
		case 'S':
			x2, y2, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x1, y1 := p.reflectedControl('C')
			p.cubicTo(x1, y1, x2, y2, x, y)
		case 'Q':
			x1, y1, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			p.quadTo(x1, y1, x, y)
		case 'T':
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			x1, y1 := p.reflectedControl('Q')
			p.quadTo(x1, y1, x, y)
		case 'A':
			// rx ry x-axis-rotation large-arc sweep x y; the arc itself is
			// approximated by a line to its endpoint.
			for i := 0; i < 5; i++ {
				if _, err := p.number(); err != nil {
					return err
				}
			}
			x, y, err := p.coordPair(rel)
			if err != nil {
				return err
			}
			p.lineTo(x, y)
		default:
			return fmt.Errorf("aspen: bad path command %q", cmd)
		}
		p.lastCmd = upper
	}
}

func (p *pathParser) lineTo(x, y float64) {
	p.segs = append(p.segs, pathSegment{kind: segLineTo, x: x, y: y})
	p.x, p.y = x, y
}

func (p *pathParser) quadTo(x1, y1, x, y float64) {
	p.segs = append(p.segs, pathSegment{kind: segQuadTo, cx1: x1, cy1: y1, x: x, y: y})
	p.lastCX, p.lastCY = x1, y1
	p.x, p.y = x, y
}

func (p *pathParser) cubicTo(x1, y1, x2, y2, x, y float64) {
	p.segs = append(p.segs, pathSegment{kind: segCubicTo, cx1: x1, cy1: y1, cx2: x2, cy2: y2, x: x, y: y})
	p.lastCX, p.lastCY = x2, y2
	p.x, p.y = x, y
}

// reflectedControl returns the previous control point reflected about the
// current point, or the current point when the previous command was not a
// curve of the matching family.
func (p *pathParser) reflectedControl(family byte) (float64, float64) {
	var match bool
	if family == 'C' {
		match = p.lastCmd == 'C' || p.lastCmd == 'S'
	} else {
		match = p.lastCmd == 'Q' || p.lastCmd == 'T'
	}
	if !match {
		return p.x, p.y
	}
	return 2*p.x - p.lastCX, 2*p.y - p.lastCY
}

func (p *pathParser) coordPair(rel bool) (float64, float64, error) {
	x, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	y, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	if rel {
		x += p.x
		y += p.y
	}
	return x, y, nil
}

// number consumes one float, skipping leading separators.
func (p *pathParser) number() (float64, error) {
	p.skipSeparators()
	start := p.pos
	i := p.pos
	if i < len(p.data) && (p.data[i] == '+' || p.data[i] == '-') {
		i++
	}
	for i < len(p.data) && (isDigit(p.data[i]) || p.data[i] == '.') {
		i++
	}
	if i < len(p.data) && (p.data[i] == 'e' || p.data[i] == 'E') {
		i++
		if i < len(p.data) && (p.data[i] == '+' || p.data[i] == '-') {
			i++
		}
		for i < len(p.data) && isDigit(p.data[i]) {
			i++
		}
	}
	if i == start {
		return 0, fmt.Errorf("aspen: expected number at %d in path data", p.pos)
	}
	v, err := strconv.ParseFloat(p.data[start:i], 64)
	if err != nil {
		return 0, fmt.Errorf("aspen: bad number %q in path data: %w", p.data[start:i], err)
	}
	p.pos = i
	return v, nil
}

func (p *pathParser) skipSeparators() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r', ',':
			p.pos++
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool {
	return isDigit(c) || c == '+' || c == '-' || c == '.'
}

func isPathCommand(c byte) bool {
	switch c &^ 0x20 {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}

// --- Flattening ---

// flattenSegments converts a segment stream into polyline subpaths.
// Curves are flattened by uniform evaluation with a step count derived from
// the control polygon length.
func flattenSegments(segs []pathSegment) [][]Vec2 {
	var subpaths [][]Vec2
	var cur []Vec2
	var x, y float64

	flush := func() {
		if len(cur) >= 2 {
			subpaths = append(subpaths, cur)
		}
		cur = nil
	}

	for _, s := range segs {
		switch s.kind {
		case segMoveTo:
			flush()
			cur = append(cur, Vec2{s.x, s.y})
		case segLineTo:
			cur = append(cur, Vec2{s.x, s.y})
		case segQuadTo:
			n := flattenSteps(ctrlPolyLength(x, y, s.cx1, s.cy1, s.x, s.y))
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				cur = append(cur, evalQuad(x, y, s.cx1, s.cy1, s.x, s.y, t))
			}
		case segCubicTo:
			n := flattenSteps(ctrlPolyLength(x, y, s.cx1, s.cy1, s.cx2, s.cy2) +
				math.Hypot(s.x-s.cx2, s.y-s.cy2))
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				cur = append(cur, evalCubic(x, y, s.cx1, s.cy1, s.cx2, s.cy2, s.x, s.y, t))
			}
		case segClose:
			if len(cur) >= 2 {
				// Close back to the subpath start.
				if cur[0] != cur[len(cur)-1] {
					cur = append(cur, cur[0])
				}
				subpaths = append(subpaths, cur)
			}
			cur = nil
		}
		if s.kind != segClose {
			x, y = s.x, s.y
		} else if len(subpaths) > 0 {
			last := subpaths[len(subpaths)-1]
			x, y = last[0].X, last[0].Y
		}
	}
	flush()
	return subpaths
}

// flattenSteps picks a subdivision count for a curve of roughly the given
// control polygon length.
func flattenSteps(length float64) int {
	n := int(length / 3)
	if n < 4 {
		return 4
	}
	if n > 32 {
		return 32
	}
	return n
}

func ctrlPolyLength(x0, y0, x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x0, y1-y0) + math.Hypot(x2-x1, y2-y1)
}

func evalQuad(x0, y0, x1, y1, x2, y2, t float64) Vec2 {
	mt := 1 - t
	a := mt * mt
	b := 2 * mt * t
	c := t * t
	return Vec2{a*x0 + b*x1 + c*x2, a*y0 + b*y1 + c*y2}
}

func evalCubic(x0, y0, x1, y1, x2, y2, x3, y3, t float64) Vec2 {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Vec2{a*x0 + b*x1 + c*x2 + d*x3, a*y0 + b*y1 + c*y2 + d*y3}
}
