package aspen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/image/colornames"
)

// PaintNone is the explicit "no paint" sentinel value. A path instance whose
// resolved paint is PaintNone synthesizes fully transparent black.
const PaintNone = "none"

// StyleProvider resolves the effective paint value for a path instance.
// It is queried by value on every synthesis pass: styles are live and never
// cached, so mutating the underlying document between frames changes the
// result on the next frame.
type StyleProvider interface {
	// Paint returns the CSS paint value for the instance's paint kind
	// (e.g. "red", "#ff0000", "rgba(255,0,0,0.5)", or PaintNone).
	Paint(inst PathInstance) string
}

// DocumentStyles resolves paints from element attributes: an inline style
// declaration block wins over the presentation attribute of the same name,
// which wins over values inherited from enclosing containers, which win
// over the SVG initial value (fill "black", stroke "none").
type DocumentStyles struct{}

// Paint implements StyleProvider.
func (DocumentStyles) Paint(inst PathInstance) string {
	prop := inst.Kind.String()

	if v := styleValue(inst.Element.Attr("style"), prop); v != "" {
		return v
	}
	if v := inst.Element.Attr(prop); v != "" {
		return strings.TrimSpace(v)
	}
	if v := inst.Element.InheritedAttr(prop); v != "" {
		return v
	}

	if inst.Kind == PaintStroke {
		return PaintNone
	}
	return "black"
}

// styleValue returns the named declaration's value in an inline style
// block, or "". The block is re-parsed on every query so attribute
// mutations take effect immediately. douceur drops the value of a final
// declaration without a trailing semicolon, so one is appended first.
func styleValue(style, prop string) string {
	if style == "" {
		return ""
	}
	if !strings.HasSuffix(strings.TrimSpace(style), ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return ""
	}
	for _, d := range decls {
		if strings.EqualFold(d.Property, prop) {
			return strings.TrimSpace(d.Value)
		}
	}
	return ""
}

// ParseColor parses a CSS color value into non-premultiplied RGBA bytes.
// Supported forms: #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b), rgba(r,g,b,a)
// with a as a 0-1 fraction, "transparent", and the SVG named colors.
func ParseColor(s string) (r, g, b, a uint8, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return 0, 0, 0, 0, fmt.Errorf("aspen: empty color value")
	case s == "transparent":
		return 0, 0, 0, 0, nil
	case s[0] == '#':
		return parseHexColor(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBColor(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c.R, c.G, c.B, c.A, nil
	}
	return 0, 0, 0, 0, fmt.Errorf("aspen: unsupported color %q", s)
}

// parseHexColor parses #rgb, #rrggbb, and #rrggbbaa.
func parseHexColor(s string) (r, g, b, a uint8, err error) {
	hex := s[1:]
	switch len(hex) {
	case 3:
		v, perr := strconv.ParseUint(hex, 16, 16)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("aspen: bad hex color %q", s)
		}
		// Expand each nibble: 0xf -> 0xff.
		r = uint8((v >> 8 & 0xf) * 0x11)
		g = uint8((v >> 4 & 0xf) * 0x11)
		b = uint8((v & 0xf) * 0x11)
		return r, g, b, 255, nil
	case 6, 8:
		v, perr := strconv.ParseUint(hex, 16, 40)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("aspen: bad hex color %q", s)
		}
		if len(hex) == 6 {
			v = v<<8 | 0xff
		}
		return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v), nil
	}
	return 0, 0, 0, 0, fmt.Errorf("aspen: bad hex color %q", s)
}

// parseRGBColor parses rgb(r,g,b) and rgba(r,g,b,a). Channel values are
// integers 0-255 or percentages; the alpha component is a 0-1 fraction per
// CSS, scaled to 0-255.
func parseRGBColor(s string) (r, g, b, a uint8, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, 0, 0, 0, fmt.Errorf("aspen: bad rgb color %q", s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("aspen: bad rgb color %q", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, perr := parseColorChannel(parts[i])
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("aspen: bad rgb color %q: %w", s, perr)
		}
		ch[i] = v
	}

	a = 255
	if len(parts) == 4 {
		f, perr := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("aspen: bad alpha in %q: %w", s, perr)
		}
		a = uint8(clamp01(f)*255 + 0.5)
	}
	return ch[0], ch[1], ch[2], a, nil
}

// parseColorChannel parses a single rgb() channel: an integer 0-255 or a
// percentage.
func parseColorChannel(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, err
		}
		return uint8(clamp01(f/100)*255 + 0.5), nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if v > 255 {
		v = 255
	}
	return uint8(v), nil
}
