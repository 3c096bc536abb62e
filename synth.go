package aspen

// ColorBuffer is a flat per-path color attribute buffer: 4 interleaved
// channel bytes (R, G, B, A) per slot. Slot 0 is the background sentinel and
// is always zero; slot i+1 belongs to path instance i.
// Invariant: len == 4*(instanceCount+1).
type ColorBuffer []uint8

// TransformBuffer is a flat per-path transform attribute buffer: 4 numeric
// components (scaleX, scaleY, translateX, translateY) per slot, with the
// same slot layout as ColorBuffer.
// Invariant: len == 4*(instanceCount+1).
type TransformBuffer []float32

// SynthesizeColors builds a fresh color buffer from the instance list,
// resolving each instance's effective paint through the style provider.
// A resolved paint of PaintNone, and any paint that fails to parse, yields
// fully transparent black for that slot; a parse failure never aborts the
// pass. The sentinel slot 0 is left zero.
func SynthesizeColors(instances []PathInstance, styles StyleProvider) ColorBuffer {
	buf := make(ColorBuffer, 4*(len(instances)+1))
	for i, inst := range instances {
		paint := styles.Paint(inst)
		if paint == PaintNone {
			continue
		}
		r, g, b, a, err := ParseColor(paint)
		if err != nil {
			// Unparseable paint renders as transparent; the rest of the
			// frame proceeds.
			continue
		}
		off := 4 * (i + 1)
		buf[off+0] = r
		buf[off+1] = g
		buf[off+2] = b
		buf[off+3] = a
	}
	return buf
}

// SynthesizeTransforms builds a fresh transform buffer from the instance
// list. Per-path transform extraction from the source document is not
// implemented upstream, so every path gets the identity placeholder
// (scale 1,1 and translation 0,0). The sentinel slot 0 stays zero.
func SynthesizeTransforms(instances []PathInstance) TransformBuffer {
	buf := make(TransformBuffer, 4*(len(instances)+1))
	for i := range instances {
		off := 4 * (i + 1)
		buf[off+0] = 1
		buf[off+1] = 1
		buf[off+2] = 0
		buf[off+3] = 0
	}
	return buf
}
