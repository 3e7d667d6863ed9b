package viewport

import "math"

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// maxPan is half the excess of the scaled content over the viewport along
// one axis, or zero when the content fits.
func maxPan(content, viewport, scale float64) float64 {
	excess := content*scale - viewport
	if excess <= 0 {
		return 0
	}
	return excess / 2
}

// sanitize maps negative or non-finite dimensions to zero
func sanitize(s Size) Size {
	if !finite(s.W) || s.W < 0 {
		s.W = 0
	}
	if !finite(s.H) || s.H < 0 {
		s.H = 0
	}
	return s
}

// pivot returns the pan that keeps the screen point at offset d from the
// viewport centre stationary while the scale changes by factor k.
//
// A content point c (relative to the content centre) is drawn at
// centre + pan + scale*c, so solving for a fixed screen position gives
// pan' = d*(1-k) + pan*k.
func pivot(pan, d, k float64) float64 {
	return d*(1-k) + pan*k
}

func exceeds(v, threshold float64) bool {
	return math.Abs(v) > threshold
}
