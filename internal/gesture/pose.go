package gesture

import (
	"math"

	"github.com/arvindh/mudra/internal/detector"
)

// Pinch is the per-hand pinch state derived from one frame's landmarks.
type Pinch struct {
	Distance float64
	Midpoint detector.Point3D
	Pinched  bool
}

// pinchOf computes the pinch state for one hand.
func pinchOf(h *detector.HandLandmarks, threshold float64) Pinch {
	thumb := h.Points[detector.ThumbTip]
	index := h.Points[detector.IndexTip]
	dist := detector.Distance2D(thumb, index)
	return Pinch{
		Distance: dist,
		Midpoint: detector.Midpoint2D(thumb, index),
		Pinched:  dist < threshold,
	}
}

// isFrameCorner reports whether one hand forms the L-shape corner pose:
// thumb and index spread apart with roughly a right angle between them.
func isFrameCorner(h *detector.HandLandmarks, cfg Config) bool {
	thumbTip := h.Points[detector.ThumbTip]
	indexTip := h.Points[detector.IndexTip]

	if detector.Distance2D(thumbTip, indexTip) < cfg.MinSpread {
		return false
	}

	tvx := thumbTip.X - h.Points[detector.ThumbMCP].X
	tvy := thumbTip.Y - h.Points[detector.ThumbMCP].Y
	ivx := indexTip.X - h.Points[detector.IndexMCP].X
	ivy := indexTip.Y - h.Points[detector.IndexMCP].Y

	angle := angleBetween(tvx, tvy, ivx, ivy)
	return math.Abs(angle-90) <= cfg.FrameAngleTolerance
}

// angleBetween returns the angle between two vectors in degrees (0-180).
// Degenerate (zero-length) vectors yield 180 so they never qualify.
func angleBetween(ax, ay, bx, by float64) float64 {
	na := math.Hypot(ax, ay)
	nb := math.Hypot(bx, by)
	if na < 1e-10 || nb < 1e-10 {
		return 180
	}
	cos := (ax*bx + ay*by) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// angleDeg returns the angle of the vector from a to b in degrees.
func angleDeg(a, b detector.Point3D) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// normalizeAngle wraps an angle delta into the (-180, 180] range so a jump
// across the atan2 seam (179 to -179 degrees) reads as a small rotation.
func normalizeAngle(delta float64) float64 {
	for delta > 180 {
		delta -= 360
	}
	for delta <= -180 {
		delta += 360
	}
	return delta
}
