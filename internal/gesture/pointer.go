// Package gesture provides the pointer primitives that turn raw fingertip
// detections into drawing intent: smoothing, the finger-up gate and hit testing.
package gesture

import (
	"image"
	"math"
)

// DefaultAlpha is the EMA smoothing factor applied to fingertip positions.
const DefaultAlpha = 0.35

// EMA blends cur into prev with factor alpha, rounding each axis to the
// nearest pixel. When hasPrev is false cur is returned unchanged.
func EMA(prev image.Point, hasPrev bool, cur image.Point, alpha float64) image.Point {
	if !hasPrev {
		return cur
	}
	return image.Point{
		X: int(math.Round(alpha*float64(cur.X) + (1-alpha)*float64(prev.X))),
		Y: int(math.Round(alpha*float64(cur.Y) + (1-alpha)*float64(prev.Y))),
	}
}

// FingerIsUp reports whether the fingertip is above its joint.
// Screen y grows downward, so an extended finger has the smaller y.
func FingerIsUp(tipY, jointY int) bool {
	return tipY < jointY
}

// PointInRect reports whether p lies in r with both edges inclusive.
// Unlike image.Point.In, r.Max is part of the rectangle.
func PointInRect(p image.Point, r image.Rectangle) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Smoother keeps the running EMA of a pointer across frames.
type Smoother struct {
	alpha float64
	last  image.Point
	valid bool
}

// NewSmoother creates a Smoother with the given factor.
// Values outside (0, 1] fall back to DefaultAlpha.
func NewSmoother(alpha float64) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Smoother{alpha: alpha}
}

// Update feeds a raw position and returns the smoothed one.
func (s *Smoother) Update(raw image.Point) image.Point {
	s.last = EMA(s.last, s.valid, raw, s.alpha)
	s.valid = true
	return s.last
}

// Reset forgets the running average; the next Update starts fresh.
func (s *Smoother) Reset() {
	s.last = image.Point{}
	s.valid = false
}

// Position returns the last smoothed position and whether one exists.
func (s *Smoother) Position() (image.Point, bool) {
	return s.last, s.valid
}
