// Package detector finds hand landmarks in camera frames.
package detector

import "image"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark in normalized image coordinates: X and Y in
// [0, 1] from the top-left corner, Z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel converts landmark index to frame pixels by truncating x*w and y*h.
func (h *HandLandmarks) Pixel(index, width, height int) image.Point {
	p := h.Points[index]
	return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
}

// Fingertip returns the index fingertip in frame pixels.
func (h *HandLandmarks) Fingertip(width, height int) image.Point {
	return h.Pixel(IndexTip, width, height)
}

// FingerJoint returns the index finger middle joint in frame pixels.
func (h *HandLandmarks) FingerJoint(width, height int) image.Point {
	return h.Pixel(IndexPIP, width, height)
}

// Primary returns the first detected hand, if any.
func Primary(hands []HandLandmarks) (HandLandmarks, bool) {
	if len(hands) == 0 {
		return HandLandmarks{}, false
	}
	return hands[0], true
}
