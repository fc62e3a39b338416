// Package stroke provides the stroke model and the undo/redo history that owns it.
package stroke

import (
	"fmt"
	"image"
	"image/color"
)

// Tool selects whether a stroke paints or erases.
type Tool int

const (
	// ToolDraw paints the stroke color onto the canvas.
	ToolDraw Tool = iota
	// ToolErase removes previously painted pixels along the stroke.
	ToolErase
)

// String returns the lowercase tool name.
func (t Tool) String() string {
	switch t {
	case ToolDraw:
		return "draw"
	case ToolErase:
		return "erase"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// MarshalText encodes the tool as its name.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tool name.
func (t *Tool) UnmarshalText(text []byte) error {
	switch string(text) {
	case "draw":
		*t = ToolDraw
	case "erase":
		*t = ToolErase
	default:
		return fmt.Errorf("unknown tool %q", string(text))
	}
	return nil
}

// Stroke is one continuous drawn or erased path.
// Color, Size and Tool are fixed when the stroke is created; only Points grows.
type Stroke struct {
	ID     string        `json:"id"`
	Color  color.RGBA    `json:"color"`
	Size   int           `json:"size"`
	Tool   Tool          `json:"tool"`
	Points []image.Point `json:"points"`
}

// clone returns a deep copy so callers never share the point slice.
func (s *Stroke) clone() Stroke {
	c := *s
	c.Points = make([]image.Point, len(s.Points))
	copy(c.Points, s.Points)
	return c
}

// Handle refers to a stroke held by a History.
// The zero Handle refers to nothing.
type Handle struct {
	id string
}

// ID returns the identifier of the referenced stroke.
func (h Handle) ID() string {
	return h.id
}

// IsZero reports whether the handle refers to no stroke.
func (h Handle) IsZero() bool {
	return h.id == ""
}
