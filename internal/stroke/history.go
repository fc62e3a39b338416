package stroke

import (
	"image"
	"image/color"
	"sync"

	"github.com/google/uuid"
)

// History owns the ordered list of live strokes and the redo stack.
// Live strokes are kept in drawing order, which is also render order.
// All methods are safe for concurrent use; one writer mutates at a time
// and readers get deep copies.
type History struct {
	mu      sync.RWMutex
	strokes []*Stroke
	redo    []*Stroke
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// StartStroke appends a new empty stroke and discards the redo stack.
func (h *History) StartStroke(c color.RGBA, size int, tool Tool) Handle {
	s := &Stroke{
		ID:    uuid.NewString(),
		Color: c,
		Size:  size,
		Tool:  tool,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.strokes = append(h.strokes, s)
	h.redo = nil

	return Handle{id: s.ID}
}

// AddPoint appends p to the stroke referenced by hd.
// It is a no-op returning false when hd does not resolve to a live stroke,
// for example after the stroke was undone or the history was cleared.
func (h *History) AddPoint(hd Handle, p image.Point) bool {
	if hd.IsZero() {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// The open stroke is almost always the last one.
	for i := len(h.strokes) - 1; i >= 0; i-- {
		if h.strokes[i].ID == hd.id {
			h.strokes[i].Points = append(h.strokes[i].Points, p)
			return true
		}
	}
	return false
}

// Undo moves the most recent stroke onto the redo stack.
// Returns false if there was nothing to undo.
func (h *History) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.strokes)
	if n == 0 {
		return false
	}

	last := h.strokes[n-1]
	h.strokes[n-1] = nil
	h.strokes = h.strokes[:n-1]
	h.redo = append(h.redo, last)
	return true
}

// Redo moves the most recently undone stroke back to the end of the history.
// Returns false if the redo stack is empty.
func (h *History) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.redo)
	if n == 0 {
		return false
	}

	last := h.redo[n-1]
	h.redo[n-1] = nil
	h.redo = h.redo[:n-1]
	h.strokes = append(h.strokes, last)
	return true
}

// Clear drops every stroke, including the redo stack. It cannot be undone.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.strokes = nil
	h.redo = nil
}

// Strokes returns a consistent deep copy of the live strokes in drawing order.
func (h *History) Strokes() []Stroke {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Stroke, len(h.strokes))
	for i, s := range h.strokes {
		out[i] = s.clone()
	}
	return out
}

// Len returns the number of live strokes.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.strokes)
}

// RedoLen returns the number of strokes waiting on the redo stack.
func (h *History) RedoLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.redo)
}
