// Package api provides HTTP API handlers for the scribbly canvas and settings.
package api

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"net/http"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/stroke"
)

// Canvas is the drawing surface exposed over HTTP.
type Canvas interface {
	History() *stroke.History
	State() interact.State
	Trigger(b interact.Button)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func toPoint(p image.Point) pointJSON {
	return pointJSON{X: p.X, Y: p.Y}
}

// StateResponse is the JSON form of the live interaction state.
type StateResponse struct {
	Cursor    *pointJSON         `json:"cursor,omitempty"`
	Tool      string             `json:"tool"`
	Color     string             `json:"color"`
	ColorName string             `json:"color_name"`
	Size      int                `json:"size"`
	MinSize   int                `json:"min_size"`
	MaxSize   int                `json:"max_size"`
	Drawing   bool               `json:"drawing"`
	Hover     map[string]float64 `json:"hover"`
	Strokes   int                `json:"strokes"`
	Redo      int                `json:"redo"`
}

// NewStateResponse snapshots the canvas state.
func NewStateResponse(c Canvas) StateResponse {
	st := c.State()
	h := c.History()

	resp := StateResponse{
		Tool:      st.Tool.String(),
		Color:     Hex(st.Color),
		ColorName: st.ColorName,
		Size:      st.Size,
		MinSize:   st.MinSize,
		MaxSize:   st.MaxSize,
		Drawing:   st.Drawing,
		Hover:     make(map[string]float64, len(st.Hover)),
		Strokes:   h.Len(),
		Redo:      h.RedoLen(),
	}
	if st.HasCursor {
		p := toPoint(st.Cursor)
		resp.Cursor = &p
	}
	for i, v := range st.Hover {
		if v > 0 {
			resp.Hover[interact.Button(i).String()] = v
		}
	}
	return resp
}
