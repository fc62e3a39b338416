package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/stroke"
)

// StrokeHandler serves the stroke history and accepts panel actions.
type StrokeHandler struct {
	canvas Canvas
}

// NewStrokeHandler creates a new StrokeHandler for the given canvas.
func NewStrokeHandler(c Canvas) *StrokeHandler {
	return &StrokeHandler{canvas: c}
}

// ServeHTTP routes requests.
//
//	GET  /api/strokes           committed strokes
//	POST /api/strokes/{action}  undo, redo, clear, color or erase
func (h *StrokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/strokes")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.action(w, r, path)
}

type strokeResponse struct {
	ID     string      `json:"id"`
	Color  string      `json:"color"`
	Size   int         `json:"size"`
	Tool   string      `json:"tool"`
	Points []pointJSON `json:"points"`
}

type listStrokesResponse struct {
	Strokes []strokeResponse `json:"strokes"`
	Count   int              `json:"count"`
	Redo    int              `json:"redo"`
}

func toStrokeResponse(s stroke.Stroke) strokeResponse {
	resp := strokeResponse{
		ID:     s.ID,
		Color:  Hex(s.Color),
		Size:   s.Size,
		Tool:   s.Tool.String(),
		Points: make([]pointJSON, len(s.Points)),
	}
	for i, p := range s.Points {
		resp.Points[i] = toPoint(p)
	}
	return resp
}

// list handles GET /api/strokes.
func (h *StrokeHandler) list(w http.ResponseWriter, r *http.Request) {
	hist := h.canvas.History()
	strokes := hist.Strokes()

	resp := listStrokesResponse{
		Strokes: make([]strokeResponse, 0, len(strokes)),
		Count:   len(strokes),
		Redo:    hist.RedoLen(),
	}
	for _, s := range strokes {
		resp.Strokes = append(resp.Strokes, toStrokeResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// action handles POST /api/strokes/{action}.
func (h *StrokeHandler) action(w http.ResponseWriter, r *http.Request, name string) {
	b, ok := interact.ParseButton(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown action: "+name)
		return
	}
	h.canvas.Trigger(b)
	writeJSON(w, http.StatusOK, NewStateResponse(h.canvas))
}
