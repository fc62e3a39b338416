package api

import (
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/stroke"
)

// newTestCanvas returns an engine with two committed strokes.
func newTestCanvas(t *testing.T) *interact.Engine {
	t.Helper()

	h := stroke.NewHistory()
	red := color.RGBA{R: 255, A: 255}

	hd := h.StartStroke(red, 6, stroke.ToolDraw)
	h.AddPoint(hd, image.Pt(300, 200))
	h.AddPoint(hd, image.Pt(310, 205))

	hd = h.StartStroke(red, 12, stroke.ToolErase)
	h.AddPoint(hd, image.Pt(305, 202))

	return interact.NewEngine(interact.DefaultConfig(), h)
}

func TestStrokeHandler_List(t *testing.T) {
	handler := NewStrokeHandler(newTestCanvas(t))

	req := httptest.NewRequest(http.MethodGet, "/api/strokes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp listStrokesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Count != 2 || len(resp.Strokes) != 2 {
		t.Fatalf("expected 2 strokes, got count=%d len=%d", resp.Count, len(resp.Strokes))
	}
	first := resp.Strokes[0]
	if first.Color != "#ff0000" || first.Size != 6 || first.Tool != "draw" {
		t.Errorf("unexpected first stroke: %+v", first)
	}
	if len(first.Points) != 2 || first.Points[1] != (pointJSON{X: 310, Y: 205}) {
		t.Errorf("unexpected points: %+v", first.Points)
	}
	if resp.Strokes[1].Tool != "erase" {
		t.Errorf("second stroke tool = %s, want erase", resp.Strokes[1].Tool)
	}
}

func TestStrokeHandler_Actions(t *testing.T) {
	canvas := newTestCanvas(t)
	handler := NewStrokeHandler(canvas)

	post := func(action string) (*httptest.ResponseRecorder, StateResponse) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/strokes/"+action, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var st StateResponse
		if rec.Code == http.StatusOK {
			if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
		}
		return rec, st
	}

	rec, st := post("undo")
	if rec.Code != http.StatusOK {
		t.Fatalf("undo status = %d", rec.Code)
	}
	if st.Strokes != 1 || st.Redo != 1 {
		t.Errorf("after undo strokes=%d redo=%d, want 1 and 1", st.Strokes, st.Redo)
	}

	_, st = post("redo")
	if st.Strokes != 2 || st.Redo != 0 {
		t.Errorf("after redo strokes=%d redo=%d, want 2 and 0", st.Strokes, st.Redo)
	}

	_, st = post("erase")
	if st.Tool != "erase" {
		t.Errorf("tool = %s, want erase", st.Tool)
	}

	before := st.Color
	_, st = post("color")
	if st.Tool != "draw" || st.Color == before {
		t.Errorf("color action: tool=%s color=%s (was %s)", st.Tool, st.Color, before)
	}

	_, st = post("clear")
	if st.Strokes != 0 || canvas.History().Len() != 0 {
		t.Errorf("clear left %d strokes", st.Strokes)
	}

	rec, _ = post("save")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown action status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStrokeHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStrokeHandler(newTestCanvas(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/strokes"},
		{http.MethodDelete, "/api/strokes"},
		{http.MethodGet, "/api/strokes/undo"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
			}
		})
	}
}

func TestNewStateResponse(t *testing.T) {
	st := NewStateResponse(newTestCanvas(t))

	if st.Cursor != nil {
		t.Error("cursor should be omitted before any frame")
	}
	if st.Tool != "draw" || st.Color != "#ffffff" || st.ColorName != "white" {
		t.Errorf("unexpected initial state: %+v", st)
	}
	if st.Size != 10 || st.MinSize != 4 || st.MaxSize != 24 {
		t.Errorf("unexpected sizes: %+v", st)
	}
	if len(st.Hover) != 0 {
		t.Errorf("hover = %v, want empty", st.Hover)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want string
	}{
		{color.RGBA{A: 255}, "#000000"},
		{color.RGBA{R: 255, G: 128, B: 1, A: 255}, "#ff8001"},
	}
	for _, tt := range tests {
		if got := Hex(tt.c); got != tt.want {
			t.Errorf("Hex(%v) = %s, want %s", tt.c, got, tt.want)
		}
	}
}
