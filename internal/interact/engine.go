package interact

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/ayusman/scribbly/internal/gesture"
	"github.com/ayusman/scribbly/internal/stroke"
)

// Input is one frame's worth of detector output in frame pixels.
type Input struct {
	// Detected is false when no hand was found; Tip and Joint are then ignored.
	Detected bool
	// Tip is the index fingertip.
	Tip image.Point
	// Joint is the index finger middle joint used by the finger-up test.
	Joint  image.Point
	Width  int
	Height int
	// Time is the capture time of the frame and drives dwell timing.
	Time time.Time
}

// Result describes what a single Step did.
type Result struct {
	Cursor      image.Point
	HasCursor   bool
	FingerUp    bool
	Interacting bool
	// Fired lists the buttons whose action ran this frame.
	Fired         []Button
	StrokeStarted bool
	PointAdded    bool
	SizeChanged   bool
}

// State is a snapshot of the engine for renderers.
type State struct {
	Cursor    image.Point
	HasCursor bool
	Tool      stroke.Tool
	Color     color.RGBA
	ColorName string
	Size      int
	MinSize   int
	MaxSize   int
	// Hover is the dwell progress of each button in [0, 1].
	Hover   [NumButtons]float64
	Drawing bool
	Layout  Layout
}

// hoverSlot tracks dwell on one button. fired latches after activation
// until the cursor leaves the button.
type hoverSlot struct {
	start time.Time
	fired bool
}

func (s *hoverSlot) reset() {
	*s = hoverSlot{}
}

// Engine applies the per-frame interaction rules to a stroke history.
type Engine struct {
	config   Config
	history  *stroke.History
	smoother *gesture.Smoother

	mu         sync.RWMutex
	current    stroke.Handle
	hover      [NumButtons]hoverSlot
	tool       stroke.Tool
	colorIndex int
	size       int
	lastTime   time.Time

	// OnAction, if set, is called after a button action runs.
	OnAction func(b Button)
}

// NewEngine creates an Engine drawing into h.
func NewEngine(config Config, h *stroke.History) *Engine {
	return &Engine{
		config:   config,
		history:  h,
		smoother: gesture.NewSmoother(config.Alpha),
		tool:     stroke.ToolDraw,
		size:     config.DefaultSize,
	}
}

// History returns the stroke history the engine draws into.
func (e *Engine) History() *stroke.History {
	return e.history
}

// Step processes one frame.
//
// Order per frame:
// 1. No detection: drop the cursor, close the stroke, reset dwell timers
// 2. Smooth the fingertip
// 3. Dwell-test every button, firing at most once per visit
// 4. Update brush size if the cursor is on the slider
// 5. Extend or open a stroke when the finger is up, nothing is hovered
//    and the cursor is right of the panel; otherwise close the stroke
func (e *Engine) Step(in Input) Result {
	e.mu.Lock()
	var res Result
	var fired []Button
	defer func() {
		e.mu.Unlock()
		if e.OnAction != nil {
			for _, b := range fired {
				e.OnAction(b)
			}
		}
	}()

	e.lastTime = in.Time

	if !in.Detected {
		e.smoother.Reset()
		e.current = stroke.Handle{}
		for i := range e.hover {
			e.hover[i].reset()
		}
		return res
	}

	cursor := e.smoother.Update(in.Tip)
	res.Cursor = cursor
	res.HasCursor = true
	res.FingerUp = gesture.FingerIsUp(in.Tip.Y, in.Joint.Y)

	layout := e.config.Layout
	for _, b := range Buttons {
		slot := &e.hover[b]
		if !gesture.PointInRect(cursor, layout.Buttons[b]) {
			slot.reset()
			continue
		}

		res.Interacting = true
		switch {
		case slot.fired:
		case slot.start.IsZero():
			slot.start = in.Time
		case in.Time.Sub(slot.start) > e.config.Dwell:
			e.apply(b)
			fired = append(fired, b)
			slot.start = time.Time{}
			slot.fired = true
		}
	}
	res.Fired = fired

	if layout.Slider.Engaged(cursor) {
		res.Interacting = true
		size := e.sizeAt(cursor.X)
		if size != e.size {
			e.size = size
			res.SizeChanged = true
		}
	}

	if res.FingerUp && !res.Interacting && cursor.X > layout.PanelWidth {
		if e.current.IsZero() {
			pal := e.config.Palette[e.colorIndex]
			e.current = e.history.StartStroke(pal.Color, e.size, e.tool)
			res.StrokeStarted = true
		}
		res.PointAdded = e.history.AddPoint(e.current, cursor)
		if !res.PointAdded {
			// The stroke vanished under us (undone or cleared).
			e.current = stroke.Handle{}
		}
	} else {
		e.current = stroke.Handle{}
	}

	return res
}

// Trigger runs the action bound to b as if its dwell had completed.
// It does not touch dwell timers. History actions close the open stroke.
func (e *Engine) Trigger(b Button) {
	if b < 0 || b >= NumButtons {
		return
	}

	e.mu.Lock()
	e.apply(b)
	e.mu.Unlock()

	if e.OnAction != nil {
		e.OnAction(b)
	}
}

// apply runs the action bound to b. Callers hold e.mu.
func (e *Engine) apply(b Button) {
	switch b {
	case ButtonUndo:
		e.history.Undo()
		e.current = stroke.Handle{}
	case ButtonRedo:
		e.history.Redo()
		e.current = stroke.Handle{}
	case ButtonClear:
		e.history.Clear()
		e.current = stroke.Handle{}
	case ButtonColor:
		e.colorIndex = (e.colorIndex + 1) % len(e.config.Palette)
		e.tool = stroke.ToolDraw
	case ButtonErase:
		e.tool = stroke.ToolErase
	}
}

// sizeAt maps a slider x position to a brush width.
func (e *Engine) sizeAt(x int) int {
	lo, hi := e.config.MinSize, e.config.MaxSize
	ratio := e.config.Layout.Slider.Ratio(x)
	size := int(math.Round(float64(lo) + ratio*float64(hi-lo)))
	if size < lo {
		return lo
	}
	if size > hi {
		return hi
	}
	return size
}

// State returns a snapshot of the UI state. Hover progress is measured
// against the time of the last processed frame.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cursor, ok := e.smoother.Position()
	pal := e.config.Palette[e.colorIndex]

	st := State{
		Cursor:    cursor,
		HasCursor: ok,
		Tool:      e.tool,
		Color:     pal.Color,
		ColorName: pal.Name,
		Size:      e.size,
		MinSize:   e.config.MinSize,
		MaxSize:   e.config.MaxSize,
		Drawing:   !e.current.IsZero(),
		Layout:    e.config.Layout,
	}

	for b, slot := range e.hover {
		if slot.fired || slot.start.IsZero() {
			continue
		}
		st.Hover[b] = gesture.Clamp(float64(e.lastTime.Sub(slot.start))/float64(e.config.Dwell), 0, 1)
	}

	return st
}

// Tool returns the active tool.
func (e *Engine) Tool() stroke.Tool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tool
}

// Size returns the active brush width.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.size
}

// Reset closes any open stroke and forgets the cursor and dwell timers.
// Tool, color and size are kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.smoother.Reset()
	e.current = stroke.Handle{}
	for i := range e.hover {
		e.hover[i].reset()
	}
}
