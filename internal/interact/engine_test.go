package interact

import (
	"image"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/scribbly/internal/stroke"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// at returns the frame timestamp d after epoch.
func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

// pointing returns a detected input with the finger up at p.
func pointing(p image.Point, ts time.Time) Input {
	return Input{
		Detected: true,
		Tip:      p,
		Joint:    image.Pt(p.X, p.Y+40),
		Width:    640,
		Height:   480,
		Time:     ts,
	}
}

// curled returns a detected input with the fingertip below its joint.
func curled(p image.Point, ts time.Time) Input {
	in := pointing(p, ts)
	in.Joint = image.Pt(p.X, p.Y-40)
	return in
}

func lost(ts time.Time) Input {
	return Input{Width: 640, Height: 480, Time: ts}
}

// newRawEngine returns an engine with smoothing disabled so the cursor
// lands exactly where the test puts it.
func newRawEngine(t *testing.T) (*Engine, *stroke.History) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Alpha = 1
	h := stroke.NewHistory()
	return NewEngine(cfg, h), h
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	want := map[Button]image.Rectangle{
		ButtonUndo:  image.Rect(20, 40, 140, 96),
		ButtonRedo:  image.Rect(20, 110, 140, 166),
		ButtonClear: image.Rect(20, 180, 140, 236),
		ButtonColor: image.Rect(20, 260, 140, 316),
		ButtonErase: image.Rect(20, 330, 140, 386),
	}
	for b, r := range want {
		if l.Buttons[b] != r {
			t.Errorf("%s rect = %v, want %v", b, l.Buttons[b], r)
		}
	}

	if l.PanelWidth != 160 {
		t.Errorf("PanelWidth = %d, want 160", l.PanelWidth)
	}
	wantSlider := Slider{X1: 30, X2: 130, Y: 416, Band: 20}
	if l.Slider != wantSlider {
		t.Errorf("Slider = %+v, want %+v", l.Slider, wantSlider)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }, true},
		{"alpha above one", func(c *Config) { c.Alpha = 1.2 }, true},
		{"zero dwell", func(c *Config) { c.Dwell = 0 }, true},
		{"inverted sizes", func(c *Config) { c.MinSize, c.MaxSize = 20, 10 }, true},
		{"default outside range", func(c *Config) { c.DefaultSize = 40 }, true},
		{"empty palette", func(c *Config) { c.Palette = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestButton_String(t *testing.T) {
	names := []string{"undo", "redo", "clear", "color", "erase"}
	for i, b := range Buttons {
		if b.String() != names[i] {
			t.Errorf("Buttons[%d].String() = %q, want %q", i, b.String(), names[i])
		}
	}
}

func TestEngine_DrawsThreePoints(t *testing.T) {
	h := stroke.NewHistory()
	e := NewEngine(DefaultConfig(), h)

	e.Step(pointing(image.Pt(200, 300), at(0)))
	e.Step(pointing(image.Pt(205, 302), at(33*time.Millisecond)))

	// Change UI state mid-stroke; the open stroke keeps its attributes.
	e.Trigger(ButtonColor)
	e.Trigger(ButtonErase)

	res := e.Step(pointing(image.Pt(210, 305), at(66*time.Millisecond)))
	if !res.PointAdded || res.StrokeStarted {
		t.Errorf("third frame: PointAdded=%v StrokeStarted=%v", res.PointAdded, res.StrokeStarted)
	}

	strokes := h.Strokes()
	if len(strokes) != 1 {
		t.Fatalf("expected 1 stroke, got %d", len(strokes))
	}

	s := strokes[0]
	want := []image.Point{{200, 300}, {202, 301}, {205, 302}}
	if !reflect.DeepEqual(s.Points, want) {
		t.Errorf("points = %v, want %v", s.Points, want)
	}

	white := DefaultPalette()[0].Color
	if s.Color != white || s.Tool != stroke.ToolDraw || s.Size != 10 {
		t.Errorf("stroke attributes changed: color=%v tool=%v size=%d", s.Color, s.Tool, s.Size)
	}

	if !e.State().Drawing {
		t.Error("stroke should still be open")
	}
}

func TestEngine_StrokeLifecycle(t *testing.T) {
	t.Run("lost hand closes stroke", func(t *testing.T) {
		e, h := newRawEngine(t)

		e.Step(pointing(image.Pt(300, 300), at(0)))
		e.Step(lost(at(30 * time.Millisecond)))
		if e.State().HasCursor {
			t.Error("cursor should be absent after detection loss")
		}
		e.Step(pointing(image.Pt(310, 300), at(60*time.Millisecond)))

		if h.Len() != 2 {
			t.Errorf("expected 2 strokes, got %d", h.Len())
		}
	})

	t.Run("curled finger closes stroke", func(t *testing.T) {
		e, h := newRawEngine(t)

		e.Step(pointing(image.Pt(300, 300), at(0)))
		res := e.Step(curled(image.Pt(305, 300), at(30*time.Millisecond)))
		if res.PointAdded {
			t.Error("curled finger should not draw")
		}
		if e.State().Drawing {
			t.Error("stroke should be closed")
		}
		e.Step(pointing(image.Pt(310, 300), at(60*time.Millisecond)))

		strokes := h.Strokes()
		if len(strokes) != 2 {
			t.Fatalf("expected 2 strokes, got %d", len(strokes))
		}
		if len(strokes[0].Points) != 1 || len(strokes[1].Points) != 1 {
			t.Errorf("unexpected point counts: %d, %d", len(strokes[0].Points), len(strokes[1].Points))
		}
	})

	t.Run("curled finger never opens a stroke", func(t *testing.T) {
		e, h := newRawEngine(t)

		for i := 0; i < 5; i++ {
			e.Step(curled(image.Pt(300+i, 300), at(time.Duration(i)*30*time.Millisecond)))
		}
		if h.Len() != 0 {
			t.Errorf("expected no strokes, got %d", h.Len())
		}
	})

	t.Run("panel region does not draw", func(t *testing.T) {
		e, h := newRawEngine(t)

		// Inside the panel but between buttons.
		e.Step(pointing(image.Pt(150, 100), at(0)))
		e.Step(pointing(image.Pt(160, 100), at(30*time.Millisecond)))
		if h.Len() != 0 {
			t.Errorf("expected no strokes inside panel, got %d", h.Len())
		}

		e.Step(pointing(image.Pt(161, 100), at(60*time.Millisecond)))
		if h.Len() != 1 {
			t.Errorf("expected a stroke right of the panel, got %d", h.Len())
		}
	})

	t.Run("undo of open stroke reopens a new one", func(t *testing.T) {
		e, h := newRawEngine(t)

		e.Step(pointing(image.Pt(300, 300), at(0)))
		h.Undo()
		res := e.Step(pointing(image.Pt(305, 300), at(30*time.Millisecond)))
		if res.PointAdded {
			t.Error("append to an undone stroke should be dropped")
		}

		res = e.Step(pointing(image.Pt(310, 300), at(60*time.Millisecond)))
		if !res.StrokeStarted || !res.PointAdded {
			t.Errorf("expected a fresh stroke, got %+v", res)
		}
		if h.Len() != 1 {
			t.Errorf("expected 1 live stroke, got %d", h.Len())
		}
	})
}

func TestEngine_HoverDwell(t *testing.T) {
	e, h := newRawEngine(t)

	var fired []Button
	e.OnAction = func(b Button) { fired = append(fired, b) }

	// Two strokes to undo.
	for i := 0; i < 2; i++ {
		hd := h.StartStroke(DefaultPalette()[0].Color, 10, stroke.ToolDraw)
		h.AddPoint(hd, image.Pt(300, 300))
	}

	undo := center(DefaultLayout().Buttons[ButtonUndo])

	steps := []struct {
		at        time.Duration
		p         image.Point
		wantFired int
	}{
		{0, undo, 0},
		{300 * time.Millisecond, undo, 0},
		{600 * time.Millisecond, undo, 0}, // not strictly greater
		{610 * time.Millisecond, undo, 1},
		{900 * time.Millisecond, undo, 1},
		{1300 * time.Millisecond, undo, 1},
		{2500 * time.Millisecond, undo, 1},
		{2530 * time.Millisecond, image.Pt(400, 300), 1}, // leave
		{2560 * time.Millisecond, undo, 1},               // re-enter
		{3000 * time.Millisecond, undo, 1},
		{3170 * time.Millisecond, undo, 2},
	}

	for _, s := range steps {
		res := e.Step(curled(s.p, at(s.at)))
		if len(fired) != s.wantFired {
			t.Fatalf("at %v: fired %d times, want %d", s.at, len(fired), s.wantFired)
		}
		if gotInteracting := s.p == undo; res.Interacting != gotInteracting {
			t.Errorf("at %v: Interacting = %v, want %v", s.at, res.Interacting, gotInteracting)
		}
	}

	for _, b := range fired {
		if b != ButtonUndo {
			t.Errorf("unexpected button fired: %s", b)
		}
	}
	if h.Len() != 0 || h.RedoLen() != 2 {
		t.Errorf("expected both strokes undone, Len=%d RedoLen=%d", h.Len(), h.RedoLen())
	}
}

func TestEngine_HoverSuppressesDrawing(t *testing.T) {
	// A button rectangle extending beyond the panel edge is still a mode lock.
	cfg := DefaultConfig()
	cfg.Alpha = 1
	cfg.Layout.Buttons[ButtonErase] = image.Rect(200, 200, 260, 260)
	h := stroke.NewHistory()
	e := NewEngine(cfg, h)

	res := e.Step(pointing(image.Pt(230, 230), at(0)))
	if !res.Interacting {
		t.Error("hovering a button should mark the frame interacting")
	}
	if res.PointAdded || h.Len() != 0 {
		t.Error("hovering a button must not draw even with the finger up")
	}
}

func TestEngine_DetectionLossResetsDwell(t *testing.T) {
	e, _ := newRawEngine(t)

	var fired int
	e.OnAction = func(Button) { fired++ }

	erase := center(DefaultLayout().Buttons[ButtonErase])
	e.Step(curled(erase, at(0)))
	e.Step(lost(at(400 * time.Millisecond)))
	e.Step(curled(erase, at(700*time.Millisecond)))
	e.Step(curled(erase, at(1000*time.Millisecond)))

	if fired != 0 {
		t.Errorf("dwell carried across detection gap: fired %d", fired)
	}

	e.Step(curled(erase, at(1400*time.Millisecond)))
	if fired != 1 {
		t.Errorf("expected erase to fire after a full dwell, fired %d", fired)
	}
	if e.Tool() != stroke.ToolErase {
		t.Errorf("Tool() = %v, want erase", e.Tool())
	}
}

func TestEngine_ButtonActions(t *testing.T) {
	t.Run("color cycles and selects draw", func(t *testing.T) {
		e, _ := newRawEngine(t)
		palette := DefaultPalette()

		e.Trigger(ButtonErase)
		e.Trigger(ButtonColor)

		st := e.State()
		if st.Tool != stroke.ToolDraw {
			t.Errorf("Tool = %v, want draw", st.Tool)
		}
		if st.ColorName != palette[1].Name {
			t.Errorf("ColorName = %q, want %q", st.ColorName, palette[1].Name)
		}

		for i := 0; i < len(palette)-1; i++ {
			e.Trigger(ButtonColor)
		}
		if st := e.State(); st.ColorName != palette[0].Name {
			t.Errorf("palette should wrap, got %q", st.ColorName)
		}
	})

	t.Run("clear empties history", func(t *testing.T) {
		e, h := newRawEngine(t)
		e.Step(pointing(image.Pt(300, 300), at(0)))
		h.Undo()
		e.Step(pointing(image.Pt(300, 300), at(30*time.Millisecond)))

		e.Trigger(ButtonClear)
		if h.Len() != 0 || h.RedoLen() != 0 {
			t.Errorf("Clear left Len=%d RedoLen=%d", h.Len(), h.RedoLen())
		}
	})

	t.Run("undo and redo", func(t *testing.T) {
		e, h := newRawEngine(t)
		e.Step(pointing(image.Pt(300, 300), at(0)))
		e.Step(lost(at(30 * time.Millisecond)))

		e.Trigger(ButtonUndo)
		if h.Len() != 0 {
			t.Errorf("Len after undo = %d", h.Len())
		}
		e.Trigger(ButtonRedo)
		if h.Len() != 1 {
			t.Errorf("Len after redo = %d", h.Len())
		}
	})

	t.Run("redo after undo does not resume the open stroke", func(t *testing.T) {
		e, h := newRawEngine(t)
		e.Step(pointing(image.Pt(300, 300), at(0)))

		e.Trigger(ButtonUndo)
		e.Trigger(ButtonRedo)

		res := e.Step(pointing(image.Pt(310, 300), at(30*time.Millisecond)))
		if !res.StrokeStarted || !res.PointAdded {
			t.Errorf("StrokeStarted=%v PointAdded=%v, want a new stroke", res.StrokeStarted, res.PointAdded)
		}
		if h.Len() != 2 {
			t.Fatalf("Len = %d, want 2", h.Len())
		}
		if n := len(h.Strokes()[0].Points); n != 1 {
			t.Errorf("redone stroke has %d points, want 1", n)
		}
	})

	t.Run("clear closes the open stroke", func(t *testing.T) {
		e, h := newRawEngine(t)
		e.Step(pointing(image.Pt(300, 300), at(0)))
		e.Trigger(ButtonClear)

		if e.State().Drawing {
			t.Error("Drawing after clear")
		}
		res := e.Step(pointing(image.Pt(310, 300), at(30*time.Millisecond)))
		if !res.StrokeStarted || h.Len() != 1 {
			t.Errorf("StrokeStarted=%v Len=%d, want a fresh stroke", res.StrokeStarted, h.Len())
		}
	})

	t.Run("out of range trigger is ignored", func(t *testing.T) {
		e, _ := newRawEngine(t)
		called := false
		e.OnAction = func(Button) { called = true }

		e.Trigger(NumButtons)
		e.Trigger(-1)
		if called {
			t.Error("OnAction called for invalid button")
		}
	})

	t.Run("new strokes use the selected attributes", func(t *testing.T) {
		e, h := newRawEngine(t)
		e.Trigger(ButtonColor)
		e.Trigger(ButtonColor)
		e.Trigger(ButtonErase)

		e.Step(pointing(image.Pt(300, 300), at(0)))

		s := h.Strokes()[0]
		if s.Tool != stroke.ToolErase {
			t.Errorf("Tool = %v, want erase", s.Tool)
		}
		if s.Color != DefaultPalette()[2].Color {
			t.Errorf("Color = %v, want red", s.Color)
		}
	})
}

func TestEngine_Slider(t *testing.T) {
	sl := DefaultLayout().Slider

	tests := []struct {
		name     string
		p        image.Point
		wantSize int
		engaged  bool
	}{
		{"left end", image.Pt(sl.X1, sl.Y), 4, true},
		{"right end", image.Pt(sl.X2, sl.Y), 24, true},
		{"middle", image.Pt(80, sl.Y), 14, true},
		{"inside band", image.Pt(sl.X2, sl.Y+19), 24, true},
		{"outside band", image.Pt(sl.X2, sl.Y+20), 10, false},
		{"left of span", image.Pt(sl.X1-1, sl.Y), 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, h := newRawEngine(t)

			res := e.Step(pointing(tt.p, at(0)))
			if res.Interacting != tt.engaged {
				t.Errorf("Interacting = %v, want %v", res.Interacting, tt.engaged)
			}
			if e.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", e.Size(), tt.wantSize)
			}
			if h.Len() != 0 {
				t.Error("slider must not draw")
			}
		})
	}
}

func TestEngine_SizeAtMonotonicAndClamped(t *testing.T) {
	e, _ := newRawEngine(t)
	sl := e.config.Layout.Slider

	prev := e.sizeAt(sl.X1 - 100)
	if prev != e.config.MinSize {
		t.Errorf("sizeAt far left = %d, want %d", prev, e.config.MinSize)
	}
	for x := sl.X1 - 100; x <= sl.X2+100; x++ {
		size := e.sizeAt(x)
		if size < prev {
			t.Fatalf("sizeAt not monotonic at x=%d: %d < %d", x, size, prev)
		}
		prev = size
	}
	if prev != e.config.MaxSize {
		t.Errorf("sizeAt far right = %d, want %d", prev, e.config.MaxSize)
	}
}

func TestSlider_Ratio(t *testing.T) {
	s := Slider{X1: 10, X2: 110}

	tests := []struct {
		x    int
		want float64
	}{
		{10, 0},
		{60, 0.5},
		{110, 1},
		{-50, 0},
		{500, 1},
	}
	for _, tt := range tests {
		if got := s.Ratio(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%d) = %v, want %v", tt.x, got, tt.want)
		}
	}

	degenerate := Slider{X1: 50, X2: 50}
	if got := degenerate.Ratio(50); got != 0 {
		t.Errorf("degenerate Ratio = %v, want 0", got)
	}
}

func TestEngine_StateHoverProgress(t *testing.T) {
	e, _ := newRawEngine(t)
	redo := center(DefaultLayout().Buttons[ButtonRedo])

	e.Step(curled(redo, at(0)))
	e.Step(curled(redo, at(300*time.Millisecond)))

	st := e.State()
	if math.Abs(st.Hover[ButtonRedo]-0.5) > 1e-9 {
		t.Errorf("Hover[redo] = %v, want 0.5", st.Hover[ButtonRedo])
	}
	if st.Hover[ButtonUndo] != 0 {
		t.Errorf("Hover[undo] = %v, want 0", st.Hover[ButtonUndo])
	}

	e.Step(curled(redo, at(700*time.Millisecond)))
	if got := e.State().Hover[ButtonRedo]; got != 0 {
		t.Errorf("Hover after firing = %v, want 0", got)
	}
}

func TestEngine_Reset(t *testing.T) {
	e, h := newRawEngine(t)
	e.Trigger(ButtonErase)

	e.Step(pointing(image.Pt(300, 300), at(0)))
	e.Reset()

	st := e.State()
	if st.HasCursor || st.Drawing {
		t.Errorf("Reset left cursor=%v drawing=%v", st.HasCursor, st.Drawing)
	}
	if st.Tool != stroke.ToolErase {
		t.Error("Reset should keep the tool")
	}

	e.Step(pointing(image.Pt(310, 300), at(30*time.Millisecond)))
	if h.Len() != 2 {
		t.Errorf("expected a new stroke after Reset, got %d strokes", h.Len())
	}
}

func TestParseButton(t *testing.T) {
	for _, b := range Buttons {
		got, ok := ParseButton(b.String())
		if !ok || got != b {
			t.Errorf("ParseButton(%q) = %v, %v", b.String(), got, ok)
		}
	}
	if _, ok := ParseButton("save"); ok {
		t.Error("ParseButton(save) should fail")
	}
}
