// Package interact turns per-frame fingertip input into drawing and UI actions.
//
// An Engine is fed one Input per captured frame. It smooths the cursor,
// runs hover-dwell activation over a fixed panel of buttons and a size
// slider, and gates drawing on the finger-up test. Drawing mutates a
// stroke.History; everything else mutates engine state published through
// State for renderers.
package interact

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/ayusman/scribbly/internal/gesture"
)

// Button identifies one of the dwell-activated panel targets.
type Button int

const (
	ButtonUndo Button = iota
	ButtonRedo
	ButtonClear
	ButtonColor
	ButtonErase
	// NumButtons is the number of panel targets.
	NumButtons
)

// Buttons lists every target in panel order.
var Buttons = [NumButtons]Button{ButtonUndo, ButtonRedo, ButtonClear, ButtonColor, ButtonErase}

// String returns the lowercase button name.
func (b Button) String() string {
	switch b {
	case ButtonUndo:
		return "undo"
	case ButtonRedo:
		return "redo"
	case ButtonClear:
		return "clear"
	case ButtonColor:
		return "color"
	case ButtonErase:
		return "erase"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, bool) {
	for _, b := range Buttons {
		if b.String() == name {
			return b, true
		}
	}
	return 0, false
}

// Slider is a horizontal size slider. The cursor engages it when it lies
// within Band pixels of Y and between X1 and X2 inclusive.
type Slider struct {
	X1, X2 int
	Y      int
	Band   int
}

// Ratio maps x onto [0, 1] across the slider span.
// A degenerate span yields 0.
func (s Slider) Ratio(x int) float64 {
	span := s.X2 - s.X1
	if span == 0 {
		return 0
	}
	return gesture.Clamp(float64(x-s.X1)/float64(span), 0, 1)
}

// Engaged reports whether p is on the slider.
func (s Slider) Engaged(p image.Point) bool {
	dy := p.Y - s.Y
	if dy < 0 {
		dy = -dy
	}
	return dy < s.Band && p.X >= s.X1 && p.X <= s.X2
}

// Layout is the fixed panel geometry in frame pixels.
// Button rectangles are inclusive on all edges.
type Layout struct {
	PanelWidth int
	Buttons    [NumButtons]image.Rectangle
	Slider     Slider
}

// Panel layout constants.
const (
	DefaultPanelWidth = 160
	buttonMargin      = 20
	buttonHeight      = 56
	buttonGap         = 14
	buttonTop         = 40
	groupGap          = 10
	sliderGap         = 30
	sliderInset       = 10
	// DefaultSliderBand is the vertical distance within which the slider engages.
	DefaultSliderBand = 20
)

// DefaultLayout returns the panel geometry: undo, redo and clear stacked
// at the top, then color and erase after a small gap, then the size slider.
func DefaultLayout() Layout {
	l := Layout{PanelWidth: DefaultPanelWidth}

	x1, x2 := buttonMargin, DefaultPanelWidth-buttonMargin
	y := buttonTop
	place := func(b Button) {
		l.Buttons[b] = image.Rect(x1, y, x2, y+buttonHeight)
		y += buttonHeight + buttonGap
	}

	place(ButtonUndo)
	place(ButtonRedo)
	place(ButtonClear)
	y += groupGap
	place(ButtonColor)
	place(ButtonErase)

	// Slider sits below erase, not below the next button slot.
	y += sliderGap - buttonGap

	l.Slider = Slider{
		X1:   x1 + sliderInset,
		X2:   x2 - sliderInset,
		Y:    y,
		Band: DefaultSliderBand,
	}
	return l
}

// NamedColor is a palette entry.
type NamedColor struct {
	Name  string
	Color color.RGBA
}

// DefaultPalette returns the five brush colors cycled by the color button.
func DefaultPalette() []NamedColor {
	return []NamedColor{
		{Name: "white", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{Name: "black", Color: color.RGBA{A: 255}},
		{Name: "red", Color: color.RGBA{R: 255, A: 255}},
		{Name: "green", Color: color.RGBA{G: 255, A: 255}},
		{Name: "blue", Color: color.RGBA{B: 255, A: 255}},
	}
}

// Config holds the interaction parameters.
type Config struct {
	// Alpha is the EMA smoothing factor in (0, 1].
	Alpha float64
	// Dwell is how long the cursor must rest on a button to fire it.
	Dwell time.Duration
	// MinSize and MaxSize bound the brush width set by the slider.
	MinSize int
	MaxSize int
	// DefaultSize is the brush width at startup.
	DefaultSize int
	Palette     []NamedColor
	Layout      Layout
}

// DefaultConfig returns a Config with the standard interaction parameters.
func DefaultConfig() Config {
	return Config{
		Alpha:       gesture.DefaultAlpha,
		Dwell:       600 * time.Millisecond,
		MinSize:     4,
		MaxSize:     24,
		DefaultSize: 10,
		Palette:     DefaultPalette(),
		Layout:      DefaultLayout(),
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha %v out of range (0, 1]", c.Alpha)
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("dwell must be positive, got %v", c.Dwell)
	}
	if c.MinSize <= 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("invalid brush size range [%d, %d]", c.MinSize, c.MaxSize)
	}
	if c.DefaultSize < c.MinSize || c.DefaultSize > c.MaxSize {
		return fmt.Errorf("default size %d outside [%d, %d]", c.DefaultSize, c.MinSize, c.MaxSize)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette is empty")
	}
	return nil
}
