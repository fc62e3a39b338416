// Package render draws the control panel, the stroke canvas and the cursor
// over camera frames using GoCV (OpenCV).
package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/stroke"
	"gocv.io/x/gocv"
)

// Panel colors.
var (
	PanelBackground = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	PanelEdge       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	SliderTrack     = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	SliderKnob      = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	SizeLabel       = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	EraseCursor     = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	ProgressBar     = color.RGBA{R: 255, G: 170, B: 0, A: 255}

	undoFill        = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	clearFill       = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	eraseFill       = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	eraseActiveFill = color.RGBA{R: 210, G: 210, B: 210, A: 255}

	maskOn  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	maskOff = color.RGBA{}
)

const (
	labelFont       = gocv.FontHersheySimplex
	labelScale      = 0.55
	labelThickness  = 2
	labelInset      = 18
	knobRadius      = 8
	trackThickness  = 4
	edgeThickness   = 2
	cursorThickness = 2
	progressHeight  = 4
)

// TextColorFor returns black on light fills and white on dark ones.
func TextColorFor(fill color.RGBA) color.RGBA {
	if int(fill.R)+int(fill.G)+int(fill.B) > 500 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// ButtonFill returns the background color of b for the given UI state.
func ButtonFill(b interact.Button, st interact.State) color.RGBA {
	switch b {
	case interact.ButtonUndo, interact.ButtonRedo:
		return undoFill
	case interact.ButtonClear:
		return clearFill
	case interact.ButtonColor:
		return st.Color
	case interact.ButtonErase:
		if st.Tool == stroke.ToolErase {
			return eraseActiveFill
		}
		return eraseFill
	default:
		return undoFill
	}
}

// ButtonLabel returns the uppercase caption drawn on b.
func ButtonLabel(b interact.Button) string {
	return strings.ToUpper(b.String())
}

// KnobX returns the slider knob position for size.
func KnobX(s interact.Slider, size, minSize, maxSize int) int {
	if maxSize <= minSize {
		return s.X1
	}
	return s.X1 + (size-minSize)*(s.X2-s.X1)/(maxSize-minSize)
}

// CursorStyle returns the indicator radius and color for the active tool.
func CursorStyle(st interact.State) (int, color.RGBA) {
	if st.Tool == stroke.ToolErase {
		return st.Size * 2, EraseCursor
	}
	return st.Size, st.Color
}

// ProgressRect returns the bar drawn along the bottom of r for a dwell
// progress in [0, 1]. An empty rectangle means nothing is drawn.
func ProgressRect(r image.Rectangle, progress float64) image.Rectangle {
	if progress <= 0 {
		return image.Rectangle{}
	}
	if progress > 1 {
		progress = 1
	}
	w := int(float64(r.Dx()) * progress)
	if w == 0 {
		return image.Rectangle{}
	}
	return image.Rect(r.Min.X, r.Max.Y-progressHeight, r.Min.X+w, r.Max.Y)
}

// DrawButton paints a filled button with a centered-left label and an
// optional dwell progress bar.
func DrawButton(img *gocv.Mat, r image.Rectangle, label string, fill color.RGBA, progress float64) {
	gocv.Rectangle(img, r, fill, -1)
	org := image.Pt(r.Min.X+labelInset, r.Max.Y-labelInset)
	gocv.PutText(img, label, org, labelFont, labelScale, TextColorFor(fill), labelThickness)

	if bar := ProgressRect(r, progress); !bar.Empty() {
		gocv.Rectangle(img, bar, ProgressBar, -1)
	}
}

// DrawPanel paints the control panel on the left of img.
func DrawPanel(img *gocv.Mat, st interact.State) {
	l := st.Layout
	h := img.Rows()

	gocv.Rectangle(img, image.Rect(0, 0, l.PanelWidth, h), PanelBackground, -1)
	gocv.Line(img, image.Pt(l.PanelWidth, 0), image.Pt(l.PanelWidth, h), PanelEdge, edgeThickness)

	for _, b := range interact.Buttons {
		DrawButton(img, l.Buttons[b], ButtonLabel(b), ButtonFill(b, st), st.Hover[b])
	}

	s := l.Slider
	gocv.PutText(img, "SIZE", image.Pt(l.Buttons[interact.ButtonErase].Min.X, s.Y-10), labelFont, 0.45, SizeLabel, 1)
	gocv.Line(img, image.Pt(s.X1, s.Y), image.Pt(s.X2, s.Y), SliderTrack, trackThickness)
	gocv.Circle(img, image.Pt(KnobX(s, st.Size, st.MinSize, st.MaxSize), s.Y), knobRadius, SliderKnob, -1)
}

// DrawCursor outlines the brush footprint at the cursor.
func DrawCursor(img *gocv.Mat, st interact.State) {
	if !st.HasCursor {
		return
	}
	radius, c := CursorStyle(st)
	gocv.Circle(img, st.Cursor, radius, c, cursorThickness)
}
