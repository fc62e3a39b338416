package render

import (
	"image"
	"sync"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/stroke"
	"gocv.io/x/gocv"
)

// Compositor rasterizes strokes onto a canvas and blends it into frames.
// The canvas and its mask are rebuilt from the stroke list on every call,
// so undo and clear take effect on the next frame.
type Compositor struct {
	mu     sync.Mutex
	canvas gocv.Mat
	mask   gocv.Mat
	rows   int
	cols   int
	ready  bool
}

// NewCompositor creates a Compositor. Buffers are allocated on first use
// to match the frame size.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// ensure (re)allocates the canvas and mask for a rows x cols frame.
func (c *Compositor) ensure(rows, cols int) {
	if c.ready && c.rows == rows && c.cols == cols {
		return
	}
	c.release()

	c.canvas = gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	c.mask = gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	c.rows, c.cols = rows, cols
	c.ready = true
}

func (c *Compositor) release() {
	if !c.ready {
		return
	}
	c.canvas.Close()
	c.mask.Close()
	c.ready = false
}

// Compose draws the panel, the strokes and the cursor onto frame in place.
func (c *Compositor) Compose(frame *gocv.Mat, strokes []stroke.Stroke, st interact.State) {
	if frame == nil || frame.Empty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensure(frame.Rows(), frame.Cols())

	DrawPanel(frame, st)

	c.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	c.mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	for i := range strokes {
		c.rasterize(&strokes[i])
	}
	c.canvas.CopyToWithMask(frame, c.mask)

	DrawCursor(frame, st)
}

// rasterize draws one stroke. Draw strokes paint the canvas and set the
// mask; erase strokes clear the mask with a doubled width so later draw
// strokes can cover the erased area again.
func (c *Compositor) rasterize(s *stroke.Stroke) {
	for i := 1; i < len(s.Points); i++ {
		p0, p1 := s.Points[i-1], s.Points[i]
		switch s.Tool {
		case stroke.ToolErase:
			gocv.Line(&c.mask, p0, p1, maskOff, s.Size*2)
		default:
			gocv.Line(&c.canvas, p0, p1, s.Color, s.Size)
			gocv.Line(&c.mask, p0, p1, maskOn, s.Size)
		}
	}
}

// Size returns the current buffer dimensions, or the zero point before
// the first frame.
func (c *Compositor) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return image.Pt(c.cols, c.rows)
}

// Close releases the canvas and mask.
func (c *Compositor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
	c.rows, c.cols = 0, 0
	return nil
}
