package app

import "gocv.io/x/gocv"

// Display shows composited frames. Show reports whether the user asked
// to quit.
type Display interface {
	Show(frame *gocv.Mat) bool
	Close() error
}

// Window is an OpenCV HighGUI window. Pressing 'q' quits. HighGUI must be
// driven from the main thread on some platforms.
type Window struct {
	w *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// Show draws frame and polls the keyboard for 1ms.
func (w *Window) Show(frame *gocv.Mat) bool {
	w.w.IMShow(*frame)
	return w.w.WaitKey(1)&0xFF == 'q'
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.w.Close()
}
