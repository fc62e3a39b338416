package app

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the latest composited frame as JPEG.
type FrameBuffer struct {
	mu      sync.RWMutex
	data    []byte
	seq     uint64
	updated time.Time
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Update encodes img and replaces the buffered frame.
func (b *FrameBuffer) Update(img *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *img)
	if err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	data := append([]byte(nil), buf.GetBytes()...)
	b.Set(data)
	return nil
}

// Set stores an already encoded frame.
func (b *FrameBuffer) Set(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	b.seq++
	b.updated = time.Now()
}

// Latest returns the buffered JPEG and its sequence number. The sequence
// starts at 0 for an empty buffer and grows by one per update. The
// returned slice must not be modified.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data, b.seq
}

// Updated returns when the last frame was stored.
func (b *FrameBuffer) Updated() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updated
}
