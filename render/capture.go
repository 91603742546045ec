package render

import (
	"fmt"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FrameRecorder saves rendered frames as numbered PNG files, for turning a
// training run into a video afterwards.
type FrameRecorder struct {
	dir   string
	every int // capture every Nth frame
	count int
	saved int
}

// NewFrameRecorder creates the output directory. every < 1 captures every
// frame.
func NewFrameRecorder(dir string, every int) (*FrameRecorder, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating recording directory: %w", err)
	}
	return &FrameRecorder{dir: dir, every: every}, nil
}

// Capture grabs the current screen contents. Must be called after
// EndDrawing so the backbuffer holds the finished frame.
func (r *FrameRecorder) Capture() error {
	r.count++
	if (r.count-1)%r.every != 0 {
		return nil
	}

	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)

	path := filepath.Join(r.dir, fmt.Sprintf("frame_%06d.png", r.saved))
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting frame to %s", path)
	}
	r.saved++
	return nil
}

// Saved returns how many frames have been written.
func (r *FrameRecorder) Saved() int { return r.saved }
