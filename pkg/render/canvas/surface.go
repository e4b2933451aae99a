package canvas

import (
	"image"
	"sync"

	"github.com/matzehuels/moduletree/pkg/viewport"
)

// ImageSurface is an in-memory Surface that keeps the last presented frame.
type ImageSurface struct {
	mu     sync.Mutex
	size   viewport.Size
	frame  *image.RGBA
	frames int
}

// NewImageSurface returns a surface of w×h logical pixels.
func NewImageSurface(w, h float64) *ImageSurface {
	return &ImageSurface{size: viewport.Size{W: w, H: h}}
}

func (s *ImageSurface) Size() viewport.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Resize changes the logical size. A zero size makes the surface
// unavailable.
func (s *ImageSurface) Resize(w, h float64) {
	s.mu.Lock()
	s.size = viewport.Size{W: w, H: h}
	s.mu.Unlock()
}

func (s *ImageSurface) Present(img *image.RGBA) error {
	s.mu.Lock()
	s.frame = img
	s.frames++
	s.mu.Unlock()
	return nil
}

// Frame returns the last presented image, or nil.
func (s *ImageSurface) Frame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Frames returns how many frames were presented.
func (s *ImageSurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
