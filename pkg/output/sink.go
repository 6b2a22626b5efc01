package output

import (
	"fmt"
	"image"
	"image/color"
)

// PixelSink assembles pixels that arrive in any order into a raster image.
// Pixels are keyed by row-major index with (0,0) at the top-left.
// It is not safe for concurrent use; a single consumer drains the render stream.
type PixelSink struct {
	img       *image.RGBA
	seen      []bool
	remaining int
}

// NewPixelSink creates a sink for a width x height image
func NewPixelSink(width, height int) *PixelSink {
	return &PixelSink{
		img:       image.NewRGBA(image.Rect(0, 0, width, height)),
		seen:      make([]bool, width*height),
		remaining: width * height,
	}
}

// Set stores the color for a pixel index.
// It panics on an out-of-range or repeated index: either means the
// producer lost track of a pixel and the image would be corrupt.
func (s *PixelSink) Set(index int, c color.RGBA) {
	if index < 0 || index >= len(s.seen) {
		panic(fmt.Sprintf("pixel sink: index %d out of range [0,%d)", index, len(s.seen)))
	}
	if s.seen[index] {
		panic(fmt.Sprintf("pixel sink: duplicate pixel index %d", index))
	}
	s.seen[index] = true
	s.remaining--

	width := s.img.Rect.Dx()
	s.img.SetRGBA(index%width, index/width, c)
}

// Complete reports whether every pixel has been set
func (s *PixelSink) Complete() bool {
	return s.remaining == 0
}

// Remaining returns the number of pixels still missing
func (s *PixelSink) Remaining() int {
	return s.remaining
}

// Image returns the assembled image
func (s *PixelSink) Image() *image.RGBA {
	return s.img
}

// PackRGB packs a color into 0x00RRGGBB for framebuffer-style displays
func PackRGB(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// UnpackRGB is the inverse of PackRGB; alpha is always opaque
func UnpackRGB(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
