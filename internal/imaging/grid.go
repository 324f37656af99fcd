package imaging

import "image"

// RGBGrid is an interleaved 8-bit RGB pixel grid. Pix holds three bytes
// per pixel in row-major order, so pixel (x, y) starts at (y*Width+x)*3.
type RGBGrid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGBGrid allocates a zeroed grid of the given dimensions.
func NewRGBGrid(w, h int) *RGBGrid {
	return &RGBGrid{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

// SetRGB writes one pixel.
func (g *RGBGrid) SetRGB(x, y int, r, gr, b uint8) {
	i := (y*g.Width + x) * 3
	g.Pix[i] = r
	g.Pix[i+1] = gr
	g.Pix[i+2] = b
}

// LumaGrid is a single-channel 8-bit intensity grid, row-major with
// pixel (x, y) at y*Width+x.
type LumaGrid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewLumaGrid allocates a zeroed (all black) grid.
func NewLumaGrid(w, h int) *LumaGrid {
	return &LumaGrid{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// At returns the intensity at (x, y).
func (g *LumaGrid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set writes the intensity at (x, y).
func (g *LumaGrid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Gray exposes the grid as an image.Gray sharing the same pixel slice.
// Callers must treat the view as read-only.
func (g *LumaGrid) Gray() *image.Gray {
	return &image.Gray{Pix: g.Pix, Stride: g.Width, Rect: image.Rect(0, 0, g.Width, g.Height)}
}
