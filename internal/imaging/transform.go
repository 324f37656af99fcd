package imaging

import "math"

// Enhance applies a linear contrast stretch around the mid level 128.
// Stretching never decreases the spread of a grid with non-zero
// variance, and a flat grid stays flat.
func Enhance(src *LumaGrid, factor float64) *LumaGrid {
	out := NewLumaGrid(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = clamp255(math.Round((float64(v)-128)*factor + 128))
	}
	return out
}

// Threshold collapses the grid to pure black and white: values strictly
// above t become 255, everything else 0.
func Threshold(src *LumaGrid, t uint8) *LumaGrid {
	out := NewLumaGrid(src.Width, src.Height)
	for i, v := range src.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// Invert flips content and background. Applying it twice restores the
// input exactly.
func Invert(src *LumaGrid) *LumaGrid {
	out := NewLumaGrid(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}
