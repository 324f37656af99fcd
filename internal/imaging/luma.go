package imaging

import "math"

// ITU-R BT.601 luminance weights.
const (
	lumaWeightR = 0.299
	lumaWeightG = 0.587
	lumaWeightB = 0.114
)

func lumaOf(r, g, b uint8) uint8 {
	v := math.Round(lumaWeightR*float64(r) + lumaWeightG*float64(g) + lumaWeightB*float64(b))
	return clamp255(v)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToLuma projects an RGB grid onto a single luminance channel. The
// validator and the transform chain both go through this function, so an
// accept decision and the transformed output can never disagree about
// the same pixel.
func ToLuma(src *RGBGrid) *LumaGrid {
	out := NewLumaGrid(src.Width, src.Height)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+3, j+1 {
		out.Pix[j] = lumaOf(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
	}
	return out
}
