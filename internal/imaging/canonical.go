package imaging

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Canonicalize scales the grid to fit inside targetW×targetH without
// changing its aspect ratio, then centers the scaled content on a black
// canvas of exactly those dimensions. Resampling is nearest-neighbor:
// the input is already two-level at this point and a smoothing kernel
// would reintroduce intermediate grays.
func Canonicalize(src *LumaGrid, targetW, targetH int) *LumaGrid {
	scale := math.Min(float64(targetW)/float64(src.Width), float64(targetH)/float64(src.Height))
	newW := int(math.Round(float64(src.Width) * scale))
	newH := int(math.Round(float64(src.Height) * scale))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	srcImg := src.Gray()
	resized := image.NewGray(image.Rect(0, 0, newW, newH))
	xdraw.NearestNeighbor.Scale(resized, resized.Rect, srcImg, srcImg.Bounds(), xdraw.Src, nil)

	out := NewLumaGrid(targetW, targetH) // zeroed, i.e. all black
	padLeft := (targetW - newW) / 2
	padTop := (targetH - newH) / 2
	for y := 0; y < newH; y++ {
		dst := (padTop+y)*targetW + padLeft
		srcOff := y * resized.Stride
		copy(out.Pix[dst:dst+newW], resized.Pix[srcOff:srcOff+newW])
	}
	return out
}
