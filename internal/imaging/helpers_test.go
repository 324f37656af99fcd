package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
)

// uniformRGB builds a grid where every pixel has the same gray value.
func uniformRGB(w, h int, v uint8) *RGBGrid {
	g := NewRGBGrid(w, h)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// fillRGBRect paints the rectangle [x0,x1)×[y0,y1) with a gray value.
func fillRGBRect(g *RGBGrid, x0, y0, x1, y1 int, v uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.SetRGB(x, y, v, v, v)
		}
	}
}

// sampleGrid builds a plausible handwriting photo: light background
// with a band of mid-dark strokes covering inkRows rows.
func sampleGrid(w, h, inkY0, inkY1 int, bg, ink uint8) *RGBGrid {
	g := uniformRGB(w, h, bg)
	fillRGBRect(g, 0, inkY0, w, inkY1, ink)
	return g
}

func lumaVariance(g *LumaGrid) float64 {
	var sum, sumSq float64
	for _, v := range g.Pix {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	n := float64(len(g.Pix))
	mean := sum / n
	return sumSq/n - mean*mean
}

func randomBinaryGrid(t *testing.T, w, h int, seed int64) *LumaGrid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := NewLumaGrid(w, h)
	for i := range g.Pix {
		if rng.Intn(2) == 1 {
			g.Pix[i] = 255
		}
	}
	return g
}

// encodeGrayPNG renders a uniform-gray PNG for decode/pipeline tests.
func encodeGrayPNG(t *testing.T, w, h int, v uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return encodePNGImage(t, img)
}

// encodeSamplePNG renders a handwriting-like PNG: bg-gray background
// with an ink-gray band between the given rows.
func encodeSamplePNG(t *testing.T, w, h, inkY0, inkY1 int, bg, ink uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y >= inkY0 && y < inkY1 {
				img.SetGray(x, y, color.Gray{Y: ink})
			} else {
				img.SetGray(x, y, color.Gray{Y: bg})
			}
		}
	}
	return encodePNGImage(t, img)
}

func encodePNGImage(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}
