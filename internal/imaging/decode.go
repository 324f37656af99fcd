package imaging

import (
	"bytes"
	"image"

	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
)

// Decode parses an encoded raster image (JPEG or PNG) into an RGBGrid.
// Alpha is dropped; the color values are the premultiplied components
// reduced to 8 bits, so opaque images come through unchanged.
func Decode(data []byte) (*RGBGrid, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return fromImage(img), nil
}

func fromImage(img image.Image) *RGBGrid {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	grid := NewRGBGrid(w, h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			grid.Pix[i] = uint8(r >> 8)
			grid.Pix[i+1] = uint8(g >> 8)
			grid.Pix[i+2] = uint8(b >> 8)
			i += 3
		}
	}
	return grid
}
