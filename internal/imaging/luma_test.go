package imaging

import "testing"

func TestToLumaKnownValues(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"mid gray", 128, 128, 128, 128},
		{"pure red", 255, 0, 0, 76},
		{"pure green", 0, 255, 0, 150},
		{"pure blue", 0, 0, 255, 29},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := NewRGBGrid(1, 1)
			grid.SetRGB(0, 0, tc.r, tc.g, tc.b)
			got := ToLuma(grid).At(0, 0)
			if got != tc.want {
				t.Fatalf("luma(%d,%d,%d) = %d, want %d", tc.r, tc.g, tc.b, got, tc.want)
			}
		})
	}
}

func TestToLumaDimensions(t *testing.T) {
	grid := uniformRGB(17, 9, 200)
	luma := ToLuma(grid)
	if luma.Width != 17 || luma.Height != 9 {
		t.Fatalf("unexpected dimensions %dx%d", luma.Width, luma.Height)
	}
	if len(luma.Pix) != 17*9 {
		t.Fatalf("unexpected pixel count %d", len(luma.Pix))
	}
	for i, v := range luma.Pix {
		if v != 200 {
			t.Fatalf("pixel %d = %d, want 200", i, v)
		}
	}
}

func TestToLumaDoesNotAliasSource(t *testing.T) {
	grid := uniformRGB(4, 4, 100)
	luma := ToLuma(grid)
	grid.SetRGB(0, 0, 0, 0, 0)
	if luma.At(0, 0) != 100 {
		t.Fatal("mutating the source grid changed an already-projected luma grid")
	}
}
