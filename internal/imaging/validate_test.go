package imaging

import "testing"

func TestValidateAcceptsCleanSample(t *testing.T) {
	// White page with a mid-dark stroke band over 20% of the area.
	grid := sampleGrid(1000, 400, 160, 240, 255, 100)

	outcome := Validate(grid, DefaultConfig())
	if !outcome.Accepted {
		t.Fatalf("expected acceptance, got %s: %s", outcome.Reason, outcome.Message)
	}
	if outcome.Reason != "" || outcome.Message != "" {
		t.Fatalf("accepted outcome must not carry reason or message, got %+v", outcome)
	}
}

func TestValidateRejectsUniformGray(t *testing.T) {
	grid := uniformRGB(64, 64, 128)

	outcome := Validate(grid, DefaultConfig())
	if outcome.Accepted {
		t.Fatal("expected rejection of a flat gray image")
	}
	if outcome.Reason != ReasonLowContrast {
		t.Fatalf("expected %s, got %s", ReasonLowContrast, outcome.Reason)
	}
	if outcome.Message == "" {
		t.Fatal("rejection must carry a message")
	}
}

func TestValidateRejectsCheckerboard(t *testing.T) {
	grid := NewRGBGrid(200, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if (x+y)%2 == 0 {
				grid.SetRGB(x, y, 255, 255, 255)
			}
		}
	}

	outcome := Validate(grid, DefaultConfig())
	if outcome.Reason != ReasonTooManyColors {
		t.Fatalf("expected %s, got %s", ReasonTooManyColors, outcome.Reason)
	}
}

func TestValidateRejectsSparseInk(t *testing.T) {
	// Light page with a single small dark mark: 1% ink, below the 5% floor.
	grid := uniformRGB(100, 100, 235)
	fillRGBRect(grid, 45, 45, 55, 55, 20)

	outcome := Validate(grid, DefaultConfig())
	if outcome.Reason != ReasonInvalidBlackPixelRatio {
		t.Fatalf("expected %s, got %s", ReasonInvalidBlackPixelRatio, outcome.Reason)
	}
}

func TestValidateRejectsExcessiveInk(t *testing.T) {
	// 90% mid-dark ink over a light background exceeds the 80% ceiling.
	grid := sampleGrid(100, 100, 0, 90, 255, 100)

	outcome := Validate(grid, DefaultConfig())
	if outcome.Reason != ReasonInvalidBlackPixelRatio {
		t.Fatalf("expected %s, got %s", ReasonInvalidBlackPixelRatio, outcome.Reason)
	}
}

func TestValidateRejectsDarkImage(t *testing.T) {
	// Half black, half dark gray: mean 40, below the brightness floor.
	// This image also has an out-of-range ink ratio; the brightness
	// check comes first and must win.
	grid := uniformRGB(100, 100, 0)
	fillRGBRect(grid, 50, 0, 100, 100, 80)

	outcome := Validate(grid, DefaultConfig())
	if outcome.Reason != ReasonInsufficientBrightness {
		t.Fatalf("expected %s, got %s", ReasonInsufficientBrightness, outcome.Reason)
	}
}

func TestValidateRejectsOverexposedImage(t *testing.T) {
	// 90% pure white, 10% light gray: mean 249.5, above the ceiling.
	grid := uniformRGB(100, 100, 255)
	fillRGBRect(grid, 0, 0, 100, 10, 200)

	outcome := Validate(grid, DefaultConfig())
	if outcome.Reason != ReasonInsufficientBrightness {
		t.Fatalf("expected %s, got %s", ReasonInsufficientBrightness, outcome.Reason)
	}
}

func TestValidateVarianceBoundary(t *testing.T) {
	// 2x2 checkerboard: population variance is exactly 16256.25.
	grid := NewRGBGrid(2, 2)
	grid.SetRGB(1, 0, 255, 255, 255)
	grid.SetRGB(0, 1, 255, 255, 255)

	cfg := DefaultConfig()
	cfg.MaxColorVariance = 16256.25
	if outcome := Validate(grid, cfg); !outcome.Accepted {
		t.Fatalf("variance equal to the limit must pass, got %s", outcome.Reason)
	}

	cfg.MaxColorVariance = 16256.0
	if outcome := Validate(grid, cfg); outcome.Reason != ReasonTooManyColors {
		t.Fatalf("variance above the limit must reject, got %s", outcome.Reason)
	}
}

func TestValidateDistinctMessages(t *testing.T) {
	rejections := []*RGBGrid{
		uniformRGB(64, 64, 128), // low contrast
		func() *RGBGrid { // checkerboard
			g := NewRGBGrid(64, 64)
			for y := 0; y < 64; y++ {
				for x := 0; x < 64; x++ {
					if (x+y)%2 == 0 {
						g.SetRGB(x, y, 255, 255, 255)
					}
				}
			}
			return g
		}(),
		func() *RGBGrid { // sparse ink
			g := uniformRGB(100, 100, 235)
			fillRGBRect(g, 0, 0, 10, 10, 20)
			return g
		}(),
	}

	seen := map[string]bool{}
	for _, grid := range rejections {
		outcome := Validate(grid, DefaultConfig())
		if outcome.Accepted {
			t.Fatal("expected rejection")
		}
		if seen[outcome.Message] {
			t.Fatalf("duplicate rejection message %q", outcome.Message)
		}
		seen[outcome.Message] = true
	}
}

func TestValidateDeterministic(t *testing.T) {
	grid := sampleGrid(200, 80, 30, 46, 255, 100)
	first := Validate(grid, DefaultConfig())
	second := Validate(grid, DefaultConfig())
	if first != second {
		t.Fatalf("validate is not deterministic: %+v vs %+v", first, second)
	}
}
