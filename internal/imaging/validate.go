package imaging

// FailureReason identifies why a sample was rejected.
type FailureReason string

const (
	ReasonUndecodable            FailureReason = "undecodable"
	ReasonTooManyColors          FailureReason = "too_many_colors"
	ReasonLowContrast            FailureReason = "low_contrast"
	ReasonInsufficientBrightness FailureReason = "insufficient_brightness"
	ReasonInvalidBlackPixelRatio FailureReason = "invalid_black_pixel_ratio"
)

// Outcome is the validator verdict. Reason and Message are populated
// only when Accepted is false.
type Outcome struct {
	Accepted bool
	Reason   FailureReason
	Message  string
}

func reject(reason FailureReason, message string) Outcome {
	return Outcome{Reason: reason, Message: message}
}

type lumaStats struct {
	min      uint8
	max      uint8
	mean     float64
	variance float64
	// inkRatio is the share of pixels at or below the ink threshold,
	// simulating what the binary thresholder will later keep.
	inkRatio float64
}

func computeStats(g *LumaGrid, inkThreshold uint8) lumaStats {
	var (
		sum   float64
		sumSq float64
		ink   int
	)
	min, max := uint8(255), uint8(0)
	for _, v := range g.Pix {
		f := float64(v)
		sum += f
		sumSq += f * f
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v <= inkThreshold {
			ink++
		}
	}
	n := float64(len(g.Pix))
	mean := sum / n
	return lumaStats{
		min:      min,
		max:      max,
		mean:     mean,
		variance: sumSq/n - mean*mean,
		inkRatio: float64(ink) / n,
	}
}

// Validate decides whether the image is plausibly a clean handwriting
// sample. The four checks run in fixed order and the first failure wins:
// color variance, contrast, brightness, black-pixel ratio. The result is
// a pure function of the pixels and the config.
func Validate(src *RGBGrid, cfg Config) Outcome {
	stats := computeStats(ToLuma(src), cfg.ThresholdValue)

	if stats.variance > cfg.MaxColorVariance {
		return reject(ReasonTooManyColors,
			"the photo contains too much color variation; use a plain light background with dark writing")
	}
	if float64(stats.max)-float64(stats.min) < cfg.MinContrast {
		return reject(ReasonLowContrast,
			"the writing does not stand out from the background; increase lighting or use a darker pen")
	}
	if stats.mean < cfg.MinBrightness {
		return reject(ReasonInsufficientBrightness,
			"the photo is too dark; retake it with more light")
	}
	if stats.mean > cfg.MaxBrightness {
		return reject(ReasonInsufficientBrightness,
			"the photo is overexposed; retake it with less direct light")
	}
	if stats.inkRatio < cfg.MinBlackRatio || stats.inkRatio > cfg.MaxBlackRatio {
		return reject(ReasonInvalidBlackPixelRatio,
			"the amount of writing looks wrong; fill more of the frame with the sample, on a clean background")
	}

	return Outcome{Accepted: true}
}
