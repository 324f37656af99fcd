package imaging

// Config carries the thresholds used by the validator and the transform
// chain. It is passed by value and never mutated after construction;
// tests build modified copies to probe boundary behavior.
type Config struct {
	// Validator thresholds.
	MaxColorVariance float64
	MinContrast      float64
	MinBrightness    float64
	MaxBrightness    float64
	MinBlackRatio    float64
	MaxBlackRatio    float64

	// Transform parameters.
	ThresholdValue uint8
	ContrastFactor float64
	TargetWidth    int
	TargetHeight   int
}

// DefaultConfig returns the production thresholds. The target dimensions
// are fixed by the classifier's input contract.
func DefaultConfig() Config {
	return Config{
		MaxColorVariance: 5000.0,
		MinContrast:      30.0,
		MinBrightness:    50.0,
		MaxBrightness:    240.0,
		MinBlackRatio:    0.05,
		MaxBlackRatio:    0.80,
		ThresholdValue:   128,
		ContrastFactor:   1.5,
		TargetWidth:      256,
		TargetHeight:     64,
	}
}
