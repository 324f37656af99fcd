package classifier

import "context"

// Result is the classifier's answer for one canonical sample buffer.
type Result struct {
	Prediction int     `json:"prediction"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Client sends canonical sample buffers to the recognition model.
type Client interface {
	Classify(ctx context.Context, canonical []byte) (*Result, error)
}
