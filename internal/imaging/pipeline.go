package imaging

import (
	"bytes"
	"fmt"
	"image/png"
)

// DecodeError reports input bytes that do not parse as a supported
// image format. It is distinct from ValidationError: retrying with the
// same bytes cannot succeed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Outcome exposes the decode failure as a verdict for callers that
// report both failure classes through one channel. The raw codec error
// never appears in the message.
func (e *DecodeError) Outcome() Outcome {
	return reject(ReasonUndecodable, "the file could not be read as an image; upload a JPEG or PNG photo")
}

// ValidationError reports a structurally valid image that failed the
// statistical checks. The user can recover by supplying a different
// photo.
type ValidationError struct {
	Outcome Outcome
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("image rejected (%s): %s", e.Outcome.Reason, e.Outcome.Message)
}

// Pipeline turns an uploaded photo into the canonical buffer the
// classifier consumes. It holds no per-invocation state; a single
// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg Config
}

// NewPipeline builds a pipeline with the given thresholds.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Config returns the thresholds the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process decodes, validates, and canonicalizes a raw upload. On
// success the returned bytes are a lossless grayscale PNG of exactly
// TargetWidth×TargetHeight whose pixel values are drawn from {0, 255},
// with the writing rendered white on a black background. Failures are
// *DecodeError or *ValidationError; the transform chain never runs for
// a rejected image.
func (p *Pipeline) Process(raw []byte) ([]byte, error) {
	rgb, err := Decode(raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	if outcome := Validate(rgb, p.cfg); !outcome.Accepted {
		return nil, &ValidationError{Outcome: outcome}
	}

	luma := ToLuma(rgb)
	luma = Enhance(luma, p.cfg.ContrastFactor)
	luma = Threshold(luma, p.cfg.ThresholdValue)
	luma = Invert(luma)
	canonical := Canonicalize(luma, p.cfg.TargetWidth, p.cfg.TargetHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canonical.Gray()); err != nil {
		return nil, fmt.Errorf("encode canonical image: %w", err)
	}
	return buf.Bytes(), nil
}
