// Package embedding maps audio segments to fixed-length voiceprint vectors,
// with a remote model adapter and a deterministic spectral fallback.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable indicates the primary extractor cannot serve requests
// (engine not loaded, endpoint unreachable).
var ErrUnavailable = errors.New("embedding extractor unavailable")

// Result is one extracted voiceprint. Degraded marks vectors produced by the
// fallback feature extractor so callers know identity matching used a
// weaker method.
type Result struct {
	Vector   []float32
	Degraded bool
}

// Extractor maps a variable-length sample block to a fixed-length vector.
type Extractor interface {
	Embed(ctx context.Context, samples []int16) (Result, error)
}

// Strategy selects the extractor wiring at startup.
type Strategy string

const (
	// StrategyAuto uses the remote model and falls back to spectral features
	// when it is unavailable.
	StrategyAuto Strategy = "auto"
	// StrategyModel uses only the remote model; unavailability is an error.
	StrategyModel Strategy = "model"
	// StrategySpectral uses only the deterministic spectral extractor.
	StrategySpectral Strategy = "spectral"
)

// fallbackExtractor tries the primary and degrades to the secondary only on
// ErrUnavailable; other primary errors propagate unchanged.
type fallbackExtractor struct {
	primary  Extractor
	fallback Extractor
}

// WithFallback composes two extractors into the auto strategy.
func WithFallback(primary, fallback Extractor) Extractor {
	return &fallbackExtractor{primary: primary, fallback: fallback}
}

func (f *fallbackExtractor) Embed(ctx context.Context, samples []int16) (Result, error) {
	result, err := f.primary.Embed(ctx, samples)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return Result{}, err
	}
	result, ferr := f.fallback.Embed(ctx, samples)
	if ferr != nil {
		return Result{}, fmt.Errorf("fallback after unavailable primary: %w", ferr)
	}
	result.Degraded = true
	return result, nil
}
