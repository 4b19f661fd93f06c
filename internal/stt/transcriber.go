// Package stt wraps the external speech-to-text engine behind a narrow
// adapter contract.
package stt

import (
	"context"
	"errors"
)

// ConfidenceUnknown is the documented sentinel reported when the engine
// provides no confidence signal. It is deliberately not 0, which would be
// indistinguishable from "engine is certain this is not speech".
const ConfidenceUnknown = -1.0

var (
	// ErrUnavailable indicates the engine is not loaded or unreachable.
	ErrUnavailable = errors.New("speech-to-text engine unavailable")
	// ErrTimeout indicates the engine did not answer within the bounded window.
	ErrTimeout = errors.New("speech-to-text request timed out")
)

// Result is one transcription outcome. Empty text with low confidence is a
// legitimate terminal result for silent or unintelligible audio, not an error.
type Result struct {
	Text       string
	Language   string
	Confidence float64
}

// Transcriber converts an audio segment into text, a language code, and a
// confidence score in [0,1] (or ConfidenceUnknown).
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) (Result, error)
}

// Func adapts a function to the Transcriber interface.
type Func func(ctx context.Context, samples []int16) (Result, error)

func (f Func) Transcribe(ctx context.Context, samples []int16) (Result, error) {
	return f(ctx, samples)
}
