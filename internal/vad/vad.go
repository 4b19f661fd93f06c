// Package vad wraps the per-frame speech/non-speech decision primitive
// consumed by the segmenter.
package vad

// Classifier decides whether one fixed-size audio frame contains speech.
// Implementations receive exactly one classifier frame (30 ms at 16 kHz).
type Classifier interface {
	Classify(frame []int16) (bool, error)
}

// Func adapts a function to the Classifier interface.
type Func func(frame []int16) (bool, error)

func (f Func) Classify(frame []int16) (bool, error) {
	return f(frame)
}
