// Package segment turns a frame-level speech signal into discrete utterance
// spans, applying padding, hangover, merging, and duration filters.
package segment

import (
	"fmt"

	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/vad"
)

// LongSpanPolicy selects how spans longer than the maximum duration are handled.
type LongSpanPolicy string

const (
	// LongSpanTruncate caps oversized spans at the maximum duration.
	LongSpanTruncate LongSpanPolicy = "truncate"
	// LongSpanDrop removes oversized spans from the output.
	LongSpanDrop LongSpanPolicy = "drop"
)

// Config controls padding, merging, and duration filtering.
type Config struct {
	PaddingMS     int
	MergeGapMS    int
	MinDurationMS int
	MaxDurationMS int
	LongSpans     LongSpanPolicy
}

// Default returns the canonical segmenter configuration.
func Default() Config {
	return Config{
		PaddingMS:     300,
		MergeGapMS:    1000,
		MinDurationMS: 500,
		MaxDurationMS: 30000,
		LongSpans:     LongSpanTruncate,
	}
}

// Span is a half-open sample interval [Start, End) over one buffer.
type Span struct {
	Start int
	End   int
}

// Samples returns the span length in samples.
func (s Span) Samples() int {
	return s.End - s.Start
}

// Seconds returns the span length in seconds.
func (s Span) Seconds() float64 {
	return float64(s.Samples()) / audio.SampleRate
}

// StartSeconds returns the span start offset in seconds.
func (s Span) StartSeconds() float64 {
	return float64(s.Start) / audio.SampleRate
}

// EndSeconds returns the span end offset in seconds.
func (s Span) EndSeconds() float64 {
	return float64(s.End) / audio.SampleRate
}

// Segment scans the buffer and returns ordered utterance spans. It is a pure
// function of the buffer, classifier output, and config; an all-silence
// buffer yields an empty sequence. Classifier failure aborts the whole buffer.
func Segment(buf audio.Buffer, classifier vad.Classifier, cfg Config) ([]Span, error) {
	frames := buf.Frames()
	if len(frames) == 0 {
		return nil, nil
	}

	labels := make([]bool, len(frames))
	for i, frame := range frames {
		speech, err := classifier.Classify(frame)
		if err != nil {
			return nil, fmt.Errorf("classify frame %d: %w", i, err)
		}
		labels[i] = speech
	}

	spans := scan(labels, len(buf), cfg)
	spans = merge(spans, cfg)
	return filter(spans, cfg), nil
}

// scan walks the label sequence with an outside/inside state, opening spans
// padded before the triggering frame and closing them after a silence
// hangover, padded past the last speech frame. A buffer ending mid-utterance
// closes the open span at the buffer end.
func scan(labels []bool, bufLen int, cfg Config) []Span {
	padding := cfg.PaddingMS * audio.SampleRate / 1000
	hangover := cfg.PaddingMS / int(audio.FrameDuration.Milliseconds())
	if hangover < 1 {
		hangover = 1
	}

	var spans []Span
	inside := false
	start := 0
	lastSpeechEnd := 0
	silenceRun := 0

	for i, speech := range labels {
		if speech {
			if !inside {
				start = max(0, i*audio.FrameSamples-padding)
				inside = true
			}
			lastSpeechEnd = (i + 1) * audio.FrameSamples
			silenceRun = 0
			continue
		}
		if !inside {
			continue
		}
		silenceRun++
		if silenceRun >= hangover {
			spans = append(spans, Span{Start: start, End: min(bufLen, lastSpeechEnd+padding)})
			inside = false
			silenceRun = 0
		}
	}

	if inside {
		spans = append(spans, Span{Start: start, End: min(bufLen, lastSpeechEnd+padding)})
	}
	return spans
}

// merge joins adjacent spans whose gap is below the merge threshold.
func merge(spans []Span, cfg Config) []Span {
	if len(spans) < 2 {
		return spans
	}
	gapSamples := cfg.MergeGapMS * audio.SampleRate / 1000

	merged := spans[:1]
	for _, span := range spans[1:] {
		last := &merged[len(merged)-1]
		if span.Start-last.End < gapSamples {
			last.End = span.End
			continue
		}
		merged = append(merged, span)
	}
	return merged
}

// filter drops spans under the minimum duration and applies the long-span policy.
func filter(spans []Span, cfg Config) []Span {
	minSamples := cfg.MinDurationMS * audio.SampleRate / 1000
	maxSamples := cfg.MaxDurationMS * audio.SampleRate / 1000

	out := spans[:0]
	for _, span := range spans {
		if span.Samples() < minSamples {
			continue
		}
		if maxSamples > 0 && span.Samples() > maxSamples {
			if cfg.LongSpans == LongSpanDrop {
				continue
			}
			span.End = span.Start + maxSamples
		}
		out = append(out, span)
	}
	return out
}
