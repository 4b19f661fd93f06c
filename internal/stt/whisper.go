package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbright/voxtrace/internal/audio"
)

// Whisper talks to an OpenAI-compatible Whisper HTTP endpoint. Segments are
// shipped as 16 kHz mono WAV and the response's per-segment no_speech_prob
// values are folded into a single confidence score.
type Whisper struct {
	url      string
	language string
	client   *http.Client
}

// NewWhisper builds a transcriber for the given endpoint URL. An empty
// language lets the engine auto-detect.
func NewWhisper(url, language string, timeout time.Duration) *Whisper {
	return &Whisper{
		url:      url,
		language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

type whisperSegment struct {
	NoSpeechProb float64 `json:"no_speech_prob"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

// Transcribe posts the segment and decodes the engine's verbose JSON response.
func (w *Whisper) Transcribe(ctx context.Context, samples []int16) (Result, error) {
	if len(samples) == 0 {
		return Result{}, fmt.Errorf("transcribe: empty segment")
	}

	wav := audio.EncodeWAV(audio.Buffer(samples))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(wav))
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	if w.language != "" {
		req.Header.Set("X-Language", w.language)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Result{}, fmt.Errorf("transcribe: %w: %v", ErrTimeout, ctx.Err())
		case errors.Is(err, context.DeadlineExceeded):
			return Result{}, fmt.Errorf("transcribe: %w: %v", ErrTimeout, err)
		default:
			return Result{}, fmt.Errorf("transcribe: %w: %v", ErrUnavailable, err)
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("transcribe: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("transcribe: status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("transcribe: decode response: %w", err)
	}

	return Result{
		Text:       parsed.Text,
		Language:   parsed.Language,
		Confidence: confidence(parsed.Segments),
	}, nil
}

// confidence averages the no-speech probabilities across segments and inverts
// the mean. Engines that omit segment detail yield ConfidenceUnknown.
func confidence(segments []whisperSegment) float64 {
	if len(segments) == 0 {
		return ConfidenceUnknown
	}
	var sum float64
	for _, s := range segments {
		sum += s.NoSpeechProb
	}
	c := 1 - sum/float64(len(segments))
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
