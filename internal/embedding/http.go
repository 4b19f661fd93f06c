package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/speaker"
)

// HTTP extracts voiceprints from a remote embedding service. The segment is
// wrapped in a WAV container and POSTed; the service answers with a JSON
// body carrying the vector.
type HTTP struct {
	url        string
	dimensions int
	client     *http.Client
}

// NewHTTP builds a remote extractor for the given endpoint. dimensions is
// the vector length the deployment's model emits; responses of any other
// length are rejected.
func NewHTTP(url string, dimensions int, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		url:        url,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed POSTs the segment and returns the service's L2-normalized vector.
// Connection failures and 5xx responses surface as ErrUnavailable.
func (h *HTTP) Embed(ctx context.Context, samples []int16) (Result, error) {
	wav := audio.EncodeWAV(audio.Buffer(samples))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(wav))
	if err != nil {
		return Result{}, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("%w: embedding service returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("embedding service returned HTTP %d", resp.StatusCode)
	}

	var payload embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("decode embed response: %w", err)
	}
	if h.dimensions > 0 && len(payload.Embedding) != h.dimensions {
		return Result{}, fmt.Errorf("embedding has %d dimensions, want %d", len(payload.Embedding), h.dimensions)
	}
	if len(payload.Embedding) == 0 {
		return Result{}, fmt.Errorf("embedding service returned an empty vector")
	}

	return Result{Vector: speaker.Normalize(payload.Embedding)}, nil
}
