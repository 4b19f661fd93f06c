package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	result Result
	err    error
	calls  int
}

func (s *stubExtractor) Embed(context.Context, []int16) (Result, error) {
	s.calls++
	return s.result, s.err
}

func TestWithFallbackUsesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	primary := &stubExtractor{result: Result{Vector: []float32{1, 0}}}
	fallback := &stubExtractor{result: Result{Vector: []float32{0, 1}, Degraded: true}}

	got, err := WithFallback(primary, fallback).Embed(context.Background(), make([]int16, 8000))
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0}, got.Vector)
	require.False(t, got.Degraded)
	require.Zero(t, fallback.calls)
}

func TestWithFallbackDegradesOnUnavailable(t *testing.T) {
	t.Parallel()

	primary := &stubExtractor{err: fmt.Errorf("embed: %w", ErrUnavailable)}
	fallback := &stubExtractor{result: Result{Vector: []float32{0, 1}}}

	got, err := WithFallback(primary, fallback).Embed(context.Background(), make([]int16, 8000))
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1}, got.Vector)
	require.True(t, got.Degraded)
}

func TestWithFallbackPropagatesOtherPrimaryErrors(t *testing.T) {
	t.Parallel()

	primaryErr := errors.New("malformed response")
	primary := &stubExtractor{err: primaryErr}
	fallback := &stubExtractor{result: Result{Vector: []float32{0, 1}}}

	_, err := WithFallback(primary, fallback).Embed(context.Background(), make([]int16, 8000))
	require.ErrorIs(t, err, primaryErr)
	require.Zero(t, fallback.calls)
}

func TestWithFallbackSurfacesFallbackFailure(t *testing.T) {
	t.Parallel()

	primary := &stubExtractor{err: ErrUnavailable}
	fallback := &stubExtractor{err: errors.New("segment too short")}

	_, err := WithFallback(primary, fallback).Embed(context.Background(), make([]int16, 8000))
	require.Error(t, err)
	require.Contains(t, err.Error(), "fallback after unavailable primary")
}
