package speaker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosineIdentityAndSymmetry(t *testing.T) {
	t.Parallel()

	a := []float32{0.3, -0.5, 0.8}
	b := []float32{0.1, 0.9, -0.2}

	require.InDelta(t, 1.0, Cosine(a, a), 1e-9)
	require.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}

func TestCosineDegenerateInputs(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	require.Equal(t, 0.0, Cosine(nil, nil))
	require.Equal(t, 0.0, Cosine([]float32{0, 0, 0}, []float32{1, 2, 3}))
}

func TestCosineScaleInvariance(t *testing.T) {
	t.Parallel()

	a := []float32{0.2, 0.4, -0.1}
	scaled := []float32{2, 4, -1}
	require.InDelta(t, 1.0, Cosine(a, scaled), 1e-6)
}

func TestNormalizeProducesUnitNorm(t *testing.T) {
	t.Parallel()

	v := Normalize([]float32{3, 4})
	require.InDelta(t, 0.6, float64(v[0]), 1e-6)
	require.InDelta(t, 0.8, float64(v[1]), 1e-6)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	t.Parallel()

	v := Normalize([]float32{0, 0, 0})
	require.Equal(t, []float32{0, 0, 0}, v)
}

func TestRefreshMovesTowardCandidate(t *testing.T) {
	t.Parallel()

	stored := Normalize([]float32{1, 0})
	candidate := Normalize([]float32{0, 1})

	storedCopy := append([]float32(nil), stored...)
	refreshed := Refresh(stored, candidate, 0.30)

	// Inputs stay untouched; the result moves toward the candidate and keeps
	// unit norm.
	require.Equal(t, storedCopy, stored)
	require.Greater(t, Cosine(refreshed, candidate), Cosine(stored, candidate))
	require.Greater(t, Cosine(refreshed, stored), Cosine(candidate, stored))

	var sum float64
	for _, x := range refreshed {
		sum += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestRefreshZeroWeightReturnsStored(t *testing.T) {
	t.Parallel()

	stored := []float32{0.6, 0.8}
	out := Refresh(stored, []float32{1, 0}, 0)
	require.Equal(t, stored, out)
}

func TestRefreshMismatchedLengthsReturnsStored(t *testing.T) {
	t.Parallel()

	stored := []float32{0.6, 0.8}
	out := Refresh(stored, []float32{1, 0, 0}, 0.5)
	require.Equal(t, stored, out)
}

func TestRefreshWeightOneReplacesStored(t *testing.T) {
	t.Parallel()

	stored := Normalize([]float32{1, 0})
	candidate := Normalize([]float32{0, 1})

	out := Refresh(stored, candidate, 1)
	require.InDelta(t, 1.0, Cosine(out, candidate), 1e-6)
}

func TestEmbeddingCodecRoundTrip(t *testing.T) {
	t.Parallel()

	original := []float32{0.5, -1.25, float32(math.Pi), 0}
	decoded, err := DecodeEmbedding(EncodeEmbedding(original))
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodeEmbeddingRejectsBadLengths(t *testing.T) {
	t.Parallel()

	_, err := DecodeEmbedding(nil)
	require.Error(t, err)

	_, err = DecodeEmbedding([]byte{1, 2, 3})
	require.Error(t, err)
}
