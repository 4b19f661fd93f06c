// Package speaker holds the voiceprint math and the pure identity-resolution
// decision function.
package speaker

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of two embeddings in [-1, 1]. It
// degenerates to 0 when either vector has zero norm or the lengths differ;
// magnitude carries no meaning beyond the angle.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales the vector to unit L2 norm in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Refresh folds a matched candidate into the stored embedding as an
// exponential moving average with the given weight and renormalizes the
// result. Weight 0 returns the stored vector untouched; mismatched lengths
// also leave the stored vector untouched.
func Refresh(stored, candidate []float32, weight float64) []float32 {
	if weight <= 0 || len(stored) != len(candidate) || len(stored) == 0 {
		return stored
	}
	if weight > 1 {
		weight = 1
	}
	out := make([]float32, len(stored))
	for i := range stored {
		out[i] = float32((1-weight)*float64(stored[i]) + weight*float64(candidate[i]))
	}
	return Normalize(out)
}

// EncodeEmbedding serializes an embedding as little-endian float32 bytes for
// blob storage.
func EncodeEmbedding(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(x))
	}
	return out
}

// DecodeEmbedding deserializes little-endian float32 bytes back into an
// embedding.
func DecodeEmbedding(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}
