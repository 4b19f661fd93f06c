package embedding

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/speaker"
)

const (
	// SpectralDimensions is the fixed vector length the fallback extractor emits.
	SpectralDimensions = 40

	spectralWindow = 512
	spectralHop    = 256
)

// Spectral is the deterministic fallback feature extractor: mel-filterbank
// log energies averaged over the segment. It is weaker than a trained model
// but stable across runs, which keeps identity matching usable when the
// model endpoint is down. Results from it are always flagged Degraded.
type Spectral struct {
	filters [][]float64
	hamming []float64
}

// NewSpectral precomputes the mel filterbank and analysis window.
func NewSpectral() *Spectral {
	hamming := make([]float64, spectralWindow)
	for i := range hamming {
		hamming[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(spectralWindow-1))
	}
	return &Spectral{
		filters: melFilterbank(SpectralDimensions, spectralWindow, audio.SampleRate),
		hamming: hamming,
	}
}

// Embed computes the averaged log mel energies of the segment, L2-normalized.
func (s *Spectral) Embed(ctx context.Context, samples []int16) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(samples) < spectralWindow {
		return Result{}, fmt.Errorf("segment too short for spectral features: %d samples", len(samples))
	}

	sums := make([]float64, SpectralDimensions)
	frameCount := 0

	for offset := 0; offset+spectralWindow <= len(samples); offset += spectralHop {
		windowed := make([]complex128, spectralWindow)
		for i := 0; i < spectralWindow; i++ {
			v := float64(samples[offset+i]) / 32768.0
			windowed[i] = complex(v*s.hamming[i], 0)
		}
		spectrum := fft(windowed)

		power := make([]float64, spectralWindow/2+1)
		for i := range power {
			power[i] = cmplx.Abs(spectrum[i])
			power[i] *= power[i]
		}

		for m, filter := range s.filters {
			var energy float64
			for bin, weight := range filter {
				energy += weight * power[bin]
			}
			sums[m] += math.Log(energy + 1e-10)
		}
		frameCount++
	}

	vector := make([]float32, SpectralDimensions)
	for i, sum := range sums {
		vector[i] = float32(sum / float64(frameCount))
	}
	return Result{Vector: speaker.Normalize(vector), Degraded: true}, nil
}

// melFilterbank builds triangular filters spaced evenly on the mel scale
// between 0 Hz and the Nyquist frequency.
func melFilterbank(bands, window, sampleRate int) [][]float64 {
	bins := window/2 + 1
	melLow := hzToMel(0)
	melHigh := hzToMel(float64(sampleRate) / 2)

	centers := make([]float64, bands+2)
	for i := range centers {
		mel := melLow + (melHigh-melLow)*float64(i)/float64(bands+1)
		hz := melToHz(mel)
		centers[i] = hz * float64(window) / float64(sampleRate)
	}

	filters := make([][]float64, bands)
	for m := 0; m < bands; m++ {
		filter := make([]float64, bins)
		left, center, right := centers[m], centers[m+1], centers[m+2]
		for bin := 0; bin < bins; bin++ {
			f := float64(bin)
			switch {
			case f > left && f < center:
				filter[bin] = (f - left) / (center - left)
			case f >= center && f < right:
				filter[bin] = (right - f) / (right - center)
			}
		}
		filters[m] = filter
	}
	return filters
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// fft is an iterative radix-2 Cooley-Tukey transform. The input length must
// be a power of two; spectralWindow guarantees that here.
func fft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			out[i], out[j] = out[j], out[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wl := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < length/2; k++ {
				even := out[start+k]
				odd := out[start+k+length/2] * w
				out[start+k] = even + odd
				out[start+k+length/2] = even - odd
				w *= wl
			}
		}
	}
	return out
}
