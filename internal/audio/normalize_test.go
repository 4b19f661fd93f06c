package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePassthroughAtCanonicalRate(t *testing.T) {
	t.Parallel()

	buf := Buffer{1, 2, 3, 4}
	got, err := Normalize(buf.PCM16LE(), WAVInfo{SampleRate: SampleRate, Channels: 1})
	require.NoError(t, err)
	require.Equal(t, buf, got)
}

func TestNormalizeDownmixesStereo(t *testing.T) {
	t.Parallel()

	interleaved := Buffer{100, 200, -100, 100, 0, 0}
	got, err := Normalize(interleaved.PCM16LE(), WAVInfo{SampleRate: SampleRate, Channels: 2})
	require.NoError(t, err)
	require.Equal(t, Buffer{150, 0, 0}, got)
}

func TestNormalizeResamplesToCanonicalRate(t *testing.T) {
	t.Parallel()

	src := make(Buffer, 8000)
	for i := range src {
		src[i] = int16(1000 * (i % 16))
	}

	got, err := Normalize(src.PCM16LE(), WAVInfo{SampleRate: 8000, Channels: 1})
	require.NoError(t, err)

	// One second of 8 kHz input becomes roughly one second at 16 kHz; the
	// resampler may hold back a small tail.
	require.InDelta(t, float64(2*len(src)), float64(len(got)), float64(SampleRate)/10)
}

func TestNormalizeRejectsBadFormats(t *testing.T) {
	t.Parallel()

	_, err := Normalize(nil, WAVInfo{SampleRate: SampleRate, Channels: 3})
	require.Error(t, err)

	_, err = Normalize(nil, WAVInfo{SampleRate: 0, Channels: 1})
	require.Error(t, err)
}
