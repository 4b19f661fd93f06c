package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Normalize converts arbitrary 16-bit PCM (any of 1-2 channels, any sample
// rate) into the canonical mono 16 kHz Buffer. Stereo input is downmixed
// before resampling. This is the only boundary through which external audio
// enters the pipeline.
func Normalize(pcm []byte, info WAVInfo) (Buffer, error) {
	if info.Channels < 1 || info.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", info.Channels)
	}
	if info.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", info.SampleRate)
	}

	samples := FromPCM16LE(pcm)
	if info.Channels == 2 {
		samples = downmix(samples)
	}
	if info.SampleRate == SampleRate {
		return samples, nil
	}
	return resample(samples, info.SampleRate)
}

// downmix averages interleaved stereo sample pairs into mono.
func downmix(interleaved Buffer) Buffer {
	mono := make(Buffer, len(interleaved)/2)
	for i := range mono {
		l := int32(interleaved[2*i])
		r := int32(interleaved[2*i+1])
		mono[i] = int16((l + r) / 2)
	}
	return mono
}

// resample converts mono samples at srcRate to the canonical rate.
func resample(samples Buffer, srcRate int) (Buffer, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(SampleRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler %d->%d: %w", srcRate, SampleRate, err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample %d->%d: %w", srcRate, SampleRate, err)
	}

	out := make(Buffer, len(output))
	for i, v := range output {
		switch {
		case v > 1.0:
			out[i] = 32767
		case v < -1.0:
			out[i] = -32768
		default:
			out[i] = int16(v * 32767.0)
		}
	}
	return out, nil
}
