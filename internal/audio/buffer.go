// Package audio defines the canonical PCM buffer model, WAV codec, boundary
// normalization, and Pulse capture streams.
package audio

import "time"

const (
	// SampleRate is the canonical internal sample rate. Every buffer that
	// reaches the segmenter is mono 16 kHz signed 16-bit PCM.
	SampleRate = 16000

	// FrameDuration is the fixed classifier frame length.
	FrameDuration = 30 * time.Millisecond

	// FrameSamples is the number of samples in one classifier frame
	// (30 ms at 16 kHz).
	FrameSamples = SampleRate * 30 / 1000
)

// Buffer is a mono 16 kHz sequence of signed amplitude samples.
type Buffer []int16

// Duration returns the buffer length as wall time.
func (b Buffer) Duration() time.Duration {
	return time.Duration(len(b)) * time.Second / SampleRate
}

// Seconds returns the buffer length in seconds.
func (b Buffer) Seconds() float64 {
	return float64(len(b)) / SampleRate
}

// Frames partitions the buffer into fixed-size non-overlapping classifier
// frames. A trailing partial frame is dropped.
func (b Buffer) Frames() []Buffer {
	n := len(b) / FrameSamples
	frames := make([]Buffer, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, b[i*FrameSamples:(i+1)*FrameSamples])
	}
	return frames
}

// FromPCM16LE converts raw little-endian 16-bit PCM bytes into a Buffer.
// A trailing odd byte is dropped.
func FromPCM16LE(data []byte) Buffer {
	samples := make(Buffer, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[2*i]) | int16(data[2*i+1])<<8
	}
	return samples
}

// PCM16LE serializes the buffer as raw little-endian 16-bit PCM bytes.
func (b Buffer) PCM16LE() []byte {
	out := make([]byte, len(b)*2)
	for i, s := range b {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
