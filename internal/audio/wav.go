package audio

import (
	"encoding/binary"
	"fmt"
)

// WAVInfo describes the sample format of a decoded RIFF/WAVE payload.
type WAVInfo struct {
	SampleRate int
	Channels   int
}

// EncodeWAV wraps the buffer in a minimal RIFF/WAVE header (16-bit PCM,
// mono, canonical sample rate).
func EncodeWAV(b Buffer) []byte {
	return encodePCM16WAV(b.PCM16LE(), SampleRate, 1)
}

// encodePCM16WAV prepends a 44-byte RIFF header to raw PCM16LE bytes.
func encodePCM16WAV(pcm []byte, sampleRate int, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	out := make([]byte, 44+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

// DecodeWAV parses a RIFF/WAVE payload carrying 16-bit PCM and returns the
// raw sample bytes together with format metadata. It walks the chunk list so
// files with extra chunks (LIST, fact) still decode.
func DecodeWAV(data []byte) ([]byte, WAVInfo, error) {
	if len(data) < 44 {
		return nil, WAVInfo{}, fmt.Errorf("wav payload too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, WAVInfo{}, fmt.Errorf("not a RIFF/WAVE payload")
	}

	var info WAVInfo
	var pcm []byte
	haveFmt := false

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, WAVInfo{}, fmt.Errorf("fmt chunk too short: %d bytes", chunkLen)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, WAVInfo{}, fmt.Errorf("unsupported wav format %d (want PCM)", format)
			}
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return nil, WAVInfo{}, fmt.Errorf("unsupported wav bit depth %d (want 16)", bits)
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkLen]
		}

		// Chunks are word-aligned.
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if !haveFmt {
		return nil, WAVInfo{}, fmt.Errorf("wav payload missing fmt chunk")
	}
	if pcm == nil {
		return nil, WAVInfo{}, fmt.Errorf("wav payload missing data chunk")
	}
	if info.Channels < 1 || info.Channels > 2 {
		return nil, WAVInfo{}, fmt.Errorf("unsupported wav channel count %d", info.Channels)
	}
	if info.SampleRate <= 0 {
		return nil, WAVInfo{}, fmt.Errorf("invalid wav sample rate %d", info.SampleRate)
	}
	return pcm, info, nil
}
