package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeWAVRoundTrip(t *testing.T) {
	t.Parallel()

	buf := Buffer{0, 100, -100, 32767, -32768, 7}
	wav := EncodeWAV(buf)
	require.Len(t, wav, 44+len(buf)*2)

	pcm, info, err := DecodeWAV(wav)
	require.NoError(t, err)
	require.Equal(t, SampleRate, info.SampleRate)
	require.Equal(t, 1, info.Channels)
	require.Equal(t, buf, FromPCM16LE(pcm))
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	t.Parallel()

	junk := make([]byte, 64)
	copy(junk, "OGGSjunk")
	_, _, err := DecodeWAV(junk)
	require.Error(t, err)
}

func TestDecodeWAVRejectsShortPayload(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeWAV([]byte("RIFF"))
	require.Error(t, err)
}

func TestDecodeWAVRejectsNonPCMFormat(t *testing.T) {
	t.Parallel()

	wav := EncodeWAV(make(Buffer, 16))
	// Overwrite the audio format tag with IEEE float.
	binary.LittleEndian.PutUint16(wav[20:22], 3)

	_, _, err := DecodeWAV(wav)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported wav format")
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	buf := Buffer{1, 2, 3, 4}
	wav := EncodeWAV(buf)

	// Splice a LIST chunk between fmt and data.
	list := make([]byte, 8+4)
	copy(list[0:4], "LIST")
	binary.LittleEndian.PutUint32(list[4:8], 4)
	spliced := append([]byte{}, wav[:36]...)
	spliced = append(spliced, list...)
	spliced = append(spliced, wav[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	pcm, info, err := DecodeWAV(spliced)
	require.NoError(t, err)
	require.Equal(t, 1, info.Channels)
	require.Equal(t, buf, FromPCM16LE(pcm))
}

func TestDecodeWAVStereoInfo(t *testing.T) {
	t.Parallel()

	pcm := Buffer{10, 20, 30, 40}.PCM16LE()
	wav := encodePCM16WAV(pcm, 44100, 2)

	got, info, err := DecodeWAV(wav)
	require.NoError(t, err)
	require.Equal(t, 44100, info.SampleRate)
	require.Equal(t, 2, info.Channels)
	require.Equal(t, pcm, got)
}
