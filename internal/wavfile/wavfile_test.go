package wavfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer-backed byte slice into an io.WriteSeeker
// for Recorder tests.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = int(offset)
	case io.SeekCurrent:
		s.pos += int(offset)
	case io.SeekEnd:
		s.pos = len(s.buf) + int(offset)
	}
	return int64(s.pos), nil
}

func buildWAV(t *testing.T, sampleRate, bitsPerSample, channels int, format uint16, samples []float64) []byte {
	t.Helper()

	bytesPerSample := bitsPerSample / 8
	dataSize := len(samples) * bytesPerSample

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	byteRate := sampleRate * channels * bytesPerSample
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		switch {
		case format == fmtPCM && bitsPerSample == 16:
			binary.Write(&buf, binary.LittleEndian, int16(s*32767))
		case format == fmtFloat && bitsPerSample == 32:
			binary.Write(&buf, binary.LittleEndian, float32(s))
		}
	}
	require.True(t, buf.Len() > 0)
	return buf.Bytes()
}

func TestDecodeToMono8k_16BitPassthroughRate(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 1, -1}
	wav := buildWAV(t, 8000, 16, 1, fmtPCM, samples)

	out, err := DecodeToMono8k(bytes.NewReader(wav))
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	for i, want := range samples {
		assert.InDelta(t, want, out[i], 0.001)
	}
}

func TestDecodeToMono8k_ResamplesRate(t *testing.T) {
	n := 1600
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 16000)
	}
	wav := buildWAV(t, 16000, 16, 1, fmtPCM, samples)

	out, err := DecodeToMono8k(bytes.NewReader(wav))
	require.NoError(t, err)
	assert.InDelta(t, n/2, len(out), 2)
}

func TestDecodeToMono8k_FloatFormat(t *testing.T) {
	samples := []float64{0.25, -0.25, 0.75}
	wav := buildWAV(t, 8000, 32, 1, fmtFloat, samples)

	out, err := DecodeToMono8k(bytes.NewReader(wav))
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	for i, want := range samples {
		assert.InDelta(t, want, out[i], 1e-5)
	}
}

func TestDecodeToMono8k_RejectsBadHeader(t *testing.T) {
	_, err := DecodeToMono8k(bytes.NewReader([]byte("not a wav file at all")))
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestRecorder_HeaderBackPatch(t *testing.T) {
	sb := &seekBuffer{}
	rec, err := NewRecorder(sb, 8000)
	require.NoError(t, err)

	const n = 1000
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i)
	}
	rec.Write(samples)
	require.NoError(t, rec.Close())

	require.Len(t, sb.buf, 44+2*n)
	riffSize := binary.LittleEndian.Uint32(sb.buf[4:8])
	dataSize := binary.LittleEndian.Uint32(sb.buf[40:44])
	assert.Equal(t, uint32(36+2*n), riffSize)
	assert.Equal(t, uint32(2*n), dataSize)
}

func TestRecorder_CloseIdempotent(t *testing.T) {
	sb := &seekBuffer{}
	rec, err := NewRecorder(sb, 8000)
	require.NoError(t, err)

	rec.Write([]int16{1, 2, 3})
	require.NoError(t, rec.Close())
	before := append([]byte(nil), sb.buf...)
	require.NoError(t, rec.Close())
	assert.Equal(t, before, sb.buf)
}
