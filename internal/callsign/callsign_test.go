package callsign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_UppercasesAndKeepsAllowedChars(t *testing.T) {
	assert.Equal(t, "VK3XYZ", Sanitize("vk3xyz"))
}

func TestSanitize_TruncatesToMaxChars(t *testing.T) {
	assert.Equal(t, "ABCDEFGH", Sanitize("ABCDEFGHIJKL"))
}

func TestSanitize_DropsDisallowedCharsSilently(t *testing.T) {
	assert.Equal(t, "VK3-XYZ", Sanitize("VK3-XYZ@!"))
}

func TestValid_PunctuationRange(t *testing.T) {
	for r := rune(38); r <= 47; r++ {
		assert.True(t, Valid(r))
	}
	assert.False(t, Valid(rune(37)))
	assert.False(t, Valid(rune(48+10))) // ':' just past '9'
}

type fakeCodec struct {
	encoded []float32
	decodeOK bool
	decoded string
}

func (f *fakeCodec) EncodeBits(text string, n int) []float32 {
	f.encoded = make([]float32, n)
	if len(text) > 0 {
		f.encoded[0] = 1
	}
	return f.encoded
}

func (f *fakeCodec) DecodeBits(bits []float32) (string, bool) {
	return f.decoded, f.decodeOK
}

func TestEncoder_SanitizesBeforeEncoding(t *testing.T) {
	fc := &fakeCodec{}
	enc := NewEncoder(fc)
	bits := enc.EncodeBits("vk3xyz!!", 16)
	assert.Len(t, bits, 16)
	assert.Equal(t, float32(1), bits[0])
}

func TestDecoder_PassesThroughRejection(t *testing.T) {
	fc := &fakeCodec{decodeOK: false}
	dec := NewDecoder(fc)
	text, ok := dec.Decode(make([]float32, 112))
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestDecoder_PassesThroughAcceptance(t *testing.T) {
	fc := &fakeCodec{decodeOK: true, decoded: "VK3XYZ"}
	dec := NewDecoder(fc)
	text, ok := dec.Decode(make([]float32, 112))
	assert.True(t, ok)
	assert.Equal(t, "VK3XYZ", text)
}
