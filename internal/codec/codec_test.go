package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants_Consistent(t *testing.T) {
	assert.Equal(t, FeaturesPerModemFrame*NBTotalFeatures, NFeaturesInOut)
}

func TestStubReturnsUnavailable(t *testing.T) {
	if _, err := OpenRX(112); err != nil {
		assert.ErrorIs(t, err, ErrCodecUnavailable)
	}
	if _, err := OpenTX(112); err != nil {
		assert.ErrorIs(t, err, ErrCodecUnavailable)
	}
}
