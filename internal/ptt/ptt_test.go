package ptt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoop_AssertDeassertNeverError(t *testing.T) {
	k := Noop()
	assert.NoError(t, k.Assert())
	assert.NoError(t, k.Deassert())
	assert.NoError(t, k.Close())
}

func TestOpenSerial_BadDeviceReturnsError(t *testing.T) {
	_, err := OpenSerial("/dev/does-not-exist-radae", LineRTS, false)
	assert.Error(t, err)
}

func TestOpenGPIO_BadChipReturnsError(t *testing.T) {
	_, err := OpenGPIO("/dev/does-not-exist-gpiochip", 0, false)
	assert.Error(t, err)
}
