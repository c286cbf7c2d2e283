package controller

import (
	"errors"
	"testing"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/ptt"

	"github.com/stretchr/testify/assert"
)

// These controllers are exercised against the non-cgo codec stub, which
// always returns codec.ErrCodecUnavailable: Open fails before ever touching
// real audio hardware, since codec handles are opened first.

func TestRXController_OpenFailsWithoutCodec(t *testing.T) {
	c := NewRXController(nil)
	err := c.Open(audioio.Config{}, audioio.Config{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrCodecUnavailable))
}

func TestRXController_StartBeforeOpenIsRejected(t *testing.T) {
	c := NewRXController(nil)
	err := c.Start()
	assert.Error(t, err)
}

func TestTXController_OpenFailsWithoutCodec(t *testing.T) {
	c := NewTXController(nil, ptt.Noop())
	err := c.Open(audioio.Config{}, audioio.Config{}, false)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrCodecUnavailable))
}

func TestTXController_SetCallsignCachesWhenIdle(t *testing.T) {
	c := NewTXController(nil, ptt.Noop())
	c.SetCallsign("VK3XYZ")
	assert.Equal(t, "VK3XYZ", c.pendingCallsign)
}

func TestTXController_StopBeforeStartIsRejected(t *testing.T) {
	c := NewTXController(nil, ptt.Noop())
	err := c.Stop()
	assert.Error(t, err)
}
