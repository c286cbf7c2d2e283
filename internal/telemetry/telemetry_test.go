package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRX_FloatRoundTrip(t *testing.T) {
	var r RX
	r.SetSNR(12.5)
	r.SetFreqOffset(-3.25)
	r.SetInputLevel(0.707)

	assert.InDelta(t, 12.5, r.SNR(), 1e-9)
	assert.InDelta(t, -3.25, r.FreqOffset(), 1e-9)
	assert.InDelta(t, 0.707, r.InputLevel(), 1e-9)
}

func TestRX_OutputLevelDecay(t *testing.T) {
	var r RX
	r.SetOutputLevel(1.0)
	for i := 0; i < 10; i++ {
		r.DecayOutputLevel(0.9)
	}
	assert.Less(t, r.OutputLevel(), 0.4)
}

func TestRX_Callsign(t *testing.T) {
	var r RX
	assert.Equal(t, "", r.Callsign())
	r.SetCallsign("VK3XYZ")
	assert.Equal(t, "VK3XYZ", r.Callsign())
}

func TestNewTX_Defaults(t *testing.T) {
	tx := NewTX()
	assert.Equal(t, 16384.0, tx.TXScale())
	assert.Equal(t, 1.0, tx.MicGain())
}
