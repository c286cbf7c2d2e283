package bpf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func toneIQ(freq, sampleRate float64, n int) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		phase := 2 * math.Pi * freq * float64(i) / sampleRate
		out[i] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	return out
}

func meanPower(iq []complex64) float64 {
	var sum float64
	// Skip the filter's settling transient at the start.
	skip := NTap
	if skip > len(iq) {
		skip = 0
	}
	for _, x := range iq[skip:] {
		sum += real(x)*real(x) + imag(x)*imag(x)
	}
	return sum / float64(len(iq)-skip)
}

func TestBandpass_RejectsOutOfBand(t *testing.T) {
	const sr = 8000.0
	inBand := toneIQ(1600, sr, 4000)
	lowTone := toneIQ(300, sr, 4000)
	highTone := toneIQ(3500, sr, 4000)

	f1 := New(sr, DefaultCentreHz, DefaultBandwidthHz)
	f1.ProcessInPlace(inBand)
	peak := meanPower(inBand)

	f2 := New(sr, DefaultCentreHz, DefaultBandwidthHz)
	f2.ProcessInPlace(lowTone)
	low := meanPower(lowTone)

	f3 := New(sr, DefaultCentreHz, DefaultBandwidthHz)
	f3.ProcessInPlace(highTone)
	high := meanPower(highTone)

	assert.Greater(t, peak, low*10)
	assert.Greater(t, peak, high*10)
}
