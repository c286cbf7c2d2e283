package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibration_FullScaleSineAtBin(t *testing.T) {
	const k = 40 // bin index -> frequency k * fs/FFTSize
	samples := make([]float32, FFTSize)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * float64(k) * float64(i) / FFTSize))
	}

	p := NewProbe()
	p.Publish(samples)

	out := make([]float32, Bins)
	n := p.Snapshot(out)
	require.Equal(t, Bins, n)

	assert.InDelta(t, 0, out[k], 0.5, "peak bin should be near 0 dB")

	for j := range out {
		if j == k || j == k-1 || j == k+1 {
			continue // skip the peak's immediate neighbours (window leakage)
		}
		assert.Less(t, out[j], float32(-40), "bin %d should be well below the peak", j)
	}
}

func TestSnapshot_EmptyBeforePublish(t *testing.T) {
	p := NewProbe()
	out := make([]float32, Bins)
	n := p.Snapshot(out)
	assert.Equal(t, 0, n)
}

func TestPublish_IgnoresShortInput(t *testing.T) {
	p := NewProbe()
	p.Publish(make([]float32, FFTSize-1))
	out := make([]float32, Bins)
	assert.Equal(t, 0, p.Snapshot(out))
}

func TestPublish_UsesLastFFTSizeSamples(t *testing.T) {
	const k = 10
	prefix := make([]float32, 1000) // garbage earlier samples
	for i := range prefix {
		prefix[i] = 1000
	}
	tone := make([]float32, FFTSize)
	for i := range tone {
		tone[i] = float32(math.Sin(2 * math.Pi * float64(k) * float64(i) / FFTSize))
	}

	p := NewProbe()
	p.Publish(append(prefix, tone...))

	out := make([]float32, Bins)
	p.Snapshot(out)
	assert.InDelta(t, 0, out[k], 0.5)
}
