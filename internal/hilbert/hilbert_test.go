package hilbert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoefficients_Antisymmetric(t *testing.T) {
	s := NewState()
	c := s.Coefficients()

	assert.InDelta(t, 0, c[Delay], 1e-9, "centre tap must be zero")

	for i := 0; i < NTaps; i++ {
		n := i - Delay
		mirror := Delay - n // index of -n
		if mirror < 0 || mirror >= NTaps {
			continue
		}
		assert.InDelta(t, -float64(c[i]), float64(c[mirror]), 1e-6)
	}
}

func TestCoefficients_EvenTapsZero(t *testing.T) {
	s := NewState()
	c := s.Coefficients()
	for i := 0; i < NTaps; i++ {
		n := i - Delay
		if n != 0 && n%2 == 0 {
			assert.InDelta(t, 0, c[i], 1e-9, "even-offset tap %d should be zero", i)
		}
	}
}

func TestAnalyticProperty(t *testing.T) {
	const fs = 8000.0
	for _, f := range []float64{200, 800, 1500, 3000, 3900} {
		s := NewState()
		n := 4000
		var maxErr, sumMag float64
		count := 0
		for i := 0; i < n; i++ {
			x := float32(math.Sin(2 * math.Pi * f * float64(i) / fs))
			re, im := s.Process(x)
			if i < Delay {
				continue // still filling the delay line
			}
			mag := float64(re)*float64(re) + float64(im)*float64(im)
			if e := math.Abs(mag - 1.0); e > maxErr {
				maxErr = e
			}
			sumMag += mag
			count++
		}
		avg := sumMag / float64(count)
		assert.InDelta(t, 1.0, avg, 0.05, "average magnitude^2 should be near 1 for f=%v", f)
	}
}
