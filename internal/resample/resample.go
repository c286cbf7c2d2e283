// Package resample implements the streaming linear-interpolation resampler
// that bridges an audio device's sample rate to the codec's fixed rates
// (8 kHz modem, 16 kHz speech). It is deliberately the simplest resampler
// that preserves state across calls: higher-quality resampling would need
// re-verifying the Hilbert transform's group-delay alignment downstream,
// which is out of scope here.
package resample

import "math"

// State carries the fractional read position and the last sample of the
// previous block across calls, so that feeding a long input in arbitrary
// chunks produces the same output as feeding it in one call.
type State struct {
	Frac float64
	Prev float32
}

// Resample consumes in and produces up to len(out) samples, converting from
// rateIn to rateOut. It returns the number of samples written to out.
//
// When rateIn == rateOut the input is copied through unchanged (aside from
// updating Prev), which keeps pipelines that happen to run at the codec's
// native rate free of interpolation error.
func (s *State) Resample(in []float32, out []float32, rateIn, rateOut int) int {
	if len(in) == 0 {
		return 0
	}

	if rateIn == rateOut {
		n := len(in)
		if n > len(out) {
			n = len(out)
		}
		copy(out[:n], in[:n])
		s.Prev = in[len(in)-1]
		return n
	}

	step := float64(rateIn) / float64(rateOut)
	nOut := 0
	nIn := len(in)

	for nOut < len(out) && math.Floor(s.Frac) < float64(nIn) {
		idxF := math.Floor(s.Frac)
		f := s.Frac - idxF

		// idx can only go negative if a previous call was truncated by an
		// undersized out buffer before it drained the carried-over fraction;
		// clamp to the block boundary rather than reading out of range.
		idx := int(idxF)
		if idx < 0 {
			idx = 0
		}

		var s0 float32
		if idx == 0 {
			s0 = s.Prev
		} else {
			s0 = in[idx-1]
		}
		s1 := in[idx]

		out[nOut] = s0 + float32(f)*(s1-s0)
		nOut++
		s.Frac += step
	}

	s.Prev = in[nIn-1]
	s.Frac -= float64(nIn)

	return nOut
}
