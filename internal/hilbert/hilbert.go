// Package hilbert implements the 127-tap Hamming-windowed ideal-Hilbert FIR
// used by the RX pipeline, paired with a matched 63-sample delay line on the
// real branch so the two outputs form a phase-aligned complex IQ stream.
//
// The coefficient generation follows the usual windowed-FIR shape (a window
// function multiplied into an ideal kernel), here specialised to the
// Hilbert kernel rather than a lowpass.
package hilbert

import "math"

const (
	// NTaps is the number of FIR taps.
	NTaps = 127
	// Delay is the FIR's group delay in samples, and the length of the
	// matched delay line applied to the real branch.
	Delay = 63
)

// State holds the coefficient table and the two ring buffers (one for the
// FIR history, one for the matched real-branch delay) needed to process a
// streaming sample at a time.
type State struct {
	coeffs [NTaps]float32

	hist []float32
	pos int

	delay []float32
	dpos int
}

// NewState precomputes the Hilbert coefficients and allocates the ring
// buffers.
func NewState() *State {
	s := &State{
		hist: make([]float32, NTaps),
		delay: make([]float32, NTaps),
	}
	for i := 0; i < NTaps; i++ {
		s.coeffs[i] = float32(coefficient(i))
	}
	return s
}

func coefficient(i int) float64 {
	n := i - Delay
	if n == 0 || n%2 == 0 {
		return 0
	}
	hamming := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/126)
	return (2.0 / (math.Pi * float64(n))) * hamming
}

// Coefficients returns a copy of the FIR coefficient table, mainly for
// testing the antisymmetry/zero-tap invariants.
func (s *State) Coefficients() [NTaps]float32 {
	return s.coeffs
}

// Process advances the filter by one real input sample and returns the
// matching complex (real, imag) output.
func (s *State) Process(x float32) (real, imag float32) {
	s.hist[s.pos] = x

	var acc float32
	for k := 0; k < NTaps; k++ {
		idx := s.pos - k
		if idx < 0 {
			idx += NTaps
		}
		acc += s.coeffs[k] * s.hist[idx]
	}
	imag = acc

	s.delay[s.dpos] = x
	ridx := s.dpos - Delay
	if ridx < 0 {
		ridx += NTaps
	}
	real = s.delay[ridx]

	s.pos = (s.pos + 1) % NTaps
	s.dpos = (s.dpos + 1) % NTaps

	return real, imag
}

// ProcessBlock runs Process over every sample of in, writing the analytic
// signal into out (which must have the same length as in).
func (s *State) ProcessBlock(in []float32, out []complex64) {
	for i, x := range in {
		re, im := s.Process(x)
		out[i] = complex(re, im)
	}
}
