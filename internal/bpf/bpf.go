// Package bpf implements the TX output bandpass filter (700-2300 Hz, 101
// taps): a Hamming-windowed sinc kernel, modulated up to a passband centre
// frequency instead of left as a lowpass.
//
// This is a pure-Go rendition of the contract described for the external
// rade_bpf_init/rade_bpf_process calls: given the same sample rate, centre,
// and bandwidth it produces the same in-place filtering behaviour those
// calls describe, for builds that don't link the C BPF.
package bpf

import "math"

const (
	// NTap is the number of FIR taps (RADE_BPF_NTAP).
	NTap = 101
	// DefaultCentreHz and DefaultBandwidthHz are the TX BPF defaults.
	DefaultCentreHz = 1600.0
	DefaultBandwidthHz = 1500.0
)

// State holds the precomputed FIR coefficients and the ring buffer needed to
// filter a complex IQ stream sample by sample.
type State struct {
	coeffs [NTap]float64
	ring []complex128
	pos int
}

// New builds a bandpass FIR of NTap taps centred at centreHz with the given
// bandwidth, for a stream sampled at sampleRate Hz.
func New(sampleRate, centreHz, bandwidthHz float64) *State {
	s := &State{ring: make([]complex128, NTap)}

	fc := bandwidthHz / 2 / sampleRate // lowpass cutoff as a fraction of fs
	centre := 2 * math.Pi * centreHz / sampleRate
	mid := float64(NTap-1) / 2

	for i := 0; i < NTap; i++ {
		n := float64(i) - mid
		var lp float64
		if n == 0 {
			lp = 2 * fc
		} else {
			lp = math.Sin(2*math.Pi*fc*n) / (math.Pi * n)
		}
		hamming := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/(NTap-1))
		s.coeffs[i] = lp * hamming * math.Cos(centre*n)
	}

	return s
}

// ProcessInPlace filters iq in place, matching the in-place-safe contract of
// the external rade_bpf_process call.
func (s *State) ProcessInPlace(iq []complex64) {
	out := make([]complex64, len(iq))
	for i, x := range iq {
		s.ring[s.pos] = complex128(x)

		var acc complex128
		for k := 0; k < NTap; k++ {
			idx := s.pos - k
			if idx < 0 {
				idx += NTap
			}
			acc += complex(s.coeffs[k], 0) * s.ring[idx]
		}
		out[i] = complex64(acc)

		s.pos = (s.pos + 1) % NTap
	}
	copy(iq, out)
}
