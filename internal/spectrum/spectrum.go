// Package spectrum implements the windowed radix-2 FFT spectrum probe shared
// by the RX and TX pipelines: it takes the last FFTSize samples of a stream,
// windows them, transforms them, and publishes dB-scale magnitude bins under
// a mutex for the UI to read.
package spectrum

import (
	"math"
	"math/cmplx"
	"sync"
)

const (
	// FFTSize is the number of real samples folded into each spectrum update.
	FFTSize = 512
	// Bins is the number of published (one-sided) magnitude bins.
	Bins = 256
	// DBFloor and DBCeil bound the published dB-scale range.
	DBFloor = -80.0
	DBCeil = 0.0
)

// Probe holds the precomputed Hann window and the last-published magnitude
// bins. The zero value is not ready for use; construct with NewProbe.
type Probe struct {
	window [FFTSize]float64

	mu sync.Mutex
	bins [Bins]float32
	has bool
}

// NewProbe precomputes the Hann window table.
func NewProbe() *Probe {
	p := &Probe{}
	for i := 0; i < FFTSize; i++ {
		p.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/(FFTSize-1)))
	}
	return p
}

// Publish takes the last FFTSize real samples of the stream (ignoring any
// samples before that if more are supplied), windows and FFTs them, and
// stores the resulting 256 dB magnitude bins. It is a no-op if fewer than
// FFTSize samples are supplied.
func (p *Probe) Publish(samples []float32) {
	if len(samples) < FFTSize {
		return
	}
	last := samples[len(samples)-FFTSize:]

	var buf [FFTSize]complex128
	for i := 0; i < FFTSize; i++ {
		buf[i] = complex(float64(last[i])*p.window[i], 0)
	}

	fft(buf[:])

	var out [Bins]float32
	for i := 0; i < Bins; i++ {
		mag := cmplx.Abs(buf[i]) / (FFTSize / 2)
		var db float64
		if mag > 1e-10 {
			db = 20 * math.Log10(mag)
		} else {
			db = -200
		}
		out[i] = float32(db)
	}

	p.mu.Lock()
	p.bins = out
	p.has = true
	p.mu.Unlock()
}

// Snapshot copies up to len(out) of the last-published bins into out and
// returns the number copied. It returns 0 if nothing has been published yet.
func (p *Probe) Snapshot(out []float32) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.has {
		return 0
	}
	n := copy(out, p.bins[:])
	return n
}

// fft performs an in-place radix-2 decimation-in-time FFT. len(x) must be a
// power of two.
func fft(x []complex128) {
	n := len(x)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wLen := cmplx.Exp(complex(0, angle))
		for i := 0; i < n; i += length {
			w := complex(1.0, 0.0)
			half := length / 2
			for k := 0; k < half; k++ {
				u := x[i+k]
				v := x[i+k+half] * w
				x[i+k] = u + v
				x[i+k+half] = u - v
				w *= wLen
			}
		}
	}
}
