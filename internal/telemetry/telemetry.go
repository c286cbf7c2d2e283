// Package telemetry holds the lock-free atomic state a pipeline worker
// publishes and the controller/UI polls at roughly 30 Hz. All fields use
// relaxed ordering: distinct fields are never read as a jointly-consistent
// snapshot, so e.g. Synced and SNR may be observed from different
// iterations.
package telemetry

import (
	"math"
	"sync"
	"sync/atomic"
)

// RX holds the telemetry a decoder pipeline publishes.
type RX struct {
	Running atomic.Bool
	Synced atomic.Bool
	snrBits atomic.Uint64
	freqBits atomic.Uint64
	inputBits atomic.Uint64
	outputBits atomic.Uint64
	callsignMu sync.Mutex
	callsign string
}

// SNR, FreqOffset, InputLevel, and OutputLevel store/load float64 values
// through a bit-cast atomic, since Go has no atomic.Float64.

func (r *RX) SetSNR(v float64) { r.snrBits.Store(math.Float64bits(v)) }
func (r *RX) SNR() float64 { return math.Float64frombits(r.snrBits.Load()) }
func (r *RX) SetFreqOffset(v float64) { r.freqBits.Store(math.Float64bits(v)) }
func (r *RX) FreqOffset() float64 { return math.Float64frombits(r.freqBits.Load()) }
func (r *RX) SetInputLevel(v float64) { r.inputBits.Store(math.Float64bits(v)) }
func (r *RX) InputLevel() float64 { return math.Float64frombits(r.inputBits.Load()) }
func (r *RX) SetOutputLevel(v float64) {
	r.outputBits.Store(math.Float64bits(v))
}
func (r *RX) OutputLevel() float64 { return math.Float64frombits(r.outputBits.Load()) }

// DecayOutputLevel multiplies the published output level by factor, used by
// the RX loop to let the level meter fall gracefully when no frames are
// produced.
func (r *RX) DecayOutputLevel(factor float64) {
	r.SetOutputLevel(r.OutputLevel() * factor)
}

// SetCallsign publishes the latest accepted EOO callsign under a mutex.
func (r *RX) SetCallsign(cs string) {
	r.callsignMu.Lock()
	r.callsign = cs
	r.callsignMu.Unlock()
}

// Callsign returns the last-accepted callsign, or "" if none decoded yet.
func (r *RX) Callsign() string {
	r.callsignMu.Lock()
	defer r.callsignMu.Unlock()
	return r.callsign
}

// TX holds the telemetry and control knobs an encoder pipeline publishes and
// the controller adjusts live.
type TX struct {
	Running atomic.Bool
	inputBits atomic.Uint64
	outputBits atomic.Uint64

	// Control knobs, adjustable while the pipeline is running.
	txScaleBits atomic.Uint64
	micGainBits atomic.Uint64
	BPFEnabled atomic.Bool
}

func (t *TX) SetInputLevel(v float64) { t.inputBits.Store(math.Float64bits(v)) }
func (t *TX) InputLevel() float64 { return math.Float64frombits(t.inputBits.Load()) }
func (t *TX) SetOutputLevel(v float64) {
	t.outputBits.Store(math.Float64bits(v))
}
func (t *TX) OutputLevel() float64 { return math.Float64frombits(t.outputBits.Load()) }

func (t *TX) SetTXScale(v float64) { t.txScaleBits.Store(math.Float64bits(v)) }
func (t *TX) TXScale() float64 { return math.Float64frombits(t.txScaleBits.Load()) }
func (t *TX) SetMicGain(v float64) { t.micGainBits.Store(math.Float64bits(v)) }
func (t *TX) MicGain() float64 { return math.Float64frombits(t.micGainBits.Load()) }

// NewTX returns a TX telemetry block initialised to defaults:
// TX scale 16384, mic gain 1.0.
func NewTX() *TX {
	t := &TX{}
	t.SetTXScale(16384)
	t.SetMicGain(1.0)
	return t
}
