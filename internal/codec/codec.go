// Package codec wraps the RADAE/LPCNet/FARGAN C-ABI collaborator. It is a
// fixed external contract: this package binds it via cgo (radae_rx.go,
// radae_tx.go, build-tagged radae_cgo) and never reimplements the neural
// codec, OFDM modem, or pilot acquisition. Builds without the vendored C
// library use stub.go, which returns ErrCodecUnavailable from every
// constructor so the rest of the module still compiles and its pure
// sample-domain logic can be tested without the external dependency
// present.
package codec

import "errors"

// ErrCodecUnavailable is returned by every constructor in a build that was
// not compiled with the radae_cgo build tag (i.e. without the external
// rade/LPCNet/FARGAN C library linked in).
var ErrCodecUnavailable = errors.New("codec: built without radae_cgo; external codec library not linked")

// Fixed C-ABI constants.
const (
	NFeaturesInOut = 432 // rade_n_features_in_out
	NTxOut = 960 // rade_n_tx_out
	NTxEOOOut = 1152
	NBTotalFeatures = 36

	// NBFeatures is the number of leading floats of each NBTotalFeatures
	// frame that FARGAN's continuation primer actually consumes; the
	// remaining floats in a frame carry auxiliary RADAE/LPCNet state FARGAN
	// has no use for.
	NBFeatures = 20

	FeaturesPerModemFrame = 12
	ModemFrameSamples = 960

	// FarganContSamples mirrors the external FARGAN header's
	// FARGAN_CONT_SAMPLES constant: the number of zero samples the
	// continuation primer call consumes alongside the five packed warm-up
	// feature frames.
	FarganContSamples = 320

	// FarganWarmupFrames is the number of feature frames FARGAN needs
	// before continuation priming.
	FarganWarmupFrames = 5

	// DefaultNEOOBits sizes the EOO bit vector
	// ahead of having an open RX/TX handle to query rade_n_eoo_bits from.
	DefaultNEOOBits = 224
)

// RXHandle is the decoder side of the rade_* C ABI: one call to Process maps
// onto one rade_rx() call, consuming exactly Nin() IQ samples and producing
// up to NFeaturesInOut/NBTotalFeatures feature frames.
type RXHandle interface {
	// Nin returns the number of IQ samples the next Process call wants.
	Nin() int
	// NinMax returns the largest value Nin can ever return, for sizing
	// caller-side buffers once at open time.
	NinMax() int
	// Process feeds exactly Nin() complex samples and returns the number of
	// feature floats written to featuresOut (a multiple of NBTotalFeatures),
	// whether this call detected an End-Of-Over frame, and the raw EOO bits
	// if so (nil otherwise).
	Process(iq []complex64, featuresOut []float32) (nFeatures int, eooDetected bool, eooBits []float32)
	// Sync reports whether the receiver is currently locked onto pilots.
	Sync() bool
	// SNRdB returns the current 3 kHz-referenced SNR estimate.
	SNRdB() float64
	// FreqOffset returns the current carrier frequency offset estimate, Hz.
	FreqOffset() float64
	Close() error
}

// TXHandle is the encoder side of the rade_* C ABI.
type TXHandle interface {
	// Process consumes FeaturesPerModemFrame*NBTotalFeatures feature floats
	// and writes up to NTxOut complex IQ samples to iqOut, returning the
	// count written.
	Process(features []float32, iqOut []complex64) int
	// EOO writes the End-Of-Over frame (NTxEOOOut samples) to iqOut and
	// returns the count written.
	EOO(iqOut []complex64) int
	// SetEOOBits installs the callsign-encoded bit vector used by the next
	// EOO call.
	SetEOOBits(bits []float32)
	Close() error
}

// FeatureEncoder wraps the LPCNet feature extractor.
type FeatureEncoder interface {
	// Encode computes one 36-float feature vector from 160 S16 PCM samples.
	Encode(pcm []int16) []float32
	Close() error
}

// Vocoder wraps the FARGAN neural speech synthesiser.
type Vocoder interface {
	// Continuation primes FARGAN with the first NBFeatures floats of each
	// of FarganWarmupFrames stored feature frames, packed contiguously
	// (FarganWarmupFrames*NBFeatures floats total), plus contSamples zero
	// samples.
	Continuation(packedFeatures []float32, contSamples int)
	// Synthesize produces 160 f32 samples @ 16 kHz from one 36-float feature
	// vector.
	Synthesize(features []float32, out []float32)
}

// BPFHandle is the external TX output bandpass filter contract behind
// rade_bpf_init/rade_bpf_process: a 101-tap filter processing complex IQ
// samples in place. internal/bpf provides a pure-Go fallback with the same
// ProcessInPlace shape for builds without the radae_cgo tag.
type BPFHandle interface {
	ProcessInPlace(iq []complex64)
}

// CallsignCodec is the external LDPC/CRC-8 EOO payload codec: a fixed C-ABI contract, not something this module reimplements.
type CallsignCodec interface {
	// EncodeBits LDPC-encodes the already-validated callsign text into
	// nEOOBits QPSK-mapped floats (first 112 real payload, the rest a known
	// filler), ready for TXHandle.SetEOOBits.
	EncodeBits(text string, nEOOBits int) []float32
	// DecodeBits attempts to recover callsign text from the interleaved I/Q
	// floats rade_rx emitted at EOO detection. ok is false when the internal
	// LDPC BER estimate exceeds threshold or the CRC-8 fails.
	DecodeBits(bits []float32) (text string, ok bool)
}
