//go:build !radae_cgo

package codec

// OpenRX, OpenTX, OpenFeatureEncoder, and OpenVocoder are the constructors a
// build without the radae_cgo tag provides. They always fail: the neural
// codec is a linked external library, not something this
// module can synthesise a working substitute for.

func OpenRX(nEOOBits int) (RXHandle, error) {
	return nil, ErrCodecUnavailable
}

func OpenTX(nEOOBits int) (TXHandle, error) {
	return nil, ErrCodecUnavailable
}

func OpenFeatureEncoder() (FeatureEncoder, error) {
	return nil, ErrCodecUnavailable
}

func OpenVocoder() (Vocoder, error) {
	return nil, ErrCodecUnavailable
}

func OpenCallsignCodec() (CallsignCodec, error) {
	return nil, ErrCodecUnavailable
}

func OpenBPF(sampleRate, centreHz, bandwidthHz float64, nIQ int) (BPFHandle, error) {
	return nil, ErrCodecUnavailable
}
