//go:build radae_cgo

package codec

/*
#cgo LDFLAGS: -llpcnetfreq -lm
#include <stdlib.h>
#include "lpcnet.h"
*/
import "C"

import "unsafe"

type cFeatureEncoder struct {
	state *C.LPCNetEncState
	arch C.int
}

// OpenFeatureEncoder opens an LPCNet feature-extraction encoder state.
func OpenFeatureEncoder() (FeatureEncoder, error) {
	st := C.lpcnet_encoder_create()
	return &cFeatureEncoder{state: st}, nil
}

func (e *cFeatureEncoder) Encode(pcm []int16) []float32 {
	cPCM := make([]C.short, len(pcm))
	for i, s := range pcm {
		cPCM[i] = C.short(s)
	}
	var out [NBTotalFeatures]C.float
	C.lpcnet_compute_single_frame_features(e.state, (*C.short)(unsafe.Pointer(&cPCM[0])), (*C.float)(unsafe.Pointer(&out[0])), e.arch)

	features := make([]float32, NBTotalFeatures)
	for i, f := range out {
		features[i] = float32(f)
	}
	return features
}

func (e *cFeatureEncoder) Close() error {
	C.lpcnet_encoder_destroy(e.state)
	return nil
}
