//go:build radae_cgo

package codec

/*
#cgo LDFLAGS: -lfargan -lm
#include <stdlib.h>
#include "fargan.h"
*/
import "C"

import "unsafe"

type cVocoder struct {
	state *C.FARGANState
}

// OpenVocoder opens and initialises a FARGAN synthesiser state.
func OpenVocoder() (Vocoder, error) {
	var st C.FARGANState
	C.fargan_init(&st)
	return &cVocoder{state: &st}, nil
}

// Continuation expects packedFeatures sized FarganWarmupFrames*NBFeatures:
// the first NBFeatures floats of each of the 5 warm-up frames, packed
// contiguously, with no auxiliary feature data interleaved in.
func (v *cVocoder) Continuation(packedFeatures []float32, contSamples int) {
	cZeros := make([]C.float, contSamples)
	cFeat := make([]C.float, len(packedFeatures))
	for i, f := range packedFeatures {
		cFeat[i] = C.float(f)
	}
	var zerosPtr *C.float
	if contSamples > 0 {
		zerosPtr = (*C.float)(unsafe.Pointer(&cZeros[0]))
	}
	C.fargan_cont(v.state, zerosPtr, (*C.float)(unsafe.Pointer(&cFeat[0])))
}

func (v *cVocoder) Synthesize(features []float32, out []float32) {
	cFeat := make([]C.float, len(features))
	for i, f := range features {
		cFeat[i] = C.float(f)
	}
	cOut := make([]C.float, len(out))
	C.fargan_synthesize(v.state, (*C.float)(unsafe.Pointer(&cOut[0])), (*C.float)(unsafe.Pointer(&cFeat[0])))
	for i, f := range cOut {
		out[i] = float32(f)
	}
}
