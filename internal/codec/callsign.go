//go:build radae_cgo

package codec

/*
#cgo LDFLAGS: -lrade -lm
#include <stdlib.h>
#include "rade_api.h"
*/
import "C"

import "unsafe"

type cCallsignCodec struct{}

// OpenCallsignCodec binds the rade_callsign_* EOO payload codec: a separate
// entry point from rade_tx/rade_rx, carrying no per-call
// state of its own.
func OpenCallsignCodec() (CallsignCodec, error) {
	return cCallsignCodec{}, nil
}

func (cCallsignCodec) EncodeBits(text string, nEOOBits int) []float32 {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	out := make([]C.float, nEOOBits)
	var outPtr *C.float
	if nEOOBits > 0 {
		outPtr = (*C.float)(unsafe.Pointer(&out[0]))
	}
	C.rade_callsign_encode(ctext, outPtr, C.int(nEOOBits))

	bits := make([]float32, nEOOBits)
	for i, v := range out {
		bits[i] = float32(v)
	}
	return bits
}

func (cCallsignCodec) DecodeBits(bits []float32) (string, bool) {
	cbits := make([]C.float, len(bits))
	for i, v := range bits {
		cbits[i] = C.float(v)
	}
	var inPtr *C.float
	if len(cbits) > 0 {
		inPtr = (*C.float)(unsafe.Pointer(&cbits[0]))
	}

	buf := make([]C.char, 9) // max 8 chars + NUL
	ok := C.rade_callsign_decode(inPtr, C.int(len(bits)), (*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf)))
	if ok == 0 {
		return "", false
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0]))), true
}
