//go:build radae_cgo

package codec

/*
#cgo LDFLAGS: -lrade -lm
#include <stdlib.h>
#include "rade_api.h"
*/
import "C"

import (
	"errors"
	"unsafe"
)

type cTX struct {
	h *C.struct_rade
	iqBuf []C.RADE_COMP
}

// OpenTX opens the rade_tx transmitter handle.
func OpenTX(nEOOBits int) (TXHandle, error) {
	h := C.rade_open(nil)
	if h == nil {
		return nil, errors.New("codec: rade_open failed")
	}
	return &cTX{h: h, iqBuf: make([]C.RADE_COMP, NTxEOOOut)}, nil
}

func (t *cTX) Process(features []float32, iqOut []complex64) int {
	cFeat := make([]C.float, len(features))
	for i, f := range features {
		cFeat[i] = C.float(f)
	}
	if len(t.iqBuf) < NTxOut {
		t.iqBuf = make([]C.RADE_COMP, NTxOut)
	}

	n := int(C.rade_tx(t.h, (*C.RADE_COMP)(unsafe.Pointer(&t.iqBuf[0])), (*C.float)(unsafe.Pointer(&cFeat[0]))))
	for i := 0; i < n && i < len(iqOut); i++ {
		iqOut[i] = complex(float32(t.iqBuf[i].real), float32(t.iqBuf[i].imag))
	}
	return n
}

func (t *cTX) EOO(iqOut []complex64) int {
	if len(t.iqBuf) < NTxEOOOut {
		t.iqBuf = make([]C.RADE_COMP, NTxEOOOut)
	}
	n := int(C.rade_tx_eoo(t.h, (*C.RADE_COMP)(unsafe.Pointer(&t.iqBuf[0]))))
	for i := 0; i < n && i < len(iqOut); i++ {
		iqOut[i] = complex(float32(t.iqBuf[i].real), float32(t.iqBuf[i].imag))
	}
	return n
}

func (t *cTX) SetEOOBits(bits []float32) {
	cBits := make([]C.float, len(bits))
	for i, b := range bits {
		cBits[i] = C.float(b)
	}
	if len(cBits) == 0 {
		C.rade_tx_set_eoo_bits(t.h, nil)
		return
	}
	C.rade_tx_set_eoo_bits(t.h, (*C.float)(unsafe.Pointer(&cBits[0])))
}

func (t *cTX) Close() error {
	C.rade_close(t.h)
	return nil
}
