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

type cRX struct {
	h *C.struct_rade
	eooBits int
	iqBuf []C.RADE_COMP
	featBuf []C.float
}

// OpenRX opens the rade_rx receiver handle, sized for nEOOBits bits of EOO
// payload (rade_n_eoo_bits at the caller's configured codec mode).
func OpenRX(nEOOBits int) (RXHandle, error) {
	h := C.rade_open(nil)
	if h == nil {
		return nil, errors.New("codec: rade_open failed")
	}
	r := &cRX{
		h: h,
		eooBits: nEOOBits,
		iqBuf: make([]C.RADE_COMP, int(C.rade_nin_max(h))),
		featBuf: make([]C.float, NFeaturesInOut),
	}
	return r, nil
}

func (r *cRX) Nin() int { return int(C.rade_nin(r.h)) }
func (r *cRX) NinMax() int { return int(C.rade_nin_max(r.h)) }

func (r *cRX) Process(iq []complex64, featuresOut []float32) (int, bool, []float32) {
	n := len(iq)
	if n > len(r.iqBuf) {
		r.iqBuf = make([]C.RADE_COMP, n)
	}
	for i, c := range iq {
		r.iqBuf[i].real = C.float(real(c))
		r.iqBuf[i].imag = C.float(imag(c))
	}

	var eooFlag C.int
	eooBits := make([]C.float, r.eooBits)
	var eooBitsPtr *C.float
	if r.eooBits > 0 {
		eooBitsPtr = (*C.float)(unsafe.Pointer(&eooBits[0]))
	}

	nFeat := int(C.rade_rx(r.h, (*C.float)(unsafe.Pointer(&r.featBuf[0])), &eooFlag, eooBitsPtr, (*C.RADE_COMP)(unsafe.Pointer(&r.iqBuf[0]))))

	for i := 0; i < nFeat && i < len(featuresOut); i++ {
		featuresOut[i] = float32(r.featBuf[i])
	}

	var bits []float32
	if eooFlag != 0 {
		bits = make([]float32, r.eooBits)
		for i, b := range eooBits {
			bits[i] = float32(b)
		}
	}

	return nFeat, eooFlag != 0, bits
}

func (r *cRX) Sync() bool { return C.rade_sync(r.h) != 0 }
func (r *cRX) SNRdB() float64 { return float64(C.rade_snrdB_3k_est(r.h)) }
func (r *cRX) FreqOffset() float64 { return float64(C.rade_freq_offset(r.h)) }

func (r *cRX) Close() error {
	C.rade_close(r.h)
	return nil
}
