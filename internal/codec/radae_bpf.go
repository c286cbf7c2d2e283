//go:build radae_cgo

package codec

/*
#cgo LDFLAGS: -lrade -lm
#include <stdlib.h>
#include "rade_api.h"
*/
import "C"

import "unsafe"

// bpfNTap mirrors internal/bpf.NTap; kept local so this file doesn't need to
// import the pure-Go fallback package just for one constant.
const bpfNTap = 101

type cBPF struct {
	state C.struct_rade_bpf
	nIQ int
}

// OpenBPF initialises the external 101-tap bandpass filter centred at
// centreHz with the given bandwidth, sized for nIQ complex samples per
// ProcessInPlace call (960 for modem frames, 1152 for EOO).
func OpenBPF(sampleRate, centreHz, bandwidthHz float64, nIQ int) (BPFHandle, error) {
	b := &cBPF{nIQ: nIQ}
	C.rade_bpf_init(&b.state, C.int(bpfNTap), C.float(sampleRate), C.float(centreHz), C.float(bandwidthHz), C.int(nIQ))
	return b, nil
}

func (b *cBPF) ProcessInPlace(iq []complex64) {
	if len(iq) == 0 {
		return
	}
	buf := make([]C.RADE_COMP, len(iq))
	for i, x := range iq {
		buf[i].real = C.float(real(x))
		buf[i].imag = C.float(imag(x))
	}
	ptr := (*C.RADE_COMP)(unsafe.Pointer(&buf[0]))
	C.rade_bpf_process(&b.state, ptr, ptr, C.int(len(iq)))
	for i, c := range buf {
		iq[i] = complex(float32(c.real), float32(c.imag))
	}
}
