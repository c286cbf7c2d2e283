// Package wavfile implements the RX file-playback source (RIFF/WAVE decode
// to mono float at 8 kHz) and the WAV recorder sink tap. No third-party WAV
// PCM library was available to lean on, so this is a direct implementation
// against the RIFF chunk layout and a byte-exact header contract.
package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnparseable is returned when the input is not a well-formed RIFF/WAVE
// stream with the required fmt and data chunks.
var ErrUnparseable = errors.New("wavfile: unparseable WAV stream")

const (
	fmtPCM = 1
	fmtFloat = 3
)

type fmtChunk struct {
	format uint16
	channels uint16
	sampleRate uint32
	bitsPerSample uint16
}

// DecodeToMono8k parses a RIFF/WAVE stream, collapses it to mono float32 by
// averaging channels, and resamples the result once to 8 kHz using a
// one-shot (non-streaming) linear interpolation pass.
func DecodeToMono8k(r io.Reader) ([]float32, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE markers", ErrUnparseable)
	}

	var fc *fmtChunk
	var mono []float32

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		id := string(chunkHeader[0:4])
		size := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
			}
			if len(body) < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrUnparseable)
			}
			fc = &fmtChunk{
				format: binary.LittleEndian.Uint16(body[0:2]),
				channels: binary.LittleEndian.Uint16(body[2:4]),
				sampleRate: binary.LittleEndian.Uint32(body[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
			}
			if fc.format != fmtPCM && fc.format != fmtFloat {
				return nil, fmt.Errorf("%w: unsupported format tag %d", ErrUnparseable, fc.format)
			}
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
				}
			}

		case "data":
			if fc == nil {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrUnparseable)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
			}
			var err error
			mono, err = decodeMono(body, fc)
			if err != nil {
				return nil, err
			}
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
				}
			}

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
			}
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
				}
			}
		}
	}

	if fc == nil || mono == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrUnparseable)
	}

	return resampleOnceTo8k(mono, int(fc.sampleRate)), nil
}

// decodeMono converts a raw PCM/float data chunk to mono float32 samples,
// averaging across channels
func decodeMono(body []byte, fc *fmtChunk) ([]float32, error) {
	bytesPerSample := int(fc.bitsPerSample) / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("%w: zero bits per sample", ErrUnparseable)
	}
	channels := int(fc.channels)
	if channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrUnparseable)
	}
	frameSize := bytesPerSample * channels
	if frameSize == 0 {
		return nil, fmt.Errorf("%w: zero frame size", ErrUnparseable)
	}
	nFrames := len(body) / frameSize

	out := make([]float32, nFrames)
	for i := 0; i < nFrames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			off := i*frameSize + c*bytesPerSample
			sum += sampleAt(body[off:off+bytesPerSample], fc)
		}
		out[i] = float32(sum / float64(channels))
	}
	return out, nil
}

func sampleAt(b []byte, fc *fmtChunk) float64 {
	switch {
	case fc.format == fmtPCM && fc.bitsPerSample == 16:
		v := int16(binary.LittleEndian.Uint16(b))
		return float64(v) / 32768.0

	case fc.format == fmtPCM && fc.bitsPerSample == 24:
		raw := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if raw&0x800000 != 0 {
			raw |= -1 << 24 // sign-extend
		}
		return float64(raw) / 8388608.0

	case fc.format == fmtPCM && fc.bitsPerSample == 32:
		v := int32(binary.LittleEndian.Uint32(b))
		return float64(v) / 2147483648.0

	case fc.format == fmtFloat && fc.bitsPerSample == 32:
		bits := binary.LittleEndian.Uint32(b)
		return float64(bitsToFloat32(bits))

	case fc.format == fmtFloat && fc.bitsPerSample == 64:
		bits := binary.LittleEndian.Uint64(b)
		return bitsToFloat64(bits)

	default:
		return 0
	}
}

// resampleOnceTo8k is a non-streaming one-shot linear-interpolation pass,
// distinct from the streaming resampler used on the live device path: the
// whole file is known up front so there is no cross-call state to carry.
func resampleOnceTo8k(in []float32, sampleRate int) []float32 {
	const targetRate = 8000
	if sampleRate == targetRate || len(in) == 0 {
		return in
	}

	nIn := len(in)
	nOut := nIn * targetRate / sampleRate
	out := make([]float32, nOut)

	ratio := float64(sampleRate) / float64(targetRate)
	for i := 0; i < nOut; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx > nIn-2 {
			idx = nIn - 2
		}
		if idx < 0 {
			idx = 0
		}
		f := pos - float64(idx)
		out[i] = in[idx] + float32(f)*(in[idx+1]-in[idx])
	}
	return out
}
