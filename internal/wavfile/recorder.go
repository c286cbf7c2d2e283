package wavfile

import (
	"encoding/binary"
	"io"
	"sync"
)

const headerSize = 44

// Recorder is a thread-safe mono 16-bit PCM WAV appender. It writes a
// placeholder header in NewRecorder and back-patches the RIFF/data sizes on Close.
// Close is idempotent.
type Recorder struct {
	mu sync.Mutex
	w io.WriteSeeker
	sampleRate uint32
	dataBytes uint32
	closed bool
}

// NewRecorder writes the 44-byte placeholder header and returns a Recorder
// ready to accept samples.
func NewRecorder(w io.WriteSeeker, sampleRate uint32) (*Recorder, error) {
	r := &Recorder{w: w, sampleRate: sampleRate}
	if err := r.writeHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) writeHeader() error {
	var h [headerSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36) // placeholder, patched on Close
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], 1) // mono
	binary.LittleEndian.PutUint32(h[24:28], r.sampleRate)
	byteRate := r.sampleRate * 1 * 16 / 8
	binary.LittleEndian.PutUint32(h[28:32], byteRate)
	binary.LittleEndian.PutUint16(h[32:34], 2) // block align: 1 channel * 16 bits / 8
	binary.LittleEndian.PutUint16(h[34:36], 16)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], 0) // placeholder, patched on Close

	_, err := r.w.Write(h[:])
	return err
}

// Write appends n 16-bit samples. A write failure is silent:
// samples are dropped and recording continues so the header can still be
// patched with whatever was written.
func (r *Recorder) Write(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(s))
	}
	n, err := r.w.Write(buf)
	if err != nil {
		// Count only what actually landed, so the patched header matches
		// the file contents even on a short/failed write.
		r.dataBytes += uint32(n)
		return
	}
	r.dataBytes += uint32(len(buf))
}

// Close patches the RIFF and data chunk sizes and marks the recorder closed.
// Subsequent calls are no-ops.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if _, err := r.w.Seek(4, io.SeekStart); err != nil {
		return err
	}
	var riffSize [4]byte
	binary.LittleEndian.PutUint32(riffSize[:], 36+r.dataBytes)
	if _, err := r.w.Write(riffSize[:]); err != nil {
		return err
	}

	if _, err := r.w.Seek(40, io.SeekStart); err != nil {
		return err
	}
	var dataSize [4]byte
	binary.LittleEndian.PutUint32(dataSize[:], r.dataBytes)
	if _, err := r.w.Write(dataSize[:]); err != nil {
		return err
	}

	return nil
}

// DataBytes returns the number of sample bytes written so far.
func (r *Recorder) DataBytes() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dataBytes
}
