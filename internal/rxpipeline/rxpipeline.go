// Package rxpipeline implements the decoder worker loop:
// capture audio, resample to 8 kHz, Hilbert-transform into IQ, feed the
// external RADAE receiver, FARGAN-synthesise accepted feature frames, and
// play the result back. It is the RX half of single capture
// -> process -> playback worker thread shape, generalised from AX.25/AFSK
// demodulation to this spec's neural codec chain.
package rxpipeline

import (
	"context"
	"math"
	"sync"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/callsign"
	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/hilbert"
	"github.com/peterbmarks/radae-decoder/internal/resample"
	"github.com/peterbmarks/radae-decoder/internal/spectrum"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"
	"github.com/peterbmarks/radae-decoder/internal/wavfile"

	"github.com/charmbracelet/log"
)

const (
	fsModem = 8000
	fsSpeech = 16000
	readFrame = 512 // capture read size
)

// warmup tracks the 5-frame FARGAN continuation primer state, reset on every sync-rising-edge.
// buf holds only the first NBFeatures floats of each stored frame, packed
// contiguously, per the continuation primer's expected input shape.
type warmup struct {
	ready bool
	count int
	buf [codec.FarganWarmupFrames * codec.NBFeatures]float32

	outputPrimed bool
}

func (w *warmup) reset() {
	*w = warmup{}
}

// Ctx is the RX pipeline's state: the controller constructs a fresh one on
// every Idle -> Opened transition, and every Run between that Open and the
// matching Close reuses it.
type Ctx struct {
	Capture audioio.Stream // nil in file-playback mode
	Playback audioio.Stream
	DeviceRateIn int
	DeviceRateOut int

	RX codec.RXHandle
	Vocoder codec.Vocoder

	Hilbert *hilbert.State
	ResampleIn *resample.State
	ResampleOut *resample.State
	Spectrum *spectrum.Probe
	Telemetry *telemetry.RX
	CallsignDecoder *callsign.Decoder

	// File-playback mode: a fixed 8 kHz buffer replayed instead of Capture.
	File []float32
	FilePos int

	RecorderMu *sync.Mutex
	Recorder **wavfile.Recorder

	Log *log.Logger

	acc8k []float32
	warmup warmup
}

// Run drives the worker loop until ctx is cancelled (or, in file mode,
// until the file buffer is exhausted). It always returns nil: capture read
// errors are logged and the loop carries on.
func (c *Ctx) Run(ctx context.Context) error {
	defer c.Telemetry.Running.Store(false)

	wasSynced := false
	captureBuf := make([]int16, readFrame)
	inF32 := make([]float32, readFrame)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		nin := c.RX.Nin()

		// 2. Accumulate into acc8k until it holds at least nin samples.
		for len(c.acc8k) < nin {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			var n int
			if c.Capture != nil {
				read, err := c.Capture.Read(captureBuf)
				if err == audioio.ErrOverflow {
					if c.Log != nil {
						c.Log.Warn("capture overflow")
					}
				} else if err != nil {
					// RX continues past a read error rather than stopping the
					// pipeline; this accumulation loop re-checks ctx.Done() first.
					if c.Log != nil {
						c.Log.Debug("capture read error, continuing", "err", err)
					}
					continue
				}
				n = read
				for i := 0; i < n; i++ {
					inF32[i] = float32(captureBuf[i]) / 32768.0
				}
			} else {
				n = copy(inF32, c.File[c.FilePos:])
				c.FilePos += n
				if n == 0 {
					return nil
				}
			}

			resampled := make([]float32, n*2+readFrame)
			nOut := c.ResampleIn.Resample(inF32[:n], resampled, c.DeviceRateIn, fsModem)
			c.acc8k = append(c.acc8k, resampled[:nOut]...)
		}

		// 3. Spectrum probe over the last 512 samples.
		if len(c.acc8k) >= spectrum.FFTSize {
			c.Spectrum.Publish(c.acc8k)
		}

		// 4. Input RMS over the first nin samples.
		c.Telemetry.SetInputLevel(rms(c.acc8k[:nin]))

		// 5. Hilbert transform the first nin samples, then erase them.
		iq := make([]complex64, nin)
		c.Hilbert.ProcessBlock(c.acc8k[:nin], iq)
		c.acc8k = append(c.acc8k[:0], c.acc8k[nin:]...)

		// 6. Feed the codec.
		features := make([]float32, codec.NFeaturesInOut)
		nFeat, eooDetected, eooBits := c.RX.Process(iq, features)

		// 7. Sync/SNR/freq telemetry.
		nowSynced := c.RX.Sync()
		c.Telemetry.Synced.Store(nowSynced)
		c.Telemetry.SetSNR(c.RX.SNRdB())
		c.Telemetry.SetFreqOffset(c.RX.FreqOffset())

		// 8. Sync-falling-edge: discard stale FARGAN state.
		if wasSynced && !nowSynced {
			if v, err := codec.OpenVocoder(); err == nil {
				c.Vocoder = v
			}
			c.warmup.reset()
		}
		wasSynced = nowSynced

		// 9. Feature frames.
		if nFeat > 0 {
			nFrames := nFeat / codec.NBTotalFeatures
			for f := 0; f < nFrames; f++ {
				frame := features[f*codec.NBTotalFeatures : (f+1)*codec.NBTotalFeatures]
				c.processFrame(frame)
			}
		} else {
			// 10. No output this iteration: let the meter fall.
			c.Telemetry.DecayOutputLevel(0.9)
		}

		// 11. EOO callsign.
		if eooDetected && c.CallsignDecoder != nil {
			if cs, ok := c.CallsignDecoder.Decode(eooBits); ok {
				c.Telemetry.SetCallsign(cs)
			}
		}
	}
}

func (c *Ctx) processFrame(features []float32) {
	if !c.warmup.ready {
		copy(c.warmup.buf[c.warmup.count*codec.NBFeatures:], features[:codec.NBFeatures])
		c.warmup.count++
		if c.warmup.count == codec.FarganWarmupFrames {
			c.Vocoder.Continuation(c.warmup.buf[:], codec.FarganContSamples)
			c.warmup.ready = true

			if !c.warmup.outputPrimed {
				c.warmup.outputPrimed = true
				silence := primeSilenceSamples(c.DeviceRateOut)
				c.writeSilence(silence)
			}
		}
		return
	}

	speech := make([]float32, 160)
	c.Vocoder.Synthesize(features, speech)

	c.Telemetry.SetOutputLevel(rms(speech))

	out := make([]float32, 160*2+readFrame)
	nOut := c.ResampleOut.Resample(speech, out, fsSpeech, c.DeviceRateOut)

	pcm := make([]int16, nOut)
	for i := 0; i < nOut; i++ {
		pcm[i] = clipS16(out[i])
	}

	c.writePCM(pcm)
}

// writePCM writes pcm to the playback stream and, if a recorder is
// attached, to the recorder under its mutex.
func (c *Ctx) writePCM(pcm []int16) {
	if c.Playback != nil {
		_ = c.Playback.Write(pcm)
	}
	c.tapRecorder(pcm)
}

func (c *Ctx) writeSilence(n int) {
	if n <= 0 {
		return
	}
	const chunk = 4096
	buf := make([]int16, chunk)
	for n > 0 {
		k := chunk
		if k > n {
			k = n
		}
		if c.Playback != nil {
			_ = c.Playback.Write(buf[:k])
		}
		n -= k
	}
}

func (c *Ctx) tapRecorder(pcm []int16) {
	if c.RecorderMu == nil || c.Recorder == nil {
		return
	}
	c.RecorderMu.Lock()
	r := *c.Recorder
	c.RecorderMu.Unlock()
	if r != nil {
		r.Write(pcm)
	}
}

// primeSilenceSamples computes the one-shot output pre-fill length per
// step 9.
func primeSilenceSamples(deviceRate int) int {
	v := 2.0 * float64(codec.ModemFrameSamples) * float64(codec.FeaturesPerModemFrame) * 160.0 * (float64(deviceRate) / fsSpeech)
	return int(v)
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// clipS16 converts a float sample already in PCM (S16) scale to an int16
// with symmetric saturate-clip, using round-half-away-from-zero rounding.
func clipS16(v float32) int16 {
	rounded := math.Floor(0.5 + float64(v))
	if rounded > 32767 {
		rounded = 32767
	}
	if rounded < -32767 {
		rounded = -32767
	}
	return int16(rounded)
}
