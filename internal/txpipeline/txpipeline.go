// Package txpipeline implements the encoder worker loop: capture the
// microphone, extract LPCNet features, feed the external RADAE
// transmitter, optionally bandpass-filter, and play the resulting
// baseband out to the radio.
package txpipeline

import (
	"context"
	"math"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/resample"
	"github.com/peterbmarks/radae-decoder/internal/spectrum"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"

	"github.com/charmbracelet/log"
)

const (
	fsModem = 8000
	fsSpeech = 16000
	captureSize = 160 // TX capture read size
)

// Ctx is the TX pipeline's per-run state, constructed fresh by the
// controller on every Idle -> Opened transition.
type Ctx struct {
	Capture audioio.Stream
	Playback audioio.Stream
	DeviceRateIn int
	DeviceRateOut int

	TX codec.TXHandle
	Encoder codec.FeatureEncoder

	ResampleIn *resample.State
	ResampleOut *resample.State
	Spectrum *spectrum.Probe
	Telemetry *telemetry.TX
	BPF codec.BPFHandle // nil disables filtering regardless of BPFEnabled

	Log *log.Logger

	acc16k []float32
	features []float32
	featCount int
}

// Run writes the pre-roll silence, then drives the capture -> encode ->
// transmit -> playback loop until ctx is cancelled, flushing an EOO frame on
// the way out while the output stream is still writable.
func (c *Ctx) Run(ctx context.Context) error {
	c.Telemetry.Running.Store(true)
	defer c.Telemetry.Running.Store(false)

	c.features = make([]float32, codec.FeaturesPerModemFrame*codec.NBTotalFeatures)

	c.preRoll()

	captureBuf := make([]int16, captureSize)
	inF32 := make([]float32, captureSize)

	for {
		select {
		case <-ctx.Done():
			c.flushEOO()
			if c.Playback != nil {
				_ = c.Playback.Drain()
			}
			return nil
		default:
		}

		// 1. Accumulate >= 160 samples @ 16 kHz.
		for len(c.acc16k) < captureSize {
			n, err := c.Capture.Read(captureBuf)
			if err != nil && err != audioio.ErrOverflow {
				// TX sets running=false on a read error rather than
				// continuing.
				if c.Log != nil {
					c.Log.Warn("capture read error, stopping", "err", err)
				}
				c.flushEOO()
				if c.Playback != nil {
					_ = c.Playback.Drain()
				}
				return nil
			}

			micGain := c.Telemetry.MicGain()
			for i := 0; i < n; i++ {
				inF32[i] = float32(captureBuf[i]) / 32768.0 * float32(micGain)
			}

			resampled := make([]float32, n*2+captureSize)
			nOut := c.ResampleIn.Resample(inF32[:n], resampled, c.DeviceRateIn, fsSpeech)
			c.acc16k = append(c.acc16k, resampled[:nOut]...)
		}

		// 2. Drain acc16k in 160-sample frames.
		for len(c.acc16k) >= captureSize {
			select {
			case <-ctx.Done():
				c.flushEOO()
				if c.Playback != nil {
					_ = c.Playback.Drain()
				}
				return nil
			default:
			}

			frame := c.acc16k[:captureSize]

			c.Telemetry.SetInputLevel(rms(frame))

			pcm := make([]int16, captureSize)
			for i, s := range frame {
				pcm[i] = truncS16(s * 32767.0)
			}

			feat := c.Encoder.Encode(pcm)
			copy(c.features[c.featCount*codec.NBTotalFeatures:], feat)
			c.featCount++

			c.acc16k = append(c.acc16k[:0], c.acc16k[captureSize:]...)

			if c.featCount == codec.FeaturesPerModemFrame {
				c.transmitModemFrame()
				c.featCount = 0
			}
		}
	}
}

func (c *Ctx) transmitModemFrame() {
	iqOut := make([]complex64, codec.NTxOut)
	n := c.TX.Process(c.features, iqOut)
	c.sendIQ(iqOut[:n])
}

func (c *Ctx) flushEOO() {
	iqOut := make([]complex64, codec.NTxEOOOut)
	n := c.TX.EOO(iqOut)
	c.sendIQ(iqOut[:n])
}

// sendIQ applies the optional BPF, publishes the spectrum, and pushes the
// real part through resample -> scale -> clip -> write
func (c *Ctx) sendIQ(iq []complex64) {
	if c.BPF != nil && c.Telemetry.BPFEnabled.Load() {
		c.BPF.ProcessInPlace(iq)
	}

	real := make([]float32, len(iq))
	for i, x := range iq {
		real[i] = realPart(x)
	}

	if len(real) >= spectrum.FFTSize {
		c.Spectrum.Publish(real)
	}
	c.Telemetry.SetOutputLevel(rms(real))

	out := make([]float32, len(real)*2+captureSize)
	nOut := c.ResampleOut.Resample(real, out, fsModem, c.DeviceRateOut)

	txScale := c.Telemetry.TXScale()
	pcm := make([]int16, nOut)
	for i := 0; i < nOut; i++ {
		pcm[i] = truncS16(out[i] * float32(txScale))
	}

	if c.Playback != nil {
		_ = c.Playback.Write(pcm)
	}
}

// preRoll writes silence sized so the first rade_tx call (12 feature frames
// in, 120 ms of real time) doesn't underrun the playback buffer.
func (c *Ctx) preRoll() {
	n := int(2.0 * float64(codec.ModemFrameSamples) * (float64(c.DeviceRateOut) / fsModem))
	if n <= 0 || c.Playback == nil {
		return
	}
	const chunk = 4096
	buf := make([]int16, chunk)
	for n > 0 {
		k := chunk
		if k > n {
			k = n
		}
		_ = c.Playback.Write(buf[:k])
		n -= k
	}
}

func realPart(c complex64) float32 { return float32(real(c)) }

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

// truncS16 converts a float sample to S16 with symmetric clip, by
// truncation (not rounding) — the TX path's documented asymmetry with the
// RX converter.
func truncS16(v float32) int16 {
	if v > 32767 {
		v = 32767
	}
	if v < -32767 {
		v = -32767
	}
	return int16(v)
}
