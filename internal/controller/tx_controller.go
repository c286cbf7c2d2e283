package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/bpf"
	"github.com/peterbmarks/radae-decoder/internal/callsign"
	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/ptt"
	"github.com/peterbmarks/radae-decoder/internal/resample"
	"github.com/peterbmarks/radae-decoder/internal/spectrum"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"
	"github.com/peterbmarks/radae-decoder/internal/txpipeline"

	"github.com/charmbracelet/log"
)

// TXController owns the encoder pipeline's lifecycle, mirroring
// RXController but additionally sequencing PTT: asserted before Start
// spawns the worker, deasserted only after the worker (and its EOO flush)
// has returned cancellation ordering.
type TXController struct {
	mu sync.Mutex
	state State
	log *log.Logger

	capture audioio.Stream
	playback audioio.Stream

	tx codec.TXHandle
	encoder codec.FeatureEncoder
	callsignCodec codec.CallsignCodec
	callsignEncoder *callsign.Encoder

	telemetry *telemetry.TX
	spectrum *spectrum.Probe
	keyer ptt.Keyer

	pipeline *txpipeline.Ctx
	cancel context.CancelFunc
	done chan struct{}

	pendingCallsign string
}

// NewTXController returns an idle controller. keyer may be ptt.Noop() when
// the radio is keyed some other way (e.g. VOX).
func NewTXController(logger *log.Logger, keyer ptt.Keyer) *TXController {
	return &TXController{
		state: StateIdle,
		log: logger,
		telemetry: telemetry.NewTX(),
		spectrum: spectrum.NewProbe(),
		keyer: keyer,
	}
}

func (c *TXController) Telemetry() *telemetry.TX { return c.telemetry }
func (c *TXController) Spectrum() *spectrum.Probe { return c.spectrum }

// Open constructs audio streams, codec handles, and (if bpfEnabled) the TX
// bandpass filter open transition.
func (c *TXController) Open(captureCfg, playbackCfg audioio.Config, bpfEnabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := Transition(c.state, EventOpen); err != nil {
		return err
	}

	if err := c.openCodec(); err != nil {
		return err
	}

	capture, err := audioio.Open(captureCfg)
	if err != nil {
		return fmt.Errorf("controller: open capture: %w", err)
	}
	playback, err := audioio.Open(playbackCfg)
	if err != nil {
		capture.Close()
		return fmt.Errorf("controller: open playback: %w", err)
	}

	c.capture = capture
	c.playback = playback
	c.telemetry.BPFEnabled.Store(bpfEnabled)

	var bpfState codec.BPFHandle
	if bpfEnabled {
		const fsModem = 8000 // BPF operates on the TX IQ signal at the codec's modem rate
		cbpf, err := codec.OpenBPF(fsModem, bpf.DefaultCentreHz, bpf.DefaultBandwidthHz, codec.NTxOut)
		if err != nil {
			bpfState = bpf.New(fsModem, bpf.DefaultCentreHz, bpf.DefaultBandwidthHz)
		} else {
			bpfState = cbpf
		}
	}

	c.pipeline = &txpipeline.Ctx{
		Capture: capture,
		Playback: playback,
		DeviceRateIn: captureCfg.SampleRate,
		DeviceRateOut: playbackCfg.SampleRate,
		TX: c.tx,
		Encoder: c.encoder,
		ResampleIn: &resample.State{},
		ResampleOut: &resample.State{},
		Spectrum: c.spectrum,
		Telemetry: c.telemetry,
		BPF: bpfState,
		Log: c.log,
	}

	if c.pendingCallsign != "" {
		c.installCallsignLocked(c.pendingCallsign)
	}

	c.state = StateOpened
	return nil
}

func (c *TXController) openCodec() error {
	tx, err := codec.OpenTX(codec.DefaultNEOOBits)
	if err != nil {
		return fmt.Errorf("controller: open tx codec: %w", err)
	}
	enc, err := codec.OpenFeatureEncoder()
	if err != nil {
		tx.Close()
		return fmt.Errorf("controller: open feature encoder: %w", err)
	}
	cs, err := codec.OpenCallsignCodec()
	if err != nil {
		tx.Close()
		enc.Close()
		return fmt.Errorf("controller: open callsign codec: %w", err)
	}

	c.tx = tx
	c.encoder = enc
	c.callsignCodec = cs
	c.callsignEncoder = callsign.NewEncoder(cs)
	return nil
}

// SetCallsign installs the EOO callsign. If the pipeline is open, it takes
// effect immediately; otherwise it is cached for the next Open.
func (c *TXController) SetCallsign(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingCallsign = raw
	if c.state != StateIdle && c.state != StateClosed && c.tx != nil {
		c.installCallsignLocked(raw)
	}
}

func (c *TXController) installCallsignLocked(raw string) {
	bits := c.callsignEncoder.EncodeBits(raw, codec.DefaultNEOOBits)
	c.tx.SetEOOBits(bits)
}

// SetMicGain, SetTXScale, and SetBPFEnabled adjust control knobs live.
// SetBPFEnabled only has an effect when Open was called with bpfEnabled
// true; otherwise no filter was built and the TX output stays unfiltered.
func (c *TXController) SetMicGain(v float64) { c.telemetry.SetMicGain(v) }
func (c *TXController) SetTXScale(v float64) { c.telemetry.SetTXScale(v) }
func (c *TXController) SetBPFEnabled(v bool) { c.telemetry.BPFEnabled.Store(v) }

// Start keys PTT, then spawns the worker goroutine.
func (c *TXController) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := Transition(c.state, EventStart); err != nil {
		return err
	}

	if err := c.keyer.Assert(); err != nil && c.log != nil {
		c.log.Warn("ptt assert failed", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		_ = c.pipeline.Run(ctx)
	}()

	c.state = StateRunning
	return nil
}

// Stop cancels the worker (which flushes EOO and drains the output stream
// before returning), joins it, then deasserts PTT only once the radio has
// finished transmitting.
func (c *TXController) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *TXController) stopLocked() error {
	if _, err := Transition(c.state, EventStop); err != nil {
		return err
	}

	c.cancel()
	if c.capture != nil {
		_ = c.capture.Stop()
	}
	<-c.done

	if err := c.keyer.Deassert(); err != nil && c.log != nil {
		c.log.Warn("ptt deassert failed", "err", err)
	}

	c.telemetry.SetInputLevel(0)
	c.telemetry.SetOutputLevel(0)

	c.state = StateOpened
	return nil
}

// Close stops the pipeline if running, destroys codec handles, drops audio
// streams, and releases the PTT keyer.
func (c *TXController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		if err := c.stopLocked(); err != nil {
			return err
		}
	}

	if _, err := Transition(c.state, EventClose); err != nil {
		return err
	}

	if c.tx != nil {
		c.tx.Close()
	}
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.capture != nil {
		c.capture.Close()
	}
	if c.playback != nil {
		c.playback.Close()
	}
	if c.keyer != nil {
		_ = c.keyer.Close()
	}

	c.state = StateClosed
	return nil
}
