package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/callsign"
	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/hilbert"
	"github.com/peterbmarks/radae-decoder/internal/resample"
	"github.com/peterbmarks/radae-decoder/internal/rxpipeline"
	"github.com/peterbmarks/radae-decoder/internal/spectrum"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"
	"github.com/peterbmarks/radae-decoder/internal/wavfile"

	"github.com/charmbracelet/log"
)

// RXController owns the decoder pipeline's lifecycle: opening
// audio/codec resources, starting and stopping the worker goroutine (the
// idiomatic-Go substitute for an abort+join OS thread), and exposing
// telemetry and the recorder attach point.
type RXController struct {
	mu sync.Mutex
	state State
	log *log.Logger

	capture audioio.Stream
	playback audioio.Stream

	rx codec.RXHandle
	vocoder codec.Vocoder
	callsignCodec codec.CallsignCodec
	callsignDecoder *callsign.Decoder

	telemetry *telemetry.RX
	spectrum *spectrum.Probe

	recorderMu sync.Mutex
	recorder *wavfile.Recorder

	pipeline *rxpipeline.Ctx
	cancel context.CancelFunc
	done chan struct{}
}

// NewRXController returns an idle controller.
func NewRXController(logger *log.Logger) *RXController {
	return &RXController{
		state: StateIdle,
		log: logger,
		telemetry: &telemetry.RX{},
		spectrum: spectrum.NewProbe(),
	}
}

// Telemetry exposes the controller's telemetry block for UI/diagnostics
// readers.
func (c *RXController) Telemetry() *telemetry.RX { return c.telemetry }

// Spectrum exposes the shared spectrum probe.
func (c *RXController) Spectrum() *spectrum.Probe { return c.spectrum }

// Open constructs audio streams and codec handles and resets all per-run
// pipeline state open transition.
func (c *RXController) Open(captureCfg, playbackCfg audioio.Config) error {
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
	c.buildPipeline(capture, playback, captureCfg.SampleRate, playbackCfg.SampleRate, nil)
	c.state = StateOpened
	return nil
}

// OpenFile opens a WAV file as the RX input instead of a live capture
// device, resampling it once to 8 kHz up front.
func (c *RXController) OpenFile(samples []float32, playbackCfg audioio.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := Transition(c.state, EventOpen); err != nil {
		return err
	}

	if err := c.openCodec(); err != nil {
		return err
	}

	playback, err := audioio.Open(playbackCfg)
	if err != nil {
		return fmt.Errorf("controller: open playback: %w", err)
	}

	c.playback = playback
	c.buildPipeline(nil, playback, 8000, playbackCfg.SampleRate, samples)
	c.state = StateOpened
	return nil
}

func (c *RXController) openCodec() error {
	rx, err := codec.OpenRX(codec.DefaultNEOOBits)
	if err != nil {
		return fmt.Errorf("controller: open rx codec: %w", err)
	}
	vocoder, err := codec.OpenVocoder()
	if err != nil {
		rx.Close()
		return fmt.Errorf("controller: open vocoder: %w", err)
	}
	cs, err := codec.OpenCallsignCodec()
	if err != nil {
		rx.Close()
		return fmt.Errorf("controller: open callsign codec: %w", err)
	}

	c.rx = rx
	c.vocoder = vocoder
	c.callsignCodec = cs
	c.callsignDecoder = callsign.NewDecoder(cs)
	return nil
}

func (c *RXController) buildPipeline(capture, playback audioio.Stream, rateIn, rateOut int, file []float32) {
	c.pipeline = &rxpipeline.Ctx{
		Capture: capture,
		Playback: playback,
		DeviceRateIn: rateIn,
		DeviceRateOut: rateOut,
		RX: c.rx,
		Vocoder: c.vocoder,
		Hilbert: hilbert.NewState(),
		ResampleIn: &resample.State{},
		ResampleOut: &resample.State{},
		Spectrum: c.spectrum,
		Telemetry: c.telemetry,
		CallsignDecoder: c.callsignDecoder,
		File: file,
		RecorderMu: &c.recorderMu,
		Recorder: &c.recorder,
		Log: c.log,
	}
}

// Start spawns the worker goroutine start transition.
func (c *RXController) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := Transition(c.state, EventStart); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.telemetry.Running.Store(true)

	go func() {
		defer close(c.done)
		_ = c.pipeline.Run(ctx)
	}()

	c.state = StateRunning
	return nil
}

// Stop cancels the worker, aborts the capture stream to unblock any pending
// read, joins the goroutine, and zeros the level atomics.
func (c *RXController) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *RXController) stopLocked() error {
	if _, err := Transition(c.state, EventStop); err != nil {
		return err
	}

	c.cancel()
	if c.capture != nil {
		_ = c.capture.Stop()
	}
	<-c.done

	c.telemetry.Running.Store(false)
	c.telemetry.SetInputLevel(0)
	c.telemetry.SetOutputLevel(0)

	c.state = StateOpened
	return nil
}

// Close stops the pipeline if running, detaches any recorder, destroys the
// codec handles, and drops the audio streams.
func (c *RXController) Close() error {
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

	c.DetachRecorder()

	if c.rx != nil {
		c.rx.Close()
	}
	if c.capture != nil {
		c.capture.Close()
	}
	if c.playback != nil {
		c.playback.Close()
	}

	c.state = StateClosed
	return nil
}

// AttachRecorder installs r as the pipeline's WAV tap; the worker picks it
// up under the shared recorder mutex on its next write.
func (c *RXController) AttachRecorder(r *wavfile.Recorder) {
	c.recorderMu.Lock()
	defer c.recorderMu.Unlock()
	c.recorder = r
}

// DetachRecorder nulls the worker's recorder pointer under the mutex and
// returns the previous recorder so the caller can close it. This must
// happen before the pipeline is torn down so the EOO flush (TX side) or
// the final RX frame is still captured.
func (c *RXController) DetachRecorder() *wavfile.Recorder {
	c.recorderMu.Lock()
	defer c.recorderMu.Unlock()
	return c.detachRecorderLocked()
}

func (c *RXController) detachRecorderLocked() *wavfile.Recorder {
	prev := c.recorder
	c.recorder = nil
	return prev
}
