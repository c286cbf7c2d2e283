package rxpipeline

import (
	"context"
	"testing"
	"time"

	"github.com/peterbmarks/radae-decoder/internal/codec"
	"github.com/peterbmarks/radae-decoder/internal/hilbert"
	"github.com/peterbmarks/radae-decoder/internal/resample"
	"github.com/peterbmarks/radae-decoder/internal/spectrum"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRX always wants 512 samples and never detects sync, so Run exercises
// the decay path without needing a real codec.
type fakeRX struct {
	ninCalls int
}

func (f *fakeRX) Nin() int { return 512 }
func (f *fakeRX) NinMax() int { return 512 }
func (f *fakeRX) Process(iq []complex64, featuresOut []float32) (int, bool, []float32) {
	f.ninCalls++
	return 0, false, nil
}
func (f *fakeRX) Sync() bool { return false }
func (f *fakeRX) SNRdB() float64 { return -1 }
func (f *fakeRX) FreqOffset() float64 { return 0 }
func (f *fakeRX) Close() error { return nil }

type fakeVocoder struct{}

func (fakeVocoder) Continuation(packed []float32, cont int) {}
func (fakeVocoder) Synthesize(features []float32, out []float32) {
	for i := range out {
		out[i] = 0
	}
}

func TestRun_FileModeDrainsAndDecaysOutputLevel(t *testing.T) {
	tel := &telemetry.RX{}
	tel.SetOutputLevel(100)

	ctx := &Ctx{
		DeviceRateIn: 8000,
		DeviceRateOut: 8000,
		RX: &fakeRX{},
		Vocoder: fakeVocoder{},
		Hilbert: hilbert.NewState(),
		ResampleIn: &resample.State{},
		ResampleOut: &resample.State{},
		Spectrum: spectrum.NewProbe(),
		Telemetry: tel,
		File: make([]float32, 4096),
	}

	err := ctx.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, tel.OutputLevel(), 100.0)
	assert.Equal(t, len(ctx.File), ctx.FilePos)
}

func TestRun_ContextCancelStopsLoop(t *testing.T) {
	tel := &telemetry.RX{}
	c, cancel := context.WithCancel(context.Background())

	ctx := &Ctx{
		DeviceRateIn: 8000,
		DeviceRateOut: 8000,
		RX: &fakeRX{},
		Vocoder: fakeVocoder{},
		Hilbert: hilbert.NewState(),
		ResampleIn: &resample.State{},
		ResampleOut: &resample.State{},
		Spectrum: spectrum.NewProbe(),
		Telemetry: tel,
		File: make([]float32, 10_000_000), // effectively unbounded for this test
	}

	done := make(chan struct{})
	go func() {
		_ = ctx.Run(c)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestPrimeSilenceSamples_MatchesFormula(t *testing.T) {
	got := primeSilenceSamples(16000)
	want := int(2.0 * float64(codec.ModemFrameSamples) * float64(codec.FeaturesPerModemFrame) * 160.0)
	assert.Equal(t, want, got)
}

func TestClipS16_SaturatesSymmetrically(t *testing.T) {
	assert.Equal(t, int16(32767), clipS16(40000))
	assert.Equal(t, int16(-32767), clipS16(-40000))
	assert.Equal(t, int16(1), clipS16(0.6))
}

func TestTapRecorder_NoopWithoutAttachedRecorder(t *testing.T) {
	ctx := &Ctx{}
	assert.NotPanics(t, func() { ctx.tapRecorder([]int16{1, 2, 3}) })
}
