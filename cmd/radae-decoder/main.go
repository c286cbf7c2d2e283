// Command radae-decoder is a minimal flag-driven front-end over the RX/TX
// pipelines. It
// loads the persisted config file, overrides it with any flags given, opens
// one pipeline, and runs until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbmarks/radae-decoder/internal/audioio"
	"github.com/peterbmarks/radae-decoder/internal/config"
	"github.com/peterbmarks/radae-decoder/internal/controller"
	"github.com/peterbmarks/radae-decoder/internal/logging"
	"github.com/peterbmarks/radae-decoder/internal/ptt"
	"github.com/peterbmarks/radae-decoder/internal/telemetry"
	"github.com/peterbmarks/radae-decoder/internal/wavfile"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func main() {
	var (
		mode = pflag.StringP("mode", "m", "rx", "Pipeline to run: rx or tx.")
		configPath = pflag.StringP("config-file", "c", "", "Configuration file path (default $HOME/.config/radae-decoder.conf).")
		input = pflag.StringP("input", "i", "", "RX capture device (overrides config).")
		output = pflag.StringP("output", "o", "", "RX playback device (overrides config).")
		txInput = pflag.String("tx-input", "", "TX capture (mic) device (overrides config).")
		txOutput = pflag.String("tx-output", "", "TX playback (radio) device (overrides config).")
		backend = pflag.String("backend", string(audioio.BackendPortAudio), "Audio backend: portaudio or pulse.")
		sampleRate = pflag.Int("sample-rate", 48000, "Device sample rate.")
		callsign = pflag.String("callsign", "", "EOO callsign (overrides config).")
		bpf = pflag.Bool("bpf", false, "Enable TX output bandpass filter (overrides config).")
		txLevel = pflag.Int("tx-level", -1, "TX scale 0..100 (overrides config).")
		micLevel = pflag.Int("mic-level", -1, "Mic gain 0..100 (overrides config).")
		recordPath = pflag.String("record", "", "Record pipeline output to this WAV file.")
		filePath = pflag.String("file", "", "Replay a WAV file as the RX input instead of a capture device.")
		pttDevice = pflag.String("ptt-serial-device", "", "Serial device for RTS/DTR PTT keying.")
		pttLine = pflag.String("ptt-serial-line", "rts", "Serial PTT line: rts or dtr.")
		pttGPIOChip = pflag.String("ptt-gpio-chip", "", "gpiod chip for GPIO PTT keying.")
		pttGPIOLine = pflag.Int("ptt-gpio-line", -1, "gpiod line offset for GPIO PTT keying.")
		debug = pflag.BoolP("debug", "d", false, "Enable debug-level logging.")
		version = pflag.Bool("version", false, "Print version information and exit.")
	)
	pflag.Parse()

	if *version {
		printVersion()
		return
	}

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "radae-decoder: load config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(&cfg, *input, *output, *txInput, *txOutput, *callsign, *bpf, *txLevel, *micLevel)

	logger := logging.New(*mode)
	logging.SetDebug(logger, *debug)

	keyer := buildKeyer(logger, *pttDevice, *pttLine, *pttGPIOChip, *pttGPIOLine)
	defer func() { _ = keyer.Close() }()

	switch *mode {
	case "rx":
		runRX(logger, cfg, audioio.Backend(*backend), *sampleRate, *recordPath, *filePath)
	case "tx":
		runTX(logger, cfg, keyer, audioio.Backend(*backend), *sampleRate)
	default:
		fmt.Fprintf(os.Stderr, "radae-decoder: unknown mode %q (want rx or tx)\n", *mode)
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, input, output, txInput, txOutput, callsignFlag string, bpfFlag bool, txLevel, micLevel int) {
	if input != "" {
		cfg.Input = input
	}
	if output != "" {
		cfg.Output = output
	}
	if txInput != "" {
		cfg.TXInput = txInput
	}
	if txOutput != "" {
		cfg.TXOutput = txOutput
	}
	if callsignFlag != "" {
		cfg.Callsign = callsignFlag
	}
	if bpfFlag {
		cfg.BPFEnabled = true
	}
	if txLevel >= 0 {
		cfg.TXLevel = txLevel
	}
	if micLevel >= 0 {
		cfg.MicLevel = micLevel
	}
}

func buildKeyer(logger *log.Logger, device, line, gpioChip string, gpioLine int) ptt.Keyer {
	if device != "" {
		l := ptt.LineRTS
		if line == "dtr" {
			l = ptt.LineDTR
		}
		k, err := ptt.OpenSerial(device, l, false)
		if err != nil {
			logger.Warn("ptt serial open failed, falling back to noop", "err", err)
			return ptt.Noop()
		}
		return k
	}
	if gpioChip != "" && gpioLine >= 0 {
		k, err := ptt.OpenGPIO(gpioChip, gpioLine, false)
		if err != nil {
			logger.Warn("ptt gpio open failed, falling back to noop", "err", err)
			return ptt.Noop()
		}
		return k
	}
	return ptt.Noop()
}

func runRX(logger *log.Logger, cfg config.Config, backend audioio.Backend, sampleRate int, recordPath, filePath string) {
	c := controller.NewRXController(logger)

	playbackCfg := audioio.Config{Backend: backend, DeviceID: cfg.Output, Direction: audioio.Playback, SampleRate: sampleRate, FramesPerBuffer: 512}

	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "radae-decoder: open wav file: %v\n", err)
			os.Exit(1)
		}
		samples, err := wavfile.DecodeToMono8k(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "radae-decoder: decode wav file: %v\n", err)
			os.Exit(1)
		}
		if err := c.OpenFile(samples, playbackCfg); err != nil {
			fmt.Fprintf(os.Stderr, "radae-decoder: open rx pipeline: %v\n", err)
			os.Exit(1)
		}
	} else {
		captureCfg := audioio.Config{Backend: backend, DeviceID: cfg.Input, Direction: audioio.Capture, SampleRate: sampleRate, FramesPerBuffer: 512}
		if err := c.Open(captureCfg, playbackCfg); err != nil {
			fmt.Fprintf(os.Stderr, "radae-decoder: open rx pipeline: %v\n", err)
			os.Exit(1)
		}
	}

	if recordPath != "" {
		f, err := os.Create(recordPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "radae-decoder: create recording file: %v\n", err)
		} else {
			rec, err := wavfile.NewRecorder(f, uint32(sampleRate))
			if err != nil {
				fmt.Fprintf(os.Stderr, "radae-decoder: start recording: %v\n", err)
			} else {
				c.AttachRecorder(rec)
			}
		}
	}

	if err := c.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "radae-decoder: start rx pipeline: %v\n", err)
		os.Exit(1)
	}

	if filePath != "" {
		waitForSignalOrFinish(c.Telemetry())
	} else {
		waitForSignal()
	}

	_ = c.Stop()
	if rec := c.DetachRecorder(); rec != nil {
		_ = rec.Close()
	}
	_ = c.Close()
}

func runTX(logger *log.Logger, cfg config.Config, keyer ptt.Keyer, backend audioio.Backend, sampleRate int) {
	c := controller.NewTXController(logger, keyer)

	captureCfg := audioio.Config{Backend: backend, DeviceID: cfg.TXInput, Direction: audioio.Capture, SampleRate: sampleRate, FramesPerBuffer: 160}
	playbackCfg := audioio.Config{Backend: backend, DeviceID: cfg.TXOutput, Direction: audioio.Playback, SampleRate: sampleRate, FramesPerBuffer: 160}

	if err := c.Open(captureCfg, playbackCfg, cfg.BPFEnabled); err != nil {
		fmt.Fprintf(os.Stderr, "radae-decoder: open tx pipeline: %v\n", err)
		os.Exit(1)
	}

	c.SetMicGain(config.MicGainFromPercent(cfg.MicLevel))
	c.SetTXScale(config.TXScaleFromPercent(cfg.TXLevel))
	if cfg.Callsign != "" {
		c.SetCallsign(cfg.Callsign)
	}

	if err := c.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "radae-decoder: start tx pipeline: %v\n", err)
		os.Exit(1)
	}

	waitForSignal()

	_ = c.Stop()
	_ = c.Close()
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

// waitForSignalOrFinish blocks until interrupted or until the pipeline's own
// Running flag drops to false, which happens on its own once file-mode
// playback drains past the end of the buffer.
func waitForSignalOrFinish(t *telemetry.RX) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			return
		case <-ticker.C:
			if !t.Running.Load() {
				return
			}
		}
	}
}
