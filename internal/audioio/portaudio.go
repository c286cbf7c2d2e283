package audioio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var paInitOnce sync.Once
var paInitErr error

func ensurePortAudioInit() error {
	paInitOnce.Do(func() {
		paInitErr = portaudio.Initialize()
	})
	return paInitErr
}

// paStream adapts github.com/gordonklaus/portaudio's blocking Stream to the
// audioio.Stream contract.
type paStream struct {
	stream *portaudio.Stream
	direction Direction
	buf []int16
}

func openPortAudio(cfg Config) (Stream, error) {
	if err := ensurePortAudioInit(); err != nil {
		return nil, fmt.Errorf("audioio: portaudio init: %w", err)
	}

	dev, err := findPortAudioDevice(cfg.DeviceID, cfg.Direction)
	if err != nil {
		return nil, err
	}

	s := &paStream{direction: cfg.Direction, buf: make([]int16, cfg.FramesPerBuffer)}

	params := portaudio.StreamParameters{
		SampleRate: float64(cfg.SampleRate),
		FramesPerBuffer: cfg.FramesPerBuffer,
	}
	if cfg.Direction == Capture {
		params.Input = portaudio.StreamDeviceParameters{
			Device: dev,
			Channels: 1,
			Latency: dev.DefaultLowInputLatency,
		}
	} else {
		params.Output = portaudio.StreamDeviceParameters{
			Device: dev,
			Channels: 1,
			Latency: dev.DefaultLowOutputLatency,
		}
	}

	var stream *portaudio.Stream
	if cfg.Direction == Capture {
		stream, err = portaudio.OpenStream(params, s.buf)
	} else {
		stream, err = portaudio.OpenStream(params, &s.buf)
	}
	if err != nil {
		return nil, fmt.Errorf("audioio: portaudio open stream: %w", err)
	}
	s.stream = stream

	return s, nil
}

func findPortAudioDevice(name string, dir Direction) (*portaudio.DeviceInfo, error) {
	if name == "" {
		if dir == Capture {
			return portaudio.DefaultInputDevice()
		}
		return portaudio.DefaultOutputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audioio: enumerate portaudio devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("audioio: no portaudio device named %q", name)
}

func (s *paStream) Read(buf []int16) (int, error) {
	n := len(buf)
	if n > len(s.buf) {
		n = len(s.buf)
	}
	if err := s.stream.Read(); err != nil {
		if err == portaudio.InputOverflowed {
			copy(buf[:n], s.buf[:n])
			return n, ErrOverflow
		}
		return 0, fmt.Errorf("audioio: portaudio read: %w", err)
	}
	copy(buf[:n], s.buf[:n])
	return n, nil
}

func (s *paStream) Write(buf []int16) error {
	n := len(buf)
	if n > len(s.buf) {
		n = len(s.buf)
	}
	copy(s.buf[:n], buf[:n])
	if err := s.stream.Write(); err != nil {
		if err == portaudio.OutputUnderflowed {
			return nil
		}
		return fmt.Errorf("audioio: portaudio write: %w", err)
	}
	return nil
}

func (s *paStream) Start() error { return s.stream.Start() }

func (s *paStream) Stop() error { return s.stream.Abort() }

func (s *paStream) Drain() error { return s.stream.Stop() }

func (s *paStream) Close() error { return s.stream.Close() }
