package audioio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// pulseStream bridges jfreymuth/pulse's callback-driven Reader/Writer onto
// the blocking audioio.Stream contract, buffering callback data through a
// channel. The fragment/target-latency size is pinned to
// cfg.FramesPerBuffer explicitly: PulseAudio's multi-second default
// fragsize starves spectrum updates if left unset.
type pulseStream struct {
	client *pulse.Client
	record *pulse.RecordStream
	playback *pulse.PlaybackStream
	direction Direction

	mu sync.Mutex
	pending []byte
	chunks chan []byte
	stopped bool
}

func openPulse(cfg Config) (Stream, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("radae-decoder"))
	if err != nil {
		return nil, fmt.Errorf("audioio: pulse connect: %w", err)
	}

	s := &pulseStream{client: client, direction: cfg.Direction, chunks: make(chan []byte, 64)}
	fragmentBytes := cfg.FramesPerBuffer * 2 // mono S16LE

	if cfg.Direction == Capture {
		source, err := resolvePulseSource(client, cfg.DeviceID)
		if err != nil {
			client.Close()
			return nil, err
		}
		writer := pulse.NewWriter(pulse.WriterFunc(s.onCapture), pulseproto.FormatInt16LE)
		record, err := client.NewRecord(
			writer,
			pulse.RecordSource(source),
			pulse.RecordMono,
			pulse.RecordSampleRate(uint32(cfg.SampleRate)),
			pulse.RecordBufferFragmentSize(uint32(fragmentBytes)),
			pulse.RecordMediaName("radae-decoder rx"),
		)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("audioio: pulse record stream: %w", err)
		}
		s.record = record
	} else {
		sink, err := resolvePulseSink(client, cfg.DeviceID)
		if err != nil {
			client.Close()
			return nil, err
		}
		reader := pulse.NewReader(pulse.ReaderFunc(s.onPlayback), pulseproto.FormatInt16LE)
		playback, err := client.NewPlayback(
			reader,
			pulse.PlaybackSink(sink),
			pulse.PlaybackMono,
			pulse.PlaybackSampleRate(uint32(cfg.SampleRate)),
			pulse.PlaybackBufferSize(uint32(fragmentBytes)),
			pulse.PlaybackMediaName("radae-decoder tx"),
		)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("audioio: pulse playback stream: %w", err)
		}
		s.playback = playback
	}

	return s, nil
}

func resolvePulseSource(client *pulse.Client, deviceID string) (*pulse.Source, error) {
	if deviceID == "" {
		return client.DefaultSource()
	}
	return client.SourceByID(deviceID)
}

func resolvePulseSink(client *pulse.Client, deviceID string) (*pulse.Sink, error) {
	if deviceID == "" {
		return client.DefaultSink()
	}
	return client.SinkByID(deviceID)
}

// onCapture is invoked by the pulse client's own goroutine with each
// fragment read from the server; it hands the bytes to Read via a channel.
func (s *pulseStream) onCapture(buf []byte) (int, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	s.mu.Unlock()

	cp := make([]byte, len(buf))
	copy(cp, buf)
	select {
	case s.chunks <- cp:
	default:
		// Channel full: drop the oldest pending fragment rather than block
		// the Pulse client goroutine indefinitely.
		select {
		case <-s.chunks:
		default:
		}
		s.chunks <- cp
	}
	return len(buf), nil
}

// onPlayback is invoked by the pulse client's goroutine whenever it needs
// more samples to send to the server.
func (s *pulseStream) onPlayback(out []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		for i := range out {
			out[i] = 0
		}
		return len(out), nil
	}
	n := copy(out, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *pulseStream) Read(buf []int16) (int, error) {
	raw, ok := <-s.chunks
	if !ok {
		return 0, nil
	}
	n := len(raw) / 2
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		buf[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return n, nil
}

func (s *pulseStream) Write(buf []int16) error {
	raw := make([]byte, len(buf)*2)
	for i, v := range buf {
		binary.LittleEndian.PutUint16(raw[i*2:i*2+2], uint16(v))
	}
	s.mu.Lock()
	s.pending = append(s.pending, raw...)
	s.mu.Unlock()
	return nil
}

func (s *pulseStream) Start() error {
	if s.record != nil {
		s.record.Start()
	}
	if s.playback != nil {
		s.playback.Start()
	}
	return nil
}

func (s *pulseStream) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	if s.record != nil {
		s.record.Stop()
	}
	if s.playback != nil {
		s.playback.Stop()
	}
	return nil
}

func (s *pulseStream) Drain() error {
	if s.playback != nil {
		s.playback.Drain()
	}
	return nil
}

func (s *pulseStream) Close() error {
	if s.record != nil {
		s.record.Close()
	}
	if s.playback != nil {
		s.playback.Close()
	}
	s.client.Close()
	return nil
}
