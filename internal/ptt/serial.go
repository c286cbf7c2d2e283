package ptt

import (
	"fmt"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// Line selects which serial modem-control line keys the transmitter: RTS
// or DTR.
type Line int

const (
	LineRTS Line = iota
	LineDTR
)

// serialKeyer keys PTT by toggling a serial port's RTS or DTR line via
// TIOCM ioctls.
type serialKeyer struct {
	port *term.Term
	line Line
	inverted bool
}

// OpenSerial opens device (e.g. "/dev/ttyUSB0") and returns a Keyer that
// toggles the given modem-control line. invert swaps the on/off sense, for
// interfaces wired active-low.
func OpenSerial(device string, line Line, invert bool) (Keyer, error) {
	t, err := term.Open(device)
	if err != nil {
		return nil, fmt.Errorf("ptt: open serial device %s: %w", device, err)
	}
	return &serialKeyer{port: t, line: line, inverted: invert}, nil
}

func (s *serialKeyer) set(on bool) error {
	if s.inverted {
		on = !on
	}
	fd := s.port.Fd()
	bit := unix.TIOCM_RTS
	if s.line == LineDTR {
		bit = unix.TIOCM_DTR
	}
	return tiocm(fd, bit, on)
}

func (s *serialKeyer) Assert() error { return s.set(true) }
func (s *serialKeyer) Deassert() error { return s.set(false) }
func (s *serialKeyer) Close() error { return s.port.Close() }

// tiocm sets or clears one modem-control bit via TIOCMBIS/TIOCMBIC.
func tiocm(fd uintptr, bit int, on bool) error {
	req := uint(unix.TIOCMBIS)
	if !on {
		req = uint(unix.TIOCMBIC)
	}
	return unix.IoctlSetPointerInt(int(fd), req, bit)
}
