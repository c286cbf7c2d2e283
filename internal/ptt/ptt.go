// Package ptt controls transmitter keying, the way every soundcard-modem
// transmitter in this domain does: assert PTT before audio starts flowing,
// hold it through the EOO flush, deassert only once the output stream has
// drained. Supports RTS/DTR serial keying and GPIO line keying.
package ptt

import "errors"

// ErrNotConfigured reports that no keying backend is configured. The Keyer
// returned by Noop does not return it: its Assert and Deassert always
// succeed, since TX without PTT (e.g. driving a VOX-keyed radio) is valid.
var ErrNotConfigured = errors.New("ptt: no keying backend configured")

// Keyer asserts or deasserts a transmitter's PTT line.
type Keyer interface {
	Assert() error
	Deassert() error
	Close() error
}

// noopKeyer is used when no PTT backend is configured (e.g. a VOX-keyed
// radio, or bench testing into a dummy load).
type noopKeyer struct{}

func (noopKeyer) Assert() error { return nil }
func (noopKeyer) Deassert() error { return nil }
func (noopKeyer) Close() error { return nil }

// Noop returns a Keyer whose Assert/Deassert are no-ops.
func Noop() Keyer { return noopKeyer{} }
