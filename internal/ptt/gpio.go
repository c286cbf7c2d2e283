package ptt

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// gpioKeyer keys PTT by driving a GPIO line via the Linux gpiod character
// device, the modern replacement for direct /sys/class/gpio/export sysfs
// handling.
type gpioKeyer struct {
	line *gpiocdev.Line
	inverted bool
}

// OpenGPIO requests offset on chip (e.g. "gpiochip0") as an output line and
// returns a Keyer that drives it high to assert PTT. invert drives it low
// instead, for keying circuits wired active-low.
func OpenGPIO(chip string, offset int, invert bool) (Keyer, error) {
	initial := 0
	if invert {
		initial = 1
	}
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(initial),
		gpiocdev.WithConsumer("radae-decoder-ptt"),
	)
	if err != nil {
		return nil, fmt.Errorf("ptt: request gpio line %s:%d: %w", chip, offset, err)
	}
	return &gpioKeyer{line: line, inverted: invert}, nil
}

func (g *gpioKeyer) set(on bool) error {
	if g.inverted {
		on = !on
	}
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpioKeyer) Assert() error { return g.set(true) }
func (g *gpioKeyer) Deassert() error { return g.set(false) }
func (g *gpioKeyer) Close() error { return g.line.Close() }
