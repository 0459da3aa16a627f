// This file is part of SparkBench.
//
// SparkBench is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SparkBench is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SparkBench.  If not, see <https://www.gnu.org/licenses/>.

package peripherals

import "github.com/sparkbench/sparkbench/hardware/gpio"

// Line is a single pin binding given to a peripheral at construction. A
// zero Line is deliberately valid: it represents a pin the schematic
// never connected. Operations on an unbound Line are no-ops and its
// level always reads low, so a component with missing bindings is wired
// but silently never receives events.
type Line struct {
	Port *gpio.Port
	Bit  int
}

// Bound returns false for a Line with no pin behind it.
func (l Line) Bound() bool {
	return l.Port != nil
}

// Level returns the effective logic level of the bound pin.
func (l Line) Level() bool {
	if l.Port == nil {
		return false
	}
	return l.Port.Level(l.Bit)
}

// Set drives the bound pin high or low.
func (l Line) Set(high bool) {
	if l.Port == nil {
		return
	}
	if high {
		l.Port.SetPin(l.Bit, gpio.PinHigh)
	} else {
		l.Port.SetPin(l.Bit, gpio.PinLow)
	}
}

// Release stops driving the bound pin, leaving it as a pulled-up input.
// The idle state of open-drain protocol lines.
func (l Line) Release() {
	if l.Port == nil {
		return
	}
	l.Port.SetPin(l.Bit, gpio.PinInputPullup)
}

// LineListener is fired on a change to the bound pin only. The previous
// effective level is remembered so that callbacks can distinguish rising
// from falling edges.
type LineListener func(level bool)

// Registration records a live port listener so that it can be removed on
// Detach.
type Registration struct {
	port *gpio.Port
	id   gpio.ListenerID
}

// Remove the registration from its port.
func (r Registration) Remove() {
	if r.port != nil {
		r.port.RemoveListener(r.id)
	}
}

// Listen registers a change callback filtered to this Line's bit. The
// returned Registration must be kept for removal on Detach. Listening on
// an unbound Line returns an empty Registration and fn is never called.
func (l Line) Listen(fn LineListener) Registration {
	if l.Port == nil {
		return Registration{}
	}
	bit := l.Bit
	id := l.Port.AddListener(func(b int, state gpio.PinState) {
		if b == bit {
			fn(state.Level())
		}
	})
	return Registration{port: l.Port, id: id}
}

// ListenEdges registers a callback fired only when the effective level
// of the Line changes. A pin state change that leaves the level
// unchanged (driven-high to input-pullup for instance) is not an edge.
func (l Line) ListenEdges(fn func(rising bool)) Registration {
	last := l.Level()
	return l.Listen(func(level bool) {
		if level == last {
			return
		}
		last = level
		fn(level)
	})
}
