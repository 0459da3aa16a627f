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

// Package gpio implements the shared pin and port abstraction that
// connects the processor model to the peripheral models. A Port is a
// fixed width group of Pins; any change to a pin in the port is
// announced to every listener registered with the port.
//
// Ports are a shared resource. The processor's own I/O logic and any
// number of peripherals may listen on the same Port. No arbitration is
// performed between writers; the last writer wins. A Port has no notion
// of which writer drove a pin, so electrical contention between two
// drivers cannot be distinguished from one driver toggling.
package gpio

import (
	"fmt"
	"strings"
)

// PortID identifies a port in the processor model.
type PortID string

// The port names used by the AVR-class processor models.
const (
	PortB PortID = "B"
	PortC PortID = "C"
	PortD PortID = "D"
)

// PinState describes the condition of a single pin in a port.
type PinState int

// List of valid PinState values. A pin is either driven to a definite
// level or is an input, in which case the effective level depends on
// whether the internal pull-up is enabled.
const (
	PinInput PinState = iota
	PinInputPullup
	PinLow
	PinHigh
)

func (s PinState) String() string {
	switch s {
	case PinInput:
		return "input"
	case PinInputPullup:
		return "input-pullup"
	case PinLow:
		return "low"
	case PinHigh:
		return "high"
	}
	return "unknown"
}

// Driven returns true if the pin is being actively driven.
func (s PinState) Driven() bool {
	return s == PinLow || s == PinHigh
}

// Level returns the effective logic level of the pin. driven value if
// driven; pull-up implied high or floating low otherwise.
func (s PinState) Level() bool {
	return s == PinHigh || s == PinInputPullup
}

// ListenerID is returned by AddListener and identifies the registration
// for later removal.
type ListenerID int

// Listener is a port-wide change callback. It is called once for every
// pin change in the port; listeners must self-filter by bit index.
type Listener func(bit int, state PinState)

type listener struct {
	id ListenerID
	fn Listener
}

// Port is a fixed width group of pins plus the listeners to be fired on
// any bit change within the port.
type Port struct {
	id    PortID
	pins  []PinState
	lstrs []listener

	nextListenerID ListenerID
}

// PortWidth is the number of pins in every Port.
const PortWidth = 8

// NewPort is the preferred method of initialisation for the Port type.
// All pins begin in the undriven input state.
func NewPort(id PortID) *Port {
	return &Port{
		id:   id,
		pins: make([]PinState, PortWidth),
	}
}

// ID returns the identifier the port was created with.
func (p *Port) ID() PortID {
	return p.id
}

func (p *Port) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("PORT%s:", p.id))
	for bit := PortWidth - 1; bit >= 0; bit-- {
		if p.pins[bit].Level() {
			s.WriteString(" 1")
		} else {
			s.WriteString(" 0")
		}
	}
	return s.String()
}

// SetPin drives (or releases) a single pin in the port. Listeners are
// fired if the pin state has changed.
func (p *Port) SetPin(bit int, state PinState) {
	if bit < 0 || bit >= PortWidth {
		return
	}

	prev := p.pins[bit]
	if prev == state {
		return
	}

	p.pins[bit] = state

	// listeners may add or remove listeners, or set pins, from inside
	// the callback. fire against a copy of the registration list
	lstrs := make([]listener, len(p.lstrs))
	copy(lstrs, p.lstrs)
	for _, l := range lstrs {
		l.fn(bit, state)
	}
}

// PinState returns the combined direction/value/pull-up state of the
// numbered pin.
func (p *Port) PinState(bit int) PinState {
	if bit < 0 || bit >= PortWidth {
		return PinInput
	}
	return p.pins[bit]
}

// Level returns the effective logic level of the numbered pin.
func (p *Port) Level(bit int) bool {
	return p.PinState(bit).Level()
}

// Pins returns the effective logic level of every pin in the port,
// packed into a byte with pin zero in the least significant position.
func (p *Port) Pins() uint8 {
	var v uint8
	for bit := 0; bit < PortWidth; bit++ {
		if p.pins[bit].Level() {
			v |= 1 << bit
		}
	}
	return v
}

// AddListener registers a port-wide change callback. The returned
// ListenerID is the handle with which the registration can be removed.
func (p *Port) AddListener(fn Listener) ListenerID {
	p.nextListenerID++
	p.lstrs = append(p.lstrs, listener{id: p.nextListenerID, fn: fn})
	return p.nextListenerID
}

// RemoveListener removes a previous registration. Removing an unknown
// ListenerID is a no-op.
func (p *Port) RemoveListener(id ListenerID) {
	for i := range p.lstrs {
		if p.lstrs[i].id == id {
			p.lstrs = append(p.lstrs[:i], p.lstrs[i+1:]...)
			return
		}
	}
}

// NumListeners returns the number of live listener registrations on the
// port. Used to verify cleanup after a simulation session has ended.
func (p *Port) NumListeners() int {
	return len(p.lstrs)
}
