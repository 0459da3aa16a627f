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

// Package encoder implements the quadrature rotation generator. On
// command the encoder drives its two output lines through a four phase
// sequence with a fixed inter-phase delay; the phase ordering differs
// between the two rotation directions so that firmware edge-decoding
// logic can tell them apart.
package encoder

import (
	"fmt"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// PhaseMicros is the delay between phase transitions.
const PhaseMicros = 500

// the four phase values of the clk/dt pair, clockwise order. the
// counter-clockwise sequence is the same table walked backwards
var phases = [4][2]bool{
	{true, false},
	{true, true},
	{false, true},
	{false, false},
}

// Encoder models the rotary encoder.
type Encoder struct {
	id string

	clk    peripherals.Line
	dt     peripherals.Line
	button peripherals.Line

	tk peripherals.Timekeeper

	// outstanding steps. positive clockwise, negative counter-clockwise
	steps int

	// a step sequence is in progress. new requests accumulate in steps
	// rather than starting overlapping sequences
	stepping bool

	pending mcu.EventID
}

// NewEncoder is the preferred method of initialisation for the Encoder
// type. The button Line may be unbound.
func NewEncoder(id string, tk peripherals.Timekeeper, clk, dt, button peripherals.Line) *Encoder {
	e := &Encoder{
		id:     id,
		clk:    clk,
		dt:     dt,
		button: button,
		tk:     tk,
	}

	// idle state
	e.clk.Set(false)
	e.dt.Set(false)
	e.button.Release()

	return e
}

func (e *Encoder) String() string {
	return fmt.Sprintf("%s: %d steps outstanding", e.id, e.steps)
}

// ID implements the peripherals.Peripheral interface.
func (e *Encoder) ID() string {
	return e.id
}

// Kind implements the peripherals.Peripheral interface.
func (e *Encoder) Kind() string {
	return "rotary-encoder"
}

// Rotate the encoder by the given number of detents. Positive steps are
// clockwise. If a sequence is already in progress the steps are queued
// and played out when the current detent completes.
func (e *Encoder) Rotate(steps int) {
	e.steps += steps
	if !e.stepping {
		e.run()
	}
}

func (e *Encoder) run() {
	if e.steps == 0 {
		e.stepping = false
		e.pending = mcu.NoEvent
		return
	}
	e.stepping = true

	cw := e.steps > 0
	if cw {
		e.steps--
	} else {
		e.steps++
	}

	// drive the four phases of one detent, then continue with any
	// steps that have accumulated in the meantime
	delay := clocks.MicrosToCycles(PhaseMicros, e.tk.Frequency())

	var phase func(i int)
	phase = func(i int) {
		if i >= len(phases) {
			e.run()
			return
		}

		p := i
		if !cw {
			// walk the table in reverse, keeping the return to the
			// idle phase as the final transition
			p = (len(phases) - 2 - i + len(phases)) % len(phases)
		}
		e.clk.Set(phases[p][0])
		e.dt.Set(phases[p][1])

		e.pending = e.tk.Schedule(delay, func() {
			phase(i + 1)
		})
	}
	phase(0)
}

// SetButton presses or releases the encoder's push button. The button
// line is active low with the pull-up supplying the idle level.
func (e *Encoder) SetButton(pressed bool) {
	if pressed {
		e.button.Set(false)
	} else {
		e.button.Release()
	}
}

// Reset implements the peripherals.Peripheral interface.
func (e *Encoder) Reset() {
	if e.pending != mcu.NoEvent {
		e.tk.Cancel(e.pending)
		e.pending = mcu.NoEvent
	}
	e.steps = 0
	e.stepping = false
	e.clk.Set(false)
	e.dt.Set(false)
}

// Detach implements the peripherals.Peripheral interface. The encoder
// registers no port listeners but any scheduled transition must not
// outlive it.
func (e *Encoder) Detach() {
	if e.pending != mcu.NoEvent {
		e.tk.Cancel(e.pending)
		e.pending = mcu.NoEvent
	}
	e.steps = 0
	e.stepping = false
}
