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

package shiftreg

import (
	"fmt"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// PISO models a parallel-in/serial-out shift register. A falling edge
// on the active-low load line latches the eight parallel data inputs
// into the register. While load is held high, and the optional
// active-low clock enable line is not inhibiting, a rising edge on the
// shift clock shifts the register left, pushing the old MSB onto the
// serial output line.
//
// Simultaneous load and shift edges within the same instant resolve
// load first, shift second.
type PISO struct {
	id string

	load   peripherals.Line
	clock  peripherals.Line
	enable peripherals.Line
	serOut peripherals.Line
	inputs [8]peripherals.Line

	clk peripherals.Clock

	reg uint8

	// the cycle at which the most recent load edge arrived. a shift
	// clock edge at the same cycle still shifts the freshly loaded value.
	// loaded distinguishes a stamp of zero from no load edge at all
	loadedAt uint64
	loaded   bool

	regs []peripherals.Registration
}

// NewPISO is the preferred method of initialisation for the PISO type.
// The enable Line may be unbound, in which case shifting is always
// enabled.
func NewPISO(id string, clk peripherals.Clock, load, clock, enable, serOut peripherals.Line, inputs [8]peripherals.Line) *PISO {
	p := &PISO{
		id:     id,
		load:   load,
		clock:  clock,
		enable: enable,
		serOut: serOut,
		inputs: inputs,
		clk:    clk,
	}

	p.regs = append(p.regs, p.load.ListenEdges(func(rising bool) {
		if !rising {
			p.loadParallel()
			if p.clk != nil {
				p.loadedAt = p.clk.Cycles()
				p.loaded = true
			}
		}
	}))
	p.regs = append(p.regs, p.clock.ListenEdges(func(rising bool) {
		if !rising {
			return
		}
		if p.enable.Bound() && p.enable.Level() {
			// clock inhibited
			return
		}
		if !p.load.Level() {
			// load is active. the register follows the parallel inputs
			// unless the load edge arrived this very instant, in which
			// case the loaded value shifts as normal
			if p.clk == nil || !p.loaded || p.clk.Cycles() != p.loadedAt {
				return
			}
		}
		out := p.reg>>7 == 1
		p.reg <<= 1
		p.serOut.Set(out)
	}))

	return p
}

func (p *PISO) loadParallel() {
	var v uint8
	for i, in := range p.inputs {
		v |= bit(in.Level()) << i
	}
	p.reg = v
}

func (p *PISO) String() string {
	return fmt.Sprintf("%s: reg=%08b", p.id, p.reg)
}

// ID implements the peripherals.Peripheral interface.
func (p *PISO) ID() string {
	return p.id
}

// Kind implements the peripherals.Peripheral interface.
func (p *PISO) Kind() string {
	return "piso-shift-register"
}

// Register returns the current value of the shift register.
func (p *PISO) Register() uint8 {
	return p.reg
}

// Reset implements the peripherals.Peripheral interface.
func (p *PISO) Reset() {
	p.reg = 0
	p.loadedAt = 0
	p.loaded = false
}

// Detach implements the peripherals.Peripheral interface.
func (p *PISO) Detach() {
	for _, r := range p.regs {
		r.Remove()
	}
	p.regs = p.regs[:0]
}
