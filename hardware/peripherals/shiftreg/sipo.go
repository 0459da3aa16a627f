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

// Package shiftreg implements the synchronous shift register models: a
// serial-in/parallel-out chip (74HC595 family), a daisy chain of such
// chips sharing clock lines, and a parallel-in/serial-out chip (74HC165
// family).
package shiftreg

import (
	"fmt"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// SIPO models a single serial-in/parallel-out shift register. A rising
// edge on the shift clock moves the serial data bit into the low
// position of the shift register, existing bits moving toward the high
// position (MSB first device semantics). A rising edge on the latch
// clock copies the shift register to the output latch.
type SIPO struct {
	peripherals.Dispatcher

	id string

	data  peripherals.Line
	clock peripherals.Line
	latch peripherals.Line

	shift uint8
	out   uint8

	regs []peripherals.Registration
}

// NewSIPO is the preferred method of initialisation for the SIPO type.
func NewSIPO(id string, data, clock, latch peripherals.Line) *SIPO {
	s := &SIPO{
		id:    id,
		data:  data,
		clock: clock,
		latch: latch,
	}

	s.regs = append(s.regs, s.clock.ListenEdges(func(rising bool) {
		if rising {
			s.shift = s.shift<<1 | bit(s.data.Level())
		}
	}))
	s.regs = append(s.regs, s.latch.ListenEdges(func(rising bool) {
		if rising && s.out != s.shift {
			s.out = s.shift
			s.Dispatch(peripherals.Event{ID: peripherals.EventOutput, Data: s.out})
		}
	}))

	return s
}

func bit(level bool) uint8 {
	if level {
		return 1
	}
	return 0
}

func (s *SIPO) String() string {
	return fmt.Sprintf("%s: shift=%08b latch=%08b", s.id, s.shift, s.out)
}

// ID implements the peripherals.Peripheral interface.
func (s *SIPO) ID() string {
	return s.id
}

// Kind implements the peripherals.Peripheral interface.
func (s *SIPO) Kind() string {
	return "sipo-shift-register"
}

// Register returns the pre-latch value of the shift register.
func (s *SIPO) Register() uint8 {
	return s.shift
}

// Output returns the value of the output latch.
func (s *SIPO) Output() uint8 {
	return s.out
}

// Reset implements the peripherals.Peripheral interface.
func (s *SIPO) Reset() {
	s.shift = 0
	s.out = 0
}

// Detach implements the peripherals.Peripheral interface.
func (s *SIPO) Detach() {
	for _, r := range s.regs {
		r.Remove()
	}
	s.regs = s.regs[:0]
	s.RemoveAllListeners()
}
