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
	"strings"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// Chain models a daisy chain of SIPO chips sharing shift and latch
// clock lines. The serial data line feeds the first chip; the overflow
// bit (old MSB) of each chip feeds the next. The result is an emergent
// N×8-bit shift register.
type Chain struct {
	peripherals.Dispatcher

	id string

	data  peripherals.Line
	clock peripherals.Line
	latch peripherals.Line

	shift []uint8
	out   []uint8

	regs []peripherals.Registration
}

// NewChain is the preferred method of initialisation for the Chain
// type. The chips argument is the number of chips in the chain, in
// serial-data order.
func NewChain(id string, chips int, data, clock, latch peripherals.Line) *Chain {
	if chips < 1 {
		chips = 1
	}

	c := &Chain{
		id:    id,
		data:  data,
		clock: clock,
		latch: latch,
		shift: make([]uint8, chips),
		out:   make([]uint8, chips),
	}

	c.regs = append(c.regs, c.clock.ListenEdges(func(rising bool) {
		if !rising {
			return
		}
		// each chip's serial input is the previous chip's pre-shift MSB
		carry := bit(c.data.Level())
		for i := range c.shift {
			overflow := c.shift[i] >> 7
			c.shift[i] = c.shift[i]<<1 | carry
			carry = overflow
		}
	}))
	c.regs = append(c.regs, c.latch.ListenEdges(func(rising bool) {
		if !rising {
			return
		}
		changed := false
		for i := range c.shift {
			if c.out[i] != c.shift[i] {
				c.out[i] = c.shift[i]
				changed = true
			}
		}
		if changed {
			c.Dispatch(peripherals.Event{ID: peripherals.EventOutput, Data: c.Outputs()})
		}
	}))

	return c
}

func (c *Chain) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s:", c.id))
	for i := range c.out {
		s.WriteString(fmt.Sprintf(" %08b", c.out[i]))
	}
	return s.String()
}

// ID implements the peripherals.Peripheral interface.
func (c *Chain) ID() string {
	return c.id
}

// Kind implements the peripherals.Peripheral interface.
func (c *Chain) Kind() string {
	return "sipo-shift-register-chain"
}

// Chips returns the number of chips in the chain.
func (c *Chain) Chips() int {
	return len(c.shift)
}

// Outputs returns a copy of every chip's output latch, first chip first.
func (c *Chain) Outputs() []uint8 {
	out := make([]uint8, len(c.out))
	copy(out, c.out)
	return out
}

// Reset implements the peripherals.Peripheral interface.
func (c *Chain) Reset() {
	for i := range c.shift {
		c.shift[i] = 0
		c.out[i] = 0
	}
}

// Detach implements the peripherals.Peripheral interface.
func (c *Chain) Detach() {
	for _, r := range c.regs {
		r.Remove()
	}
	c.regs = c.regs[:0]
	c.RemoveAllListeners()
}
