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

// Package hardware composes a processor core and a wired sheet into a
// Bench, the single object that owns one simulation session. The run
// loop in this package paces simulated time against the wall clock.
package hardware

import (
	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/schematic"
	"github.com/sparkbench/sparkbench/wiring"
)

// Bench is one simulation session: a processor core and the peripherals
// wired to it.
type Bench struct {
	Core    mcu.Core
	Harness *wiring.Harness

	pacing pacing
}

// NewBench is the preferred method of initialisation for the Bench
// type. The sheet may be nil, giving a bare processor with nothing
// wired to it.
func NewBench(core mcu.Core, sheet *schematic.Sheet, opts ...wiring.Option) (*Bench, error) {
	b := &Bench{Core: core}

	if sheet != nil {
		var err error
		b.Harness, err = wiring.Connect(sheet, core, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "bench")
		}
	}

	return b, nil
}

// Step executes exactly one instruction.
func (b *Bench) Step() error {
	return b.Core.ExecuteInstruction()
}

// Reset returns the processor and every wired peripheral to the
// power-on state.
func (b *Bench) Reset() {
	b.Core.Reset()
	if b.Harness != nil {
		b.Harness.Reset()
	}
}

// End disposes the session. The harness is detached so that no
// peripheral listener outlives the bench.
func (b *Bench) End() {
	b.Stop()
	if b.Harness != nil {
		b.Harness.Detach()
	}
}
