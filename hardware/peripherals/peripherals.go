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

// Package peripherals defines the contract between the wiring layer and
// the hardware models in the sub-packages. A peripheral reacts
// synchronously inside port listener callbacks, converts cycle deltas to
// durations through the Clock interface, and schedules future pin
// transitions through the Scheduler interface rather than busy-waiting.
package peripherals

import "github.com/sparkbench/sparkbench/hardware/mcu"

// Peripheral is the interface implemented by every hardware model.
type Peripheral interface {
	// String returns information about the state of the peripheral
	String() string

	// the instance name the peripheral was wired with (the part ID from
	// the schematic)
	ID() string

	// the family of hardware being modelled
	Kind() string

	// return the peripheral to its power-on state
	Reset()

	// Detach removes every listener registration and cancels every
	// scheduled event owned by the peripheral. once Detach has returned
	// there must be no live reference from any Port to the peripheral
	Detach()
}

// Clock gives peripherals access to the processor's cycle counter, from
// which durations between pin edges are derived.
type Clock interface {
	Cycles() uint64
	Frequency() int
}

// Scheduler gives peripherals access to the processor's clock event
// queue. The "fire after N cycles" primitive is the only mechanism for
// future pin transitions.
type Scheduler interface {
	Schedule(cycles uint64, fn func()) mcu.EventID
	Cancel(id mcu.EventID)
}

// Timekeeper combines Clock and Scheduler. Satisfied by mcu.Core.
type Timekeeper interface {
	Clock
	Scheduler
}
