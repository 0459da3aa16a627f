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

// Package mcu defines the contract between the simulation core and the
// processor model. The instruction decode/execute semantics live in the
// processor model, behind the Core interface; this package only
// describes what the rest of the simulation requires of it.
//
// Optional behaviour is expressed through capability interfaces
// (WriteTracer, FlowClassifier, SerialPort, ADC, ProgramLoader). A Core
// that does not implement a capability simply does not receive the
// corresponding feature.
package mcu

import (
	"github.com/sparkbench/sparkbench/hardware/gpio"
)

// EventID identifies a scheduled clock event for cancellation.
type EventID int

// NoEvent is the zero EventID. It is never returned by a successful
// Schedule() call.
const NoEvent EventID = 0

// Snapshot records processor state at an instant. Used by the debugger
// for diffing the effect of a single instruction.
type Snapshot struct {
	PC     uint32
	SP     uint16
	Status uint8
	Regs   [32]uint8
	Cycles uint64
}

// Core is the processor model consumed by the simulation. One Core
// instance belongs to exactly one simulation session.
type Core interface {
	// execute exactly one instruction. the cycle counter advances by the
	// instruction's cost and any clock events that fall due are fired.
	// errors (eg. an illegal opcode) are not retried, only propagated
	ExecuteInstruction() error

	// advance the processor by a single cycle
	Tick()

	// the monotonically increasing cycle counter
	Cycles() uint64

	// clock frequency in Hz
	Frequency() int

	// the current program counter
	PC() uint32

	// a copy of the register state at this instant
	Snapshot() Snapshot

	// return the processor to its power-on state. the program, if one is
	// loaded, is retained
	Reset()

	// the port with the given ID, or nil if the processor has no such
	// port. ports may outlive individual peripherals, which is why the
	// wiring layer must detach listeners on teardown
	Port(id gpio.PortID) *gpio.Port

	// Schedule registers fn to be called after the given number of
	// cycles. peripherals use this instead of busy-waiting. the returned
	// EventID can be used to Cancel the event before it fires
	Schedule(cycles uint64, fn func()) EventID

	// Cancel a previously scheduled event. cancelling an event that has
	// already fired is a no-op
	Cancel(id EventID)
}
