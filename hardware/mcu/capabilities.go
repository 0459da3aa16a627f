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

package mcu

// WriteTracer is implemented by cores that can record which bus
// addresses are written during an instruction. The debugger uses it to
// highlight memory touched by a single step. Tracing is an explicit
// switch on the interface; there is no rebinding of the bus hook.
type WriteTracer interface {
	// enable or disable recording of written addresses
	TraceWrites(enable bool)

	// the addresses written since the last call to ClearWrites
	Writes() []uint16

	ClearWrites()
}

// FlowClass describes how the instruction at the current program counter
// affects control flow. Classification belongs to the core; the debugger
// never decodes opcode bits itself.
type FlowClass int

// List of valid FlowClass values.
const (
	// control continues at the next instruction
	FlowNormal FlowClass = iota

	// a call-family instruction. step-over runs until the program
	// counter returns to the post-call address
	FlowCall

	// a skip-family instruction. the following instruction may or may
	// not be executed
	FlowSkip
)

// FlowClassifier is implemented by cores that can classify the
// instruction at the current program counter. The second return value is
// the address at which execution resumes once the call or skip has
// completed.
type FlowClassifier interface {
	ClassifyNext() (FlowClass, uint32)
}

// SerialListenerID identifies a serial output registration.
type SerialListenerID int

// SerialPort is implemented by cores whose firmware has a serial
// (UART-style) channel. Output listeners receive every byte the firmware
// transmits; Receive injects bytes into the firmware's receive buffer.
type SerialPort interface {
	AddSerialListener(fn func([]byte)) SerialListenerID
	RemoveSerialListener(id SerialListenerID)
	SerialReceive(data []byte)
}

// ADC is implemented by cores with analog input channels. Values are in
// millivolts; the core is responsible for quantising to its own
// resolution.
type ADC interface {
	SetADCChannel(channel int, millivolts int)
}

// ProgramLoader is implemented by cores that accept a compiled firmware
// image. Populating program memory is the loader's concern; the
// simulation only needs to know whether a program is present.
type ProgramLoader interface {
	LoadProgram(data []byte) error
	ProgramLoaded() bool
}
