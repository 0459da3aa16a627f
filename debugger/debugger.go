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

// Package debugger implements the interactive runner. It sits on top of
// a hardware.Bench and adds stepping, breakpoints, pacing control and a
// typed event stream for front ends.
//
// The runner is always in exactly one of the states defined in the
// govern package. A freshly created debugger is stopped; loading a
// program moves it to paused; Run moves it to running until a
// breakpoint, fault or explicit pause.
//
// Normal operation never returns an error across the public API.
// Errors from the processor core (an illegal opcode in the firmware)
// are the exception; they are propagated to the caller untouched.
package debugger

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/debugger/govern"
	"github.com/sparkbench/sparkbench/hardware"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/logger"
)

// stepOverCeiling bounds the number of instructions a step-over will
// execute before giving up on ever reaching the return address.
const stepOverCeiling = 1000000

// at or below this rate (instructions per second) the run loop switches
// to the fixed interval single instruction loop. batched execution
// overshoots the intended pacing at very low rates.
const lowRateThreshold = 1000

// the per-frame batching interval used by the bulk run loop.
const frameInterval = 20 * time.Millisecond

// StepRecord describes the effect of a single step (or step-over) for
// display purposes. Writes lists the bus addresses touched, when the
// core supports write tracing.
type StepRecord struct {
	Before mcu.Snapshot
	After  mcu.Snapshot
	Writes []uint16
}

// Debugger is the interactive runner.
type Debugger struct {
	bench *hardware.Bench

	state       govern.State
	breakpoints *breakpoints

	// instructions per second. zero means as fast as possible
	rate int

	// set when the active run loop must be abandoned, either to pause
	// or to restart under a new pacing mode. atomic because a front end
	// may interrupt from a signal handler goroutine
	interrupt atomic.Bool

	// set alongside interrupt when the abandoned loop should re-enter
	// under the new pacing mode rather than pause
	restart atomic.Bool

	// serial transcript captured since the last ClearSerial
	serial   []byte
	serialID mcu.SerialListenerID

	lstrs          []eventListener
	nextListenerID ListenerID
}

// NewDebugger is the preferred method of initialisation for the
// Debugger type.
func NewDebugger(bench *hardware.Bench) *Debugger {
	dbg := &Debugger{
		bench:       bench,
		state:       govern.Stopped,
		breakpoints: newBreakpoints(),
	}

	if sp, ok := bench.Core.(mcu.SerialPort); ok {
		dbg.serialID = sp.AddSerialListener(func(data []byte) {
			dbg.serial = append(dbg.serial, data...)
			dbg.dispatch(Event{ID: EventSerial, Data: data})
		})
	}

	if pl, ok := bench.Core.(mcu.ProgramLoader); ok && pl.ProgramLoaded() {
		dbg.state = govern.Paused
	}

	return dbg
}

// Bench returns the simulation session being debugged.
func (dbg *Debugger) Bench() *hardware.Bench {
	return dbg.bench
}

// State returns the current runner state.
func (dbg *Debugger) State() govern.State {
	return dbg.state
}

// Load hands a program image to the core and moves the runner to
// paused.
func (dbg *Debugger) Load(data []byte) error {
	pl, ok := dbg.bench.Core.(mcu.ProgramLoader)
	if !ok {
		return errors.New("debugger: core does not load programs")
	}
	if err := pl.LoadProgram(data); err != nil {
		return errors.Wrap(err, "debugger")
	}

	dbg.dispatch(Event{ID: EventProgram})
	dbg.setState(govern.Paused)
	return nil
}

// Step executes exactly one instruction and advances the clock with it.
// The returned record carries the register snapshots from either side
// of the instruction and the bus addresses it wrote.
func (dbg *Debugger) Step() (StepRecord, error) {
	rec := StepRecord{Before: dbg.bench.Core.Snapshot()}

	tracer, _ := dbg.bench.Core.(mcu.WriteTracer)
	if tracer != nil {
		tracer.ClearWrites()
		tracer.TraceWrites(true)
		defer tracer.TraceWrites(false)
	}

	if err := dbg.bench.Step(); err != nil {
		return rec, err
	}

	rec.After = dbg.bench.Core.Snapshot()
	if tracer != nil {
		rec.Writes = tracer.Writes()
	}

	dbg.setState(govern.Paused)
	dbg.dispatch(Event{ID: EventStep, Data: rec})
	return rec, nil
}

// StepOver is Step unless the next instruction is a call or a skip, in
// which case execution continues until the program counter reaches the
// address after the call, a breakpoint fires, or the iteration ceiling
// is reached. The ceiling degrades a runaway call into a long step
// rather than a hang.
func (dbg *Debugger) StepOver() (StepRecord, error) {
	fc, ok := dbg.bench.Core.(mcu.FlowClassifier)
	if !ok {
		return dbg.Step()
	}

	class, resume := fc.ClassifyNext()
	if class == mcu.FlowNormal {
		return dbg.Step()
	}

	rec := StepRecord{Before: dbg.bench.Core.Snapshot()}

	tracer, _ := dbg.bench.Core.(mcu.WriteTracer)
	if tracer != nil {
		tracer.ClearWrites()
		tracer.TraceWrites(true)
		defer tracer.TraceWrites(false)
	}

	reached := false
	for i := 0; i < stepOverCeiling; i++ {
		if err := dbg.bench.Step(); err != nil {
			return rec, err
		}

		pc := dbg.bench.Core.PC()
		if pc == resume {
			reached = true
			break
		}
		if dbg.breakpoints.check(pc) {
			dbg.dispatch(Event{ID: EventBreakpoint, Data: pc})
			break
		}
	}

	if !reached {
		logger.Logf("debugger", "step-over did not reach 0x%04x", resume)
	}

	rec.After = dbg.bench.Core.Snapshot()
	if tracer != nil {
		rec.Writes = tracer.Writes()
	}

	dbg.setState(govern.Paused)
	dbg.dispatch(Event{ID: EventStep, Data: rec})
	return rec, nil
}

// Run executes the simulation until a breakpoint fires, the runner is
// paused or interrupted, or the core faults. The pacing mode is chosen
// from the configured rate; SetSpeed during a run restarts the loop
// under the new mode.
func (dbg *Debugger) Run() error {
	dbg.setState(govern.Running)

	for dbg.state == govern.Running {
		dbg.interrupt.Store(false)
		dbg.restart.Store(false)

		var err error
		if dbg.rate > 0 && dbg.rate <= lowRateThreshold {
			err = dbg.runLowRate()
		} else {
			err = dbg.runBulk()
		}
		if err != nil {
			dbg.setState(govern.Paused)
			return err
		}

		// the inner loop was abandoned. a restart request re-enters
		// under the new pacing mode; any other interruption pauses
		if dbg.state == govern.Running && !dbg.restart.Load() {
			dbg.setState(govern.Paused)
		}
	}

	return nil
}

// Pause moves a running simulation to paused. It writes debugger state
// directly so it must only be called from the goroutine the run loop is
// on (an instruction callback or event listener). Other goroutines use
// Interrupt and leave the paused transition to the run loop.
func (dbg *Debugger) Pause() {
	dbg.interrupt.Store(true)
	dbg.setState(govern.Paused)
}

// Interrupt abandons the active run loop; the loop pauses when it
// notices. Safe to call from another goroutine (a signal handler or
// terminal reader).
func (dbg *Debugger) Interrupt() {
	dbg.interrupt.Store(true)
}

// SetSpeed changes the target rate in instructions per second. A rate
// of zero means as fast as possible. Any pending continuation of the
// active run loop is abandoned and the loop restarted under the pacing
// mode the new rate selects.
func (dbg *Debugger) SetSpeed(rate int) {
	if rate < 0 {
		rate = 0
	}
	dbg.rate = rate
	dbg.restart.Store(true)
	dbg.interrupt.Store(true)
}

// Rate returns the configured rate in instructions per second.
func (dbg *Debugger) Rate() int {
	return dbg.rate
}

// Reset returns the processor and peripherals to their power-on state
// and clears the serial transcript and any write tracing. The runner
// lands in paused if a program is loaded, stopped otherwise.
func (dbg *Debugger) Reset() {
	dbg.interrupt.Store(true)
	dbg.bench.Reset()

	dbg.serial = dbg.serial[:0]
	if tracer, ok := dbg.bench.Core.(mcu.WriteTracer); ok {
		tracer.ClearWrites()
	}

	if pl, ok := dbg.bench.Core.(mcu.ProgramLoader); ok && pl.ProgramLoaded() {
		dbg.setState(govern.Paused)
	} else {
		dbg.setState(govern.Stopped)
	}
}

// Serial returns the captured serial transcript.
func (dbg *Debugger) Serial() []byte {
	return dbg.serial
}

// ClearSerial empties the captured serial transcript.
func (dbg *Debugger) ClearSerial() {
	dbg.serial = dbg.serial[:0]
}

// SerialSend injects bytes into the firmware's receive buffer.
func (dbg *Debugger) SerialSend(data []byte) error {
	sp, ok := dbg.bench.Core.(mcu.SerialPort)
	if !ok {
		return errors.New("debugger: core has no serial port")
	}
	sp.SerialReceive(data)
	return nil
}

// one instruction and the post-instruction breakpoint check. reports
// whether the run loop should continue.
func (dbg *Debugger) runOne() (bool, error) {
	if err := dbg.bench.Step(); err != nil {
		return false, err
	}

	pc := dbg.bench.Core.PC()
	if dbg.breakpoints.check(pc) {
		dbg.setState(govern.Paused)
		dbg.dispatch(Event{ID: EventBreakpoint, Data: pc})
		return false, nil
	}

	return !dbg.interrupt.Load(), nil
}

// runBulk batches instructions frame by frame. With no configured rate
// the batch size tracks the core's clock frequency so a frame of
// simulated time fits in a frame of wall time.
func (dbg *Debugger) runBulk() error {
	for dbg.state == govern.Running {
		start := time.Now()

		var batch int
		if dbg.rate > 0 {
			batch = dbg.rate * int(frameInterval) / int(time.Second)
		} else {
			batch = dbg.bench.Core.Frequency() * int(frameInterval) / int(time.Second)
		}
		if batch < 1 {
			batch = 1
		}

		for i := 0; i < batch; i++ {
			cont, err := dbg.runOne()
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}

		if sleep := frameInterval - time.Since(start); sleep > 0 {
			time.Sleep(sleep)
		}
	}

	return nil
}

// runLowRate executes one instruction per fixed interval. Used at very
// low rates where frame batching would overshoot the intended pacing.
func (dbg *Debugger) runLowRate() error {
	interval := time.Second / time.Duration(dbg.rate)

	for dbg.state == govern.Running {
		cont, err := dbg.runOne()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}

		time.Sleep(interval)
	}

	return nil
}

// Detach removes the debugger's own listener registrations from the
// core. The bench itself is left for the caller to end.
func (dbg *Debugger) Detach() {
	if sp, ok := dbg.bench.Core.(mcu.SerialPort); ok && dbg.serialID != 0 {
		sp.RemoveSerialListener(dbg.serialID)
	}
	dbg.lstrs = nil
}
