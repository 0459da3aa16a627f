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

package hardware

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/debugger/govern"
)

// UnitCycles is the bounded unit of work the run loop executes between
// pacing checks.
const UnitCycles = 500000

// PaceSlack is how far simulated time may run ahead of the wall clock
// before the next unit is deferred.
const PaceSlack = 2 * time.Millisecond

// PerformanceBrake is a standard filter value for continue check
// implementations with an expensive end condition. Checking the
// condition on every call can dominate the run loop; counting calls and
// testing only every PerformanceBrake-th time keeps the loop fast.
const PerformanceBrake = 100

// pacing anchors a run against the wall clock. The zero value means the
// anchors have been cleared and pacing is re-derived on the next run.
type pacing struct {
	startWall   time.Time
	startCycles uint64
}

func (p *pacing) anchored() bool {
	return !p.startWall.IsZero()
}

// Run executes the simulation as near to real time as the host allows.
// The continueCheck function is consulted between units of work; it
// returns govern.Ending to leave the loop and govern.Paused to idle
// without advancing the simulation.
//
// Processor faults are propagated immediately and are never retried.
func (b *Bench) Run(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	if !b.pacing.anchored() {
		b.pacing.startWall = time.Now()
		b.pacing.startCycles = b.Core.Cycles()
	}

	state := govern.Running
	var err error

	for state != govern.Ending {
		switch state {
		case govern.Running:
			if err = b.RunForCycles(UnitCycles); err != nil {
				return err
			}
			b.pace()
		case govern.Paused:
			// advance nothing. the continue check decides when to resume
		default:
			return errors.Errorf("bench: unsupported state (%s) in Run()", state)
		}

		state, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}

// RunForCycles executes instructions until at least the given number of
// cycles has elapsed. No pacing is applied; the scenario interpreter
// uses this for its poll batches.
func (b *Bench) RunForCycles(cycles uint64) error {
	end := b.Core.Cycles() + cycles
	for b.Core.Cycles() < end {
		if err := b.Core.ExecuteInstruction(); err != nil {
			return err
		}
	}
	return nil
}

// pace compares elapsed simulated time against elapsed wall-clock time
// and sleeps off any surplus beyond the slack. Sleeping is the deferred
// continuation; the loop resumes when the timer fires.
func (b *Bench) pace() {
	elapsed := b.Core.Cycles() - b.pacing.startCycles
	sim := time.Duration(elapsed) * time.Second / time.Duration(b.Core.Frequency())
	wall := time.Since(b.pacing.startWall)

	if surplus := sim - wall; surplus > PaceSlack {
		time.Sleep(surplus)
	}
}

// Stop clears the pacing anchors. A later Run re-derives its pacing
// from zero rather than sprinting to catch up with the wall-clock time
// that passed while stopped.
func (b *Bench) Stop() {
	b.pacing = pacing{}
}
