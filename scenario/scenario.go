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

// Package scenario runs a scripted sequence of timed actions and
// assertions against a simulation session. Steps execute strictly in
// order; a wait step polls the simulation in small cycle batches until
// its condition holds or its timeout's cycle budget is spent. The
// first failing step stops the scenario and later steps are not
// attempted.
package scenario

import (
	"fmt"
	"strings"
)

// DefaultTimeout is the wait step timeout used when a script does not
// give one, in milliseconds.
const DefaultTimeout = 5000

// WarmupMillis of simulated time always run before the first step.
const WarmupMillis = 10

// PollCycles is the batch size wait steps advance the simulation by
// between condition checks.
const PollCycles = 1000

// Step is one action or assertion in a scenario.
type Step interface {
	String() string

	// run returns a failure description, or empty for success. an
	// error return is reserved for processor faults, which abort the
	// scenario rather than fail the step
	run(rt *runtime) (string, error)
}

// Scenario is an ordered, immutable list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// StepResult records one attempted step.
type StepResult struct {
	Step   Step
	Ok     bool
	Detail string
}

func (r StepResult) String() string {
	if r.Ok {
		return fmt.Sprintf("ok   %s", r.Step)
	}
	return fmt.Sprintf("FAIL %s: %s", r.Step, r.Detail)
}

// Result summarises a scenario run. Steps holds one entry per attempted
// step; steps after the first failure are absent. Transcript is the
// serial output captured over the whole run.
type Result struct {
	Name       string
	Passed     bool
	Steps      []StepResult
	Transcript string
}

func (r Result) String() string {
	s := strings.Builder{}
	if r.Passed {
		s.WriteString(fmt.Sprintf("PASS %s\n", r.Name))
	} else {
		s.WriteString(fmt.Sprintf("FAIL %s\n", r.Name))
	}
	for _, st := range r.Steps {
		s.WriteString(fmt.Sprintf("  %s\n", st))
	}
	return s.String()
}
