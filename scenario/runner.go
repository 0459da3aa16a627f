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

package scenario

import (
	"github.com/sparkbench/sparkbench/hardware"
	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// runtime is the mutable state shared by the steps of one scenario run.
type runtime struct {
	bench  *hardware.Bench
	serial []byte
}

func (rt *runtime) transcript() string {
	return string(rt.serial)
}

func (rt *runtime) runCycles(cycles uint64) error {
	return rt.bench.RunForCycles(cycles)
}

func (rt *runtime) runMillis(ms int) error {
	return rt.runCycles(clocks.MillisToCycles(float64(ms), rt.bench.Core.Frequency()))
}

func (rt *runtime) peripheral(id string) (peripherals.Peripheral, bool) {
	if rt.bench.Harness == nil {
		return nil, false
	}
	return rt.bench.Harness.Peripheral(id)
}

// Run executes the scenario against the bench. The bench is consumed:
// teardown runs unconditionally on completion, pass or fail, leaving
// the harness detached.
//
// The error return is reserved for processor faults, which abort the
// run. Step failures are reported in the Result and are not errors.
func Run(bench *hardware.Bench, sc *Scenario) (result Result, _ error) {
	result.Name = sc.Name

	rt := &runtime{bench: bench}

	if sp, ok := bench.Core.(mcu.SerialPort); ok {
		id := sp.AddSerialListener(func(data []byte) {
			rt.serial = append(rt.serial, data...)
		})
		defer sp.RemoveSerialListener(id)
	}

	defer bench.End()
	defer func() {
		result.Transcript = rt.transcript()
	}()

	// the warm-up runs before the first step, unconditionally. it gives
	// firmware setup code time to settle before anything is injected
	if err := rt.runMillis(WarmupMillis); err != nil {
		result.Passed = false
		return result, err
	}

	for _, step := range sc.Steps {
		detail, err := step.run(rt)
		if err != nil {
			result.Steps = append(result.Steps, StepResult{Step: step, Detail: err.Error()})
			return result, err
		}

		res := StepResult{Step: step, Ok: detail == "", Detail: detail}
		result.Steps = append(result.Steps, res)

		if !res.Ok {
			return result, nil
		}
	}

	result.Passed = true
	return result, nil
}
