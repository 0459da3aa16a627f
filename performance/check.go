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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/debugger/govern"
	"github.com/sparkbench/sparkbench/hardware"
)

// leadTime allows the host to settle before measurement begins.
const leadTime = time.Second

// Check measures the simulation rate of the supplied bench.
//
// The bench runs for the specified duration of wall-clock time and the
// number of simulated cycles is compared against the processor's
// nominal clock. A paced run should report close to 100%; an unpaced
// run reports how much headroom the host has.
//
// Profiles are generated as defined by the profile argument.
func Check(output io.Writer, profile Profile, bench *hardware.Bench, paced bool, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return errors.Wrap(err, "performance")
	}

	var startCycles uint64
	var measured time.Duration

	runner := func() error {
		// expires twice. false when the lead time has elapsed and
		// measurement should start, true when the measurement period
		// has finished
		timerChan := make(chan bool)

		time.AfterFunc(leadTime, func() {
			timerChan <- false
			time.AfterFunc(dur, func() {
				timerChan <- true
			})
		})

		// checking timerChan on every continue check is expensive
		// enough to distort the measurement
		brake := 0
		var startWall time.Time

		continueCheck := func() (govern.State, error) {
			brake++
			if brake >= hardware.PerformanceBrake {
				brake = 0

				select {
				case v := <-timerChan:
					if v {
						measured = time.Since(startWall)
						return govern.Ending, nil
					}
					startCycles = bench.Core.Cycles()
					startWall = time.Now()
				default:
				}
			}
			return govern.Running, nil
		}

		if paced {
			return bench.Run(continueCheck)
		}

		// unpaced. the same loop shape as Bench.Run but without the
		// wall-clock sleeps
		for {
			if err := bench.RunForCycles(hardware.UnitCycles); err != nil {
				return err
			}
			state, err := continueCheck()
			if err != nil {
				return err
			}
			if state == govern.Ending {
				return nil
			}
		}
	}

	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return errors.Wrap(err, "performance")
	}

	cycles := bench.Core.Cycles() - startCycles
	seconds := measured.Seconds()
	rate := float64(cycles) / seconds
	ratio := 100 * rate / float64(bench.Core.Frequency())

	output.Write([]byte(fmt.Sprintf("%.0f cycles/sec (%d cycles in %.2f seconds) %.1f%% of nominal clock\n",
		rate, cycles, seconds, ratio)))

	return nil
}
