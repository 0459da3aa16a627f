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

package servo_test

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/hardware/mcu/mcutest"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/servo"
	"github.com/sparkbench/sparkbench/test"
)

func sendPulse(core *mcutest.Core, line peripherals.Line, micros float64) {
	line.Set(true)
	for i := uint64(0); i < clocks.MicrosToCycles(micros, core.Frequency()); i++ {
		core.Tick()
	}
	line.Set(false)
}

func TestCalibrationEndpoints(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	line := peripherals.Line{Port: core.Port(gpio.PortB), Bit: 1}

	s := servo.NewServo("servo1", core, line)

	sendPulse(core, line, servo.MinPulseMicros)
	test.ExpectEquality(t, s.Angle(), 0)

	sendPulse(core, line, servo.MaxPulseMicros)
	test.ExpectEquality(t, s.Angle(), 180)

	sendPulse(core, line, (servo.MinPulseMicros+servo.MaxPulseMicros)/2)
	test.ExpectEquality(t, s.Angle(), 90)
}

func TestSanityWindow(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	line := peripherals.Line{Port: core.Port(gpio.PortB), Bit: 1}

	s := servo.NewServo("servo1", core, line)

	events := 0
	s.AddListener(func(ev peripherals.Event) {
		if ev.ID == peripherals.EventAngle {
			events++
		}
	})

	// outside the sanity window: no event, no angle
	sendPulse(core, line, 300)
	test.ExpectEquality(t, events, 0)
	test.ExpectEquality(t, s.Angle(), -1)

	// inside the sanity window but below the calibration minimum:
	// clamped to zero
	sendPulse(core, line, 450)
	test.ExpectEquality(t, events, 1)
	test.ExpectEquality(t, s.Angle(), 0)
}

func TestEventOnlyOnChange(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	line := peripherals.Line{Port: core.Port(gpio.PortB), Bit: 1}

	s := servo.NewServo("servo1", core, line)

	var events int
	var last int
	s.AddListener(func(ev peripherals.Event) {
		if ev.ID == peripherals.EventAngle {
			events++
			last = ev.Data.(int)
		}
	})

	sendPulse(core, line, 1500)
	test.ExpectEquality(t, events, 1)

	// a repeat of the same pulse width rounds to the same angle and
	// fires no second event
	sendPulse(core, line, 1500)
	test.ExpectEquality(t, events, 1)

	sendPulse(core, line, 1600)
	test.ExpectEquality(t, events, 2)
	test.ExpectEquality(t, last, s.Angle())
}

func TestDetach(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortB)
	line := peripherals.Line{Port: port, Bit: 1}

	s := servo.NewServo("servo1", core, line)
	test.ExpectEquality(t, port.NumListeners(), 1)
	s.Detach()
	test.ExpectEquality(t, port.NumListeners(), 0)
}
