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

package encoder_test

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/hardware/mcu/mcutest"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/encoder"
	"github.com/sparkbench/sparkbench/test"
)

type phase struct {
	clk, dt bool
}

func record(core *mcutest.Core, port *gpio.Port, clkBit, dtBit int) *[]phase {
	var seq []phase
	port.AddListener(func(bit int, state gpio.PinState) {
		if bit != clkBit && bit != dtBit {
			return
		}
		seq = append(seq, phase{clk: port.Level(clkBit), dt: port.Level(dtBit)})
	})
	return &seq
}

// runs the core long enough for n detents to complete
func settle(core *mcutest.Core, n int) {
	cycles := clocks.MicrosToCycles(encoder.PhaseMicros, core.Frequency()) * uint64(n+1) * 5
	for i := uint64(0); i < cycles; i++ {
		core.Tick()
	}
}

func TestClockwise(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortD)
	clk := peripherals.Line{Port: port, Bit: 3}
	dt := peripherals.Line{Port: port, Bit: 4}

	e := encoder.NewEncoder("encoder1", core, clk, dt, peripherals.Line{})

	seq := record(core, port, 3, 4)
	e.Rotate(1)
	settle(core, 1)

	want := []phase{
		{clk: true, dt: false},
		{clk: true, dt: true},
		{clk: false, dt: true},
		{clk: false, dt: false},
	}

	// pin-level recording sees one entry per changed pin. collapse
	// consecutive duplicates before comparison
	got := collapse(*seq)
	if !test.ExpectEquality(t, len(got), len(want)) {
		t.FailNow()
	}
	for i := range want {
		test.ExpectEquality(t, got[i], want[i])
	}
}

func TestCounterClockwise(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortD)
	clk := peripherals.Line{Port: port, Bit: 3}
	dt := peripherals.Line{Port: port, Bit: 4}

	e := encoder.NewEncoder("encoder1", core, clk, dt, peripherals.Line{})

	seq := record(core, port, 3, 4)
	e.Rotate(-1)
	settle(core, 1)

	want := []phase{
		{clk: false, dt: true},
		{clk: true, dt: true},
		{clk: true, dt: false},
		{clk: false, dt: false},
	}

	got := collapse(*seq)
	if !test.ExpectEquality(t, len(got), len(want)) {
		t.FailNow()
	}
	for i := range want {
		test.ExpectEquality(t, got[i], want[i])
	}
}

func TestMultipleSteps(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortD)
	clk := peripherals.Line{Port: port, Bit: 3}
	dt := peripherals.Line{Port: port, Bit: 4}

	e := encoder.NewEncoder("encoder1", core, clk, dt, peripherals.Line{})

	seq := record(core, port, 3, 4)
	e.Rotate(3)
	settle(core, 3)

	// three complete cycles, each with its four phase transitions
	got := collapse(*seq)
	test.ExpectEquality(t, len(got), 12)
	for c := 0; c < 3; c++ {
		test.ExpectEquality(t, got[c*4+0], phase{clk: true, dt: false})
		test.ExpectEquality(t, got[c*4+1], phase{clk: true, dt: true})
		test.ExpectEquality(t, got[c*4+2], phase{clk: false, dt: true})
		test.ExpectEquality(t, got[c*4+3], phase{clk: false, dt: false})
	}
}

func TestOverlapQueues(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortD)
	clk := peripherals.Line{Port: port, Bit: 3}
	dt := peripherals.Line{Port: port, Bit: 4}

	e := encoder.NewEncoder("encoder1", core, clk, dt, peripherals.Line{})

	seq := record(core, port, 3, 4)

	// a second request while the first is in flight accumulates
	// rather than starting an overlapping sequence
	e.Rotate(1)
	core.Tick()
	e.Rotate(1)
	settle(core, 2)

	got := collapse(*seq)
	test.ExpectEquality(t, len(got), 8)
}

func TestButton(t *testing.T) {
	core := mcutest.NewCore(clocks.Standard)
	port := core.Port(gpio.PortD)
	clk := peripherals.Line{Port: port, Bit: 3}
	dt := peripherals.Line{Port: port, Bit: 4}
	button := peripherals.Line{Port: port, Bit: 5}

	e := encoder.NewEncoder("encoder1", core, clk, dt, button)

	// idle level is pulled up
	test.ExpectEquality(t, button.Level(), true)

	e.SetButton(true)
	test.ExpectEquality(t, button.Level(), false)

	e.SetButton(false)
	test.ExpectEquality(t, button.Level(), true)
}

func collapse(seq []phase) []phase {
	var out []phase
	for _, p := range seq {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}
