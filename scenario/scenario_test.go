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

package scenario_test

import (
	"strings"
	"testing"

	"github.com/sparkbench/sparkbench/hardware"
	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/hardware/mcu/mcutest"
	"github.com/sparkbench/sparkbench/scenario"
	"github.com/sparkbench/sparkbench/schematic"
	"github.com/sparkbench/sparkbench/test"
)

// a very slow test clock keeps wait step cycle budgets small
const testHz = 1000

// timing sensitive peripherals need a more plausible clock
const encoderHz = 1000000

func conn(from, fromPin, to, toPin string) schematic.Connection {
	return schematic.Connection{
		From: schematic.Endpoint{Part: from, Pin: fromPin},
		To:   schematic.Endpoint{Part: to, Pin: toPin},
	}
}

func TestWaitSerialTimeout(t *testing.T) {
	core := mcutest.NewCore(testHz)
	core.OnInstruction = func(c *mcutest.Core) {
		if c.Cycles() == 100 {
			c.EmitSerialf("hello")
		}
	}

	bench, err := hardware.NewBench(core, nil)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Name: "never boots",
		Steps: []scenario.Step{
			scenario.WaitSerial{Substring: "BOOT", Timeout: 2000},
			scenario.ExpectSerial{Substring: "hello"},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)

	// the failing step is the last one attempted
	test.ExpectEquality(t, len(result.Steps), 1)
	test.ExpectEquality(t, result.Steps[0].Ok, false)

	// the diagnostic carries the captured transcript
	test.ExpectSuccess(t, strings.Contains(result.Steps[0].Detail, "hello"))
	test.ExpectSuccess(t, strings.Contains(result.Transcript, "hello"))
}

func TestWaitSerialSucceeds(t *testing.T) {
	core := mcutest.NewCore(testHz)
	core.OnInstruction = func(c *mcutest.Core) {
		if c.Cycles() == 500 {
			c.EmitSerialf("BOOT")
		}
	}

	bench, err := hardware.NewBench(core, nil)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Name: "boots",
		Steps: []scenario.Step{
			scenario.WaitSerial{Substring: "BOOT", Timeout: 1000},
			scenario.ExpectSerial{Substring: "BOOT"},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, true)
	test.ExpectEquality(t, len(result.Steps), 2)
}

func TestRotateProducesQuadrature(t *testing.T) {
	sheet := &schematic.Sheet{
		Parts: []schematic.Part{
			{ID: "mcu", Type: "mcu-uno"},
			{ID: "enc1", Type: "rotary-encoder"},
		},
		Connections: []schematic.Connection{
			conn("mcu", "2", "enc1", "CLK"),
			conn("mcu", "3", "enc1", "DT"),
		},
	}

	core := mcutest.NewCore(encoderHz)
	bench, err := hardware.NewBench(core, sheet)
	test.ExpectSuccess(t, err)

	// count changes on the two encoder pins. each quadrature cycle is
	// four phase transitions, each changing exactly one pin
	transitions := 0
	core.Port(gpio.PortD).AddListener(func(bit int, _ gpio.PinState) {
		if bit == 2 || bit == 3 {
			transitions++
		}
	})

	sc := &scenario.Scenario{
		Name: "three detents",
		Steps: []scenario.Step{
			scenario.SetControl{Part: "enc1", Control: "rotate", Values: []float64{3}},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, true)
	test.ExpectEquality(t, transitions, 12)
}

func TestUnknownControlFails(t *testing.T) {
	sheet := &schematic.Sheet{
		Parts: []schematic.Part{
			{ID: "mcu", Type: "mcu-uno"},
			{ID: "led1", Type: "led"},
		},
		Connections: []schematic.Connection{
			conn("mcu", "13", "led1", "A"),
		},
	}

	core := mcutest.NewCore(testHz)
	bench, err := hardware.NewBench(core, sheet)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			scenario.SetControl{Part: "led1", Control: "pressed", Values: []float64{1}},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)
	test.ExpectSuccess(t, strings.Contains(result.Steps[0].Detail, "unknown control"))
}

func TestMissingComponentFails(t *testing.T) {
	core := mcutest.NewCore(testHz)
	bench, err := hardware.NewBench(core, nil)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			scenario.SetControl{Part: "ghost", Control: "pressed", Values: []float64{1}},
			scenario.Delay{Millis: 1},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)
	test.ExpectEquality(t, len(result.Steps), 1)
	test.ExpectSuccess(t, strings.Contains(result.Steps[0].Detail, "no component"))
}

func TestSerialClearStopsAtFailure(t *testing.T) {
	core := mcutest.NewCore(testHz)
	emitted := false
	core.OnInstruction = func(c *mcutest.Core) {
		if !emitted {
			emitted = true
			c.EmitSerialf("X")
		}
	}

	bench, err := hardware.NewBench(core, nil)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			scenario.WaitSerial{Substring: "X", Timeout: 100},
			scenario.SerialClear{},
			scenario.ExpectSerial{Substring: "X"},
			scenario.Delay{Millis: 1},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)
	test.ExpectEquality(t, len(result.Steps), 3)
	test.ExpectEquality(t, result.Steps[0].Ok, true)
	test.ExpectEquality(t, result.Steps[1].Ok, true)
	test.ExpectEquality(t, result.Steps[2].Ok, false)
}

func TestSerialSend(t *testing.T) {
	core := mcutest.NewCore(testHz)
	bench, err := hardware.NewBench(core, nil)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			scenario.SerialSend{Data: []byte("go\n")},
			scenario.Delay{Millis: 1},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, true)
	test.ExpectEquality(t, string(core.Received()), "go\n")
}

func TestExpectDisplay(t *testing.T) {
	sheet := &schematic.Sheet{
		Parts: []schematic.Part{
			{ID: "mcu", Type: "mcu-uno"},
			{ID: "oled1", Type: "ssd1306"},
		},
	}

	core := mcutest.NewCore(testHz)
	bench, err := hardware.NewBench(core, sheet)
	test.ExpectSuccess(t, err)

	// scripted firmware draws two bytes during the warm-up
	bus := bench.Harness.Bus()
	drawn := false
	core.OnInstruction = func(c *mcutest.Core) {
		if drawn {
			return
		}
		drawn = true
		bus.Start(0x3c, true)
		bus.Write(0x40) // data stream
		bus.Write(0xaa)
		bus.Write(0xbb)
		bus.Stop()
	}

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			scenario.ExpectDisplay{Part: "oled1", MinNonZero: 2, Pattern: []byte{0xaa, 0xbb}, Offset: 0},
			scenario.ExpectDisplay{Part: "oled1", MinNonZero: 3},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)
	test.ExpectEquality(t, result.Steps[0].Ok, true)
	test.ExpectSuccess(t, strings.Contains(result.Steps[1].Detail, "non-zero"))
}

func TestTeardownDetachesHarness(t *testing.T) {
	sheet := &schematic.Sheet{
		Parts: []schematic.Part{
			{ID: "mcu", Type: "mcu-uno"},
			{ID: "led1", Type: "led"},
		},
		Connections: []schematic.Connection{
			conn("mcu", "13", "led1", "A"),
		},
	}

	core := mcutest.NewCore(testHz)
	bench, err := hardware.NewBench(core, sheet)
	test.ExpectSuccess(t, err)

	sc := &scenario.Scenario{
		Steps: []scenario.Step{
			// fails, and teardown must still run
			scenario.ExpectSerial{Substring: "never"},
		},
	}

	result, err := scenario.Run(bench, sc)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, result.Passed, false)
	test.ExpectEquality(t, core.Port(gpio.PortB).NumListeners(), 0)
}

func TestLoadScript(t *testing.T) {
	script := `
name("buttons and leds")
delay(100)
set("imu1", "accel", 0, 0, 1)
wait_serial("READY", 2000)
for i = 1, 2 do
	serial_send("ping\n")
	expect_serial("pong")
end
serial_clear()
expect_display("oled1", {min = 10, offset = 4, pattern = {0xaa, 0xbb}})
`

	sc, err := scenario.LoadScript(strings.NewReader(script), "script.lua")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sc.Name, "buttons and leds")
	test.ExpectEquality(t, len(sc.Steps), 9)

	test.ExpectEquality(t, sc.Steps[0].(scenario.Delay).Millis, 100)

	set := sc.Steps[1].(scenario.SetControl)
	test.ExpectEquality(t, set.Part, "imu1")
	test.ExpectEquality(t, set.Control, "accel")
	test.ExpectEquality(t, len(set.Values), 3)

	wait := sc.Steps[2].(scenario.WaitSerial)
	test.ExpectEquality(t, wait.Substring, "READY")
	test.ExpectEquality(t, wait.Timeout, 2000)

	_, ok := sc.Steps[3].(scenario.SerialSend)
	test.ExpectSuccess(t, ok)
	_, ok = sc.Steps[7].(scenario.SerialClear)
	test.ExpectSuccess(t, ok)

	disp := sc.Steps[8].(scenario.ExpectDisplay)
	test.ExpectEquality(t, disp.MinNonZero, 10)
	test.ExpectEquality(t, disp.Offset, 4)
	test.ExpectEquality(t, len(disp.Pattern), 2)
	test.ExpectEquality(t, disp.Pattern[0], byte(0xaa))

	_, err = scenario.LoadScript(strings.NewReader(`delay("not a number"`), "bad.lua")
	test.ExpectFailure(t, err)
}
