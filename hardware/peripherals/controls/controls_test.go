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

package controls_test

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/controls"
	"github.com/sparkbench/sparkbench/test"
)

func TestButton(t *testing.T) {
	port := gpio.NewPort(gpio.PortD)
	line := peripherals.Line{Port: port, Bit: 2}

	b := controls.NewButton("btn1", line)
	test.ExpectEquality(t, line.Level(), true)

	b.SetPressed(true)
	test.ExpectEquality(t, line.Level(), false)
	test.ExpectEquality(t, b.Pressed(), true)

	b.SetPressed(false)
	test.ExpectEquality(t, line.Level(), true)

	b.SetPressed(true)
	b.Reset()
	test.ExpectEquality(t, line.Level(), true)
}

func TestSwitch(t *testing.T) {
	port := gpio.NewPort(gpio.PortD)
	line := peripherals.Line{Port: port, Bit: 7}

	s := controls.NewSwitch("sw1", line)
	s.SetOn(true)
	test.ExpectEquality(t, line.Level(), false)
	test.ExpectEquality(t, s.On(), true)
	s.SetOn(false)
	test.ExpectEquality(t, line.Level(), true)
}

type adcRecorder struct {
	channel    int
	millivolts int
}

func (a *adcRecorder) SetADCChannel(channel int, millivolts int) {
	a.channel = channel
	a.millivolts = millivolts
}

func TestPot(t *testing.T) {
	adc := &adcRecorder{}

	p := controls.NewPot("pot1", adc, 3)
	p.SetPosition(0.5)
	test.ExpectEquality(t, adc.channel, 3)
	test.ExpectEquality(t, adc.millivolts, 2500)

	p.SetPosition(2.0)
	test.ExpectEquality(t, adc.millivolts, 5000)
	test.ExpectEquality(t, p.Position(), 1.0)

	p.SetPosition(-1)
	test.ExpectEquality(t, adc.millivolts, 0)
}

func TestLED(t *testing.T) {
	port := gpio.NewPort(gpio.PortB)
	line := peripherals.Line{Port: port, Bit: 5}

	l := controls.NewLED("led1", line)
	test.ExpectEquality(t, l.On(), false)

	var events int
	l.Events.AddListener(func(ev peripherals.Event) {
		if ev.ID == peripherals.EventOutput {
			events++
		}
	})

	port.SetPin(5, gpio.PinHigh)
	test.ExpectEquality(t, l.On(), true)
	test.ExpectEquality(t, events, 1)

	// same level again is not an edge
	port.SetPin(5, gpio.PinHigh)
	test.ExpectEquality(t, events, 1)

	port.SetPin(5, gpio.PinLow)
	test.ExpectEquality(t, l.On(), false)
	test.ExpectEquality(t, events, 2)

	l.Detach()
	test.ExpectEquality(t, port.NumListeners(), 0)
}
