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

package gpio_test

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/logger"
	"github.com/sparkbench/sparkbench/test"
)

func TestPinStates(t *testing.T) {
	p := gpio.NewPort(gpio.PortB)

	// undriven input reads low
	test.ExpectEquality(t, p.PinState(3), gpio.PinInput)
	test.ExpectEquality(t, p.Level(3), false)

	// pull-up implies high
	p.SetPin(3, gpio.PinInputPullup)
	test.ExpectEquality(t, p.PinState(3), gpio.PinInputPullup)
	test.ExpectEquality(t, p.Level(3), true)

	p.SetPin(3, gpio.PinHigh)
	test.ExpectEquality(t, p.Level(3), true)
	test.ExpectEquality(t, p.PinState(3).Driven(), true)

	p.SetPin(3, gpio.PinLow)
	test.ExpectEquality(t, p.Level(3), false)
}

func TestPackedPins(t *testing.T) {
	p := gpio.NewPort(gpio.PortD)
	p.SetPin(0, gpio.PinHigh)
	p.SetPin(5, gpio.PinHigh)
	p.SetPin(7, gpio.PinInputPullup)
	test.ExpectEquality(t, p.Pins(), uint8(0b10100001))
}

func TestListeners(t *testing.T) {
	p := gpio.NewPort(gpio.PortB)

	var lastBit int
	var lastState gpio.PinState
	ct := 0

	id := p.AddListener(func(bit int, state gpio.PinState) {
		lastBit = bit
		lastState = state
		ct++
	})
	test.ExpectEquality(t, p.NumListeners(), 1)

	p.SetPin(2, gpio.PinHigh)
	test.ExpectEquality(t, ct, 1)
	test.ExpectEquality(t, lastBit, 2)
	test.ExpectEquality(t, lastState, gpio.PinHigh)

	// no change in state means no listener call
	p.SetPin(2, gpio.PinHigh)
	test.ExpectEquality(t, ct, 1)

	p.RemoveListener(id)
	test.ExpectEquality(t, p.NumListeners(), 0)

	p.SetPin(2, gpio.PinLow)
	test.ExpectEquality(t, ct, 1)
}

func TestListenerReentrancy(t *testing.T) {
	p := gpio.NewPort(gpio.PortB)

	// a listener that reacts to a change on bit 0 by driving bit 1.
	// models a peripheral reacting synchronously inside a callback
	p.AddListener(func(bit int, state gpio.PinState) {
		if bit == 0 && state == gpio.PinHigh {
			p.SetPin(1, gpio.PinHigh)
		}
	})

	p.SetPin(0, gpio.PinHigh)
	test.ExpectEquality(t, p.Level(1), true)
}

func TestToggleIsQuiet(t *testing.T) {
	logger.Clear()

	p := gpio.NewPort(gpio.PortB)

	// a single driver pulsing a pin is ordinary operation. rapid
	// driven-high/driven-low transitions must not generate log traffic
	for i := 0; i < 100; i++ {
		p.SetPin(0, gpio.PinHigh)
		p.SetPin(0, gpio.PinLow)
	}

	w := &test.Writer{}
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "")
}
