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

package wiring

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/test"
)

func TestBoardTranslator(t *testing.T) {
	tr := boardTranslator{}

	port, bit, ok := tr.Pin("13")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, port, gpio.PortB)
	test.ExpectEquality(t, bit, 5)

	port, bit, ok = tr.Pin("0")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, port, gpio.PortD)
	test.ExpectEquality(t, bit, 0)

	port, bit, ok = tr.Pin("A4")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, port, gpio.PortC)
	test.ExpectEquality(t, bit, 4)

	_, _, ok = tr.Pin("14")
	test.ExpectFailure(t, ok)
	_, _, ok = tr.Pin("A6")
	test.ExpectFailure(t, ok)
	_, _, ok = tr.Pin("PB5")
	test.ExpectFailure(t, ok)

	ch, ok := tr.ADCChannel("A3")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ch, 3)
	_, ok = tr.ADCChannel("13")
	test.ExpectFailure(t, ok)
}

func TestRawTranslator(t *testing.T) {
	tr := rawTranslator{}

	port, bit, ok := tr.Pin("PB5")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, port, gpio.PortB)
	test.ExpectEquality(t, bit, 5)

	port, bit, ok = tr.Pin("PD0")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, port, gpio.PortD)
	test.ExpectEquality(t, bit, 0)

	_, _, ok = tr.Pin("PA1")
	test.ExpectFailure(t, ok)
	_, _, ok = tr.Pin("13")
	test.ExpectFailure(t, ok)

	ch, ok := tr.ADCChannel("ADC7")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ch, 7)
	_, ok = tr.ADCChannel("A0")
	test.ExpectFailure(t, ok)
}
