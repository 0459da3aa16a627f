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
	"strconv"

	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/controls"
	"github.com/sparkbench/sparkbench/hardware/peripherals/dht"
	"github.com/sparkbench/sparkbench/hardware/peripherals/encoder"
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"
	"github.com/sparkbench/sparkbench/hardware/peripherals/servo"
	"github.com/sparkbench/sparkbench/hardware/peripherals/shiftreg"
	"github.com/sparkbench/sparkbench/logger"
)

func init() {
	RegisterProcessor("mcu-uno", boardTranslator{})
	RegisterProcessor("mcu-nano", boardTranslator{})
	RegisterProcessor("mcu-328", rawTranslator{})

	RegisterPassThrough("resistor")

	RegisterPart("led", buildLED)
	RegisterPart("pushbutton", buildButton)
	RegisterPart("slide-switch", buildSwitch)
	RegisterPart("potentiometer", buildPot)
	RegisterPart("sr-165", buildPISO)
	RegisterPart("ssd1306", buildDisplay)
	RegisterPart("mpu6050", buildIMU)
	RegisterPart("dht22", buildDHT)
	RegisterPart("servo", buildServo)
	RegisterPart("rotary-encoder", buildEncoder)
}

func buildLED(ctx *Context) (peripherals.Peripheral, error) {
	return controls.NewLED(ctx.Part().ID, ctx.Line("A")), nil
}

func buildButton(ctx *Context) (peripherals.Peripheral, error) {
	return controls.NewButton(ctx.Part().ID, ctx.Line("1")), nil
}

func buildSwitch(ctx *Context) (peripherals.Peripheral, error) {
	return controls.NewSwitch(ctx.Part().ID, ctx.Line("1")), nil
}

func buildPot(ctx *Context) (peripherals.Peripheral, error) {
	id := ctx.Part().ID

	channel, ok := ctx.ADCChannel("SIG")
	if !ok {
		logger.Logf("wiring", "%s wiper does not reach an analog pin", id)
	}

	// a core without analog channels leaves the pot inert
	adc, _ := ctx.Core().(controls.ADC)

	return controls.NewPot(id, adc, channel), nil
}

func buildPISO(ctx *Context) (peripherals.Peripheral, error) {
	var inputs [8]peripherals.Line
	for i := range inputs {
		inputs[i] = ctx.Line("D" + strconv.Itoa(i))
	}
	return shiftreg.NewPISO(ctx.Part().ID, ctx.Core(),
		ctx.Line("PL"), ctx.Line("CP"), ctx.Line("CE"), ctx.Line("Q7"),
		inputs), nil
}

func buildDisplay(ctx *Context) (peripherals.Peripheral, error) {
	addr, err := busAddress(ctx, 0x3c)
	if err != nil {
		return nil, err
	}
	return i2c.NewDisplay(ctx.Part().ID, addr, ctx.Bus()), nil
}

func buildIMU(ctx *Context) (peripherals.Peripheral, error) {
	addr, err := busAddress(ctx, 0x68)
	if err != nil {
		return nil, err
	}
	return i2c.NewIMU(ctx.Part().ID, addr, ctx.Bus()), nil
}

// busAddress reads the optional "address" attribute of a bus-addressed
// part.
func busAddress(ctx *Context, def uint8) (uint8, error) {
	s := ctx.Part().Attr("address", "")
	if s == "" {
		return def, nil
	}
	addr, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "bad address attribute %q", s)
	}
	return uint8(addr), nil
}

func buildDHT(ctx *Context) (peripherals.Peripheral, error) {
	return dht.NewDHT(ctx.Part().ID, ctx.Core(), ctx.Line("DATA")), nil
}

func buildServo(ctx *Context) (peripherals.Peripheral, error) {
	return servo.NewServo(ctx.Part().ID, ctx.Core(), ctx.Line("PWM")), nil
}

func buildEncoder(ctx *Context) (peripherals.Peripheral, error) {
	return encoder.NewEncoder(ctx.Part().ID, ctx.Core(),
		ctx.Line("CLK"), ctx.Line("DT"), ctx.Line("SW")), nil
}
