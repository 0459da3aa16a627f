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
	"bytes"
	"fmt"
	"strings"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/controls"
	"github.com/sparkbench/sparkbench/hardware/peripherals/dht"
	"github.com/sparkbench/sparkbench/hardware/peripherals/encoder"
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"
)

// Delay advances the simulation by a fixed amount of simulated time.
type Delay struct {
	Millis int
}

func (s Delay) String() string {
	return fmt.Sprintf("delay %dms", s.Millis)
}

func (s Delay) run(rt *runtime) (string, error) {
	return "", rt.runMillis(s.Millis)
}

// SetControl injects a value into a wired component: a button press, a
// switch position, a sensor reading, relative rotary steps.
type SetControl struct {
	Part    string
	Control string
	Values  []float64
}

func (s SetControl) String() string {
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("set %s %s %s", s.Part, s.Control, strings.Join(vals, " "))
}

func (s SetControl) run(rt *runtime) (string, error) {
	per, ok := rt.peripheral(s.Part)
	if !ok {
		return fmt.Sprintf("no component named %s", s.Part), nil
	}
	return s.apply(rt, per)
}

func (s SetControl) apply(rt *runtime, per peripherals.Peripheral) (string, error) {
	wrongArity := func(want int) string {
		return fmt.Sprintf("control %q of %s takes %d value(s), given %d", s.Control, s.Part, want, len(s.Values))
	}

	switch p := per.(type) {
	case *controls.Button:
		if s.Control == "pressed" {
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetPressed(s.Values[0] != 0)
			return "", nil
		}

	case *controls.Switch:
		if s.Control == "on" {
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetOn(s.Values[0] != 0)
			return "", nil
		}

	case *controls.Pot:
		if s.Control == "position" {
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetPosition(s.Values[0])
			return "", nil
		}

	case *dht.DHT:
		switch s.Control {
		case "temperature":
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetTemperature(s.Values[0])
			return "", nil
		case "humidity":
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetHumidity(s.Values[0])
			return "", nil
		}

	case *i2c.IMU:
		switch s.Control {
		case "accel":
			if len(s.Values) != 3 {
				return wrongArity(3), nil
			}
			p.SetAccel(s.Values[0], s.Values[1], s.Values[2])
			return "", nil
		case "gyro":
			if len(s.Values) != 3 {
				return wrongArity(3), nil
			}
			p.SetGyro(s.Values[0], s.Values[1], s.Values[2])
			return "", nil
		case "temperature":
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetTemperature(s.Values[0])
			return "", nil
		}

	case *encoder.Encoder:
		switch s.Control {
		case "rotate":
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			steps := int(s.Values[0])
			p.Rotate(steps)

			// run the simulation long enough for every queued phase
			// transition to play out
			if steps < 0 {
				steps = -steps
			}
			micros := float64((steps*4 + 2) * encoder.PhaseMicros)
			return "", rt.runCycles(clocks.MicrosToCycles(micros, rt.bench.Core.Frequency()))
		case "button":
			if len(s.Values) != 1 {
				return wrongArity(1), nil
			}
			p.SetButton(s.Values[0] != 0)
			return "", nil
		}
	}

	return fmt.Sprintf("unknown control %q for %s (%s)", s.Control, s.Part, per.Kind()), nil
}

// WaitSerial polls the simulation until the substring appears in the
// captured serial output or the timeout's cycle budget is spent.
type WaitSerial struct {
	Substring string

	// milliseconds. zero means DefaultTimeout
	Timeout int
}

func (s WaitSerial) String() string {
	return fmt.Sprintf("wait-serial %q", s.Substring)
}

func (s WaitSerial) run(rt *runtime) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	budget := clocks.MillisToCycles(float64(timeout), rt.bench.Core.Frequency())

	for {
		if strings.Contains(rt.transcript(), s.Substring) {
			return "", nil
		}
		if budget == 0 {
			return fmt.Sprintf("timed out after %dms waiting for %q; transcript: %q",
				timeout, s.Substring, rt.transcript()), nil
		}

		batch := uint64(PollCycles)
		if batch > budget {
			batch = budget
		}
		if err := rt.runCycles(batch); err != nil {
			return "", err
		}
		budget -= batch
	}
}

// ExpectSerial asserts the substring is already present in the captured
// serial output.
type ExpectSerial struct {
	Substring string
}

func (s ExpectSerial) String() string {
	return fmt.Sprintf("expect-serial %q", s.Substring)
}

func (s ExpectSerial) run(rt *runtime) (string, error) {
	if !strings.Contains(rt.transcript(), s.Substring) {
		return fmt.Sprintf("%q not in transcript: %q", s.Substring, rt.transcript()), nil
	}
	return "", nil
}

// ExpectDisplay asserts against a display's frame buffer: a minimum
// number of non-zero bytes, an exact byte pattern at an offset, or
// both.
type ExpectDisplay struct {
	Part       string
	MinNonZero int
	Pattern    []byte
	Offset     int
}

func (s ExpectDisplay) String() string {
	return fmt.Sprintf("expect-display %s", s.Part)
}

func (s ExpectDisplay) run(rt *runtime) (string, error) {
	per, ok := rt.peripheral(s.Part)
	if !ok {
		return fmt.Sprintf("no component named %s", s.Part), nil
	}
	disp, ok := per.(*i2c.Display)
	if !ok {
		return fmt.Sprintf("%s is not a display", s.Part), nil
	}

	buffer := disp.Buffer()

	if s.MinNonZero > 0 {
		n := 0
		for _, b := range buffer {
			if b != 0 {
				n++
			}
		}
		if n < s.MinNonZero {
			return fmt.Sprintf("%d non-zero bytes in frame buffer, wanted at least %d", n, s.MinNonZero), nil
		}
	}

	if len(s.Pattern) > 0 {
		if s.Offset < 0 || s.Offset+len(s.Pattern) > len(buffer) {
			return fmt.Sprintf("pattern at offset %d does not fit the frame buffer", s.Offset), nil
		}
		if !bytes.Equal(buffer[s.Offset:s.Offset+len(s.Pattern)], s.Pattern) {
			return fmt.Sprintf("frame buffer mismatch at offset %d: % 02x, wanted % 02x",
				s.Offset, buffer[s.Offset:s.Offset+len(s.Pattern)], s.Pattern), nil
		}
	}

	return "", nil
}

// SerialSend injects bytes into the firmware's serial receive buffer.
type SerialSend struct {
	Data []byte
}

func (s SerialSend) String() string {
	return fmt.Sprintf("serial-send %q", string(s.Data))
}

func (s SerialSend) run(rt *runtime) (string, error) {
	sp, ok := rt.bench.Core.(mcu.SerialPort)
	if !ok {
		return "processor has no serial port", nil
	}
	sp.SerialReceive(s.Data)
	return "", nil
}

// SerialClear empties the captured serial output, so later assertions
// see only fresh output.
type SerialClear struct{}

func (s SerialClear) String() string {
	return "serial-clear"
}

func (s SerialClear) run(rt *runtime) (string, error) {
	rt.serial = rt.serial[:0]
	return "", nil
}
