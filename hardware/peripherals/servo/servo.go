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

// Package servo implements the PWM pulse decoder. The width of the high
// pulse on the control line, measured between rising and falling edges
// through the processor's cycle counter, maps linearly onto a horn
// angle.
package servo

import (
	"fmt"
	"math"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// Pulse width calibration in microseconds. Pulses outside the sanity
// window are ignored entirely; pulses inside it map from the
// calibration range to [0°, 180°], clamped.
const (
	SanityMinMicros = 400
	SanityMaxMicros = 2600
	MinPulseMicros  = 544
	MaxPulseMicros  = 2400
)

// Servo models the PWM-controlled servo motor.
type Servo struct {
	peripherals.Dispatcher

	id string

	line peripherals.Line
	clk  peripherals.Clock

	riseAt  uint64
	sawRise bool

	// the last angle reported through an event. -1 before the first
	// valid pulse
	angle int

	reg peripherals.Registration
}

// NewServo is the preferred method of initialisation for the Servo
// type.
func NewServo(id string, clk peripherals.Clock, line peripherals.Line) *Servo {
	s := &Servo{
		id:    id,
		line:  line,
		clk:   clk,
		angle: -1,
	}

	s.reg = s.line.ListenEdges(func(rising bool) {
		if rising {
			s.riseAt = s.clk.Cycles()
			s.sawRise = true
			return
		}
		if !s.sawRise {
			return
		}
		s.sawRise = false
		s.pulse(clocks.CyclesToMicros(s.clk.Cycles()-s.riseAt, s.clk.Frequency()))
	})

	return s
}

func (s *Servo) pulse(us float64) {
	if us < SanityMinMicros || us > SanityMaxMicros {
		return
	}

	a := (us - MinPulseMicros) / (MaxPulseMicros - MinPulseMicros) * 180
	angle := int(math.Round(math.Max(0, math.Min(180, a))))

	if angle != s.angle {
		s.angle = angle
		s.Dispatch(peripherals.Event{ID: peripherals.EventAngle, Data: angle})
	}
}

func (s *Servo) String() string {
	if s.angle < 0 {
		return fmt.Sprintf("%s: no pulse", s.id)
	}
	return fmt.Sprintf("%s: %d°", s.id, s.angle)
}

// ID implements the peripherals.Peripheral interface.
func (s *Servo) ID() string {
	return s.id
}

// Kind implements the peripherals.Peripheral interface.
func (s *Servo) Kind() string {
	return "servo"
}

// Angle returns the most recently decoded angle in degrees. -1 before
// the first valid pulse.
func (s *Servo) Angle() int {
	return s.angle
}

// Reset implements the peripherals.Peripheral interface.
func (s *Servo) Reset() {
	s.angle = -1
	s.sawRise = false
}

// Detach implements the peripherals.Peripheral interface.
func (s *Servo) Detach() {
	s.reg.Remove()
	s.RemoveAllListeners()
}
