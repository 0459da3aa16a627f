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

// Package dht implements the timed one-wire humidity/temperature
// sensor. The host triggers a reading by holding the shared data line
// low for the minimum start duration and releasing it; the sensor then
// clocks out forty data bits as timed low/high pulses, each scheduled
// transition firing the next.
package dht

import (
	"fmt"
	"math"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// Protocol timing in microseconds.
const (
	// the host must hold the line low at least this long to trigger
	StartMinMicros = 800

	// response preamble: low then high
	PreambleLowMicros  = 80
	PreambleHighMicros = 80

	// each bit is a fixed low pulse followed by a high pulse whose
	// duration encodes the bit
	BitLowMicros  = 50
	BitZeroMicros = 26
	BitOneMicros  = 70
	ReleaseMicros = 50
	ResponseBits  = 40
)

// DHT models the one-wire sensor.
type DHT struct {
	id string

	line peripherals.Line
	tk   peripherals.Timekeeper

	humidity    float64
	temperature float64

	// the cycle at which the host pulled the line low
	lowAt  uint64
	sawLow bool

	// the one-wire bus idles high. tracking the level here, rather than
	// through Line.ListenEdges, means a line that has never been driven
	// still presents the first start pulse as a falling edge
	lastLevel bool

	// a response is being clocked out. trigger detection is suppressed
	inFlight bool

	// the pending scheduled transition, cancelled on Detach
	pending mcu.EventID

	reg peripherals.Registration
}

// NewDHT is the preferred method of initialisation for the DHT type.
func NewDHT(id string, tk peripherals.Timekeeper, line peripherals.Line) *DHT {
	d := &DHT{
		id:   id,
		line: line,
		tk:   tk,
	}

	d.lastLevel = true
	d.reg = d.line.Listen(func(level bool) {
		if level == d.lastLevel {
			return
		}
		d.lastLevel = level
		if d.inFlight {
			return
		}
		if !level {
			d.lowAt = d.tk.Cycles()
			d.sawLow = true
			return
		}
		if !d.sawLow {
			return
		}
		d.sawLow = false

		held := clocks.CyclesToMicros(d.tk.Cycles()-d.lowAt, d.tk.Frequency())
		if held >= StartMinMicros {
			d.respond()
		}
	})

	return d
}

func (d *DHT) String() string {
	return fmt.Sprintf("%s: %.1f%% %.1f°C", d.id, d.humidity, d.temperature)
}

// ID implements the peripherals.Peripheral interface.
func (d *DHT) ID() string {
	return d.id
}

// Kind implements the peripherals.Peripheral interface.
func (d *DHT) Kind() string {
	return "dht"
}

// SetHumidity sets the relative humidity reported by the next reading.
func (d *DHT) SetHumidity(percent float64) {
	d.humidity = percent
}

// SetTemperature sets the temperature in °C reported by the next
// reading.
func (d *DHT) SetTemperature(c float64) {
	d.temperature = c
}

// Payload returns the five bytes of the next response: humidity,
// temperature (both value×10, big-endian, temperature sign in the top
// bit) and the checksum, which is the sum of the first four bytes mod
// 256.
func (d *DHT) Payload() [5]uint8 {
	h := uint16(math.Round(d.humidity * 10))

	t := d.temperature
	neg := t < 0
	if neg {
		t = -t
	}
	tv := uint16(math.Round(t * 10))
	if neg {
		tv |= 0x8000
	}

	var p [5]uint8
	p[0] = uint8(h >> 8)
	p[1] = uint8(h)
	p[2] = uint8(tv >> 8)
	p[3] = uint8(tv)
	p[4] = p[0] + p[1] + p[2] + p[3]
	return p
}

// a single scheduled line transition
type pulse struct {
	level  bool
	micros float64
}

func (d *DHT) respond() {
	d.inFlight = true

	payload := d.Payload()

	// build the full transition sequence up front: preamble, forty
	// bits, release
	seq := make([]pulse, 0, 2+ResponseBits*2+1)
	seq = append(seq, pulse{level: false, micros: PreambleLowMicros})
	seq = append(seq, pulse{level: true, micros: PreambleHighMicros})
	for i := 0; i < ResponseBits; i++ {
		bit := payload[i/8] >> (7 - i%8) & 1
		seq = append(seq, pulse{level: false, micros: BitLowMicros})
		if bit == 1 {
			seq = append(seq, pulse{level: true, micros: BitOneMicros})
		} else {
			seq = append(seq, pulse{level: true, micros: BitZeroMicros})
		}
	}
	seq = append(seq, pulse{level: false, micros: ReleaseMicros})

	// each fired callback drives the line and schedules the next
	// transition
	var step func(i int)
	step = func(i int) {
		if i >= len(seq) {
			d.line.Release()
			d.inFlight = false
			d.pending = mcu.NoEvent
			return
		}
		d.line.Set(seq[i].level)
		d.pending = d.tk.Schedule(clocks.MicrosToCycles(seq[i].micros, d.tk.Frequency()), func() {
			step(i + 1)
		})
	}
	step(0)
}

// Reset implements the peripherals.Peripheral interface.
func (d *DHT) Reset() {
	if d.pending != mcu.NoEvent {
		d.tk.Cancel(d.pending)
		d.pending = mcu.NoEvent
	}
	d.inFlight = false
	d.sawLow = false
	d.lastLevel = true
}

// Detach implements the peripherals.Peripheral interface.
func (d *DHT) Detach() {
	d.Reset()
	d.reg.Remove()
}
