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

package i2c_test

import (
	"testing"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"
	"github.com/sparkbench/sparkbench/test"
)

func TestAddressMismatch(t *testing.T) {
	bus := i2c.NewBus()
	i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	// an unknown address is silently NACKed
	test.ExpectEquality(t, bus.Start(0x12, true), false)

	// subsequent bytes of the transaction are ignored until stop
	test.ExpectEquality(t, bus.Write(0x3b), false)
	test.ExpectEquality(t, bus.Read(), uint8(0xff))
	bus.Stop()

	test.ExpectEquality(t, bus.Start(i2c.DefaultIMUAddress, true), true)
	bus.Stop()
}

func TestIMURegisterFile(t *testing.T) {
	bus := i2c.NewBus()
	m := i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	// write two bytes at pointer 0x10
	bus.Start(i2c.DefaultIMUAddress, true)
	bus.Write(0x10)
	bus.Write(0xaa)
	bus.Write(0xbb)
	bus.Stop()

	test.ExpectEquality(t, m.Peek(0x10), uint8(0xaa))
	test.ExpectEquality(t, m.Peek(0x11), uint8(0xbb))

	// read them back. pointer auto-increments on each access
	bus.Start(i2c.DefaultIMUAddress, true)
	bus.Write(0x10)
	bus.Stop()
	bus.Start(i2c.DefaultIMUAddress, false)
	test.ExpectEquality(t, bus.Read(), uint8(0xaa))
	test.ExpectEquality(t, bus.Read(), uint8(0xbb))
	bus.Stop()
}

func TestIMUPointerWrap(t *testing.T) {
	bus := i2c.NewBus()
	m := i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	bus.Start(i2c.DefaultIMUAddress, true)
	bus.Write(0x7f)
	bus.Write(0x55)
	// pointer has wrapped to 0x00
	bus.Write(0x66)
	bus.Stop()

	test.ExpectEquality(t, m.Peek(0x7f), uint8(0x55))
	test.ExpectEquality(t, m.Peek(0x00), uint8(0x66))
}

func TestIMUAccelEncoding(t *testing.T) {
	bus := i2c.NewBus()
	m := i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	m.SetAccel(0, 0, 1)

	decode := func(reg uint8) int16 {
		return int16(uint16(m.Peek(reg))<<8 | uint16(m.Peek(reg+1)))
	}

	// 1g on the z axis. ±1 LSB of tolerance
	test.ExpectApproximate(t, float64(decode(0x3b))/i2c.AccelScale, 0, 1.0/i2c.AccelScale)
	test.ExpectApproximate(t, float64(decode(0x3d))/i2c.AccelScale, 0, 1.0/i2c.AccelScale)
	test.ExpectApproximate(t, float64(decode(0x3f))/i2c.AccelScale, 1, 1.0/i2c.AccelScale)
}

func TestIMUClamping(t *testing.T) {
	bus := i2c.NewBus()
	m := i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	// 16g is far outside the signed 16-bit range at 16384 LSB/g
	m.SetAccel(16, -16, 0)

	decode := func(reg uint8) int16 {
		return int16(uint16(m.Peek(reg))<<8 | uint16(m.Peek(reg+1)))
	}
	test.ExpectEquality(t, decode(0x3b), int16(32767))
	test.ExpectEquality(t, decode(0x3d), int16(-32768))
}

func TestIMUTemperature(t *testing.T) {
	bus := i2c.NewBus()
	m := i2c.NewIMU("imu1", i2c.DefaultIMUAddress, bus)

	m.SetTemperature(25.0)

	raw := int16(uint16(m.Peek(0x41))<<8 | uint16(m.Peek(0x42)))
	c := float64(raw)/i2c.TempScale + i2c.TempOffset
	test.ExpectApproximate(t, c, 25.0, 0.01)
}

// write a full frame over the bus in horizontal addressing mode
func writeFrame(bus *i2c.Bus, addr uint8, frame []uint8) {
	bus.Start(addr, true)
	bus.Write(0x00) // command stream
	bus.Write(0x20) // addressing mode...
	bus.Write(0x00) // ...horizontal
	bus.Write(0x21) // column window...
	bus.Write(0)
	bus.Write(127)
	bus.Write(0x22) // page window...
	bus.Write(0)
	bus.Write(7)
	bus.Stop()

	bus.Start(addr, true)
	bus.Write(0x40) // data stream
	for _, v := range frame {
		bus.Write(v)
	}
	bus.Stop()
}

func TestDisplayRoundTrip(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)

	frame := make([]uint8, i2c.DisplayPages*i2c.DisplayWidth)
	for i := range frame {
		frame[i] = uint8(i * 7)
	}
	writeFrame(bus, i2c.DefaultDisplayAddress, frame)

	buf := d.Buffer()
	for i := range frame {
		if !test.ExpectEquality(t, buf[i], frame[i]) {
			break // for loop
		}
	}
}

func TestDisplayPageModeWrap(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)

	// page mode is the power-on default. select page 3 and column 126
	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x00)
	bus.Write(0xb3)
	bus.Write(0x0e) // column low nibble
	bus.Write(0x17) // column high nibble
	bus.Stop()

	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x40)
	bus.Write(0x01)
	bus.Write(0x02)
	bus.Write(0x03) // wraps to column 0, same page
	bus.Stop()

	buf := d.Buffer()
	test.ExpectEquality(t, buf[3*i2c.DisplayWidth+126], uint8(0x01))
	test.ExpectEquality(t, buf[3*i2c.DisplayWidth+127], uint8(0x02))
	test.ExpectEquality(t, buf[3*i2c.DisplayWidth+0], uint8(0x03))
}

func TestDisplayVerticalMode(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)

	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x00)
	bus.Write(0x20)
	bus.Write(0x01) // vertical
	bus.Write(0x22)
	bus.Write(0)
	bus.Write(1) // two-page window
	bus.Stop()

	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x40)
	bus.Write(0x11)
	bus.Write(0x22)
	bus.Write(0x33) // page window exhausted: wraps to page 0, column 1
	bus.Stop()

	buf := d.Buffer()
	test.ExpectEquality(t, buf[0*i2c.DisplayWidth+0], uint8(0x11))
	test.ExpectEquality(t, buf[1*i2c.DisplayWidth+0], uint8(0x22))
	test.ExpectEquality(t, buf[0*i2c.DisplayWidth+1], uint8(0x33))
}

func TestDisplayRender(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)

	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x40)
	bus.Write(0x01) // top-left pixel only
	bus.Stop()

	test.ExpectEquality(t, d.Dirty(), true)
	img := d.Render()
	test.ExpectEquality(t, d.Dirty(), false)

	r, g, b, _ := img.At(0, 0).RGBA()
	test.ExpectEquality(t, r != 0 || g != 0 || b != 0, true)
	r, g, b, _ = img.At(0, 1).RGBA()
	test.ExpectEquality(t, r == 0 && g == 0 && b == 0, true)

	// no intervening write: the cached frame is returned
	test.ExpectEquality(t, d.Render() == img, true)
}

func TestDisplayFrameEvent(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)
	d.Render()

	events := 0
	d.AddListener(func(ev peripherals.Event) {
		if ev.ID == peripherals.EventFrame {
			events++
		}
	})

	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x40)
	bus.Write(0x01)
	bus.Write(0x02)
	bus.Stop()

	// one frame event per render interval, however many writes
	test.ExpectEquality(t, events, 1)

	d.Render()
	bus.Start(i2c.DefaultDisplayAddress, true)
	bus.Write(0x40)
	bus.Write(0x03)
	bus.Stop()
	test.ExpectEquality(t, events, 2)
}

func TestDisplayConcurrentViewer(t *testing.T) {
	bus := i2c.NewBus()
	d := i2c.NewDisplay("oled1", i2c.DefaultDisplayAddress, bus)

	// a windowed session drives the bus on the simulation goroutine
	// while the viewer polls Dirty/Render from the host redraw tick
	done := make(chan bool)
	go func() {
		defer close(done)
		frame := make([]uint8, i2c.DisplayPages*i2c.DisplayWidth)
		for n := 0; n < 50; n++ {
			for i := range frame {
				frame[i] = uint8(n + i)
			}
			writeFrame(bus, i2c.DefaultDisplayAddress, frame)
		}
	}()

	for {
		select {
		case <-done:
			// the final frame renders cleanly once writing has stopped
			if d.Dirty() {
				d.Render()
			}
			test.ExpectEquality(t, d.Dirty(), false)
			buf := d.Buffer()
			test.ExpectEquality(t, buf[0], uint8(49))
			return
		default:
			if d.Dirty() {
				d.Render()
			}
		}
	}
}
