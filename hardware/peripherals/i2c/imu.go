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

package i2c

import (
	"fmt"
)

// DefaultIMUAddress is the usual bus address for the inertial sensor.
const DefaultIMUAddress = 0x68

// register file size. the pointer wraps within it
const imuRegisters = 128

// Register addresses for the measurement values. Each measurement is a
// signed 16-bit big-endian register pair.
const (
	regAccelX = 0x3b
	regTemp   = 0x41
	regGyroX  = 0x43
)

// Measurement scale factors.
const (
	// LSB per g of acceleration
	AccelScale = 16384

	// LSB per degree-per-second of rotation
	GyroScale = 131

	// temperature encoding: LSB per °C and the sensor's offset
	TempScale  = 340
	TempOffset = 36.53
)

// IMU models the bus-addressed inertial sensor. It exposes a flat
// 128-byte register file addressed by a pointer that is set by the
// first write byte of a transaction and auto-incremented, wrapping
// within the file, on each subsequent access.
type IMU struct {
	id   string
	addr uint8
	bus  *Bus

	regs [imuRegisters]uint8
	ptr  uint8

	// the first write byte after a write-start is the register pointer
	awaitingPtr bool
}

// NewIMU is the preferred method of initialisation for the IMU type.
// The sensor attaches itself to the bus.
func NewIMU(id string, addr uint8, bus *Bus) *IMU {
	m := &IMU{
		id:   id,
		addr: addr,
		bus:  bus,
	}
	if bus != nil {
		bus.Attach(m)
	}
	return m
}

func (m *IMU) String() string {
	return fmt.Sprintf("%s: pointer 0x%02x", m.id, m.ptr)
}

// ID implements the peripherals.Peripheral interface.
func (m *IMU) ID() string {
	return m.id
}

// Kind implements the peripherals.Peripheral interface.
func (m *IMU) Kind() string {
	return "imu"
}

// Address implements the Device interface.
func (m *IMU) Address() uint8 {
	return m.addr
}

// Start implements the Device interface.
func (m *IMU) Start(write bool) {
	if write {
		m.awaitingPtr = true
	}
}

// WriteByte implements the Device interface.
func (m *IMU) WriteByte(data uint8) bool {
	if m.awaitingPtr {
		m.ptr = data % imuRegisters
		m.awaitingPtr = false
		return true
	}
	m.regs[m.ptr] = data
	m.ptr = (m.ptr + 1) % imuRegisters
	return true
}

// ReadByte implements the Device interface.
func (m *IMU) ReadByte() uint8 {
	v := m.regs[m.ptr]
	m.ptr = (m.ptr + 1) % imuRegisters
	return v
}

// Stop implements the Device interface.
func (m *IMU) Stop() {
	m.awaitingPtr = false
}

// Peek returns the value of a register without disturbing the pointer.
func (m *IMU) Peek(reg uint8) uint8 {
	return m.regs[reg%imuRegisters]
}

// write a physical value to a big-endian register pair, clamping to the
// signed 16-bit range
func (m *IMU) setPair(reg int, v float64) {
	const min = -32768
	const max = 32767
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	e := int16(v)
	m.regs[reg] = uint8(uint16(e) >> 8)
	m.regs[reg+1] = uint8(uint16(e))
}

// SetAccel encodes an acceleration in g on each axis.
func (m *IMU) SetAccel(x, y, z float64) {
	m.setPair(regAccelX, x*AccelScale)
	m.setPair(regAccelX+2, y*AccelScale)
	m.setPair(regAccelX+4, z*AccelScale)
}

// SetGyro encodes a rotation rate in degrees per second on each axis.
func (m *IMU) SetGyro(x, y, z float64) {
	m.setPair(regGyroX, x*GyroScale)
	m.setPair(regGyroX+2, y*GyroScale)
	m.setPair(regGyroX+4, z*GyroScale)
}

// SetTemperature encodes a temperature in °C.
func (m *IMU) SetTemperature(c float64) {
	m.setPair(regTemp, (c-TempOffset)*TempScale)
}

// Reset implements the peripherals.Peripheral interface.
func (m *IMU) Reset() {
	m.regs = [imuRegisters]uint8{}
	m.ptr = 0
	m.awaitingPtr = false
}

// Detach implements the peripherals.Peripheral interface.
func (m *IMU) Detach() {
	if m.bus != nil {
		m.bus.Remove(m)
	}
}
