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

// Package i2c implements the bus-addressed slave devices and the shared
// bus they sit on. The processor model is the only bus master; slaves
// follow the generic lifecycle: start condition, address and direction
// byte, data byte sequence, stop condition.
//
// An address mismatch is silently NACKed and every subsequent byte of
// the transaction is ignored until the next stop condition. Protocol
// framing mismatches are never fatal.
package i2c

import (
	"fmt"
	"strings"
)

// Device is a slave on the bus.
type Device interface {
	// the 7-bit bus address the device answers to
	Address() uint8

	// a start condition addressed to this device. write is true for a
	// host-to-device transaction
	Start(write bool)

	// a data byte from the host. the return value is the ACK bit
	WriteByte(data uint8) bool

	// the next data byte for a host read
	ReadByte() uint8

	// a stop condition. resets any awaiting-pointer framing
	Stop()
}

// Bus is the shared two-wire bus. Slave devices attach to it; the
// processor model drives transactions through the Start/Write/Read/Stop
// functions.
type Bus struct {
	devices []Device

	// the device selected by the current transaction. nil when the
	// address matched nothing (every byte NACKed until stop)
	active Device
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) String() string {
	s := strings.Builder{}
	s.WriteString("i2c bus:")
	for _, d := range b.devices {
		s.WriteString(fmt.Sprintf(" 0x%02x", d.Address()))
	}
	return s.String()
}

// Attach a slave device to the bus.
func (b *Bus) Attach(d Device) {
	b.devices = append(b.devices, d)
}

// Remove a slave device from the bus.
func (b *Bus) Remove(d Device) {
	for i := range b.devices {
		if b.devices[i] == d {
			b.devices = append(b.devices[:i], b.devices[i+1:]...)
			break // for loop
		}
	}
	if b.active == d {
		b.active = nil
	}
}

// Start a transaction with the device at addr. The return value is the
// ACK bit: false means no device answered and the transaction is dead
// until Stop.
func (b *Bus) Start(addr uint8, write bool) bool {
	b.active = nil
	for _, d := range b.devices {
		if d.Address() == addr {
			b.active = d
			d.Start(write)
			return true
		}
	}
	return false
}

// Write a data byte to the addressed device. The return value is the
// ACK bit.
func (b *Bus) Write(data uint8) bool {
	if b.active == nil {
		return false
	}
	return b.active.WriteByte(data)
}

// Read the next data byte from the addressed device. An unaddressed
// read returns 0xff (the released bus level).
func (b *Bus) Read() uint8 {
	if b.active == nil {
		return 0xff
	}
	return b.active.ReadByte()
}

// Stop the current transaction.
func (b *Bus) Stop() {
	if b.active != nil {
		b.active.Stop()
		b.active = nil
	}
}
