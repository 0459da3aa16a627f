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

// Package mcutest provides a scripted implementation of the mcu.Core
// interface. The "firmware" is a Go function supplied by the test (the
// OnInstruction field), which makes it possible to exercise the rest of
// the simulation without a real processor model or a compiled program.
//
// The package registers itself with the core registry under the name
// "testbench".
package mcutest

import (
	"fmt"

	"github.com/sparkbench/sparkbench/hardware/clocks"
	"github.com/sparkbench/sparkbench/hardware/gpio"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/mcu/clockev"
)

func init() {
	mcu.Register("testbench", func() mcu.Core {
		return NewCore(clocks.Standard)
	})
}

type flowEntry struct {
	class  mcu.FlowClass
	resume uint32
}

// Core is a scripted processor model. It implements mcu.Core and every
// optional capability interface.
type Core struct {
	// called once per ExecuteInstruction. may be nil
	OnInstruction func(c *Core)

	// cycles consumed by each instruction
	InstructionCost uint64

	freq   int
	cycles uint64
	pc     uint32
	sp     uint16
	status uint8
	regs   [32]uint8
	pcSet  bool

	ports  map[gpio.PortID]*gpio.Port
	events *clockev.Queue

	flows map[uint32]flowEntry

	tracing bool
	writes  []uint16

	serialLstrs  map[mcu.SerialListenerID]func([]byte)
	nextSerialID mcu.SerialListenerID
	received     []byte

	adc map[int]int

	program []byte
	loaded  bool

	// a scripted fault returned by the next ExecuteInstruction
	execErr error
}

// NewCore is the preferred method of initialisation for the Core type.
func NewCore(freq int) *Core {
	c := &Core{
		InstructionCost: 1,
		freq:            freq,
		sp:              0x08ff,
		events:          clockev.NewQueue(),
		flows:           make(map[uint32]flowEntry),
		serialLstrs:     make(map[mcu.SerialListenerID]func([]byte)),
		adc:             make(map[int]int),
		ports: map[gpio.PortID]*gpio.Port{
			gpio.PortB: gpio.NewPort(gpio.PortB),
			gpio.PortC: gpio.NewPort(gpio.PortC),
			gpio.PortD: gpio.NewPort(gpio.PortD),
		},
	}
	return c
}

// ExecuteInstruction implements the mcu.Core interface.
func (c *Core) ExecuteInstruction() error {
	if c.execErr != nil {
		err := c.execErr
		c.execErr = nil
		return err
	}

	c.pcSet = false
	if c.OnInstruction != nil {
		c.OnInstruction(c)
	}
	if !c.pcSet {
		c.pc += 2
	}

	cost := c.InstructionCost
	if cost == 0 {
		cost = 1
	}
	for i := uint64(0); i < cost; i++ {
		c.Tick()
	}

	return nil
}

// Tick implements the mcu.Core interface.
func (c *Core) Tick() {
	c.cycles++
	c.events.Fire(c.cycles)
}

// Cycles implements the mcu.Core interface.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

// Frequency implements the mcu.Core interface.
func (c *Core) Frequency() int {
	return c.freq
}

// PC implements the mcu.Core interface.
func (c *Core) PC() uint32 {
	return c.pc
}

// SetPC changes the program counter. Instruction hooks that call SetPC
// suppress the default program counter advancement.
func (c *Core) SetPC(pc uint32) {
	c.pc = pc
	c.pcSet = true
}

// Snapshot implements the mcu.Core interface.
func (c *Core) Snapshot() mcu.Snapshot {
	return mcu.Snapshot{
		PC:     c.pc,
		SP:     c.sp,
		Status: c.status,
		Regs:   c.regs,
		Cycles: c.cycles,
	}
}

// SetReg changes the value of a numbered register.
func (c *Core) SetReg(reg int, value uint8) {
	if reg >= 0 && reg < len(c.regs) {
		c.regs[reg] = value
	}
}

// Reset implements the mcu.Core interface. The cycle counter is
// monotonic and is not reset.
func (c *Core) Reset() {
	c.pc = 0
	c.sp = 0x08ff
	c.status = 0
	c.regs = [32]uint8{}
	c.events.Clear()
	c.writes = c.writes[:0]
	c.received = c.received[:0]
}

// Port implements the mcu.Core interface.
func (c *Core) Port(id gpio.PortID) *gpio.Port {
	return c.ports[id]
}

// Schedule implements the mcu.Core interface.
func (c *Core) Schedule(cycles uint64, fn func()) mcu.EventID {
	return c.events.Schedule(c.cycles+cycles, fn)
}

// Cancel implements the mcu.Core interface.
func (c *Core) Cancel(id mcu.EventID) {
	c.events.Cancel(id)
}

// TraceWrites implements the mcu.WriteTracer interface.
func (c *Core) TraceWrites(enable bool) {
	c.tracing = enable
}

// Writes implements the mcu.WriteTracer interface.
func (c *Core) Writes() []uint16 {
	w := make([]uint16, len(c.writes))
	copy(w, c.writes)
	return w
}

// ClearWrites implements the mcu.WriteTracer interface.
func (c *Core) ClearWrites() {
	c.writes = c.writes[:0]
}

// BusWrite records a bus write. Instruction hooks call it to mimic a
// store instruction.
func (c *Core) BusWrite(addr uint16, _ uint8) {
	if c.tracing {
		c.writes = append(c.writes, addr)
	}
}

// SetFlow scripts the flow classification for the instruction at the
// given address.
func (c *Core) SetFlow(pc uint32, class mcu.FlowClass, resume uint32) {
	c.flows[pc] = flowEntry{class: class, resume: resume}
}

// ClassifyNext implements the mcu.FlowClassifier interface.
func (c *Core) ClassifyNext() (mcu.FlowClass, uint32) {
	if f, ok := c.flows[c.pc]; ok {
		return f.class, f.resume
	}
	return mcu.FlowNormal, c.pc + 2
}

// AddSerialListener implements the mcu.SerialPort interface.
func (c *Core) AddSerialListener(fn func([]byte)) mcu.SerialListenerID {
	c.nextSerialID++
	c.serialLstrs[c.nextSerialID] = fn
	return c.nextSerialID
}

// RemoveSerialListener implements the mcu.SerialPort interface.
func (c *Core) RemoveSerialListener(id mcu.SerialListenerID) {
	delete(c.serialLstrs, id)
}

// SerialReceive implements the mcu.SerialPort interface.
func (c *Core) SerialReceive(data []byte) {
	c.received = append(c.received, data...)
}

// Received returns every byte injected with SerialReceive.
func (c *Core) Received() []byte {
	return c.received
}

// EmitSerial transmits bytes from the scripted firmware to every serial
// listener.
func (c *Core) EmitSerial(data []byte) {
	for _, fn := range c.serialLstrs {
		fn(data)
	}
}

// EmitSerialf transmits a formatted string from the scripted firmware.
func (c *Core) EmitSerialf(format string, args ...any) {
	c.EmitSerial([]byte(fmt.Sprintf(format, args...)))
}

// SetADCChannel implements the mcu.ADC interface.
func (c *Core) SetADCChannel(channel int, millivolts int) {
	c.adc[channel] = millivolts
}

// ADCChannel returns the value most recently set on the channel.
func (c *Core) ADCChannel(channel int) int {
	return c.adc[channel]
}

// LoadProgram implements the mcu.ProgramLoader interface.
func (c *Core) LoadProgram(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("mcutest: empty program")
	}
	c.program = make([]byte, len(data))
	copy(c.program, data)
	c.loaded = true
	c.pc = 0
	return nil
}

// ProgramLoaded implements the mcu.ProgramLoader interface.
func (c *Core) ProgramLoaded() bool {
	return c.loaded
}

// SetExecuteError scripts a fault to be returned by the next call to
// ExecuteInstruction.
func (c *Core) SetExecuteError(err error) {
	c.execErr = err
}
