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

// Package controls implements the simple input and output components
// that appear on almost every sheet. Buttons and switches drive a pin,
// a potentiometer feeds an ADC channel and an LED observes a pin.
// These are the components the scenario interpreter injects values
// into.
package controls

import (
	"fmt"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// ADC is the analog input surface a potentiometer feeds. Satisfied by
// processor cores with analog channels.
type ADC interface {
	SetADCChannel(channel int, millivolts int)
}

// Button is a momentary push button wired between a pin and ground.
// The line idles pulled up; pressing the button drives it low.
type Button struct {
	id      string
	line    peripherals.Line
	pressed bool
}

func NewButton(id string, line peripherals.Line) *Button {
	b := &Button{id: id, line: line}
	b.line.Release()
	return b
}

func (b *Button) String() string {
	return fmt.Sprintf("%s: pressed=%v", b.id, b.pressed)
}

// ID implements the peripherals.Peripheral interface.
func (b *Button) ID() string {
	return b.id
}

// Kind implements the peripherals.Peripheral interface.
func (b *Button) Kind() string {
	return "button"
}

// SetPressed drives the line low while the button is held.
func (b *Button) SetPressed(pressed bool) {
	b.pressed = pressed
	if pressed {
		b.line.Set(false)
	} else {
		b.line.Release()
	}
}

func (b *Button) Pressed() bool {
	return b.pressed
}

// Reset implements the peripherals.Peripheral interface.
func (b *Button) Reset() {
	b.SetPressed(false)
}

// Detach implements the peripherals.Peripheral interface.
func (b *Button) Detach() {
	b.line.Release()
}

// Switch is a slide switch wired between a pin and ground. Unlike a
// Button the driven state persists until changed.
type Switch struct {
	id   string
	line peripherals.Line
	on   bool
}

func NewSwitch(id string, line peripherals.Line) *Switch {
	s := &Switch{id: id, line: line}
	s.line.Release()
	return s
}

func (s *Switch) String() string {
	return fmt.Sprintf("%s: on=%v", s.id, s.on)
}

// ID implements the peripherals.Peripheral interface.
func (s *Switch) ID() string {
	return s.id
}

// Kind implements the peripherals.Peripheral interface.
func (s *Switch) Kind() string {
	return "switch"
}

// SetOn closes or opens the switch. Closed drives the line low.
func (s *Switch) SetOn(on bool) {
	s.on = on
	if on {
		s.line.Set(false)
	} else {
		s.line.Release()
	}
}

func (s *Switch) On() bool {
	return s.on
}

// Reset implements the peripherals.Peripheral interface.
func (s *Switch) Reset() {
	s.SetOn(false)
}

// Detach implements the peripherals.Peripheral interface.
func (s *Switch) Detach() {
	s.line.Release()
}

// Pot is a potentiometer feeding one analog channel. Position is a
// fraction in the range 0.0 to 1.0 of the supply voltage.
type Pot struct {
	id      string
	adc     ADC
	channel int

	// supply voltage in millivolts
	SupplyMillivolts int

	position float64
}

func NewPot(id string, adc ADC, channel int) *Pot {
	return &Pot{
		id:               id,
		adc:              adc,
		channel:          channel,
		SupplyMillivolts: 5000,
	}
}

func (p *Pot) String() string {
	return fmt.Sprintf("%s: channel=%d position=%.2f", p.id, p.channel, p.position)
}

// ID implements the peripherals.Peripheral interface.
func (p *Pot) ID() string {
	return p.id
}

// Kind implements the peripherals.Peripheral interface.
func (p *Pot) Kind() string {
	return "potentiometer"
}

// Channel returns the analog channel the wiper is connected to.
func (p *Pot) Channel() int {
	return p.channel
}

// SetPosition moves the wiper. Values outside 0.0 to 1.0 are clamped.
func (p *Pot) SetPosition(position float64) {
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	p.position = position
	if p.adc != nil {
		p.adc.SetADCChannel(p.channel, int(position*float64(p.SupplyMillivolts)))
	}
}

func (p *Pot) Position() float64 {
	return p.position
}

// Reset implements the peripherals.Peripheral interface.
func (p *Pot) Reset() {
	p.SetPosition(0)
}

// Detach implements the peripherals.Peripheral interface.
func (p *Pot) Detach() {
}

// LED observes a pin and reports whether the pin is driving it. An
// output change is announced through the dispatcher with the lit state
// as the event data.
type LED struct {
	id   string
	line peripherals.Line
	reg  peripherals.Registration
	on   bool

	Events peripherals.Dispatcher
}

func NewLED(id string, line peripherals.Line) *LED {
	l := &LED{id: id, line: line}
	l.on = line.Level()
	l.reg = l.line.ListenEdges(func(rising bool) {
		if rising == l.on {
			return
		}
		l.on = rising
		l.Events.Dispatch(peripherals.Event{ID: peripherals.EventOutput, Data: rising})
	})
	return l
}

func (l *LED) String() string {
	return fmt.Sprintf("%s: on=%v", l.id, l.on)
}

// ID implements the peripherals.Peripheral interface.
func (l *LED) ID() string {
	return l.id
}

// Kind implements the peripherals.Peripheral interface.
func (l *LED) Kind() string {
	return "led"
}

// On returns whether the anode line is currently high.
func (l *LED) On() bool {
	return l.on
}

// Reset implements the peripherals.Peripheral interface.
func (l *LED) Reset() {
	l.on = l.line.Level()
}

// Detach implements the peripherals.Peripheral interface.
func (l *LED) Detach() {
	l.reg.Remove()
	l.Events.RemoveAllListeners()
}
