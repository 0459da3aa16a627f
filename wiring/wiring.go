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

// Package wiring resolves a schematic sheet into a set of live
// peripheral instances bound to processor pins. Resolution follows
// connections through passive parts to a fixed point, so a component
// behind a resistor binds to the same processor pin as a directly
// connected one. Shift register chains are recognised by following the
// serial data net between chips.
//
// A Harness is built once per simulation session. Detach() removes
// every listener the session registered, which matters because the
// processor's Ports can outlive the session.
package wiring

import (
	"github.com/pkg/errors"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	"github.com/sparkbench/sparkbench/hardware/peripherals"
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"
	"github.com/sparkbench/sparkbench/logger"
	"github.com/sparkbench/sparkbench/schematic"
)

// Harness is the wired form of a schematic sheet. It owns the
// peripheral instances for the session and their listener
// registrations.
type Harness struct {
	core  mcu.Core
	sheet *schematic.Sheet

	processor  schematic.Part
	translator Translator

	bus *i2c.Bus

	// endpoint -> processor pin name
	resolved map[schematic.Endpoint]string

	periphs []peripherals.Peripheral
	byID    map[string]peripherals.Peripheral
}

// Option alters how Connect interprets the sheet.
type Option func(*connectOptions)

type connectOptions struct {
	processorID string
}

// WithProcessor overrides processor selection with an explicit part ID.
func WithProcessor(partID string) Option {
	return func(o *connectOptions) {
		o.processorID = partID
	}
}

// Connect wires the sheet onto the core. Every part with a registered
// builder is instantiated; parts with no builder are logged and
// skipped. Missing pin connections are not an error, the component is
// wired with no-op bindings.
func Connect(sheet *schematic.Sheet, core mcu.Core, opts ...Option) (*Harness, error) {
	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := &Harness{
		core:  core,
		sheet: sheet,
		bus:   i2c.NewBus(),
		byID:  make(map[string]peripherals.Peripheral),
	}

	if err := h.selectProcessor(o.processorID); err != nil {
		return nil, errors.Wrap(err, "wiring")
	}

	h.resolve()

	if err := h.build(); err != nil {
		h.Detach()
		return nil, errors.Wrap(err, "wiring")
	}

	return h, nil
}

// selectProcessor finds the part that the simulation core stands in
// for. With no override, the first part of a registered processor type
// is chosen.
func (h *Harness) selectProcessor(override string) error {
	if override != "" {
		p, ok := h.sheet.Part(override)
		if !ok {
			return errors.Errorf("no part named %s", override)
		}
		t, ok := processors[p.Type]
		if !ok {
			return errors.Errorf("part %s (%s) is not a processor", p.ID, p.Type)
		}
		h.processor = p
		h.translator = t
		return nil
	}

	for _, p := range h.sheet.Parts {
		if t, ok := processors[p.Type]; ok {
			h.processor = p
			h.translator = t
			return nil
		}
	}

	return errors.New("sheet has no processor part")
}

// resolve assigns a processor pin name to every endpoint that reaches
// one, iterating to a fixed point so that assignments propagate through
// chains of passive parts. With no passive parts on the sheet the
// second sweep makes no change assignment and the loop exits.
func (h *Harness) resolve() {
	h.resolved = make(map[schematic.Endpoint]string)

	// processor endpoints resolve to themselves
	for _, c := range h.sheet.Connections {
		for _, e := range []schematic.Endpoint{c.From, c.To} {
			if e.Part == h.processor.ID {
				h.resolved[e] = e.Pin
			}
		}
	}

	// endpoints of each passive part, gathered once
	passives := make(map[string][]schematic.Endpoint)
	for _, c := range h.sheet.Connections {
		for _, e := range []schematic.Endpoint{c.From, c.To} {
			if p, ok := h.sheet.Part(e.Part); ok && passThrough[p.Type] {
				passives[e.Part] = append(passives[e.Part], e)
			}
		}
	}

	assign := func(e schematic.Endpoint, pin string) bool {
		if prev, ok := h.resolved[e]; ok {
			if prev != pin {
				logger.Logf("wiring", "%s reaches both %s and %s; keeping %s", e, prev, pin, prev)
			}
			return false
		}
		h.resolved[e] = pin
		return true
	}

	for changed := true; changed; {
		changed = false

		// propagate across connections
		for _, c := range h.sheet.Connections {
			if pin, ok := h.resolved[c.From]; ok {
				if assign(c.To, pin) {
					changed = true
				}
			}
			if pin, ok := h.resolved[c.To]; ok {
				if assign(c.From, pin) {
					changed = true
				}
			}
		}

		// propagate through passive parts
		for _, eps := range passives {
			pin := ""
			for _, e := range eps {
				if p, ok := h.resolved[e]; ok {
					pin = p
					break
				}
			}
			if pin == "" {
				continue
			}
			for _, e := range eps {
				if assign(e, pin) {
					changed = true
				}
			}
		}
	}
}

// build instantiates a peripheral for every buildable part. Shift
// register chains are discovered before the general sweep so that
// chained chips produce one model between them.
func (h *Harness) build() error {
	chained, err := h.buildChains()
	if err != nil {
		return err
	}

	for _, p := range h.sheet.Parts {
		if p.ID == h.processor.ID || passThrough[p.Type] || chained[p.ID] {
			continue
		}

		b, ok := builders[p.Type]
		if !ok {
			logger.Logf("wiring", "no model for part %s (%s)", p.ID, p.Type)
			continue
		}

		per, err := b(&Context{harness: h, part: p})
		if err != nil {
			return errors.Wrapf(err, "part %s", p.ID)
		}
		h.adopt(per)
	}

	return nil
}

func (h *Harness) adopt(per peripherals.Peripheral) {
	h.periphs = append(h.periphs, per)
	h.byID[per.ID()] = per
}

// Core returns the processor core the harness was wired onto.
func (h *Harness) Core() mcu.Core {
	return h.core
}

// Bus returns the peripheral bus shared by the bus-addressed devices on
// the sheet.
func (h *Harness) Bus() *i2c.Bus {
	return h.bus
}

// Processor returns the schematic part selected as the processor.
func (h *Harness) Processor() schematic.Part {
	return h.processor
}

// Peripheral returns the wired peripheral built for the named part. For
// a shift register chain the name is the first chip in the chain.
func (h *Harness) Peripheral(id string) (peripherals.Peripheral, bool) {
	p, ok := h.byID[id]
	return p, ok
}

// Peripherals returns every wired peripheral, in sheet order.
func (h *Harness) Peripherals() []peripherals.Peripheral {
	return h.periphs
}

// ProcessorPin reports which processor pin the named part pin reaches,
// directly or through passive parts.
func (h *Harness) ProcessorPin(partID string, pin string) (string, bool) {
	name, ok := h.resolved[schematic.Endpoint{Part: partID, Pin: pin}]
	return name, ok
}

// Reset returns every wired peripheral to its power-on state.
func (h *Harness) Reset() {
	for _, p := range h.periphs {
		p.Reset()
	}
}

// Detach disposes every wired peripheral. After Detach returns no Port
// holds a listener registered by this session.
func (h *Harness) Detach() {
	for _, p := range h.periphs {
		p.Detach()
	}
	h.periphs = nil
	h.byID = make(map[string]peripherals.Peripheral)
}

// Context is handed to part builders. It exposes the resolved pin
// bindings for the part being built.
type Context struct {
	harness *Harness
	part    schematic.Part
}

// Part returns the schematic part being built.
func (ctx *Context) Part() schematic.Part {
	return ctx.part
}

// Core returns the processor core.
func (ctx *Context) Core() mcu.Core {
	return ctx.harness.core
}

// Bus returns the shared peripheral bus.
func (ctx *Context) Bus() *i2c.Bus {
	return ctx.harness.bus
}

// Line returns the binding for the named pin of the part under
// construction. A pin with no route to the processor yields an unbound
// Line.
func (ctx *Context) Line(pin string) peripherals.Line {
	h := ctx.harness

	name, ok := h.resolved[schematic.Endpoint{Part: ctx.part.ID, Pin: pin}]
	if !ok {
		return peripherals.Line{}
	}

	portID, bit, ok := h.translator.Pin(name)
	if !ok {
		logger.Logf("wiring", "%s:%s reaches unknown processor pin %s", ctx.part.ID, pin, name)
		return peripherals.Line{}
	}

	port := h.core.Port(portID)
	if port == nil {
		return peripherals.Line{}
	}

	return peripherals.Line{Port: port, Bit: bit}
}

// ADCChannel returns the analog channel reached by the named pin of the
// part under construction.
func (ctx *Context) ADCChannel(pin string) (int, bool) {
	h := ctx.harness

	name, ok := h.resolved[schematic.Endpoint{Part: ctx.part.ID, Pin: pin}]
	if !ok {
		return 0, false
	}

	return h.translator.ADCChannel(name)
}
