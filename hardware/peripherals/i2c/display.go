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
	"image"
	"image/color"
	"sync"

	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// Display geometry. One bit per pixel, organised into eight-row pages.
const (
	DisplayWidth  = 128
	DisplayHeight = 64
	DisplayPages  = DisplayHeight / 8
)

// DefaultDisplayAddress is the usual bus address for the display
// controller.
const DefaultDisplayAddress = 0x3c

// AddressingMode controls how the frame buffer cursor advances after a
// data write.
type AddressingMode int

// List of valid AddressingMode values.
const (
	Horizontal AddressingMode = iota
	Vertical
	Page
)

func (m AddressingMode) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Page:
		return "page"
	}
	return "unknown"
}

// the byte stream interpretation of the current transaction
type displayPhase int

const (
	phaseControl displayPhase = iota
	phaseCommand
	phaseData
)

// Display models the bus-addressed display controller. It maintains a
// one-bit-per-pixel frame buffer (GDDRAM) written through the data
// stream and a cursor that auto-advances per the active addressing
// mode, wrapping within the configured column/page window.
type Display struct {
	peripherals.Dispatcher

	id   string
	addr uint8
	bus  *Bus

	gddram [DisplayPages * DisplayWidth]uint8

	mode AddressingMode
	on   bool

	colStart, colEnd   int
	pageStart, pageEnd int
	col, page          int

	phase displayPhase

	// commands that take follow-up argument bytes are collected here
	// before they take effect
	pendingCmd  uint8
	pendingArgs []uint8
	argsNeeded  int

	// the frame buffer has been written since the last render
	dirty bool

	frame *image.RGBA

	// the bus side and the viewer side run on different goroutines in a
	// windowed session. crit guards every field above
	crit sync.Mutex
}

// NewDisplay is the preferred method of initialisation for the Display
// type. The display attaches itself to the bus.
func NewDisplay(id string, addr uint8, bus *Bus) *Display {
	d := &Display{
		id:   id,
		addr: addr,
		bus:  bus,
	}
	d.resetState()
	if bus != nil {
		bus.Attach(d)
	}
	return d
}

func (d *Display) resetState() {
	d.gddram = [DisplayPages * DisplayWidth]uint8{}
	d.mode = Page
	d.on = false
	d.colStart = 0
	d.colEnd = DisplayWidth - 1
	d.pageStart = 0
	d.pageEnd = DisplayPages - 1
	d.col = 0
	d.page = 0
	d.argsNeeded = 0
	d.pendingArgs = d.pendingArgs[:0]
	d.dirty = true
}

func (d *Display) String() string {
	d.crit.Lock()
	defer d.crit.Unlock()

	power := "off"
	if d.on {
		power = "on"
	}
	return fmt.Sprintf("%s: %s, %s addressing, cursor page %d col %d", d.id, power, d.mode, d.page, d.col)
}

// ID implements the peripherals.Peripheral interface.
func (d *Display) ID() string {
	return d.id
}

// Kind implements the peripherals.Peripheral interface.
func (d *Display) Kind() string {
	return "display"
}

// Address implements the Device interface.
func (d *Display) Address() uint8 {
	return d.addr
}

// Start implements the Device interface.
func (d *Display) Start(write bool) {
	d.crit.Lock()
	defer d.crit.Unlock()

	if write {
		d.phase = phaseControl
	}
}

// WriteByte implements the Device interface.
func (d *Display) WriteByte(data uint8) bool {
	d.crit.Lock()
	wasDirty := d.dirty

	switch d.phase {
	case phaseControl:
		if data&0x40 == 0x40 {
			d.phase = phaseData
		} else {
			d.phase = phaseCommand
		}
	case phaseCommand:
		d.command(data)
	case phaseData:
		d.data(data)
	}

	frame := !wasDirty && d.dirty
	d.crit.Unlock()

	// one frame event per render interval, however many writes. the
	// dispatch happens outside the critical section so that listeners
	// are free to inspect the display
	if frame {
		d.Dispatch(peripherals.Event{ID: peripherals.EventFrame})
	}

	return true
}

// ReadByte implements the Device interface. Reading returns the frame
// buffer byte at the cursor, advancing as a write would.
func (d *Display) ReadByte() uint8 {
	d.crit.Lock()
	defer d.crit.Unlock()

	v := d.gddram[d.page*DisplayWidth+d.col]
	d.advance()
	return v
}

// Stop implements the Device interface.
func (d *Display) Stop() {
	d.crit.Lock()
	defer d.crit.Unlock()

	d.phase = phaseControl
	d.argsNeeded = 0
	d.pendingArgs = d.pendingArgs[:0]
}

// number of follow-up argument bytes for each pending command
func commandArgs(cmd uint8) int {
	switch cmd {
	case 0x20: // addressing mode
		return 1
	case 0x21: // column window
		return 2
	case 0x22: // page window
		return 2
	case 0x81, 0x8d, 0xa8, 0xd3, 0xd5, 0xd9, 0xda, 0xdb:
		// recognised but unmodelled single-argument commands. consuming
		// the argument keeps the command stream in sync
		return 1
	}
	return 0
}

func (d *Display) command(cmd uint8) {
	if d.argsNeeded > 0 {
		d.pendingArgs = append(d.pendingArgs, cmd)
		d.argsNeeded--
		if d.argsNeeded == 0 {
			d.applyPending()
		}
		return
	}

	if n := commandArgs(cmd); n > 0 {
		d.pendingCmd = cmd
		d.argsNeeded = n
		d.pendingArgs = d.pendingArgs[:0]
		return
	}

	switch {
	case cmd == 0xae:
		d.on = false
	case cmd == 0xaf:
		d.on = true
	case cmd >= 0xb0 && cmd <= 0xb7:
		// page mode start page
		d.page = int(cmd & 0x07)
	case cmd <= 0x0f:
		// page mode column low nibble
		d.col = d.col&0xf0 | int(cmd)
	case cmd >= 0x10 && cmd <= 0x1f:
		// page mode column high nibble
		d.col = d.col&0x0f | int(cmd&0x07)<<4
	}
}

func (d *Display) applyPending() {
	switch d.pendingCmd {
	case 0x20:
		if m := AddressingMode(d.pendingArgs[0] & 0x03); m <= Page {
			d.mode = m
		}
	case 0x21:
		d.colStart = clampInt(int(d.pendingArgs[0]), 0, DisplayWidth-1)
		d.colEnd = clampInt(int(d.pendingArgs[1]), 0, DisplayWidth-1)
		d.col = d.colStart
		d.page = d.pageStart
	case 0x22:
		d.pageStart = clampInt(int(d.pendingArgs[0]), 0, DisplayPages-1)
		d.pageEnd = clampInt(int(d.pendingArgs[1]), 0, DisplayPages-1)
		d.col = d.colStart
		d.page = d.pageStart
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (d *Display) data(v uint8) {
	d.gddram[d.page*DisplayWidth+d.col] = v
	d.dirty = true
	d.advance()
}

// advance the cursor per the active addressing mode, wrapping within
// the configured window
func (d *Display) advance() {
	switch d.mode {
	case Horizontal:
		d.col++
		if d.col > d.colEnd {
			d.col = d.colStart
			d.page++
			if d.page > d.pageEnd {
				d.page = d.pageStart
			}
		}
	case Vertical:
		d.page++
		if d.page > d.pageEnd {
			d.page = d.pageStart
			d.col++
			if d.col > d.colEnd {
				d.col = d.colStart
			}
		}
	case Page:
		d.col++
		if d.col > d.colEnd {
			d.col = d.colStart
		}
	}
}

// Buffer returns a copy of the frame buffer. One byte per eight-pixel
// column strip, page by page.
func (d *Display) Buffer() []uint8 {
	d.crit.Lock()
	defer d.crit.Unlock()

	b := make([]uint8, len(d.gddram))
	copy(b, d.gddram[:])
	return b
}

// Dirty returns true if the frame buffer has been written since the
// last call to Render.
func (d *Display) Dirty() bool {
	d.crit.Lock()
	defer d.crit.Unlock()
	return d.dirty
}

// Render converts the frame buffer to a pixel image. Conversion is
// rate-limited by the caller's redraw tick: if the buffer has not been
// written since the previous call the cached image is returned. The
// returned image is only ever written by Render itself; it is safe to
// read until the next call.
func (d *Display) Render() *image.RGBA {
	d.crit.Lock()
	defer d.crit.Unlock()

	if !d.dirty && d.frame != nil {
		return d.frame
	}
	d.dirty = false

	if d.frame == nil {
		d.frame = image.NewRGBA(image.Rect(0, 0, DisplayWidth, DisplayHeight))
	}

	on := color.RGBA{R: 0x9a, G: 0xd8, B: 0xff, A: 0xff}
	off := color.RGBA{A: 0xff}

	for page := 0; page < DisplayPages; page++ {
		for col := 0; col < DisplayWidth; col++ {
			v := d.gddram[page*DisplayWidth+col]
			for row := 0; row < 8; row++ {
				if v>>row&1 == 1 {
					d.frame.SetRGBA(col, page*8+row, on)
				} else {
					d.frame.SetRGBA(col, page*8+row, off)
				}
			}
		}
	}

	return d.frame
}

// Reset implements the peripherals.Peripheral interface.
func (d *Display) Reset() {
	d.crit.Lock()
	defer d.crit.Unlock()
	d.resetState()
}

// Detach implements the peripherals.Peripheral interface.
func (d *Display) Detach() {
	if d.bus != nil {
		d.bus.Remove(d)
	}
	d.RemoveAllListeners()
}
