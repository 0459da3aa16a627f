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

package wiring

import (
	"github.com/sparkbench/sparkbench/hardware/peripherals/shiftreg"
	"github.com/sparkbench/sparkbench/schematic"
)

// the part type recognised as a SIPO shift register chip
const sipoPartType = "sr-595"

// buildChains finds the SIPO shift register chips on the sheet and
// groups them into daisy chains by following the serial data net: a
// chip whose data input is fed by another chip's serial output is
// downstream of that chip. Each group becomes one model, a single chip
// model or a chain model, bound to the head chip's pins. The returned
// set lists every chip consumed here so the general build sweep skips
// them.
func (h *Harness) buildChains() (map[string]bool, error) {
	chips := h.sheet.PartsOfType(sipoPartType)
	chained := make(map[string]bool, len(chips))
	if len(chips) == 0 {
		return chained, nil
	}

	isChip := make(map[string]bool, len(chips))
	for _, c := range chips {
		isChip[c.ID] = true
	}

	// serial links between chips. a connection from one chip's Q7S to
	// another chip's DS makes the latter downstream of the former
	upstream := make(map[string]string)
	downstream := make(map[string]string)
	link := func(feeder, fed schematic.Endpoint) {
		if isChip[feeder.Part] && isChip[fed.Part] && feeder.Pin == "Q7S" && fed.Pin == "DS" {
			upstream[fed.Part] = feeder.Part
			downstream[feeder.Part] = fed.Part
		}
	}
	for _, c := range h.sheet.Connections {
		link(c.From, c.To)
		link(c.To, c.From)
	}

	for _, head := range chips {
		if _, ok := upstream[head.ID]; ok {
			continue
		}

		ids := []string{head.ID}
		for next := downstream[head.ID]; next != ""; next = downstream[next] {
			// cycle guard for malformed sheets
			if len(ids) > len(chips) {
				break
			}
			ids = append(ids, next)
		}

		ctx := &Context{harness: h, part: head}
		data := ctx.Line("DS")
		clock := ctx.Line("SHCP")
		latch := ctx.Line("STCP")

		if len(ids) == 1 {
			h.adopt(shiftreg.NewSIPO(head.ID, data, clock, latch))
		} else {
			h.adopt(shiftreg.NewChain(head.ID, len(ids), data, clock, latch))
		}

		for _, id := range ids {
			chained[id] = true
		}
	}

	return chained, nil
}
