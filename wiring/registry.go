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
	"github.com/sparkbench/sparkbench/hardware/peripherals"
)

// Builder constructs a peripheral for one part on the sheet. The
// Context supplies the resolved pin bindings and access to the
// processor core.
type Builder func(ctx *Context) (peripherals.Peripheral, error)

var builders = make(map[string]Builder)

// passThrough lists part types that connect their pins together
// electrically without participating in the simulation. The resolver
// propagates processor pin assignments through them.
var passThrough = make(map[string]bool)

// processors maps processor part types to the pin name translator
// appropriate for that type.
var processors = make(map[string]Translator)

// RegisterPart adds a builder for a part type. Registration of a type
// already in the registry replaces the previous builder, allowing an
// embedding program to substitute its own models.
func RegisterPart(partType string, b Builder) {
	builders[partType] = b
}

// RegisterPassThrough marks a part type as a passive two terminal
// component that simply joins its pins.
func RegisterPassThrough(partType string) {
	passThrough[partType] = true
}

// RegisterProcessor adds a processor part type with its pin name
// translator.
func RegisterProcessor(partType string, t Translator) {
	processors[partType] = t
}
