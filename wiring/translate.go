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
	"strconv"

	"github.com/sparkbench/sparkbench/hardware/gpio"
)

// Translator converts the pin names used on a processor part into
// concrete port and bit coordinates. Two naming schemes exist: board
// level processors use friendly numbered names ("13", "A4") while bare
// processors use raw port and bit names ("PB5").
type Translator interface {
	// Pin returns the port and bit behind a pin name. The boolean
	// return value is false for names the translator does not know
	Pin(name string) (gpio.PortID, int, bool)

	// ADCChannel returns the analog channel behind a pin name, if the
	// pin has one
	ADCChannel(name string) (int, bool)
}

// boardTranslator implements the friendly numbered naming scheme used
// by board level processor parts. Digital pins 0 to 7 are port D,
// pins 8 to 13 are port B bits 0 to 5 and the analog pins A0 to A5
// are port C.
type boardTranslator struct{}

// Pin implements the Translator interface.
func (boardTranslator) Pin(name string) (gpio.PortID, int, bool) {
	if len(name) >= 2 && name[0] == 'A' {
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 0 || n > 5 {
			return "", 0, false
		}
		return gpio.PortC, n, true
	}

	n, err := strconv.Atoi(name)
	if err != nil {
		return "", 0, false
	}
	switch {
	case n >= 0 && n <= 7:
		return gpio.PortD, n, true
	case n >= 8 && n <= 13:
		return gpio.PortB, n - 8, true
	}
	return "", 0, false
}

// ADCChannel implements the Translator interface.
func (boardTranslator) ADCChannel(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'A' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > 5 {
		return 0, false
	}
	return n, true
}

// rawTranslator implements the raw port and bit naming scheme used by
// bare processor parts. Pin names are of the form "PB5". Analog
// channels are named "ADC0" to "ADC7".
type rawTranslator struct{}

// Pin implements the Translator interface.
func (rawTranslator) Pin(name string) (gpio.PortID, int, bool) {
	if len(name) != 3 || name[0] != 'P' {
		return "", 0, false
	}

	var port gpio.PortID
	switch name[1] {
	case 'B':
		port = gpio.PortB
	case 'C':
		port = gpio.PortC
	case 'D':
		port = gpio.PortD
	default:
		return "", 0, false
	}

	bit := int(name[2] - '0')
	if bit < 0 || bit >= gpio.PortWidth {
		return "", 0, false
	}

	return port, bit, true
}

// ADCChannel implements the Translator interface.
func (rawTranslator) ADCChannel(name string) (int, bool) {
	if len(name) != 4 || name[:3] != "ADC" {
		return 0, false
	}
	n := int(name[3] - '0')
	if n < 0 || n > 7 {
		return 0, false
	}
	return n, true
}
