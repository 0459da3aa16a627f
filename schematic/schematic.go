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

// Package schematic defines the read-only description of a circuit. A
// Sheet lists the placed parts and the connections between part pins.
// The wiring package interprets a Sheet; nothing in this package ever
// mutates one after loading.
package schematic

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Part is one placed component on the sheet.
type Part struct {
	// unique identifier for the part within the sheet
	ID string `json:"id"`

	// the kind of component. well known types are listed in the wiring
	// package registry
	Type string `json:"type"`

	// free-form attributes. interpretation depends on the part type,
	// for example the number of chips in a shift register chain
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Endpoint identifies one pin of one part.
type Endpoint struct {
	Part string
	Pin  string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%s", e.Part, e.Pin)
}

// MarshalJSON encodes the endpoint in the "part:pin" form used by the
// sheet file format.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON decodes an endpoint from the "part:pin" form.
func (e *Endpoint) UnmarshalJSON(d []byte) error {
	var s string
	if err := json.Unmarshal(d, &s); err != nil {
		return err
	}

	part, pin, ok := strings.Cut(s, ":")
	if !ok || part == "" || pin == "" {
		return fmt.Errorf("schematic: malformed endpoint %q", s)
	}

	e.Part = part
	e.Pin = pin
	return nil
}

// Connection joins two endpoints. The order of the two ends carries no
// meaning. The optional Net field names the electrical net the
// connection belongs to, as assigned by the editor.
type Connection struct {
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
	Net  string   `json:"net,omitempty"`
}

// Sheet is the complete schematic description.
type Sheet struct {
	Parts       []Part       `json:"parts"`
	Connections []Connection `json:"connections"`
}

// Load reads a sheet in JSON form.
func Load(r io.Reader) (*Sheet, error) {
	var sh Sheet

	dec := json.NewDecoder(r)
	if err := dec.Decode(&sh); err != nil {
		return nil, fmt.Errorf("schematic: %w", err)
	}

	if err := sh.validate(); err != nil {
		return nil, err
	}

	return &sh, nil
}

func (sh *Sheet) validate() error {
	seen := make(map[string]bool, len(sh.Parts))
	for _, p := range sh.Parts {
		if p.ID == "" {
			return fmt.Errorf("schematic: part with empty id")
		}
		if p.Type == "" {
			return fmt.Errorf("schematic: part %s has no type", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("schematic: duplicate part id %s", p.ID)
		}
		seen[p.ID] = true
	}

	for _, c := range sh.Connections {
		if !seen[c.From.Part] {
			return fmt.Errorf("schematic: connection references unknown part %s", c.From.Part)
		}
		if !seen[c.To.Part] {
			return fmt.Errorf("schematic: connection references unknown part %s", c.To.Part)
		}
	}

	return nil
}

// Part returns the named part.
func (sh *Sheet) Part(id string) (Part, bool) {
	for _, p := range sh.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return Part{}, false
}

// PartsOfType returns every part with the given type, in sheet order.
func (sh *Sheet) PartsOfType(typ string) []Part {
	var r []Part
	for _, p := range sh.Parts {
		if p.Type == typ {
			r = append(r, p)
		}
	}
	return r
}

// ConnectionsAt returns every connection with one end at the given
// part, in sheet order.
func (sh *Sheet) ConnectionsAt(partID string) []Connection {
	var r []Connection
	for _, c := range sh.Connections {
		if c.From.Part == partID || c.To.Part == partID {
			r = append(r, c)
		}
	}
	return r
}

// Attr returns the named attribute of the part, or the supplied
// default if the attribute is absent.
func (p Part) Attr(name string, def string) string {
	if p.Attrs == nil {
		return def
	}
	if v, ok := p.Attrs[name]; ok {
		return v
	}
	return def
}
