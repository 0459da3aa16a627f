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

package mcu

import "fmt"

// Factory creates a fresh Core instance for a new simulation session.
type Factory func() Core

var factories = map[string]Factory{}

// Register a core implementation under the given name. Core packages
// are expected to call Register from their init() function.
func Register(name string, f Factory) {
	factories[name] = f
}

// Lookup the named core factory.
func Lookup(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("mcu: no registered core named '%s'", name)
	}
	return f, nil
}
