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

// Package govern defines the state type shared by the run loop and the
// debugger. It is a leaf package so that anything can import it without
// cycles.
package govern

// State indicates what the simulation is doing.
type State int

// List of possible simulation states.
//
// Stopped is the default state. A simulation with no loaded program is
// Stopped; loading a program moves it to Paused.
//
// Ending is only ever returned from a continue check. It instructs the
// run loop to exit; it is never a resting state.
const (
	Stopped State = iota
	Paused
	Running
	Ending
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Paused:
		return "Paused"
	case Running:
		return "Running"
	case Ending:
		return "Ending"
	}
	return ""
}
