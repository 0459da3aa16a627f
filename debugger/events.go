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

package debugger

import "github.com/sparkbench/sparkbench/debugger/govern"

// EventID differentiates the events the debugger emits.
type EventID string

// List of EventIDs.
const (
	// the runner has moved between stopped, paused and running. Data is
	// the new govern.State
	EventState EventID = "State"

	// a single step has completed. Data is the StepRecord
	EventStep EventID = "Step"

	// a breakpoint has fired. Data is the program counter address
	EventBreakpoint EventID = "Breakpoint"

	// the firmware has transmitted serial output. Data is []byte
	EventSerial EventID = "Serial"

	// a program image has been loaded. Data is nil
	EventProgram EventID = "Program"
)

// Event is the tagged value delivered to debugger listeners.
type Event struct {
	ID   EventID
	Data any
}

// EventListener is a callback fired for every debugger event.
type EventListener func(Event)

// ListenerID identifies an event listener registration.
type ListenerID int

type eventListener struct {
	id ListenerID
	fn EventListener
}

// AddListener registers a callback for every event the debugger emits.
func (dbg *Debugger) AddListener(fn EventListener) ListenerID {
	dbg.nextListenerID++
	dbg.lstrs = append(dbg.lstrs, eventListener{id: dbg.nextListenerID, fn: fn})
	return dbg.nextListenerID
}

// RemoveListener removes a previous registration.
func (dbg *Debugger) RemoveListener(id ListenerID) {
	for i := range dbg.lstrs {
		if dbg.lstrs[i].id == id {
			dbg.lstrs = append(dbg.lstrs[:i], dbg.lstrs[i+1:]...)
			return
		}
	}
}

func (dbg *Debugger) dispatch(ev Event) {
	lstrs := make([]eventListener, len(dbg.lstrs))
	copy(lstrs, dbg.lstrs)
	for _, l := range lstrs {
		l.fn(ev)
	}
}

func (dbg *Debugger) setState(state govern.State) {
	if dbg.state == state {
		return
	}
	dbg.state = state
	dbg.dispatch(Event{ID: EventState, Data: state})
}
