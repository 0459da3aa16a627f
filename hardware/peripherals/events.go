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

package peripherals

// EventID differentiates the events a peripheral can emit.
type EventID string

// List of defined EventIDs. Not every peripheral emits every event.
const (
	// the output latch of a shift register has taken a new value. Data
	// is uint8 for a single chip or []uint8 for a daisy chain
	EventOutput EventID = "Output"

	// the display frame buffer has been written since the last render.
	// Data is nil
	EventFrame EventID = "Frame"

	// a PWM decoder has settled on a new angle. Data is int (degrees)
	EventAngle EventID = "Angle"
)

// Event is the tagged value delivered to peripheral listeners.
type Event struct {
	ID   EventID
	Data any
}

// ListenerID identifies an event listener registration.
type ListenerID int

// EventListener is a callback fired for every event a peripheral emits.
type EventListener func(Event)

type eventListener struct {
	id ListenerID
	fn EventListener
}

// Dispatcher is the single subscribe/unsubscribe surface shared by all
// peripherals. Peripheral types embed it and emit events through
// Dispatch().
type Dispatcher struct {
	lstrs  []eventListener
	nextID ListenerID
}

// AddListener registers a callback for every event the peripheral emits.
func (d *Dispatcher) AddListener(fn EventListener) ListenerID {
	d.nextID++
	d.lstrs = append(d.lstrs, eventListener{id: d.nextID, fn: fn})
	return d.nextID
}

// RemoveListener removes a previous registration.
func (d *Dispatcher) RemoveListener(id ListenerID) {
	for i := range d.lstrs {
		if d.lstrs[i].id == id {
			d.lstrs = append(d.lstrs[:i], d.lstrs[i+1:]...)
			return
		}
	}
}

// Dispatch an event to every listener.
func (d *Dispatcher) Dispatch(ev Event) {
	lstrs := make([]eventListener, len(d.lstrs))
	copy(lstrs, d.lstrs)
	for _, l := range lstrs {
		l.fn(ev)
	}
}

// RemoveAllListeners drops every registration. Called from Detach().
func (d *Dispatcher) RemoveAllListeners() {
	d.lstrs = d.lstrs[:0]
}
