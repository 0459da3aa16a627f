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

// Package clockev implements the priority queue of (fire-cycle,
// callback) pairs that drives timed peripheral behaviour. Core
// implementations embed a Queue and pump it from their tick loop.
//
// The queue is owned by the processor model. Peripherals schedule
// events but never own them; cancellation of still-pending events on
// stop or disposal is guaranteed by Clear().
package clockev

import (
	"container/heap"

	"github.com/sparkbench/sparkbench/hardware/mcu"
)

type event struct {
	id     mcu.EventID
	fireAt uint64
	fn     func()

	// cancelled events stay in the heap but do not fire
	cancelled bool
}

type eventHeap []*event

func (h eventHeap) Len() int      { return len(h) }
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h eventHeap) Less(i, j int) bool {
	if h[i].fireAt == h[j].fireAt {
		// stable ordering for events scheduled for the same cycle
		return h[i].id < h[j].id
	}
	return h[i].fireAt < h[j].fireAt
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is a priority queue of scheduled clock events.
type Queue struct {
	events  eventHeap
	pending map[mcu.EventID]*event
	nextID  mcu.EventID
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[mcu.EventID]*event),
	}
}

// Schedule fn to be called when the cycle counter reaches fireAt.
func (q *Queue) Schedule(fireAt uint64, fn func()) mcu.EventID {
	q.nextID++
	e := &event{
		id:     q.nextID,
		fireAt: fireAt,
		fn:     fn,
	}
	heap.Push(&q.events, e)
	q.pending[e.id] = e
	return e.id
}

// Cancel a pending event. Cancelling an event that has already fired, or
// an unknown event, is a no-op.
func (q *Queue) Cancel(id mcu.EventID) {
	if e, ok := q.pending[id]; ok {
		e.cancelled = true
		delete(q.pending, id)
	}
}

// Fire every pending event that is due at the given cycle. Callbacks may
// schedule further events, including for the current cycle; those fire
// in the same call.
func (q *Queue) Fire(now uint64) {
	for len(q.events) > 0 && q.events[0].fireAt <= now {
		e := heap.Pop(&q.events).(*event)
		if e.cancelled {
			continue
		}
		delete(q.pending, e.id)
		e.fn()
	}
}

// Clear cancels every pending event. Called on stop/disposal so that no
// stale continuation can fire into a dead session.
func (q *Queue) Clear() {
	q.events = q.events[:0]
	q.pending = make(map[mcu.EventID]*event)
}

// Pending returns the number of events waiting to fire.
func (q *Queue) Pending() int {
	return len(q.pending)
}
