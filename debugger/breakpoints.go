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

import (
	"fmt"
	"sort"
	"strings"
)

// breakpoints is the set of program counter addresses checked after
// every instruction while running.
type breakpoints struct {
	addrs map[uint32]bool
}

func newBreakpoints() *breakpoints {
	return &breakpoints{addrs: make(map[uint32]bool)}
}

func (bk *breakpoints) set(addr uint32) {
	bk.addrs[addr] = true
}

func (bk *breakpoints) clear(addr uint32) {
	delete(bk.addrs, addr)
}

func (bk *breakpoints) toggle(addr uint32) bool {
	if bk.addrs[addr] {
		delete(bk.addrs, addr)
		return false
	}
	bk.addrs[addr] = true
	return true
}

func (bk *breakpoints) check(addr uint32) bool {
	return bk.addrs[addr]
}

func (bk *breakpoints) String() string {
	if len(bk.addrs) == 0 {
		return "no breakpoints"
	}

	addrs := make([]uint32, 0, len(bk.addrs))
	for a := range bk.addrs {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	s := strings.Builder{}
	for _, a := range addrs {
		s.WriteString(fmt.Sprintf("0x%04x ", a))
	}
	return strings.TrimSpace(s.String())
}

// SetBreakpoint adds a breakpoint at the address.
func (dbg *Debugger) SetBreakpoint(addr uint32) {
	dbg.breakpoints.set(addr)
}

// ClearBreakpoint removes the breakpoint at the address.
func (dbg *Debugger) ClearBreakpoint(addr uint32) {
	dbg.breakpoints.clear(addr)
}

// ToggleBreakpoint flips the breakpoint at the address, returning the
// new presence.
func (dbg *Debugger) ToggleBreakpoint(addr uint32) bool {
	return dbg.breakpoints.toggle(addr)
}

// HasBreakpoint reports whether a breakpoint exists at the address.
func (dbg *Debugger) HasBreakpoint(addr uint32) bool {
	return dbg.breakpoints.check(addr)
}

// ListBreakpoints returns a printable summary of the breakpoint set.
func (dbg *Debugger) ListBreakpoints() string {
	return dbg.breakpoints.String()
}
