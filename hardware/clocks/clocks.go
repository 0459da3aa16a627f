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

// Package clocks defines the constant values that define the speed of
// the main clock in the simulated microcontroller, along with helper
// functions for converting between cycle counts and durations.
package clocks

// Clock frequencies in Hz for the supported processor variants.
const (
	Standard = 16000000
	LowPower = 8000000
)

// MicrosToCycles converts a duration in microseconds to the equivalent
// number of cycles at the given clock frequency.
func MicrosToCycles(us float64, hz int) uint64 {
	return uint64(us * float64(hz) / 1e6)
}

// CyclesToMicros converts a cycle count to microseconds at the given
// clock frequency.
func CyclesToMicros(cycles uint64, hz int) float64 {
	return float64(cycles) * 1e6 / float64(hz)
}

// MillisToCycles converts a duration in milliseconds to the equivalent
// number of cycles at the given clock frequency.
func MillisToCycles(ms float64, hz int) uint64 {
	return uint64(ms * float64(hz) / 1e3)
}
