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

package logger

import "io"

// the maximum number of entries kept by the central logger
const maxCentral = 256

// the central logger instance. the simulation is single-threaded so no
// locking is required around it.
var central = newLogger(maxCentral)

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, detail string, args ...any) {
	central.logf(tag, detail, args...)
}

// Clear all entries from the central logger.
func Clear() {
	central.clear()
}

// Write the entire central log to output.
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes the last number entries to output. A negative number
// writes every entry.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho to echo every future entry to output as it arrives. A nil
// output turns echoing off. If writeRecent is true the current contents
// of the log are written to output immediately.
func SetEcho(output io.Writer, writeRecent bool) {
	central.setEcho(output, writeRecent)
}
