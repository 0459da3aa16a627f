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

import (
	"strings"
	"testing"

	"github.com/sparkbench/sparkbench/test"
)

func TestLogger(t *testing.T) {
	l := newLogger(8)

	b := &strings.Builder{}
	l.write(b)
	test.ExpectEquality(t, b.String(), "")

	l.log("test", "this is a test")
	b.Reset()
	l.write(b)
	test.ExpectEquality(t, b.String(), "test: this is a test\n")

	// multi-line details are flattened
	l.log("test2", "this is another\ntest")
	b.Reset()
	l.write(b)
	test.ExpectEquality(t, b.String(), "test: this is a test\ntest2: this is another test\n")
}

func TestRepeats(t *testing.T) {
	l := newLogger(8)

	l.log("dup", "same detail")
	l.log("dup", "same detail")
	l.log("dup", "same detail")

	test.ExpectEquality(t, len(l.entries), 1)

	b := &strings.Builder{}
	l.write(b)
	test.ExpectEquality(t, b.String(), "dup: same detail (repeat x3)\n")
}

func TestCap(t *testing.T) {
	l := newLogger(2)

	l.logf("tag", "entry %d", 1)
	l.logf("tag", "entry %d", 2)
	l.logf("tag", "entry %d", 3)

	b := &strings.Builder{}
	l.write(b)
	test.ExpectEquality(t, b.String(), "tag: entry 2\ntag: entry 3\n")
}

func TestTail(t *testing.T) {
	l := newLogger(8)

	l.log("tag", "entry 1")
	l.log("tag", "entry 2")
	l.log("tag", "entry 3")

	b := &strings.Builder{}
	l.tail(b, 2)
	test.ExpectEquality(t, b.String(), "tag: entry 2\ntag: entry 3\n")

	b.Reset()
	l.tail(b, -1)
	test.ExpectEquality(t, b.String(), "tag: entry 1\ntag: entry 2\ntag: entry 3\n")
}
