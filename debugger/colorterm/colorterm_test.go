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

//go:build !windows
// +build !windows

package colorterm

import (
	"testing"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/sparkbench/sparkbench/test"
)

// the Terminal attribute fields must be the type the termios package
// operates on. no tty is needed to exercise the pairing.
func TestCbreakAttributes(t *testing.T) {
	ct := &Terminal{}

	ct.canAttr.Lflag = unix.ECHO | unix.ICANON | unix.ISIG
	ct.cbreakAttr = ct.canAttr
	termios.Cfmakecbreak(&ct.cbreakAttr)

	// cbreak disables echo and canonical processing but leaves signal
	// generation alone
	test.ExpectEquality(t, ct.cbreakAttr.Lflag&unix.ECHO, 0)
	test.ExpectEquality(t, ct.cbreakAttr.Lflag&unix.ICANON, 0)
	test.ExpectEquality(t, ct.cbreakAttr.Lflag&unix.ISIG, unix.ISIG)

	// one byte at a time, no read timeout
	test.ExpectEquality(t, ct.cbreakAttr.Cc[unix.VMIN], 1)
	test.ExpectEquality(t, ct.cbreakAttr.Cc[unix.VTIME], 0)

	// the canonical attributes are untouched for CleanUp to restore
	test.ExpectEquality(t, ct.canAttr.Lflag&unix.ICANON, unix.ICANON)
}
