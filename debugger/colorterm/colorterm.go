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

// Package colorterm implements a POSIX terminal for the interactive
// console. The terminal is put into cbreak mode for the duration of a
// ReadLine so that cursor keys and CTRL-C can be handled directly;
// canonical mode is restored on CleanUp.
package colorterm

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// control bytes and escape sequence runes recognised by ReadLine.
const (
	keyCtrlC          = 3
	keyBackspace      = 8
	keyCarriageReturn = 13
	keyLineFeed       = 10
	keyEsc            = 27
	keyDEL            = 127

	escCursor  = '['
	cursorUp   = 'A'
	cursorDown = 'B'
)

// ErrInterrupt is returned by ReadLine when the user presses CTRL-C.
var ErrInterrupt = fmt.Errorf("user interrupt")

// Terminal is a color capable console on the process's stdin/stdout.
type Terminal struct {
	input  *os.File
	output *os.File
	reader *bufio.Reader

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	history []string
}

// NewTerminal is the preferred method of initialisation for the
// Terminal type.
func NewTerminal() (*Terminal, error) {
	ct := &Terminal{
		input:  os.Stdin,
		output: os.Stdout,
	}
	ct.reader = bufio.NewReader(ct.input)

	if err := termios.Tcgetattr(ct.input.Fd(), &ct.canAttr); err != nil {
		return nil, fmt.Errorf("colorterm: %w", err)
	}
	ct.cbreakAttr = ct.canAttr
	termios.Cfmakecbreak(&ct.cbreakAttr)

	return ct, nil
}

// CleanUp restores the terminal to canonical mode.
func (ct *Terminal) CleanUp() {
	_ = termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.canAttr)
	ct.Print(StyleNormal, "\r\n")
}

// Print writes formatted, styled output to the terminal.
func (ct *Terminal) Print(style Style, format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	ct.output.WriteString(styled(style, s))
}

// ReadLine presents the prompt and reads one line of input, handling
// history recall on the cursor keys. ErrInterrupt is returned on
// CTRL-C.
func (ct *Terminal) ReadLine(prompt string) (string, error) {
	if err := termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.cbreakAttr); err != nil {
		return "", fmt.Errorf("colorterm: %w", err)
	}
	defer func() {
		_ = termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.canAttr)
	}()

	input := []rune{}
	histIdx := len(ct.history)

	// the pending input is stashed while scrolling through history so
	// that returning to the bottom resumes editing
	var stash []rune

	redraw := func() {
		ct.output.WriteString(clearLine)
		ct.Print(StylePrompt, "%s", prompt)
		ct.output.WriteString(string(input))
	}
	redraw()

	for {
		r, _, err := ct.reader.ReadRune()
		if err != nil {
			return "", fmt.Errorf("colorterm: %w", err)
		}

		switch r {
		case keyCtrlC:
			ct.output.WriteString("\n")
			return "", ErrInterrupt

		case keyCarriageReturn, keyLineFeed:
			ct.output.WriteString("\n")
			s := string(input)
			if s != "" && (len(ct.history) == 0 || ct.history[len(ct.history)-1] != s) {
				ct.history = append(ct.history, s)
			}
			return s, nil

		case keyBackspace, keyDEL:
			if len(input) > 0 {
				input = input[:len(input)-1]
				redraw()
			}

		case keyEsc:
			r, _, err = ct.reader.ReadRune()
			if err != nil {
				return "", fmt.Errorf("colorterm: %w", err)
			}
			if r != escCursor {
				continue
			}
			r, _, err = ct.reader.ReadRune()
			if err != nil {
				return "", fmt.Errorf("colorterm: %w", err)
			}

			switch r {
			case cursorUp:
				if histIdx > 0 {
					if histIdx == len(ct.history) {
						stash = input
					}
					histIdx--
					input = []rune(ct.history[histIdx])
					redraw()
				}
			case cursorDown:
				if histIdx < len(ct.history) {
					histIdx++
					if histIdx == len(ct.history) {
						input = stash
					} else {
						input = []rune(ct.history[histIdx])
					}
					redraw()
				}
			}

		default:
			if r >= 32 {
				input = append(input, r)
				ct.output.WriteString(string(r))
			}
		}
	}
}
