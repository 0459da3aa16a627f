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

//go:build windows
// +build windows

// Package colorterm is not available under windows.
package colorterm

import "fmt"

// ErrInterrupt is returned by ReadLine when the user presses CTRL-C.
var ErrInterrupt = fmt.Errorf("user interrupt")

// Terminal is a color capable console on the process's stdin/stdout.
type Terminal struct {
}

// NewTerminal is the preferred method of initialisation for the
// Terminal type.
func NewTerminal() (*Terminal, error) {
	return nil, fmt.Errorf("colorterm: not available on windows")
}

// CleanUp restores the terminal to canonical mode.
func (ct *Terminal) CleanUp() {
}

// Print writes formatted, styled output to the terminal.
func (ct *Terminal) Print(style Style, format string, args ...any) {
}

// ReadLine presents the prompt and reads one line of input.
func (ct *Terminal) ReadLine(prompt string) (string, error) {
	return "", fmt.Errorf("colorterm: not available on windows")
}
