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

package colorterm

import "fmt"

// ANSI CSI sequences for the text styles used by the console.
const (
	penNormal = "\033[0m"
	penBold   = "\033[1m"

	penRed     = "\033[31;1m"
	penGreen   = "\033[32;1m"
	penYellow  = "\033[33;1m"
	penCyan    = "\033[36;1m"
	penDimGrey = "\033[37;2m"

	clearLine = "\033[2K\r"
)

// Style identifies the purpose of a piece of console output. Each style
// maps to a pen.
type Style int

// List of defined styles.
const (
	StyleNormal Style = iota
	StylePrompt
	StyleError
	StyleFeedback
	StyleSerial
	StyleInstrument
)

func (s Style) pen() string {
	switch s {
	case StylePrompt:
		return penBold
	case StyleError:
		return penRed
	case StyleFeedback:
		return penDimGrey
	case StyleSerial:
		return penGreen
	case StyleInstrument:
		return penCyan
	}
	return penNormal
}

func styled(style Style, s string) string {
	return fmt.Sprintf("%s%s%s", style.pen(), s, penNormal)
}
