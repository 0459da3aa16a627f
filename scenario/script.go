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

package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// LoadScript builds a scenario from a Lua script. The script runs once
// at load time; each call to a step function appends a step, so plain
// Lua control flow (loops, conditionals, helper functions) can be used
// to assemble the list. The simulation is not reachable from the
// script: steps execute later, in order, under the Run function.
//
//	name("boot banner")
//	wait_serial("READY", 2000)
//	set("btn1", "pressed", 1)
//	delay(50)
//	set("btn1", "pressed", 0)
//	expect_serial("pressed 1 times")
func LoadScript(r io.Reader, name string) (*Scenario, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	sc := &Scenario{Name: name}

	L := lua.NewState()
	defer L.Close()

	appendStep := func(s Step) {
		sc.Steps = append(sc.Steps, s)
	}

	L.SetGlobal("name", L.NewFunction(func(L *lua.LState) int {
		sc.Name = L.CheckString(1)
		return 0
	}))

	L.SetGlobal("delay", L.NewFunction(func(L *lua.LState) int {
		appendStep(Delay{Millis: L.CheckInt(1)})
		return 0
	}))

	L.SetGlobal("set", L.NewFunction(func(L *lua.LState) int {
		step := SetControl{
			Part:    L.CheckString(1),
			Control: L.CheckString(2),
		}
		for i := 3; i <= L.GetTop(); i++ {
			step.Values = append(step.Values, float64(L.CheckNumber(i)))
		}
		appendStep(step)
		return 0
	}))

	L.SetGlobal("wait_serial", L.NewFunction(func(L *lua.LState) int {
		appendStep(WaitSerial{
			Substring: L.CheckString(1),
			Timeout:   L.OptInt(2, 0),
		})
		return 0
	}))

	L.SetGlobal("expect_serial", L.NewFunction(func(L *lua.LState) int {
		appendStep(ExpectSerial{Substring: L.CheckString(1)})
		return 0
	}))

	L.SetGlobal("expect_display", L.NewFunction(func(L *lua.LState) int {
		step := ExpectDisplay{Part: L.CheckString(1)}
		if L.GetTop() >= 2 {
			t := L.CheckTable(2)
			if v, ok := t.RawGetString("min").(lua.LNumber); ok {
				step.MinNonZero = int(v)
			}
			if v, ok := t.RawGetString("offset").(lua.LNumber); ok {
				step.Offset = int(v)
			}
			if v, ok := t.RawGetString("pattern").(*lua.LTable); ok {
				v.ForEach(func(_, b lua.LValue) {
					if n, ok := b.(lua.LNumber); ok {
						step.Pattern = append(step.Pattern, byte(n))
					}
				})
			}
		}
		appendStep(step)
		return 0
	}))

	L.SetGlobal("serial_send", L.NewFunction(func(L *lua.LState) int {
		appendStep(SerialSend{Data: []byte(L.CheckString(1))})
		return 0
	}))

	L.SetGlobal("serial_clear", L.NewFunction(func(L *lua.LState) int {
		appendStep(SerialClear{})
		return 0
	}))

	if err := L.DoString(string(src)); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	return sc, nil
}

// LoadScriptFile is LoadScript on a file, named after the file.
func LoadScriptFile(filename string) (*Scenario, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()

	name := filepath.Base(filename)
	return LoadScript(f, name)
}
