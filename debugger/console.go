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
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sparkbench/sparkbench/debugger/colorterm"
	"github.com/sparkbench/sparkbench/debugger/govern"
	"github.com/sparkbench/sparkbench/logger"
)

const consolePrompt = "[bench] "

// Console is the interactive front end to the Debugger. It reads
// commands from a colorterm terminal until QUIT or EOF.
type Console struct {
	dbg  *Debugger
	term *colorterm.Terminal
}

// NewConsole is the preferred method of initialisation for the Console
// type.
func NewConsole(dbg *Debugger) (*Console, error) {
	term, err := colorterm.NewTerminal()
	if err != nil {
		return nil, err
	}

	con := &Console{dbg: dbg, term: term}

	dbg.AddListener(func(ev Event) {
		switch ev.ID {
		case EventSerial:
			con.term.Print(colorterm.StyleSerial, "%s", string(ev.Data.([]byte)))
		case EventBreakpoint:
			con.term.Print(colorterm.StyleFeedback, "break at 0x%04x\n", ev.Data.(uint32))
		case EventState:
			con.term.Print(colorterm.StyleFeedback, "%% %s\n", ev.Data.(govern.State))
		}
	})

	return con, nil
}

// Loop reads and runs commands until QUIT. The error return is for
// terminal failures; command errors are printed and the loop continues.
func (con *Console) Loop() error {
	defer con.term.CleanUp()

	for {
		line, err := con.term.ReadLine(consolePrompt)
		if err != nil {
			if err == colorterm.ErrInterrupt {
				continue
			}
			return err
		}

		quit, err := con.parse(line)
		if err != nil {
			con.term.Print(colorterm.StyleError, "%v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (con *Console) parse(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "QUIT", "Q":
		return true, nil

	case "STEP", "S":
		_, err := con.dbg.Step()
		if err != nil {
			return false, err
		}
		con.printSnapshot()

	case "OVER", "O":
		_, err := con.dbg.StepOver()
		if err != nil {
			return false, err
		}
		con.printSnapshot()

	case "RUN", "R":
		return false, con.run()

	case "BREAK", "B":
		if len(args) != 1 {
			return false, fmt.Errorf("BREAK requires an address")
		}
		addr, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return false, fmt.Errorf("bad address %q", args[0])
		}
		if con.dbg.ToggleBreakpoint(uint32(addr)) {
			con.term.Print(colorterm.StyleFeedback, "breakpoint set at 0x%04x\n", addr)
		} else {
			con.term.Print(colorterm.StyleFeedback, "breakpoint cleared at 0x%04x\n", addr)
		}

	case "LIST", "L":
		con.term.Print(colorterm.StyleFeedback, "%s\n", con.dbg.ListBreakpoints())

	case "SPEED":
		if len(args) != 1 {
			return false, fmt.Errorf("SPEED requires a rate (0 for full speed)")
		}
		rate, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("bad rate %q", args[0])
		}
		con.dbg.SetSpeed(rate)

	case "RESET":
		con.dbg.Reset()

	case "REGS", "INFO":
		con.printSnapshot()

	case "PERIPHERALS", "P":
		harness := con.dbg.bench.Harness
		if harness == nil {
			return false, fmt.Errorf("nothing is wired to the processor")
		}
		for _, p := range harness.Peripherals() {
			con.term.Print(colorterm.StyleInstrument, "%s\n", p.String())
		}

	case "SEND":
		if len(args) == 0 {
			return false, fmt.Errorf("SEND requires text")
		}
		return false, con.dbg.SerialSend([]byte(strings.Join(args, " ") + "\n"))

	case "SERIAL":
		con.term.Print(colorterm.StyleSerial, "%s\n", string(con.dbg.Serial()))

	case "LOG":
		logger.Tail(os.Stdout, 20)

	case "HELP", "H":
		con.term.Print(colorterm.StyleFeedback, "%s\n", consoleHelp)

	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	return false, nil
}

// run executes the simulation until a breakpoint or CTRL-C.
func (con *Console) run() error {
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	defer signal.Stop(intr)

	done := make(chan bool)
	go func() {
		select {
		case <-intr:
			// Interrupt is the only safe call from this goroutine.
			// the run loop performs the paused transition itself
			con.dbg.Interrupt()
		case <-done:
		}
	}()

	err := con.dbg.Run()
	close(done)
	return err
}

func (con *Console) printSnapshot() {
	snap := con.dbg.bench.Core.Snapshot()

	con.term.Print(colorterm.StyleInstrument, "PC=0x%04x SP=0x%04x SREG=%08b CYCLES=%d\n",
		snap.PC, snap.SP, snap.Status, snap.Cycles)

	for i, r := range snap.Regs {
		con.term.Print(colorterm.StyleInstrument, "r%-2d=%02x ", i, r)
		if (i+1)%8 == 0 {
			con.term.Print(colorterm.StyleNormal, "\n")
		}
	}
}

const consoleHelp = `STEP (S)        execute one instruction
OVER (O)        step over calls and skips
RUN (R)         run until breakpoint or CTRL-C
BREAK (B) addr  toggle a breakpoint
LIST (L)        list breakpoints
SPEED rate      set rate in instructions per second (0 = full speed)
RESET           reset processor and peripherals
REGS            show processor registers
PERIPHERALS (P) show wired peripheral state
SEND text       send text to the firmware serial input
SERIAL          show the captured serial transcript
LOG             show recent log entries
QUIT (Q)        leave the debugger`
