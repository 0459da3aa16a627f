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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/sparkbench/sparkbench/debugger"
	"github.com/sparkbench/sparkbench/debugger/govern"
	"github.com/sparkbench/sparkbench/gui"
	"github.com/sparkbench/sparkbench/hardware"
	"github.com/sparkbench/sparkbench/hardware/mcu"
	_ "github.com/sparkbench/sparkbench/hardware/mcu/mcutest"
	"github.com/sparkbench/sparkbench/hardware/peripherals/i2c"
	"github.com/sparkbench/sparkbench/logger"
	"github.com/sparkbench/sparkbench/modalflag"
	"github.com/sparkbench/sparkbench/performance"
	"github.com/sparkbench/sparkbench/scenario"
	"github.com/sparkbench/sparkbench/schematic"
	"github.com/sparkbench/sparkbench/statsview"
	"github.com/sparkbench/sparkbench/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "DEBUG", "SCENARIO", "PERFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "DEBUG":
		err = debug(md)
	case "SCENARIO":
		err = scenarios(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md, err)
		os.Exit(20)
	}
}

// newBench assembles a bench from the common mode arguments. The
// returned core has the program loaded if one was specified.
func newBench(coreName string, sheetFile string, programFile string) (*hardware.Bench, error) {
	factory, err := mcu.Lookup(coreName)
	if err != nil {
		return nil, err
	}
	core := factory()

	var sheet *schematic.Sheet
	if sheetFile != "" {
		f, err := os.Open(sheetFile)
		if err != nil {
			return nil, err
		}
		sheet, err = schematic.Load(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	bench, err := hardware.NewBench(core, sheet)
	if err != nil {
		return nil, err
	}

	if programFile != "" {
		loader, ok := core.(mcu.ProgramLoader)
		if !ok {
			bench.End()
			return nil, fmt.Errorf("core %s does not support program loading", coreName)
		}
		data, err := os.ReadFile(programFile)
		if err != nil {
			bench.End()
			return nil, err
		}
		if err := loader.LoadProgram(data); err != nil {
			bench.End()
			return nil, err
		}
	}

	return bench, nil
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	coreName := md.AddString("core", "testbench", "processor core to simulate")
	program := md.AddString("program", "", "firmware image to load")
	display := md.AddBool("display", false, "open a window for display peripherals")
	scale := md.AddInt("scale", 4, "display window scaling")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run the statsview server [%s]", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("schematic file required for %s mode", md)
	}

	bench, err := newBench(*coreName, md.GetArg(0), *program)
	if err != nil {
		return err
	}
	defer bench.End()

	// quit is shared between the run loop, the interrupt handler and
	// the window servicing loop
	var quit atomic.Bool

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)
	go func() {
		<-intChan
		fmt.Println("\r")
		quit.Store(true)
	}()

	continueCheck := func() (govern.State, error) {
		if quit.Load() {
			return govern.Ending, nil
		}
		return govern.Running, nil
	}

	if !*display {
		return bench.Run(continueCheck)
	}

	var disp *i2c.Display
	for _, p := range bench.Harness.Peripherals() {
		if d, ok := p.(*i2c.Display); ok {
			disp = d
			break
		}
	}
	if disp == nil {
		return fmt.Errorf("no display peripheral in schematic")
	}

	viewer, err := gui.NewViewer(disp, *scale)
	if err != nil {
		return err
	}
	defer viewer.Destroy()

	// the bench runs in its own goroutine. SDL servicing stays on the
	// main goroutine
	runErr := make(chan error, 1)
	go func() {
		runErr <- bench.Run(continueCheck)
	}()

	tick := time.NewTicker(time.Second / 60)
	defer tick.Stop()

	for {
		select {
		case err := <-runErr:
			return err
		case <-tick.C:
			ok, err := viewer.Service()
			if err != nil {
				quit.Store(true)
				<-runErr
				return err
			}
			if !ok {
				quit.Store(true)
				return <-runErr
			}
		}
	}
}

func debug(md *modalflag.Modes) error {
	md.NewMode()

	coreName := md.AddString("core", "testbench", "processor core to simulate")
	program := md.AddString("program", "", "firmware image to load")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run the statsview server [%s]", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("schematic file required for %s mode", md)
	}

	bench, err := newBench(*coreName, md.GetArg(0), *program)
	if err != nil {
		return err
	}
	defer bench.End()

	dbg := debugger.NewDebugger(bench)
	defer dbg.Detach()

	cons, err := debugger.NewConsole(dbg)
	if err != nil {
		return err
	}

	return cons.Loop()
}

func scenarios(md *modalflag.Modes) error {
	md.NewMode()

	coreName := md.AddString("core", "testbench", "processor core to simulate")
	program := md.AddString("program", "", "firmware image to load")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if len(md.RemainingArgs()) < 2 {
		return fmt.Errorf("schematic file and at least one script required for %s mode", md)
	}

	sheetFile := md.GetArg(0)
	failed := 0

	// each script runs against a fresh bench. the scenario runner
	// tears its bench down on completion
	for _, script := range md.RemainingArgs()[1:] {
		sc, err := scenario.LoadScriptFile(script)
		if err != nil {
			return err
		}

		bench, err := newBench(*coreName, sheetFile, *program)
		if err != nil {
			return err
		}

		result, err := scenario.Run(bench, sc)
		fmt.Print(result.String())
		if err != nil {
			return err
		}
		if !result.Passed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	coreName := md.AddString("core", "testbench", "processor core to simulate")
	program := md.AddString("program", "", "firmware image to load")
	duration := md.AddString("duration", "5s", "length of measurement period")
	profile := md.AddString("profile", "none", "profile the measurement: CPU, MEM, ALL")
	paced := md.AddBool("paced", false, "pace the simulation against the wall clock")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run the statsview server [%s]", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	var sheetFile string
	if len(md.RemainingArgs()) > 0 {
		sheetFile = md.GetArg(0)
	}

	bench, err := newBench(*coreName, sheetFile, *program)
	if err != nil {
		return err
	}
	defer bench.End()

	return performance.Check(os.Stdout, prf, bench, *paced, *duration)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s (%s)\n", version.ApplicationName, ver)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
