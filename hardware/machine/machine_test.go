// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package machine_test

import (
	"os"
	"testing"

	"github.com/bradleyjkemp/memviz"
	"github.com/inductive-bias/atari8core/errors"
	"github.com/inductive-bias/atari8core/hardware/cpu"
	"github.com/inductive-bias/atari8core/hardware/machine"
	"github.com/inductive-bias/atari8core/hardware/memory/addresses"
	"github.com/inductive-bias/atari8core/test"
)

func newMachine() *machine.Machine {
	return machine.New(machine.Config{Variant: cpu.NMOS, PAL: false})
}

func TestNewWiresEveryChipOntoBothAddressSpaces(t *testing.T) {
	m := newMachine()
	test.ExpectInequality(t, m.CPU, nil)
	test.ExpectInequality(t, m.Antic, nil)
	test.ExpectInequality(t, m.GTIA, nil)
	test.ExpectInequality(t, m.POKEY, nil)
	test.ExpectInequality(t, m.PIA, nil)
	test.ExpectInequality(t, m.SIO, nil)

	_, err := m.AnticSpace.ReadAntic(addresses.ANTICBase)
	test.ExpectSuccess(t, err)
	_, err = m.CPUSpace.ReadAntic(addresses.GTIABase)
	test.ExpectSuccess(t, err)
}

func TestColdStartDoesNotPanic(t *testing.T) {
	m := newMachine()
	m.ColdStart()
}

func TestWarmStartDoesNotPanic(t *testing.T) {
	m := newMachine()
	m.ColdStart()
	m.WarmStart()
}

func TestRunFrameAdvancesAnticDisplayListCounter(t *testing.T) {
	m := newMachine()
	m.ColdStart()
	before := m.Antic.DisplayListCounter()
	m.RunFrame()
	after := m.Antic.DisplayListCounter()
	// unmapped display-list memory reads back as instruction 0x00 (a
	// one-line blank), so an unconfigured machine still walks its display
	// list counter forward by one byte per scan line of the visible region.
	test.ExpectInequality(t, before, after)
}

func TestRunStopsOnQuitSignalAndReportsIt(t *testing.T) {
	m := newMachine()
	m.ColdStart()
	frames := 0
	err := m.Run(func(mc *machine.Machine) machine.Signal {
		frames++
		if frames >= 2 {
			return machine.SignalQuit
		}
		return machine.SignalNone
	})
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, err.Error(), errors.AsyncQuit)
	test.ExpectEquality(t, frames, 2)
}

func TestRunStopsOnColdStartSignal(t *testing.T) {
	m := newMachine()
	m.ColdStart()
	err := m.Run(func(mc *machine.Machine) machine.Signal {
		return machine.SignalColdStart
	})
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, err.Error(), errors.AsyncColdStart)
}

func TestRefreshIntervalDiffersBetweenPALAndNTSC(t *testing.T) {
	pal := machine.New(machine.Config{Variant: cpu.NMOS, PAL: true})
	ntsc := machine.New(machine.Config{Variant: cpu.NMOS, PAL: false})
	test.ExpectInequality(t, pal.RefreshInterval(), ntsc.RefreshInterval())
}

// TestWiringGraphDumpsToGraphviz renders the chip wiring graph for visual
// inspection when debugging a new machine configuration, the same way a
// command template's parsed structure gets dumped during development.
func TestWiringGraphDumpsToGraphviz(t *testing.T) {
	m := newMachine()

	f, err := os.Create(t.TempDir() + "/machine.dot")
	test.ExpectSuccess(t, err)
	defer func() {
		err = f.Close()
		test.ExpectSuccess(t, err)
	}()
	memviz.Map(f, m)
}
