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

// Package machine assembles the CPU, ANTIC, GTIA, POKEY and PIA chips onto
// a shared address space and runs the cooperative frame-loop scheduler
// described in spec.md §4.6. Everything below this package is a pure
// component; this is the one place that wires them together into something
// that can actually run.
package machine

import (
	"time"

	"github.com/inductive-bias/atari8core/errors"
	"github.com/inductive-bias/atari8core/hardware/antic"
	"github.com/inductive-bias/atari8core/hardware/clocks"
	"github.com/inductive-bias/atari8core/hardware/cpu"
	"github.com/inductive-bias/atari8core/hardware/dma"
	"github.com/inductive-bias/atari8core/hardware/gtia"
	"github.com/inductive-bias/atari8core/hardware/memory"
	"github.com/inductive-bias/atari8core/hardware/memory/addresses"
	"github.com/inductive-bias/atari8core/hardware/patch"
	"github.com/inductive-bias/atari8core/hardware/pia"
	"github.com/inductive-bias/atari8core/hardware/pokey"
	"github.com/inductive-bias/atari8core/hardware/sio"
	"github.com/inductive-bias/atari8core/instance"
	"github.com/inductive-bias/atari8core/random"
)

// lateCoords breaks the construction cycle between Instance (which needs a
// random.CoordsSource up front) and ANTIC (which is the natural coordinate
// source but needs the CPU, which needs Instance, to exist first). chip is
// filled in once ANTIC has been built; every call to GetCoords happens
// well after that point, during cold start or later.
type lateCoords struct {
	chip interface{ GetCoords() random.Coords }
}

func (l *lateCoords) GetCoords() random.Coords {
	if l.chip == nil {
		return random.Coords{}
	}
	return l.chip.GetCoords()
}

// Machine owns one complete emulated computer: the CPU, its DMA slot
// allocator, ANTIC, GTIA, POKEY, PIA, the SIO bus those chips' patches may
// reach through, and the two address-space views (CPU and ANTIC) spec.md
// §3 calls out as the only two "shared" pieces of state in the system.
type Machine struct {
	Instance *instance.Instance

	CPUSpace   *memory.Space
	AnticSpace *memory.Space

	CPU   *cpu.CPU
	Antic *antic.Chip
	GTIA  *gtia.Chip
	POKEY *pokey.Chip
	PIA   *pia.Chip
	SIO   *sio.Bus

	Patches *patch.Table

	alloc *dma.Allocator
	pal   bool
}

// Config selects the handful of construction-time choices that distinguish
// one Atari model from another without changing any component's code: CPU
// variant (NMOS vs 65C02) and TV standard. The CPU and ANTIC always get two
// separate Space values, with the same chip register pages mapped into both.
type Config struct {
	Variant cpu.Variant
	PAL     bool
}

// New builds a Machine with every chip constructed, registered onto both
// address-space views at its documented hardware window, and wired to the
// others' narrow contracts. RAM and ROM pages, including the memory ANTIC
// and the CPU share, are left for the caller to map with MapPage on
// CPUSpace and AnticSpace (cartridge/OS ROM banking is a runtime concern spec.md explicitly leaves
// outside the core).
func New(cfg Config) *Machine {
	m := &Machine{pal: cfg.PAL}

	m.CPUSpace = memory.NewSpace()
	m.AnticSpace = memory.NewSpace()

	m.alloc = dma.NewAllocator()

	coords := &lateCoords{}
	m.Instance = instance.NewInstance(coords)
	m.CPU = cpu.NewCPU(m.Instance, m.CPUSpace, m.alloc, cfg.Variant)

	m.GTIA = gtia.NewChip()
	m.GTIA.PALFlag = cfg.PAL

	m.Antic = antic.NewChip(m.AnticSpace, m.CPU, m.alloc, m.GTIA)
	m.Antic.PAL = cfg.PAL
	coords.chip = m.Antic

	m.POKEY = pokey.NewChip(m.Instance.Random, m.CPU)
	m.PIA = pia.NewChip()
	m.SIO = sio.NewBus()

	m.Patches = patch.NewTable()
	m.CPU.SetPatchTable(m.Patches)

	m.mapChipPages()

	return m
}

// mapChipPages installs each chip's register window on both address-space
// views, at the hardware addresses addresses.go already names.
func (m *Machine) mapChipPages() {
	gtiaPage := memory.NewIOPage(m.GTIA)
	pokeyPage := memory.NewIOPage(m.POKEY)
	piaPage := memory.NewIOPage(m.PIA)
	anticPage := memory.NewIOPage(m.Antic)

	for _, space := range []*memory.Space{m.CPUSpace, m.AnticSpace} {
		space.MapPage(addresses.GTIABase, gtiaPage)
		space.MapPage(addresses.POKEYBase, pokeyPage)
		space.MapPage(addresses.PIABase, piaPage)
		space.MapPage(addresses.ANTICBase, anticPage)
	}
}

// ColdStart powers the machine on from scratch: every chip's ColdStart runs
// (rebuilding any cross-chip handles), then the CPU loads its reset vector.
func (m *Machine) ColdStart() {
	m.GTIA.ColdStart()
	m.POKEY.ColdStart()
	m.PIA.ColdStart()
	m.Antic.ColdStart()
	m.CPU.ColdStart()
}

// WarmStart resets every chip's registers while preserving wiring, the way
// a real RESET line pulse does.
func (m *Machine) WarmStart() {
	m.GTIA.WarmStart()
	m.POKEY.WarmStart()
	m.PIA.WarmStart()
	m.Antic.WarmStart()
	m.CPU.WarmStart()
}

// RunFrame produces exactly one frame by delegating to ANTIC, the DMA/NMI
// master; spec.md's frame loop calls this once per scheduler tick.
func (m *Machine) RunFrame() {
	m.Antic.RunDisplayList()
}

// RefreshInterval is the host wall-clock duration one frame should occupy,
// used by Run's scheduler to pace itself against PAL or NTSC timing.
func (m *Machine) RefreshInterval() time.Duration {
	return clocks.RefreshInterval(m.pal)
}

// Signal is a cooperative request to break out of Run's loop: a cold or
// warm reset, a request to show a host menu, or a request to quit
// entirely. The host's per-frame Hook returns one to interrupt the frame
// loop the way spec.md §4.6 describes ("a 'quit', 'cold', 'warm', or
// 'menu' signal breaks the loop"), and Run returns it as a curated error.
type Signal int

const (
	SignalNone Signal = iota
	SignalColdStart
	SignalWarmStart
	SignalMenu
	SignalQuit
)

// Hook is the host's per-frame callback: it may push the frame's pixels
// and audio, poll input, and return a Signal to interrupt the loop (most
// commonly SignalNone).
type Hook func(m *Machine) Signal

// MaxMissedFrames is the number of consecutive dropped frames (the host
// hook took longer than RefreshInterval) Run tolerates before re-basing its
// notion of "on time", rather than trying to catch up forever.
const MaxMissedFrames = 4

// Run implements the scheduler/frame loop of spec.md §4.6: it produces
// frames at the machine's refresh rate, calling hook once per frame, until
// hook returns a signal other than SignalNone, which Run then returns as a
// curated error for the caller to act on.
func (m *Machine) Run(hook Hook) error {
	deadline := time.Now().Add(m.RefreshInterval())
	missed := 0

	for {
		m.RunFrame()

		sig := hook(m)

		now := time.Now()
		if now.After(deadline) {
			missed++
			if missed >= MaxMissedFrames {
				deadline = now
				missed = 0
			}
		} else {
			missed = 0
			time.Sleep(deadline.Sub(now))
		}
		deadline = deadline.Add(m.RefreshInterval())

		switch sig {
		case SignalColdStart:
			return errors.Errorf(errors.AsyncColdStart)
		case SignalWarmStart:
			return errors.Errorf(errors.AsyncWarmStart)
		case SignalMenu:
			return errors.Errorf(errors.AsyncMenu)
		case SignalQuit:
			return errors.Errorf(errors.AsyncQuit)
		}
	}
}
