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

package cpu

import (
	"github.com/inductive-bias/atari8core/hardware/cpu/registers"
	"github.com/inductive-bias/atari8core/hardware/dma"
	"github.com/inductive-bias/atari8core/hardware/memory/addresses"
	"github.com/inductive-bias/atari8core/hardware/memory/bus"
	"github.com/inductive-bias/atari8core/instance"
	"github.com/inductive-bias/atari8core/logger"
)

// Variant selects which of the two micro-step dispatch tables a CPU uses.
// The 400/800 use the NMOS 6502; the XL/XE range uses a 65C02, which fixes
// the indirect-JMP page-wrap bug, sets Z and N from the BCD result of a
// decimal ADC/SBC (at the cost of one extra cycle), and adds the Rockwell
// bit instructions, STZ/TRB/TSB, and WAI.
type Variant int

const (
	NMOS Variant = iota
	CMOS65C02
)

// MaxBreakpoints and MaxWatchpoints bound the small fixed-size arrays the
// spec calls for, rather than unbounded slices, so that toggling one is an
// O(1) array write and iterating them at every instruction boundary stays
// cheap.
const (
	MaxBreakpoints = 16
	MaxWatchpoints = 16
)

// Breakpoint is a PC match, checked at every instruction boundary.
type Breakpoint struct {
	PC      uint16
	Enabled bool
}

// Watchpoint is an address match, optionally read-sensitive (Read true
// means the watchpoint fires on a read as well as a write; otherwise it
// fires only on writes).
type Watchpoint struct {
	Addr    uint16
	Enabled bool
	Read    bool
}

// Monitor receives notifications the CPU raises at points where the real
// hardware would hand control to a debugger. None of the calls pause
// execution - DecodeWatch (see spec taxonomy) is a cooperative, resumable
// signal, and in a headless core "resumable" simply means execution
// carries on; the notification exists so a host-side debugger can record
// what happened.
type Monitor interface {
	OnBreak(pc uint16)
	OnWatch(addr uint16, write bool)
	OnJam(opcode uint8)
	OnCrash(opcode uint8)
}

// CPU is a cycle-driven 6502/65C02. Registers are exported so that a
// monitor, a snapshot routine, or a patch provider can read and write them
// directly between instructions; mid-instruction access is the caller's
// responsibility to avoid.
type CPU struct {
	instance *instance.Instance
	variant  Variant

	A      registers.Register
	X      registers.Register
	Y      registers.Register
	SP     registers.StackPointer
	PC     registers.ProgramCounter
	Status registers.Status

	mem     bus.CPUBus
	alloc   *dma.Allocator
	Monitor Monitor
	patches patchDispatcher

	// queue holds the remaining micro-steps of the instruction currently
	// executing; empty exactly at an instruction boundary.
	queue []Step

	// cycle-scratch state shared across an instruction's micro-steps.
	ea         uint16
	tmp        uint8
	tmp2       uint8
	pageCrossed bool
	lastOpcode uint8

	// cyclePos is the current colour-clock slot within the scan line - the
	// index the CPU checks against the shared DMA allocator.
	cyclePos int

	// interrupt latches.
	nmiPending bool
	irqLine    bool

	// iSync forces the CPU to stop at the next instruction boundary.
	iSync bool

	// halted is true while executing 65C02 WAI; cleared by any interrupt.
	halted bool

	jammed  bool
	crashed bool

	breakpoints  [MaxBreakpoints]Breakpoint
	watchpoints  [MaxWatchpoints]Watchpoint
	watchEnabled bool

	// profiling counters, enabled separately from the always-on breakpoint
	// checks so the fast path stays cheap when nobody asked for them.
	profiling        bool
	pcCounts         [65536]uint64
	subroutineCounts map[uint16]uint64
	callStack        []uint16
}

// NewCPU returns a CPU wired to mem for memory access and alloc for DMA
// slot arbitration. It starts in a random (or zeroed) power-on state; call
// ColdStart to load the reset vector.
func NewCPU(inst *instance.Instance, mem bus.CPUBus, alloc *dma.Allocator, variant Variant) *CPU {
	c := &CPU{
		instance: inst,
		variant:  variant,
		mem:      mem,
		alloc:    alloc,
	}
	c.ColdStart()
	return c
}

// Variant reports which dispatch table this CPU uses.
func (c *CPU) Variant() Variant { return c.variant }

// ColdStart fully resets the CPU, including possibly-randomised registers,
// and loads PC from the reset vector.
func (c *CPU) ColdStart() {
	if c.instance != nil && c.instance.Prefs.RandomState {
		c.A.Load(uint8(c.instance.Random.NoRewind(0xff)))
		c.X.Load(uint8(c.instance.Random.NoRewind(0xff)))
		c.Y.Load(uint8(c.instance.Random.NoRewind(0xff)))
		c.SP.Load(uint8(c.instance.Random.NoRewind(0xff)))
		c.Status.Load(uint8(c.instance.Random.NoRewind(0xff)))
	} else {
		c.A.Load(0)
		c.X.Load(0)
		c.Y.Load(0)
		c.SP.Load(0xfd)
		c.Status = registers.NewStatus()
	}
	c.Status.InterruptDisable = true
	c.queue = nil
	c.nmiPending = false
	c.irqLine = false
	c.iSync = false
	c.halted = false
	c.jammed = false
	c.crashed = false
	c.cyclePos = 0
	c.callStack = c.callStack[:0]

	if lo, err := c.mem.Read(addresses.Reset); err == nil {
		if hi, err2 := c.mem.Read(addresses.Reset + 1); err2 == nil {
			c.PC.Load(uint16(hi)<<8 | uint16(lo))
		}
	}
}

// WarmStart resets registers only, preserving wiring (breakpoints,
// watchpoints, profiling state, the Monitor). It does not re-seed A/X/Y/SP
// from randomisation, matching real RESET behaviour: the registers keep
// whatever they held, only PC is reloaded from the reset vector and
// interrupts are re-masked.
func (c *CPU) WarmStart() {
	c.Status.InterruptDisable = true
	c.queue = nil
	c.nmiPending = false
	c.iSync = false
	c.halted = false
	c.jammed = false
	c.cyclePos = 0

	if lo, err := c.mem.Read(addresses.Reset); err == nil {
		if hi, err2 := c.mem.Read(addresses.Reset + 1); err2 == nil {
			c.PC.Load(uint16(hi)<<8 | uint16(lo))
		}
	}
}

// AtInstructionBoundary reports whether the CPU is between instructions -
// the only point at which PC, breakpoints, and interrupts may safely be
// inspected or altered from outside.
func (c *CPU) AtInstructionBoundary() bool {
	return len(c.queue) == 0
}

// Go advances the CPU by at most n cycles. Cycles whose slot is stolen in
// the shared DMA allocator are idled rather than consumed; once ISync is
// set and the CPU reaches an instruction boundary, Go stops early even if
// cycles remain in the budget.
func (c *CPU) Go(n int) error {
	for i := 0; i < n; i++ {
		if c.iSync && c.AtInstructionBoundary() {
			return nil
		}
		if c.alloc.IsBusy(c.cyclePos) {
			c.cyclePos++
			continue
		}
		if err := c.step(); err != nil {
			return err
		}
		c.cyclePos++
	}
	return nil
}

// Sync runs the CPU until the next instruction boundary. It is idempotent:
// calling it again while already at a boundary returns immediately without
// consuming a cycle or touching the DMA allocator.
func (c *CPU) Sync() error {
	for !c.AtInstructionBoundary() {
		if err := c.step(); err != nil {
			return err
		}
	}
	return nil
}

// CurrentXPos returns the CPU's current colour-clock position within the
// scan line, for ANTIC to compare against its own fetch schedule.
func (c *CPU) CurrentXPos() int { return c.cyclePos }

// Halt forces the CPU to the frozen (WAI) state, as though it had just
// executed WAI; used by the host to pause a runaway emulation.
func (c *CPU) Halt() { c.halted = true }

// Hbi is called once per scan line: it advances the CPU's own notion of
// line position back to zero and resets the shared DMA allocator.
func (c *CPU) Hbi() {
	c.cyclePos = 0
	c.alloc.Hbi()
}

// WsyncStop is called when the CPU writes ANTIC's WSYNC register; it
// blocks the remainder of the current scan line in the shared allocator,
// which is what actually prevents further CPU cycles from running this
// line. A second write before the release point is a no-op in terms of
// user-visible effect, since WsyncStop always blocks forward from the
// current position - two close writes simply recompute the same window.
func (c *CPU) WsyncStop(release int) {
	c.alloc.WsyncStop(c.cyclePos, release)
}

// StealCycles lets ANTIC reserve DMA cycles ahead of the CPU.
func (c *CPU) StealCycles(req dma.Request) { c.alloc.Steal(req) }

// StealMemCycles lets ANTIC reserve the elastic memory-refresh cycles.
func (c *CPU) StealMemCycles(req dma.Request) { c.alloc.StealMem(req) }

// GenerateNMI raises the NMI edge latch; it is serviced at the next
// instruction boundary, never mid-instruction.
func (c *CPU) GenerateNMI() {
	c.nmiPending = true
	c.halted = false
}

// SetIRQLine sets the level of the single OR'd IRQ line POKEY and PIA
// assert onto. IRQ is serviced at the next instruction boundary only if
// the interrupt-disable flag is clear at that time.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
	if asserted {
		c.halted = false
	}
}

// SetISync arms (or disarms) the cooperative stop-at-next-boundary signal.
func (c *CPU) SetISync(v bool) { c.iSync = v }

// Jammed reports whether the CPU hit a JAM opcode and is halted pending a
// reset.
func (c *CPU) Jammed() bool { return c.jammed }

// Crashed reports whether the CPU hit one of the six explicitly unstable
// opcodes the spec declines to emulate (0x2B, 0x8B, 0x93, 0x9B, 0x9F,
// 0xBB).
func (c *CPU) Crashed() bool { return c.crashed }

// SetBreakpoint installs (or, with enabled false, clears) a breakpoint in
// slot idx. idx must be in [0, MaxBreakpoints).
func (c *CPU) SetBreakpoint(idx int, pc uint16, enabled bool) {
	c.breakpoints[idx] = Breakpoint{PC: pc, Enabled: enabled}
}

// SetWatchpoint installs (or clears) a watchpoint in slot idx. The change
// takes effect immediately, on the very next bus access, even when the CPU
// is in the middle of an instruction; it is not deferred to the next
// instruction boundary.
func (c *CPU) SetWatchpoint(idx int, addr uint16, enabled bool, onRead bool) {
	c.watchpoints[idx] = Watchpoint{Addr: addr, Enabled: enabled, Read: onRead}
	c.recomputeWatchEnabled()
}

func (c *CPU) recomputeWatchEnabled() {
	for _, w := range c.watchpoints {
		if w.Enabled {
			c.watchEnabled = true
			return
		}
	}
	c.watchEnabled = false
}

// EnableProfiling turns per-PC execution counting and the per-subroutine
// cumulative counter on or off.
func (c *CPU) EnableProfiling(enabled bool) {
	c.profiling = enabled
	if enabled && c.subroutineCounts == nil {
		c.subroutineCounts = make(map[uint16]uint64)
	}
}

// PCCount returns the number of times pc has been the address of an
// executed opcode fetch, when profiling is enabled.
func (c *CPU) PCCount(pc uint16) uint64 { return c.pcCounts[pc] }

// SubroutineCount returns the cumulative number of instruction boundaries
// reached while pc was somewhere on the active call stack.
func (c *CPU) SubroutineCount(pc uint16) uint64 { return c.subroutineCounts[pc] }

// read performs a single CPU bus read, checking read-sensitive
// watchpoints first when any are enabled.
func (c *CPU) read(addr uint16) (uint8, error) {
	if c.watchEnabled {
		c.checkWatch(addr, false)
	}
	v, err := c.mem.Read(addr)
	if err != nil {
		logger.Logf("cpu", "bus error reading %#04x: %v", addr, err)
		return 0xff, nil
	}
	return v, nil
}

// write performs a single CPU bus write, checking watchpoints first.
func (c *CPU) write(addr uint16, v uint8) error {
	if c.watchEnabled {
		c.checkWatch(addr, true)
	}
	if err := c.mem.Write(addr, v); err != nil {
		logger.Logf("cpu", "bus error writing %#04x: %v", addr, err)
	}
	return nil
}

func (c *CPU) checkWatch(addr uint16, write bool) {
	for _, w := range c.watchpoints {
		if !w.Enabled || w.Addr != addr {
			continue
		}
		if write || w.Read {
			if c.Monitor != nil {
				c.Monitor.OnWatch(addr, write)
			}
		}
	}
}

func (c *CPU) checkBreakpoint() {
	pc := c.PC.Value()
	for _, b := range c.breakpoints {
		if b.Enabled && b.PC == pc {
			if c.Monitor != nil {
				c.Monitor.OnBreak(pc)
			}
			return
		}
	}
}

// StatusValue and SetStatusValue let the patch dispatch framework (and
// snapshot code) treat the status register as a plain byte.
func (c *CPU) StatusValue() uint8     { return c.Status.Value() }
func (c *CPU) SetStatusValue(v uint8) { c.Status.Load(v) }

// patchRegistersView adapts the CPU's exported register fields (A, X, Y,
// PC - named for direct snapshot/debugger access) to the method-based
// patch.Registers contract, which can't reuse those names since they
// collide with the fields themselves.
type patchRegistersView struct{ c *CPU }

func (p patchRegistersView) A() uint8          { return p.c.A.Value() }
func (p patchRegistersView) SetA(v uint8)      { p.c.A.Load(v) }
func (p patchRegistersView) X() uint8          { return p.c.X.Value() }
func (p patchRegistersView) SetX(v uint8)      { p.c.X.Load(v) }
func (p patchRegistersView) Y() uint8          { return p.c.Y.Value() }
func (p patchRegistersView) SetY(v uint8)      { p.c.Y.Load(v) }
func (p patchRegistersView) PC() uint16        { return p.c.PC.Value() }
func (p patchRegistersView) SetPC(v uint16)    { p.c.PC.Load(v) }
func (p patchRegistersView) StatusValue() uint8 { return p.c.Status.Value() }
func (p patchRegistersView) SetStatusValue(v uint8) { p.c.Status.Load(v) }

// PatchView returns the narrow patch.Registers view of this CPU's state,
// used to hand registers to a dispatched escape-code patch.
func (c *CPU) PatchView() patchRegistersView { return patchRegistersView{c: c} }

// BusView returns the narrow patch.Memory view of this CPU's bus, used to
// hand memory access to a dispatched escape-code patch.
func (c *CPU) BusView() bus.CPUBus { return c.mem }

// flagsFor returns the zero/negative flag pair implied by v, the
// invariant every ALU step re-establishes before returning.
func flagsFor(v uint8) (zero, negative bool) {
	return v == 0, v&0x80 != 0
}
