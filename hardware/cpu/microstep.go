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
	"github.com/inductive-bias/atari8core/hardware/memory/addresses"
	"github.com/inductive-bias/atari8core/hardware/patch"
)

// Step is one cycle's worth of work. It returns the Step to run on the
// following cycle, or nil once the instruction is finished - at which
// point the queue is empty again and the CPU is back at an instruction
// boundary. This closure-based queue is this codebase's stand-in for the
// tagged-variant micro-op representation: Go has no sum types, and a
// function value closing over the in-flight instruction's scratch state
// serves the same purpose with less machinery than a hand-rolled enum of
// continuations.
//
// step() below is the only caller; Step values are never compared or
// inspected, only invoked.
type Step func(c *CPU) (Step, error)

// patchDispatcher is the narrow view of *patch.Table the CPU needs.
type patchDispatcher interface {
	Dispatch(code uint8, regs patch.Registers, mem patch.Memory) error
}

// SetPatchTable wires the escape-opcode dispatch table this CPU consults
// on every 0x22 byte fetch. A nil table (the default) means 0x22 is
// treated as an ordinary JAM opcode.
func (c *CPU) SetPatchTable(t patchDispatcher) { c.patches = t }

// step runs exactly one cycle: either the next queued micro-step, or, if
// the queue is empty, the instruction-boundary sequence (sync check,
// breakpoint, interrupt servicing, opcode fetch).
func (c *CPU) step() error {
	if len(c.queue) == 0 {
		return c.atBoundary()
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	nextStep, err := next(c)
	if err != nil {
		return err
	}
	if nextStep != nil {
		c.queue = append([]Step{nextStep}, c.queue...)
	}
	return nil
}

// atBoundary runs when the micro-step queue is empty: the CPU is between
// instructions. Priority order follows the spec: a halted (WAI) CPU only
// checks for a wakeup; otherwise breakpoints are reported, then NMI, then
// IRQ (if unmasked), and only once none apply does the next opcode fetch
// happen.
func (c *CPU) atBoundary() error {
	if c.halted {
		if c.nmiPending || c.irqLine {
			c.halted = false
		} else {
			return nil
		}
	}

	c.checkBreakpoint()

	if c.nmiPending {
		c.nmiPending = false
		return c.serviceInterrupt(addresses.NMI, false)
	}
	if c.irqLine && !c.Status.InterruptDisable {
		return c.serviceInterrupt(addresses.IRQ, false)
	}

	return c.fetch()
}

// fetch reads the opcode at PC, advances PC past it, records profiling
// counters, and builds the micro-step queue for the rest of the
// instruction. The fetch itself is charged to the current cycle; every
// step the queue then contains consumes one more.
func (c *CPU) fetch() error {
	pc := c.PC.Value()
	opcode, err := c.read(pc)
	if err != nil {
		return err
	}
	c.PC.Increment()
	c.lastOpcode = opcode

	if c.profiling {
		c.pcCounts[pc]++
		for _, s := range c.callStack {
			c.subroutineCounts[s]++
		}
	}

	if opcode == patchEscapeOpcode && c.patches != nil {
		return c.buildESC()
	}

	var def opcodeDef
	if c.variant == CMOS65C02 {
		def = opcodeTable65C02[opcode]
	} else {
		def = opcodeTableNMOS[opcode]
	}

	c.queue = c.buildInstruction(def)
	return nil
}

const patchEscapeOpcode = 0x22

// buildESC reads the one-byte escape code following the 0x22 marker and
// dispatches it through the installed patch table. The dispatched patch
// runs synchronously, in the single cycle the escape sequence occupies;
// real ROM patches are short host routines, not further 6502 code, so no
// further micro-steps are queued. Once the patch returns, the CPU resumes
// as an RTS would: the return address is pulled from the stack and PC is
// set one past it.
func (c *CPU) buildESC() error {
	code, err := c.read(c.PC.Value())
	if err != nil {
		return err
	}
	c.PC.Increment()
	if err := c.patches.Dispatch(code, c.PatchView(), c.BusView()); err != nil {
		return err
	}
	lo := c.pull()
	hi := c.pull()
	c.PC.Load(uint16(hi)<<8 | uint16(lo))
	c.PC.Increment()
	return nil
}

// serviceInterrupt pushes PC and status and loads PC from vector. brk is
// true only when this is a software BRK; it sets the B flag in the pushed
// status and, on NMOS only, is subject to the interrupt-hijack quirk
// where a simultaneous NMI steals the vector fetch.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) error {
	hi := uint8(c.PC.Value() >> 8)
	lo := uint8(c.PC.Value())
	c.push(hi)
	c.push(lo)

	status := c.Status.Value()
	if brk {
		status |= 0x10
	} else {
		status &^= 0x10
	}
	c.push(status)
	c.Status.InterruptDisable = true

	effectiveVector := vector
	if c.variant == NMOS && brk && c.nmiPending {
		effectiveVector = addresses.NMI
		c.nmiPending = false
	}

	lov, err := c.read(effectiveVector)
	if err != nil {
		return err
	}
	hiv, err := c.read(effectiveVector + 1)
	if err != nil {
		return err
	}
	c.PC.Load(uint16(hiv)<<8 | uint16(lov))
	return nil
}

func (c *CPU) push(v uint8) {
	c.write(c.SP.Address(), v)
	c.SP.Push()
}

func (c *CPU) pull() uint8 {
	c.SP.Pull()
	v, _ := c.read(c.SP.Address())
	return v
}

// buildInstruction returns the queue of micro-steps following the opcode
// fetch for def: first the steps that resolve the effective address (or
// none, for Implied/Accumulator/Immediate), then the operation itself.
// Every returned Step consumes exactly one cycle, matching the documented
// total cycle count for the opcode (base count plus, for the modes that
// have one, a page-cross or branch-taken penalty computed once the
// address is known).
func (c *CPU) buildInstruction(def opcodeDef) []Step {
	var steps []Step

	switch def.mode {
	case modeImplied, modeAccumulator:
		// no operand cycles
	case modeImmediate:
		steps = append(steps, func(c *CPU) (Step, error) {
			c.ea = c.PC.Value()
			c.PC.Increment()
			return nil, nil
		})
	case modeZeroPage:
		steps = append(steps, c.stepFetchZP())
	case modeZeroPageX:
		steps = append(steps, c.stepFetchZP(), c.stepIndexZP(func(c *CPU) uint8 { return c.X.Value() }))
	case modeZeroPageY:
		steps = append(steps, c.stepFetchZP(), c.stepIndexZP(func(c *CPU) uint8 { return c.Y.Value() }))
	case modeAbsolute:
		steps = append(steps, c.stepFetchAbsLo(), c.stepFetchAbsHi(false, nil))
	case modeAbsoluteX:
		steps = append(steps, c.stepFetchAbsLo(), c.stepFetchAbsHi(true, func(c *CPU) uint8 { return c.X.Value() }))
	case modeAbsoluteY:
		steps = append(steps, c.stepFetchAbsLo(), c.stepFetchAbsHi(true, func(c *CPU) uint8 { return c.Y.Value() }))
	case modeIndirect:
		steps = append(steps, c.stepFetchAbsLo(), c.stepFetchAbsHi(false, nil), c.stepIndirectFinal(c.variant != NMOS), func(c *CPU) (Step, error) { return nil, nil })
	case modeIndirectZP:
		steps = append(steps, c.stepFetchZP(), c.stepIndirectFromZP())
	case modeIndirectX:
		steps = append(steps, c.stepFetchZP(), c.stepIndexZP(func(c *CPU) uint8 { return c.X.Value() }), c.stepIndirectFromZP(), func(c *CPU) (Step, error) { return nil, nil })
	case modeIndirectY:
		steps = append(steps, c.stepFetchZPIndirectBase(), c.stepIndirectYFinal())
	case modeRelative:
		steps = append(steps, c.stepFetchRelTarget())
	}

	// Read-modify-write instructions cost two extra cycles beyond the
	// operand read: one dummy write of the unmodified value, one write of
	// the result. Accumulator-mode RMW has no memory cycles at all.
	switch def.op {
	case opASL, opLSR, opROL, opROR, opINC, opDEC, opTRB, opTSB, opRMB, opSMB:
		if def.mode != modeAccumulator {
			steps = append(steps, c.stepRMWRead())
			steps = append(steps, c.stepRMWDummyWrite())
		}
	case opSLO, opRLA, opSRE, opRRA, opDCP, opISC:
		steps = append(steps, c.stepRMWRead())
		steps = append(steps, c.stepRMWDummyWrite())
	case opBBR, opBBS:
		// zp,relative: the bit test reads the zero-page operand, then a
		// further byte supplies the branch displacement.
		steps = append(steps, c.stepRMWRead(), c.stepFetchRelTarget())
	}

	steps = append(steps, c.stepExecute(def))
	return steps
}

func (c *CPU) stepFetchZP() Step {
	return func(c *CPU) (Step, error) {
		v, err := c.read(c.PC.Value())
		if err != nil {
			return nil, err
		}
		c.PC.Increment()
		c.ea = uint16(v)
		return nil, nil
	}
}

func (c *CPU) stepIndexZP(idx func(*CPU) uint8) Step {
	return func(c *CPU) (Step, error) {
		c.ea = uint16(uint8(c.ea) + idx(c))
		return nil, nil
	}
}

func (c *CPU) stepFetchAbsLo() Step {
	return func(c *CPU) (Step, error) {
		v, err := c.read(c.PC.Value())
		if err != nil {
			return nil, err
		}
		c.PC.Increment()
		c.tmp = v
		return nil, nil
	}
}

// stepFetchAbsHi completes the absolute address and, if indexed, adds idx
// to it. When the index carries into the high byte it returns one extra
// idle Step itself, so every indexed absolute access that crosses a page
// pays that cycle here, reads, writes and RMW alike; the execute step adds
// nothing further.
func (c *CPU) stepFetchAbsHi(indexed bool, idx func(*CPU) uint8) Step {
	return func(c *CPU) (Step, error) {
		hi, err := c.read(c.PC.Value())
		if err != nil {
			return nil, err
		}
		c.PC.Increment()
		base := uint16(hi)<<8 | uint16(c.tmp)
		if indexed {
			eff := base + uint16(idx(c))
			c.pageCrossed = eff&0xff00 != base&0xff00
			c.ea = eff
			if c.pageCrossed {
				return func(c *CPU) (Step, error) { return nil, nil }, nil
			}
		} else {
			c.ea = base
		}
		return nil, nil
	}
}

func (c *CPU) stepIndirectFinal(fixed bool) Step {
	return func(c *CPU) (Step, error) {
		lo, err := c.read(c.ea)
		if err != nil {
			return nil, err
		}
		var hiAddr uint16
		if fixed {
			hiAddr = c.ea + 1
		} else {
			// NMOS bug: high byte fetch does not cross the page boundary.
			hiAddr = uint16(uint8(c.ea)+1) | (c.ea & 0xff00)
		}
		hi, err := c.read(hiAddr)
		if err != nil {
			return nil, err
		}
		c.ea = uint16(hi)<<8 | uint16(lo)
		return nil, nil
	}
}

func (c *CPU) stepIndirectFromZP() Step {
	return func(c *CPU) (Step, error) {
		lo, err := c.read(uint16(uint8(c.ea)))
		if err != nil {
			return nil, err
		}
		hi, err := c.read(uint16(uint8(c.ea + 1)))
		if err != nil {
			return nil, err
		}
		c.ea = uint16(hi)<<8 | uint16(lo)
		return nil, nil
	}
}

func (c *CPU) stepFetchZPIndirectBase() Step {
	return func(c *CPU) (Step, error) {
		zp, err := c.read(c.PC.Value())
		if err != nil {
			return nil, err
		}
		c.PC.Increment()
		lo, err := c.read(uint16(zp))
		if err != nil {
			return nil, err
		}
		hi, err := c.read(uint16(uint8(zp + 1)))
		if err != nil {
			return nil, err
		}
		c.tmp2 = lo
		c.tmp = hi
		return nil, nil
	}
}

func (c *CPU) stepIndirectYFinal() Step {
	return func(c *CPU) (Step, error) {
		base := uint16(c.tmp)<<8 | uint16(c.tmp2)
		eff := base + uint16(c.Y.Value())
		c.pageCrossed = eff&0xff00 != base&0xff00
		c.ea = eff
		if c.pageCrossed {
			return func(c *CPU) (Step, error) { return nil, nil }, nil
		}
		return nil, nil
	}
}

func (c *CPU) stepFetchRelTarget() Step {
	return func(c *CPU) (Step, error) {
		offs, err := c.read(c.PC.Value())
		if err != nil {
			return nil, err
		}
		c.PC.Increment()
		c.ea = uint16(int32(c.PC.Value()) + int32(int8(offs)))
		return nil, nil
	}
}

func (c *CPU) stepRMWRead() Step {
	return func(c *CPU) (Step, error) {
		v, err := c.read(c.ea)
		if err != nil {
			return nil, err
		}
		c.tmp = v
		return nil, nil
	}
}

func (c *CPU) stepRMWDummyWrite() Step {
	return func(c *CPU) (Step, error) {
		c.write(c.ea, c.tmp)
		return nil, nil
	}
}
