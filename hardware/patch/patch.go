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

// Package patch implements the escape-opcode dispatch table that lets host
// routines stand in for ROM code. A patch claims a contiguous range of the
// 256 available escape codes and writes the two-byte sequence [0x22, code]
// over the ROM bytes it wants to intercept; the CPU's ESCUnit micro-step
// reads that code back out of the instruction stream and calls Dispatch,
// which runs the matching Patch and then lets the CPU continue as though an
// RTS had been executed.
package patch

import "github.com/inductive-bias/atari8core/errors"

// EscapeOpcode is the single byte (0x22, a JAM on real silicon) that a ROM
// patch installs in place of the first byte of the code it replaces. The
// CPU decodes it as ESCUnit rather than as an illegal opcode.
const EscapeOpcode = uint8(0x22)

// Registers is the narrow view of CPU state a Patch is allowed to read and
// mutate. It is satisfied by the cpu package's CPU type.
type Registers interface {
	A() uint8
	SetA(uint8)
	X() uint8
	SetX(uint8)
	Y() uint8
	SetY(uint8)
	PC() uint16
	SetPC(uint16)
	StatusValue() uint8
	SetStatusValue(uint8)
}

// Memory is the narrow bus view a Patch uses to read and write the address
// space it was installed into.
type Memory interface {
	Read(addr uint16) (uint8, error)
	Write(addr uint16, value uint8) error
}

// Patch is one host routine reachable through the escape mechanism. Run is
// called with the escape code actually dispatched (useful when a Patch
// claims more than one code) plus the registers/memory it may inspect and
// mutate.
type Patch interface {
	// FirstCode and LastCode bound the (inclusive) range of escape codes
	// this patch answers to, as assigned by the Table at install time.
	FirstCode() uint8
	LastCode() uint8

	// Run executes the patch's behaviour for the given escape code.
	Run(code uint8, regs Registers, mem Memory) error
}

// entry records one installed patch's claimed range.
type entry struct {
	first, last uint8
	patch       Patch
}

// Table is the flat, 256-entry escape-code dispatch table described in
// DESIGN NOTES: one array slot per code, each either empty or pointing at
// the provider that claimed it. Providers install contiguous ranges in the
// order they ask for them; once the codes run out, Claim fails.
type Table struct {
	slots [256]*entry
	next  int
}

// NewTable returns an empty escape-code table with all 256 codes free.
func NewTable() *Table {
	return &Table{}
}

// Claim reserves the next n free codes (0..255 across all providers) for
// patch, returning the base code assigned. Codes are handed out in
// ascending order starting from whatever the previous Claim left off;
// there is no compaction, so once 256 codes are claimed no more patches can
// be installed in this table's lifetime.
func (t *Table) Claim(n int, p Patch) (base uint8, err error) {
	if n <= 0 {
		return 0, errors.Errorf(errors.PatchRangeExhausted, t.next)
	}
	if t.next+n > 256 {
		return 0, errors.Errorf(errors.PatchRangeExhausted, t.next)
	}
	base = uint8(t.next)
	e := &entry{first: base, last: base + uint8(n-1), patch: p}
	for c := int(e.first); c <= int(e.last); c++ {
		if t.slots[c] != nil {
			return 0, errors.Errorf(errors.PatchRangeOverlap, e.first, e.last)
		}
	}
	for c := int(e.first); c <= int(e.last); c++ {
		t.slots[c] = e
	}
	t.next += n
	return base, nil
}

// Dispatch runs the patch claiming code, if any. It is the function the
// CPU's ESCUnit micro-step calls once it has decoded the escape byte.
func (t *Table) Dispatch(code uint8, regs Registers, mem Memory) error {
	e := t.slots[code]
	if e == nil {
		return errors.Errorf(errors.PatchUnclaimed, code)
	}
	return e.patch.Run(code, regs, mem)
}

// IsInstalled reports whether any provider has claimed code.
func (t *Table) IsInstalled(code uint8) bool {
	return t.slots[code] != nil
}

// Install writes the two-byte escape sequence (EscapeOpcode, base+offset)
// into rom at addr, the standard way a Provider activates a claimed patch
// over the ROM code it replaces. offset must be within [0, last-first] of
// the patch most recently returned by Claim at base.
func Install(rom PatchBus, addr uint16, base uint8, offset uint8) error {
	if err := rom.PatchByte(addr, EscapeOpcode); err != nil {
		return err
	}
	return rom.PatchByte(addr+1, base+offset)
}

// PatchBus is the subset of the address space's write surface Install
// needs; satisfied by bus.PatchBus.
type PatchBus interface {
	PatchByte(addr uint16, value uint8) error
}
