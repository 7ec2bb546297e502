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

package memory

import (
	"fmt"

	"github.com/inductive-bias/atari8core/hardware/memory/bus"
)

// numPages is the number of 256-byte pages in a 64K address space.
const numPages = 256

// Space is a 64K address space: a 256-entry table of 256-byte pages. The
// machine owns two Space values, one addressed by the CPU and one by
// ANTIC; on most machine variants they are built from the same underlying
// pages (so writes made via one are visible via the other), but a variant
// is free to give ANTIC a narrower or differently-banked view.
type Space struct {
	pages [numPages]Page
}

// NewSpace returns an empty address space. Every page is unmapped until
// MapPage is called; reading or writing an unmapped page returns
// bus.ErrUnmappedAddress.
func NewSpace() *Space {
	return &Space{}
}

// MapPage installs page at addr, which must be 256-byte aligned.
func (s *Space) MapPage(addr uint16, page Page) error {
	if addr&0x00ff != 0 {
		return fmt.Errorf("memory: address %#04x is not 256-byte aligned", addr)
	}
	s.pages[addr>>8] = page
	return nil
}

// Read implements bus.CPUBus.
func (s *Space) Read(addr uint16) (uint8, error) {
	p := s.pages[addr>>8]
	if p == nil {
		return 0, bus.ErrUnmappedAddress
	}
	return p.ReadByte(uint8(addr))
}

// Write implements bus.CPUBus.
func (s *Space) Write(addr uint16, value uint8) error {
	p := s.pages[addr>>8]
	if p == nil {
		return bus.ErrUnmappedAddress
	}
	return p.WriteByte(uint8(addr), value)
}

// ReadAntic implements bus.AnticBus. ANTIC fetches are ordinary page reads;
// the distinction from Read exists so a machine variant can wire ANTIC to
// a different Space without touching the CPU's.
func (s *Space) ReadAntic(addr uint16) (uint8, error) {
	return s.Read(addr)
}

// Peek implements bus.DebuggerBus: a read with no side effects. For RAM and
// ROM pages this is identical to Read; for IO pages it returns zero rather
// than invoking the handler, since IO reads are never side-effect free.
func (s *Space) Peek(addr uint16) (uint8, error) {
	p := s.pages[addr>>8]
	if p == nil {
		return 0, bus.ErrUnmappedAddress
	}
	if b := p.Bytes(); b != nil {
		return b[uint8(addr)], nil
	}
	return 0, nil
}

// Poke implements bus.DebuggerBus: a write with no side effects, bypassing
// ROM protection. Used by the debugger and by snapshot restore. On IO pages
// the value is dropped rather than passed to the handler, since IO writes
// are never side-effect free.
func (s *Space) Poke(addr uint16, value uint8) error {
	p := s.pages[addr>>8]
	if p == nil {
		return bus.ErrUnmappedAddress
	}
	if b := p.Bytes(); b != nil {
		b[uint8(addr)] = value
		return nil
	}
	return nil
}

// PatchByte implements bus.PatchBus.
func (s *Space) PatchByte(addr uint16, value uint8) error {
	p := s.pages[addr>>8]
	if p == nil {
		return bus.ErrUnmappedAddress
	}
	return p.PatchByte(uint8(addr), value)
}

// ReadWord reads a little-endian 16-bit value at addr and addr+1. There is
// no atomicity guarantee and the two bytes may fall in different pages
// (including two different IO pages).
func (s *Space) ReadWord(addr uint16) (uint16, error) {
	lo, err := s.Read(addr)
	if err != nil {
		return 0, err
	}
	hi, err := s.Read(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// IsIOSpace reports whether addr falls on a page with IO side effects.
func (s *Space) IsIOSpace(addr uint16) bool {
	p := s.pages[addr>>8]
	return p != nil && p.Kind() == KindIO
}

// ZeroPage returns a direct byte-slice view into page 0. Page 0 must be a
// RAM page; this panics otherwise, since the CPU's fast paths depend on it
// being a cheap slice, not a fallible bus call.
func (s *Space) ZeroPage() []byte {
	return s.ramPageBytes(0x00, "zero page")
}

// StackPage returns a direct byte-slice view into page 1. Page 1 must be a
// RAM page.
func (s *Space) StackPage() []byte {
	return s.ramPageBytes(0x01, "stack page")
}

func (s *Space) ramPageBytes(page uint8, name string) []byte {
	p := s.pages[page]
	if p == nil || p.Kind() != KindRAM {
		panic(fmt.Sprintf("memory: %s is not mapped as RAM", name))
	}
	return p.Bytes()
}
