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

// Package memory implements the 64K address space: a 256-entry table of
// 256-byte pages, each either RAM, ROM, or an I/O register window. The CPU
// and ANTIC address the same physical pages but through two distinct Space
// values, so that a machine variant can give ANTIC a different view of the
// world (a 1200XL-style bank-select scheme, for example) without the CPU
// seeing any difference.
package memory

import "github.com/inductive-bias/atari8core/hardware/memory/bus"

// PageKind identifies how a page responds to reads, writes and patches.
type PageKind int

const (
	// KindRAM pages are plain readable/writable storage with no side
	// effects.
	KindRAM PageKind = iota

	// KindROM pages are read-only from the CPU's perspective; Write fails,
	// but PatchByte succeeds (used to install ESC-dispatch bytes over ROM).
	KindROM

	// KindIO pages are register windows: every read or write may have a
	// side effect, dispatched by the IOPage implementation.
	KindIO
)

// Page is one 256-byte unit of the address space.
type Page interface {
	Kind() PageKind

	// ReadByte reads one byte at the page-relative offset (0..255).
	ReadByte(offset uint8) (uint8, error)

	// WriteByte writes one byte at the page-relative offset. ROM pages
	// return bus.ErrNotWritable.
	WriteByte(offset uint8, value uint8) error

	// PatchByte forces a byte into the page regardless of its kind's
	// normal write rules; a no-op (but not an error) on RAM, since RAM is
	// already writable through WriteByte.
	PatchByte(offset uint8, value uint8) error

	// Bytes returns a direct byte-slice view of the page for RAM and ROM
	// pages, used by the CPU's zero-page/stack-page fast paths. IO pages
	// return nil.
	Bytes() []byte
}

// ramPage is a page backed by a plain 256-byte array.
type ramPage struct {
	data [256]byte
}

// NewRAMPage allocates a fresh, zeroed RAM page.
func NewRAMPage() Page {
	return &ramPage{}
}

func (p *ramPage) Kind() PageKind { return KindRAM }

func (p *ramPage) ReadByte(offset uint8) (uint8, error) {
	return p.data[offset], nil
}

func (p *ramPage) WriteByte(offset uint8, value uint8) error {
	p.data[offset] = value
	return nil
}

func (p *ramPage) PatchByte(offset uint8, value uint8) error {
	return nil
}

func (p *ramPage) Bytes() []byte {
	return p.data[:]
}

// romPage is a page backed by a plain 256-byte array that rejects normal
// writes but accepts patches.
type romPage struct {
	data [256]byte
}

// NewROMPage allocates a ROM page pre-filled with the given image, which
// must be exactly 256 bytes (shorter images are zero-padded, longer ones
// truncated - both are programmer errors in the caller, not faults here).
func NewROMPage(image []byte) Page {
	p := &romPage{}
	copy(p.data[:], image)
	return p
}

func (p *romPage) Kind() PageKind { return KindROM }

func (p *romPage) ReadByte(offset uint8) (uint8, error) {
	return p.data[offset], nil
}

func (p *romPage) WriteByte(offset uint8, value uint8) error {
	return bus.ErrNotWritable
}

func (p *romPage) PatchByte(offset uint8, value uint8) error {
	p.data[offset] = value
	return nil
}

func (p *romPage) Bytes() []byte {
	return p.data[:]
}

// IOHandler backs an IO page with chip-specific read/write side effects.
// Implemented by the GTIA/POKEY/PIA/ANTIC register-window adapters.
type IOHandler interface {
	ReadRegister(offset uint8) (uint8, error)
	WriteRegister(offset uint8, value uint8) error
}

// ioPage adapts an IOHandler to the Page interface.
type ioPage struct {
	handler IOHandler
}

// NewIOPage wraps handler as a Page.
func NewIOPage(handler IOHandler) Page {
	return &ioPage{handler: handler}
}

func (p *ioPage) Kind() PageKind { return KindIO }

func (p *ioPage) ReadByte(offset uint8) (uint8, error) {
	return p.handler.ReadRegister(offset)
}

func (p *ioPage) WriteByte(offset uint8, value uint8) error {
	return p.handler.WriteRegister(offset, value)
}

func (p *ioPage) PatchByte(offset uint8, value uint8) error {
	return nil
}

func (p *ioPage) Bytes() []byte {
	return nil
}
