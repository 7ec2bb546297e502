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

// Package pia implements the narrow PIA6820 register contract at
// $D300-$D3FF: two eight-bit ports (A and B, conventionally wired to the
// joystick/console switches and to the OS ROM bank-select latch on
// XL/XE), each with a data register and a control register. This is a
// register-level stub: it reproduces the CPU-visible read/write side
// effects spec.md treats as an external collaborator's contract, not a
// real keyboard/joystick input pipeline.
package pia

// Port models one of PIA's two eight-bit ports: the raw input state the
// host drives (InputMask) combined with whatever bits the CPU has set as
// outputs via the data direction register latched into DDR by the control
// register's bit 2.
type Port struct {
	// InputMask is the bit pattern presented by the outside world (a
	// joystick, console switches, a memory bank-select jumper). The host
	// sets this directly; the core only reads it.
	InputMask uint8

	ddr     uint8
	control uint8
	output  uint8

	// ddrSelected is true while the control register's bit 2 is clear,
	// meaning the data register address currently reads/writes the data
	// direction register rather than the port itself - real PIA6820
	// behaviour, since both share one address.
	ddrSelected bool
}

func (p *Port) readData() uint8 {
	if p.ddrSelected {
		return p.ddr
	}
	return (p.InputMask &^ p.ddr) | (p.output & p.ddr)
}

func (p *Port) writeData(v uint8) {
	if p.ddrSelected {
		p.ddr = v
		return
	}
	p.output = v
}

func (p *Port) writeControl(v uint8) {
	p.control = v & 0x3f
	p.ddrSelected = v&0x04 == 0
}

func (p *Port) readControl() uint8 {
	return p.control
}

// Chip is the PIA6820. It has no lifecycle dependency on the other chips -
// construct once, wire InputMask on PortA/PortB from the host, and map it
// into the address space at addresses.PIABase.
type Chip struct {
	PortA Port
	PortB Port
}

// NewChip returns a PIA with both ports' data direction registers
// selected, matching the power-on state of a real PIA6820.
func NewChip() *Chip {
	c := &Chip{}
	c.ColdStart()
	return c
}

// ColdStart resets both ports to their power-on state: DDR selected, all
// bits configured as inputs, outputs clear.
func (c *Chip) ColdStart() {
	c.PortA = Port{InputMask: c.PortA.InputMask}
	c.PortB = Port{InputMask: c.PortB.InputMask}
	c.PortA.ddrSelected = true
	c.PortB.ddrSelected = true
}

// WarmStart on PIA hardware has no distinct behaviour from ColdStart - the
// chip has no memory of its own beyond the registers RESET already leaves
// alone on other chips, so the two entry points converge here.
func (c *Chip) WarmStart() {
	c.ColdStart()
}

// ReadRegister implements memory.IOHandler. The four-byte window is
// mirrored throughout the rest of the page as real PIA6820 hardware does
// (only the low two address bits are decoded), which this offset&3 mirrors.
func (c *Chip) ReadRegister(offset uint8) (uint8, error) {
	switch offset & 0x03 {
	case 0x00:
		return c.PortA.readData(), nil
	case 0x01:
		return c.PortB.readData(), nil
	case 0x02:
		return c.PortA.readControl(), nil
	default:
		return c.PortB.readControl(), nil
	}
}

// WriteRegister implements memory.IOHandler.
func (c *Chip) WriteRegister(offset uint8, v uint8) error {
	switch offset & 0x03 {
	case 0x00:
		c.PortA.writeData(v)
	case 0x01:
		c.PortB.writeData(v)
	case 0x02:
		c.PortA.writeControl(v)
	default:
		c.PortB.writeControl(v)
	}
	return nil
}
