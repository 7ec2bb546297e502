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

package registers

import "strings"

// Status holds the seven flags of the processor status register: N V - B D
// I Z C. Bit 5 (the one between V and B) has no flag of its own - it reads
// back as 1 always, which Value accounts for.
type Status struct {
	Negative         bool
	Overflow         bool
	Break            bool
	DecimalMode      bool
	InterruptDisable bool
	Zero             bool
	Carry            bool
}

// NewStatus returns a status register cleared to zero (with Break always
// reading as set, matching Load's behaviour).
func NewStatus() Status {
	var sr Status
	sr.Load(0x00)
	return sr
}

func (sr Status) String() string {
	s := strings.Builder{}
	flag := func(set bool, c rune) {
		if set {
			s.WriteRune(c)
		} else {
			s.WriteRune(c + ('a' - 'A'))
		}
	}
	flag(sr.Negative, 'N')
	flag(sr.Overflow, 'V')
	s.WriteRune('-')
	flag(sr.Break, 'B')
	flag(sr.DecimalMode, 'D')
	flag(sr.InterruptDisable, 'I')
	flag(sr.Zero, 'Z')
	flag(sr.Carry, 'C')
	return s.String()
}

// Value packs the flags into the byte form pushed by PHP/BRK/interrupt
// entry and read back by PLP/RTI.
func (sr Status) Value() uint8 {
	var v uint8
	if sr.Negative {
		v |= 0x80
	}
	if sr.Overflow {
		v |= 0x40
	}
	if sr.Break {
		v |= 0x10
	}
	if sr.DecimalMode {
		v |= 0x08
	}
	if sr.InterruptDisable {
		v |= 0x04
	}
	if sr.Zero {
		v |= 0x02
	}
	if sr.Carry {
		v |= 0x01
	}
	v |= 0x20 // unused bit always reads as 1
	return v
}

// Load unpacks v (as pulled from the stack by PLP/RTI, or written via
// SetStatus) into the individual flags. Break is always set on load,
// matching how PLP/RTI never actually change the B flag's in-memory
// representation - only a BRK/IRQ/NMI push distinguishes the two.
func (sr *Status) Load(v uint8) {
	sr.Negative = v&0x80 == 0x80
	sr.Overflow = v&0x40 == 0x40
	sr.DecimalMode = v&0x08 == 0x08
	sr.InterruptDisable = v&0x04 == 0x04
	sr.Zero = v&0x02 == 0x02
	sr.Carry = v&0x01 == 0x01
	sr.Break = true
}
