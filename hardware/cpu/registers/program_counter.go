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

import "fmt"

// ProgramCounter is the 16-bit PC register.
type ProgramCounter struct {
	value uint16
}

// NewProgramCounter returns a program counter initialised to val.
func NewProgramCounter(val uint16) ProgramCounter {
	return ProgramCounter{value: val}
}

func (pc ProgramCounter) String() string {
	return fmt.Sprintf("%04x", pc.value)
}

// Value returns the current address.
func (pc ProgramCounter) Value() uint16 {
	return pc.value
}

// Load sets the PC directly - used by JMP, branches, RTS/RTI, and vector
// fetches.
func (pc *ProgramCounter) Load(val uint16) {
	pc.value = val
}

// Increment advances the PC by one, wrapping at 64K. Every opcode and
// operand fetch calls this exactly once per byte consumed.
func (pc *ProgramCounter) Increment() {
	pc.value++
}

// Add adds val to the PC, reporting whether the result lies on a different
// page (the high byte changed). The CPU's micro-steps compute their own
// page-cross checks and do not call it.
func (pc *ProgramCounter) Add(val uint16) (pageCrossed bool) {
	before := pc.value & 0xff00
	pc.value += val
	return pc.value&0xff00 != before
}
