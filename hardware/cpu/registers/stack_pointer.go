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

// StackPointer is the 8-bit stack pointer. It embeds Register for the
// shared diagnostic/load plumbing, but is hardwired to page 1 ($0100-$01ff)
// rather than ranging over the full address space.
type StackPointer struct {
	Register
}

// NewStackPointer returns a stack pointer initialised to val.
func NewStackPointer(val uint8) StackPointer {
	return StackPointer{Register: NewRegister(val, "SP")}
}

// Address returns the full 16-bit address the stack pointer currently
// references.
func (sp StackPointer) Address() uint16 {
	return 0x0100 | uint16(sp.value)
}

// Push decrements the stack pointer, wrapping within the 256-byte stack.
func (sp *StackPointer) Push() {
	sp.value--
}

// Pull increments the stack pointer, wrapping within the 256-byte stack.
func (sp *StackPointer) Pull() {
	sp.value++
}
