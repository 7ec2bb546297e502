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

// Package registers implements the register file of the 6502/65C02: the
// three 8-bit accumulator-class registers (A, X, Y), the 16-bit program
// counter, the stack pointer, and the status register.
//
// Register implements every ALU operation the CPU micro-steps need: load,
// add/subtract (with carry in, carry/overflow out), the logical and
// shift/rotate operations, plus a decimal-mode variant of add/subtract for
// BCD arithmetic. The CPU composes these with a small helper that derives
// the Z/N flags from a result, rather than have Register know anything
// about status flags itself.
package registers
