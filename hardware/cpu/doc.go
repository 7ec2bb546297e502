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

// Package cpu implements a cycle-driven 6502/65C02, the processor found in
// every machine in the Atari 8-bit family. Execution is organised as a
// queue of micro-steps, each consuming exactly one bus cycle: Go advances
// the queue by as many cycles as the DMA allocator currently leaves free,
// and an empty queue at the start of a cycle means the CPU is at an
// instruction boundary, where it checks for a pending sync, a breakpoint,
// an NMI edge, a pending IRQ, and only then fetches the next opcode.
//
// The CPU never owns memory. It is constructed with a bus.CPUBus view onto
// the address space and a *dma.Allocator that ANTIC and the CPU share -
// Go consults the allocator before running each cycle, and the CPU resets
// it at the start of every scan line (Hbi).
package cpu
