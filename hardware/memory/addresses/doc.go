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

// Package addresses contains the canonical symbols for every chip register
// window in the Atari 8-bit address space: ANTIC, GTIA, POKEY and PIA, plus
// the 6502 vectors. Each chip's symbols are kept in a map keyed by offset
// within its window; at init time they are merged into the ReadSymbols and
// WriteSymbols maps, keyed by full 16-bit address, and their reverses.
//
// The chip windows are each one page (256 bytes) wide. ANTIC, for example,
// names 11 write registers and 4 read registers, all within the first 16
// bytes of the $D400-$D4FF page.
package addresses
