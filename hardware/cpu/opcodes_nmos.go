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

package cpu

// opcodeTableNMOS is the 400/800's 6502 dispatch table. Entries left at
// the zero value (opNOP, modeImplied) are undocumented opcodes this
// codebase gives no enumerated behaviour to, per the documented decision
// to treat them as harmless fixed-length no-ops rather than chase every
// unstable illegal-opcode quirk.
var opcodeTableNMOS [256]opcodeDef

func init() {
	set := func(code uint8, o op, m addrMode) {
		opcodeTableNMOS[code] = opcodeDef{op: o, mode: m}
	}

	// loads / stores
	set(0xA9, opLDA, modeImmediate)
	set(0xA5, opLDA, modeZeroPage)
	set(0xB5, opLDA, modeZeroPageX)
	set(0xAD, opLDA, modeAbsolute)
	set(0xBD, opLDA, modeAbsoluteX)
	set(0xB9, opLDA, modeAbsoluteY)
	set(0xA1, opLDA, modeIndirectX)
	set(0xB1, opLDA, modeIndirectY)
	set(0xA2, opLDX, modeImmediate)
	set(0xA6, opLDX, modeZeroPage)
	set(0xB6, opLDX, modeZeroPageY)
	set(0xAE, opLDX, modeAbsolute)
	set(0xBE, opLDX, modeAbsoluteY)
	set(0xA0, opLDY, modeImmediate)
	set(0xA4, opLDY, modeZeroPage)
	set(0xB4, opLDY, modeZeroPageX)
	set(0xAC, opLDY, modeAbsolute)
	set(0xBC, opLDY, modeAbsoluteX)
	set(0x85, opSTA, modeZeroPage)
	set(0x95, opSTA, modeZeroPageX)
	set(0x8D, opSTA, modeAbsolute)
	set(0x9D, opSTA, modeAbsoluteX)
	set(0x99, opSTA, modeAbsoluteY)
	set(0x81, opSTA, modeIndirectX)
	set(0x91, opSTA, modeIndirectY)
	set(0x86, opSTX, modeZeroPage)
	set(0x96, opSTX, modeZeroPageY)
	set(0x8E, opSTX, modeAbsolute)
	set(0x84, opSTY, modeZeroPage)
	set(0x94, opSTY, modeZeroPageX)
	set(0x8C, opSTY, modeAbsolute)

	// transfers / stack
	set(0xAA, opTAX, modeImplied)
	set(0xA8, opTAY, modeImplied)
	set(0x8A, opTXA, modeImplied)
	set(0x98, opTYA, modeImplied)
	set(0xBA, opTSX, modeImplied)
	set(0x9A, opTXS, modeImplied)
	set(0x48, opPHA, modeImplied)
	set(0x08, opPHP, modeImplied)
	set(0x68, opPLA, modeImplied)
	set(0x28, opPLP, modeImplied)

	// arithmetic / logic
	set(0x69, opADC, modeImmediate)
	set(0x65, opADC, modeZeroPage)
	set(0x75, opADC, modeZeroPageX)
	set(0x6D, opADC, modeAbsolute)
	set(0x7D, opADC, modeAbsoluteX)
	set(0x79, opADC, modeAbsoluteY)
	set(0x61, opADC, modeIndirectX)
	set(0x71, opADC, modeIndirectY)
	set(0xE9, opSBC, modeImmediate)
	set(0xE5, opSBC, modeZeroPage)
	set(0xF5, opSBC, modeZeroPageX)
	set(0xED, opSBC, modeAbsolute)
	set(0xFD, opSBC, modeAbsoluteX)
	set(0xF9, opSBC, modeAbsoluteY)
	set(0xE1, opSBC, modeIndirectX)
	set(0xF1, opSBC, modeIndirectY)
	set(0x29, opAND, modeImmediate)
	set(0x25, opAND, modeZeroPage)
	set(0x35, opAND, modeZeroPageX)
	set(0x2D, opAND, modeAbsolute)
	set(0x3D, opAND, modeAbsoluteX)
	set(0x39, opAND, modeAbsoluteY)
	set(0x21, opAND, modeIndirectX)
	set(0x31, opAND, modeIndirectY)
	set(0x09, opORA, modeImmediate)
	set(0x05, opORA, modeZeroPage)
	set(0x15, opORA, modeZeroPageX)
	set(0x0D, opORA, modeAbsolute)
	set(0x1D, opORA, modeAbsoluteX)
	set(0x19, opORA, modeAbsoluteY)
	set(0x01, opORA, modeIndirectX)
	set(0x11, opORA, modeIndirectY)
	set(0x49, opEOR, modeImmediate)
	set(0x45, opEOR, modeZeroPage)
	set(0x55, opEOR, modeZeroPageX)
	set(0x4D, opEOR, modeAbsolute)
	set(0x5D, opEOR, modeAbsoluteX)
	set(0x59, opEOR, modeAbsoluteY)
	set(0x41, opEOR, modeIndirectX)
	set(0x51, opEOR, modeIndirectY)

	set(0xC9, opCMP, modeImmediate)
	set(0xC5, opCMP, modeZeroPage)
	set(0xD5, opCMP, modeZeroPageX)
	set(0xCD, opCMP, modeAbsolute)
	set(0xDD, opCMP, modeAbsoluteX)
	set(0xD9, opCMP, modeAbsoluteY)
	set(0xC1, opCMP, modeIndirectX)
	set(0xD1, opCMP, modeIndirectY)
	set(0xE0, opCPX, modeImmediate)
	set(0xE4, opCPX, modeZeroPage)
	set(0xEC, opCPX, modeAbsolute)
	set(0xC0, opCPY, modeImmediate)
	set(0xC4, opCPY, modeZeroPage)
	set(0xCC, opCPY, modeAbsolute)

	set(0x24, opBIT, modeZeroPage)
	set(0x2C, opBIT, modeAbsolute)

	set(0xE6, opINC, modeZeroPage)
	set(0xF6, opINC, modeZeroPageX)
	set(0xEE, opINC, modeAbsolute)
	set(0xFE, opINC, modeAbsoluteX)
	set(0xC6, opDEC, modeZeroPage)
	set(0xD6, opDEC, modeZeroPageX)
	set(0xCE, opDEC, modeAbsolute)
	set(0xDE, opDEC, modeAbsoluteX)
	set(0xE8, opINX, modeImplied)
	set(0xCA, opDEX, modeImplied)
	set(0xC8, opINY, modeImplied)
	set(0x88, opDEY, modeImplied)

	set(0x0A, opASL, modeAccumulator)
	set(0x06, opASL, modeZeroPage)
	set(0x16, opASL, modeZeroPageX)
	set(0x0E, opASL, modeAbsolute)
	set(0x1E, opASL, modeAbsoluteX)
	set(0x4A, opLSR, modeAccumulator)
	set(0x46, opLSR, modeZeroPage)
	set(0x56, opLSR, modeZeroPageX)
	set(0x4E, opLSR, modeAbsolute)
	set(0x5E, opLSR, modeAbsoluteX)
	set(0x2A, opROL, modeAccumulator)
	set(0x26, opROL, modeZeroPage)
	set(0x36, opROL, modeZeroPageX)
	set(0x2E, opROL, modeAbsolute)
	set(0x3E, opROL, modeAbsoluteX)
	set(0x6A, opROR, modeAccumulator)
	set(0x66, opROR, modeZeroPage)
	set(0x76, opROR, modeZeroPageX)
	set(0x6E, opROR, modeAbsolute)
	set(0x7E, opROR, modeAbsoluteX)

	set(0x4C, opJMP, modeAbsolute)
	set(0x6C, opJMP, modeIndirect)
	set(0x20, opJSR, modeAbsolute)
	set(0x60, opRTS, modeImplied)
	set(0x40, opRTI, modeImplied)
	set(0x00, opBRK, modeImplied)

	set(0x90, opBCC, modeRelative)
	set(0xB0, opBCS, modeRelative)
	set(0xF0, opBEQ, modeRelative)
	set(0xD0, opBNE, modeRelative)
	set(0x30, opBMI, modeRelative)
	set(0x10, opBPL, modeRelative)
	set(0x50, opBVC, modeRelative)
	set(0x70, opBVS, modeRelative)

	set(0x18, opCLC, modeImplied)
	set(0x38, opSEC, modeImplied)
	set(0xD8, opCLD, modeImplied)
	set(0xF8, opSED, modeImplied)
	set(0x58, opCLI, modeImplied)
	set(0x78, opSEI, modeImplied)
	set(0xB8, opCLV, modeImplied)
	set(0xEA, opNOP, modeImplied)

	// JAM opcodes: the NMOS chip locks up and only a reset recovers it.
	for _, c := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		set(c, opJAM, modeImplied)
	}
	// the six illegal opcodes whose effect is genuinely unstable across
	// real silicon; left unemulated rather than guessed at.
	for _, c := range []uint8{0x2B, 0x8B, 0x93, 0x9B, 0x9F, 0xBB} {
		set(c, opCRASH, modeImplied)
	}

	// common stable illegal combo-opcodes, built from the same ALU steps
	// as their legal counterparts.
	set(0xA7, opLAX, modeZeroPage)
	set(0xB7, opLAX, modeZeroPageY)
	set(0xAF, opLAX, modeAbsolute)
	set(0xBF, opLAX, modeAbsoluteY)
	set(0xA3, opLAX, modeIndirectX)
	set(0xB3, opLAX, modeIndirectY)
	set(0x87, opSAX, modeZeroPage)
	set(0x97, opSAX, modeZeroPageY)
	set(0x8F, opSAX, modeAbsolute)
	set(0x83, opSAX, modeIndirectX)
	set(0xC7, opDCP, modeZeroPage)
	set(0xD7, opDCP, modeZeroPageX)
	set(0xCF, opDCP, modeAbsolute)
	set(0xDF, opDCP, modeAbsoluteX)
	set(0xDB, opDCP, modeAbsoluteY)
	set(0xC3, opDCP, modeIndirectX)
	set(0xD3, opDCP, modeIndirectY)
	set(0xE7, opISC, modeZeroPage)
	set(0xF7, opISC, modeZeroPageX)
	set(0xEF, opISC, modeAbsolute)
	set(0xFF, opISC, modeAbsoluteX)
	set(0xFB, opISC, modeAbsoluteY)
	set(0xE3, opISC, modeIndirectX)
	set(0xF3, opISC, modeIndirectY)
	set(0x07, opSLO, modeZeroPage)
	set(0x17, opSLO, modeZeroPageX)
	set(0x0F, opSLO, modeAbsolute)
	set(0x1F, opSLO, modeAbsoluteX)
	set(0x1B, opSLO, modeAbsoluteY)
	set(0x03, opSLO, modeIndirectX)
	set(0x13, opSLO, modeIndirectY)
	set(0x27, opRLA, modeZeroPage)
	set(0x37, opRLA, modeZeroPageX)
	set(0x2F, opRLA, modeAbsolute)
	set(0x3F, opRLA, modeAbsoluteX)
	set(0x3B, opRLA, modeAbsoluteY)
	set(0x23, opRLA, modeIndirectX)
	set(0x33, opRLA, modeIndirectY)
	set(0x47, opSRE, modeZeroPage)
	set(0x57, opSRE, modeZeroPageX)
	set(0x4F, opSRE, modeAbsolute)
	set(0x5F, opSRE, modeAbsoluteX)
	set(0x5B, opSRE, modeAbsoluteY)
	set(0x43, opSRE, modeIndirectX)
	set(0x53, opSRE, modeIndirectY)
	set(0x67, opRRA, modeZeroPage)
	set(0x77, opRRA, modeZeroPageX)
	set(0x6F, opRRA, modeAbsolute)
	set(0x7F, opRRA, modeAbsoluteX)
	set(0x7B, opRRA, modeAbsoluteY)
	set(0x63, opRRA, modeIndirectX)
	set(0x73, opRRA, modeIndirectY)
	set(0x0B, opANC, modeImmediate)
	set(0x4B, opALR, modeImmediate)
	set(0x6B, opARR, modeImmediate)
	set(0xCB, opAXS, modeImmediate)

	// undocumented NOPs with operands that must still be consumed from
	// the instruction stream, even though they have no effect.
	for _, c := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		set(c, opNOP, modeImmediate)
	}
	for _, c := range []uint8{0x04, 0x44, 0x64} {
		set(c, opNOP, modeZeroPage)
	}
	for _, c := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(c, opNOP, modeZeroPageX)
	}
	for _, c := range []uint8{0x0C} {
		set(c, opNOP, modeAbsolute)
	}
	for _, c := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(c, opNOP, modeAbsoluteX)
	}
	for _, c := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(c, opNOP, modeImplied)
	}
}
