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

// Package generators holds the sixteen ANTIC character/graphics mode
// generators, indexed by the low nibble of a display-list instruction byte.
// Each Generator consumes the scan buffer ANTIC latched for the current
// mode line and writes one gtia.Token per output column into a line buffer
// slice; GTIA later resolves those tokens to real colours in
// gtia.Chip.TriggerScanline.
package generators

import "github.com/inductive-bias/atari8core/hardware/gtia"

// CharSource supplies character-generator ROM/RAM bytes to the text modes.
type CharSource interface {
	ReadByte(addr uint16) uint8
}

// CharControl is the per-mode-line view of CHACTL (and CHBASE) the text
// generators (modes 2, 3) consult. ANTIC recomputes it from its CHACTL
// register whenever that register is written; it is never touched by the
// generators themselves.
type CharControl struct {
	CharBase   uint16
	InvertMask uint8 // 0x80 when a set top bit of the screen code means inverse video
	BlankMask  uint8 // 0x80 when a set top bit means blank instead of inverse
	UpsideDown bool
}

// Generator expands one scan line's worth of scan-buffer bytes into tokens.
// scanline is the 0-based line within the current mode line (already
// wrapped by the caller where a mode repeats fewer physical rows than
// scanlines, e.g. mode 5's double-height cells).
type Generator func(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource)

// Mode bundles a Generator with the two pieces of per-mode metadata ANTIC's
// scheduler and GTIA both need: how many output tokens one scan-buffer byte
// expands to, and whether GTIA should interpret TokenPF1Fiddled using the
// hue/luminance split (true for the high-resolution modes 2, 3 and F, which
// alias a lit pixel to "PF1 hue, PF2 luminance").
type Mode struct {
	TokensPerByte int
	Fiddling      bool
	Generator     Generator
}

// Table is indexed by the low nibble of a display-list instruction byte.
// Index 0 (blank) and index 1 (jump) are handled by ANTIC's display-list
// decoder directly; Table[0] still holds the background generator since
// ANTIC also uses it to render JVB's forced blank line. Table[1] is left
// zero-valued and must never be invoked.
var Table [16]Mode

func init() {
	Table[0x0] = Mode{Generator: genBlank}
	Table[0x2] = Mode{TokensPerByte: 8, Fiddling: true, Generator: genMode2}
	Table[0x3] = Mode{TokensPerByte: 8, Fiddling: true, Generator: genMode3}
	Table[0x4] = Mode{TokensPerByte: 4, Generator: genMode4}
	Table[0x5] = Mode{TokensPerByte: 4, Generator: genMode5}
	Table[0x6] = Mode{TokensPerByte: 8, Generator: genMode6}
	Table[0x7] = Mode{TokensPerByte: 8, Generator: genMode7}
	Table[0x8] = Mode{TokensPerByte: 4, Generator: genMode8}
	Table[0x9] = Mode{TokensPerByte: 8, Generator: genMode9}
	Table[0xa] = Mode{TokensPerByte: 4, Generator: genModeA}
	Table[0xb] = Mode{TokensPerByte: 8, Generator: genModeB}
	Table[0xc] = Mode{TokensPerByte: 8, Generator: genModeB} // mode C reuses B's generator
	Table[0xd] = Mode{TokensPerByte: 4, Generator: genModeD}
	Table[0xe] = Mode{TokensPerByte: 4, Generator: genModeD} // mode E reuses D's generator
	Table[0xf] = Mode{TokensPerByte: 8, Fiddling: true, Generator: genModeF}
}

// genBlank is ANTIC's "mode 0" generator: every output column is background,
// regardless of scan-buffer content. Also used to render JVB's forced blank
// line and the pre-display/post-display border lines.
func genBlank(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	for i := range out {
		out[i] = gtia.TokenBackground
	}
}

func charRow(cc CharControl, screendata uint8, row int) uint16 {
	if cc.UpsideDown {
		return cc.CharBase + uint16(7-row) + (uint16(screendata&0x7f) << 3)
	}
	return cc.CharBase + uint16(row) + (uint16(screendata&0x7f) << 3)
}

// genMode2 is ANTIC's standard 40-column text mode: one bit per pixel,
// background (token PF2) or fiddled foreground (PF1 hue / PF2 luminance,
// token PF1Fiddled) selected per bit of the character-ROM byte, with
// CHACTL's inverse/blank overrides applied to the whole character cell.
func genMode2(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	row := scanline & 7
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		screendata := scan[i]
		chdata := mem.ReadByte(charRow(cc, screendata, row))
		if screendata&cc.InvertMask != 0 {
			chdata ^= 0xff
		}
		if screendata&cc.BlankMask != 0 {
			chdata = 0
		}
		emitBits(out[i*8:], chdata, gtia.TokenPF2, gtia.TokenPF1Fiddled)
	}
}

// offsetNormal and offsetLow are ANTIC mode 3's font-row lookup tables: a
// character whose screen code has both bits 0x60 set (a lowercase letter in
// the standard Atari font) blanks its first two scan lines, shows font rows
// 2-7 on lines 2-7 and font rows 0 and 1 on its last two lines, producing
// the hardware's descender quirk. Row 8 stands for a blank row.
var offsetNormal = [10]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 8}
var offsetLow = [10]uint8{8, 8, 2, 3, 4, 5, 6, 7, 0, 1}

// genMode3 is mode 2's ten-scan-line sibling (used for text with
// descenders); it otherwise shares mode 2's bit/colour semantics.
func genMode3(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	if scanline > 10 {
		scanline &= 7
	}
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		screendata := scan[i]
		var row uint8
		if screendata&0x60 == 0x60 {
			row = offsetLow[scanline]
		} else {
			row = offsetNormal[scanline]
		}
		var chdata uint8
		if row < 8 {
			chdata = mem.ReadByte(charRow(cc, screendata, int(row)))
		}
		if screendata&cc.InvertMask != 0 {
			chdata ^= 0xff
		}
		if screendata&cc.BlankMask != 0 {
			chdata = 0
		}
		emitBits(out[i*8:], chdata, gtia.TokenPF2, gtia.TokenPF1Fiddled)
	}
}

// emitBits writes one token per bit of v, most significant first, choosing
// zero or one from the two supplied tokens.
func emitBits(out []gtia.Token, v uint8, zero, one gtia.Token) {
	for b := 0; b < 8 && b < len(out); b++ {
		if v&(0x80>>uint(b)) != 0 {
			out[b] = one
		} else {
			out[b] = zero
		}
	}
}

// multicolourQuad decodes a 2-bit value using the fixed table the 2-bit
// text and graphics modes all share: 0 is always background.
func multicolourQuad(v uint8, pf [3]gtia.Token) gtia.Token {
	switch v & 0x03 {
	case 1:
		return pf[0]
	case 2:
		return pf[1]
	case 3:
		return pf[2]
	default:
		return gtia.TokenBackground
	}
}

// genMode4 is ANTIC's four-colour, double-width text mode: each nibble of
// the character-ROM byte is two 2-bit pixels; the screen code's top bit
// selects whether the "3" value means PF2 or PF3.
func genMode4(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	row := scanline & 7
	emitMode4Like(out, scan, cc, mem, row)
}

// genMode5 is mode 4 at double height (each character row spans two scan
// lines).
func genMode5(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	emitMode4Like(out, scan, cc, mem, scanline>>1)
}

func emitMode4Like(out []gtia.Token, scan []uint8, cc CharControl, mem CharSource, row int) {
	pfLo := [3]gtia.Token{gtia.TokenPF0, gtia.TokenPF1, gtia.TokenPF2}
	pfHi := [3]gtia.Token{gtia.TokenPF0, gtia.TokenPF1, gtia.TokenPF3}
	for i := 0; i < len(scan) && i*4 < len(out); i++ {
		screendata := scan[i]
		chdata := mem.ReadByte(charRow(cc, screendata, row))
		pf := pfLo
		if screendata&0x80 != 0 {
			pf = pfHi
		}
		dst := out[i*4:]
		if len(dst) > 0 {
			dst[0] = multicolourQuad(chdata>>6, pf)
		}
		if len(dst) > 1 {
			dst[1] = multicolourQuad(chdata>>4, pf)
		}
		if len(dst) > 2 {
			dst[2] = multicolourQuad(chdata>>2, pf)
		}
		if len(dst) > 3 {
			dst[3] = multicolourQuad(chdata, pf)
		}
	}
}

// genMode6 is a character mode where the screen code's top two bits choose
// the cell's foreground (00 background, 01 PF0, 10 PF1, 11 PF2) and the low
// six bits select the character; each bit of the font byte becomes one
// output column, foreground when set and background when clear.
func genMode6(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	row := scanline & 7
	emitMode6Like(out, scan, cc, mem, row)
}

// genMode7 is mode 6 at double height.
func genMode7(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	emitMode6Like(out, scan, cc, mem, scanline>>1)
}

func emitMode6Like(out []gtia.Token, scan []uint8, cc CharControl, mem CharSource, row int) {
	pf := [4]gtia.Token{gtia.TokenBackground, gtia.TokenPF0, gtia.TokenPF1, gtia.TokenPF2}
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		screendata := scan[i]
		chaddr := cc.CharBase + uint16(row) + (uint16(screendata&0x3f) << 3)
		chdata := mem.ReadByte(chaddr)
		colour := pf[screendata>>6]
		dst := out[i*8:]
		for bit := 0; bit < 4 && bit*2+1 < len(dst); bit++ {
			v := (chdata >> uint(6-bit*2)) & 0x03
			if v&0x02 != 0 {
				dst[bit*2] = colour
			} else {
				dst[bit*2] = gtia.TokenBackground
			}
			if v&0x01 != 0 {
				dst[bit*2+1] = colour
			} else {
				dst[bit*2+1] = gtia.TokenBackground
			}
		}
	}
}

// genMode8 is a four-colour bitmap graphics mode: each byte packs four
// 2-bit pixels directly from the scan buffer (no character ROM lookup).
func genMode8(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	pf := [3]gtia.Token{gtia.TokenPF0, gtia.TokenPF1, gtia.TokenPF2}
	for i := 0; i < len(scan) && i*4 < len(out); i++ {
		v := scan[i]
		dst := out[i*4:]
		if len(dst) > 0 {
			dst[0] = multicolourQuad(v>>6, pf)
		}
		if len(dst) > 1 {
			dst[1] = multicolourQuad(v>>4, pf)
		}
		if len(dst) > 2 {
			dst[2] = multicolourQuad(v>>2, pf)
		}
		if len(dst) > 3 {
			dst[3] = multicolourQuad(v, pf)
		}
	}
}

// genMode9 is a two-colour bitmap mode: one bit per pixel, background or
// PF0, straight from the scan buffer.
func genMode9(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		emitBits(out[i*8:], scan[i], gtia.TokenBackground, gtia.TokenPF0)
	}
}

// genModeA is a four-colour bitmap mode with four 2-bit pixels per byte.
// Its output is identical to mode 8's, token for token; no difference in
// horizontal resolution between the two modes is modelled.
func genModeA(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	genMode8(out, scan, scanline, cc, mem)
}

// genModeB is a two-colour bitmap mode (background/PF0), one bit per
// output column, producing exactly the same tokens as mode 9; no column
// doubling is applied. Mode C (reusing
// this generator) differs only in the number of scan lines ANTIC repeats
// it for, a detail the ANTIC core - not the generator - is responsible for.
func genModeB(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		emitBits(out[i*8:], scan[i], gtia.TokenBackground, gtia.TokenPF0)
	}
}

// genModeD is a four-colour bitmap mode (background/PF0/PF1/PF2) at the
// same 2-bit-per-pixel depth as mode 4 but with a fixed (non-selectable)
// colour table; mode E reuses this generator.
func genModeD(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	pf := [3]gtia.Token{gtia.TokenPF0, gtia.TokenPF1, gtia.TokenPF2}
	for i := 0; i < len(scan) && i*4 < len(out); i++ {
		v := scan[i]
		dst := out[i*4:]
		if len(dst) > 0 {
			dst[0] = multicolourQuad(v>>6, pf)
		}
		if len(dst) > 1 {
			dst[1] = multicolourQuad(v>>4, pf)
		}
		if len(dst) > 2 {
			dst[2] = multicolourQuad(v>>2, pf)
		}
		if len(dst) > 3 {
			dst[3] = multicolourQuad(v, pf)
		}
	}
}

// genModeF is ANTIC's 320-wide high-resolution bitmap mode: one bit per
// pixel straight from the scan buffer, using the same PF2/fiddled-PF1
// colour pair as modes 2 and 3 (the real chip's hi-res artifact-colour
// behaviour, reused here rather than re-derived).
func genModeF(out []gtia.Token, scan []uint8, scanline int, cc CharControl, mem CharSource) {
	for i := 0; i < len(scan) && i*8 < len(out); i++ {
		emitBits(out[i*8:], scan[i], gtia.TokenPF2, gtia.TokenPF1Fiddled)
	}
}
