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

// Package gtia implements the ANTIC-GTIA contract from spec.md §6:
// TriggerScanline receives one scan line's worth of colour-register
// tokens from ANTIC and mixes in player/missile graphics to produce a
// pixel row. It is deliberately a minimal but real implementation - real
// colour-clock doubling, the fifth-player/multicolour PRIOR combinations,
// and any notion of an actual displayed RGB palette are left out, since
// spec.md treats GTIA as an external collaborator whose only required
// surface is this contract plus the ordinary chip lifecycle.
package gtia

// Token identifies the source of one colour-clock's worth of ANTIC output:
// either the background, or one of the four playfield colour registers.
// ANTIC writes a slice of these into the buffer TriggerScanline consumes.
type Token uint8

const (
	TokenBackground Token = iota
	TokenPF0
	TokenPF1
	TokenPF2
	TokenPF3
	// TokenPF1Fiddled marks a colour clock whose hue comes from PF1 but
	// whose luminance comes from PF2 - ANTIC mode 2's "GTIA fiddling" used
	// by text mode to get more colours out of a one-bit-per-pixel font.
	TokenPF1Fiddled
)

// numTokens is the number of distinct Token values.
const numTokens = int(TokenPF1Fiddled) + 1

// player tracks one of the four player (8-bit wide) or missile (2-bit
// wide, narrower graphics register) objects GTIA positions independently
// of ANTIC's playfield DMA.
type player struct {
	hpos  uint8
	size  uint8 // 0=normal,1=double,2=normal,3=quad (SIZEP/SIZEM encoding)
	graf  uint8
	color uint8
}

func (p *player) widthClocks() int {
	switch p.size & 0x03 {
	case 1:
		return 16
	case 3:
		return 32
	default:
		return 8
	}
}

// pixelAt reports whether this object's graphics register has a lit bit at
// output column x, and if so the bit index consulted (0 = leftmost).
func (p *player) pixelAt(x int) (lit bool, bit int) {
	w := p.widthClocks()
	offset := x - int(p.hpos)
	if offset < 0 || offset >= w {
		return false, 0
	}
	bit = offset * 8 / w
	return p.graf&(0x80>>uint(bit)) != 0, bit
}

// Chip is GTIA's CPU-visible register surface plus the scan-line mixing
// entry point ANTIC calls once per line.
type Chip struct {
	players  [4]player
	missiles [4]player

	colbk  uint8
	colpf  [4]uint8
	prior  uint8
	vdelay uint8
	gractl uint8
	conspk uint8

	// collision latches, cleared only by HITCLR.
	m2pf, p2pf [4]uint8 // bit per playfield colour register hit
	m2pl, p2pl uint8    // bit per other player/missile hit

	// TriggerInputs lets the host report the four joystick trigger button
	// states; latched into the TRIG0-3 registers (and frozen there while
	// GRACTL bit 2 is clear, matching real trigger-latch behaviour).
	TriggerInputs [4]bool
	latchedTrig   [4]bool

	// ConsoleSwitches lets the host report START/SELECT/OPTION state for
	// CONSOL reads.
	ConsoleSwitches uint8

	// PALFlag selects what the read-only PAL register reports.
	PALFlag bool

	// pixels is the most recent scan line's mixed output, one colour byte
	// per output column; the host reads it after each TriggerScanline
	// call to push a real pixel row to its display.
	pixels [atariVisibleWidth]uint8
}

// atariVisibleWidth is wide enough to hold the widest ANTIC line buffer
// (384 playfield + 32 fill-in + 64 P/M offset, per spec.md §3).
const atariVisibleWidth = 384 + 32 + 64

// NewChip returns a GTIA with all registers at their documented power-on
// state.
func NewChip() *Chip {
	c := &Chip{}
	c.ColdStart()
	return c
}

// ColdStart resets every register to zero and clears collision latches.
func (c *Chip) ColdStart() {
	*c = Chip{
		TriggerInputs:   c.TriggerInputs,
		ConsoleSwitches: c.ConsoleSwitches,
		PALFlag:         c.PALFlag,
	}
}

// WarmStart on GTIA is indistinguishable from ColdStart: the chip holds no
// state RESET is documented to preserve.
func (c *Chip) WarmStart() { c.ColdStart() }

// TriggerScanline implements the ANTIC-GTIA contract (spec.md §6): buf
// holds length colour-register tokens starting at buf[first]; fiddling
// selects whether TokenPF1Fiddled is interpreted using the PF1/PF2 hue+
// luminance split. The result is mixed with the current player/missile
// registers and left in Pixels() for the host to consume.
func (c *Chip) TriggerScanline(buf []byte, first, length int, fiddling bool) error {
	for col := 0; col < length && col < len(c.pixels); col++ {
		tok := Token(0)
		if first+col < len(buf) {
			tok = Token(buf[first+col])
		}
		out := c.playfieldColour(tok, fiddling)
		out = c.mixObjects(col, tok, out)
		c.pixels[col] = out
	}
	return nil
}

// Pixels returns the most recent scan line's mixed colour-byte row.
func (c *Chip) Pixels() []uint8 { return c.pixels[:] }

func (c *Chip) playfieldColour(tok Token, fiddling bool) uint8 {
	switch tok {
	case TokenPF0:
		return c.colpf[0]
	case TokenPF1:
		return c.colpf[1]
	case TokenPF2:
		return c.colpf[2]
	case TokenPF3:
		return c.colpf[3]
	case TokenPF1Fiddled:
		if fiddling {
			return (c.colpf[1] & 0xf0) | (c.colpf[2] & 0x0f)
		}
		return c.colpf[1]
	default:
		return c.colbk
	}
}

// mixObjects overlays player/missile graphics onto the already-resolved
// playfield colour at column col, applying PRIOR's priority ordering and
// recording any collisions.
func (c *Chip) mixObjects(col int, tok Token, pf uint8) uint8 {
	playersEnabled := c.gractl&0x02 != 0
	missilesEnabled := c.gractl&0x01 != 0

	var pLit [4]bool
	var mLit [4]bool

	if playersEnabled {
		for i := range c.players {
			lit, _ := c.players[i].pixelAt(col)
			pLit[i] = lit
		}
	}
	if missilesEnabled {
		for i := range c.missiles {
			lit, _ := c.missiles[i].pixelAt(col)
			mLit[i] = lit
		}
	}

	// collisions: playfield colour registers, keyed by tok rather than pf
	// byte, so the background (tok==TokenBackground) never registers a
	// playfield hit, matching real GTIA.
	if tok != TokenBackground {
		pfIdx := int(tok)
		if pfIdx >= 1 && pfIdx <= 4 {
			bit := uint8(1) << uint(pfIdx-1)
			for i := range pLit {
				if pLit[i] {
					c.p2pf[i] |= bit
				}
			}
			for i := range mLit {
				if mLit[i] {
					c.m2pf[i] |= bit
				}
			}
		}
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if pLit[i] && mLit[j] {
				c.p2pl |= 1 << uint(i)
				c.m2pl |= 1 << uint(j)
			}
		}
	}

	// priority: PRIOR bits 0-3 select one of the four standard orderings
	// of {players 0+1, players 2+3, playfield}; missiles take on their
	// same-numbered player's priority. Lowest set bit wins, matching the
	// real chip's priority-encoder behaviour; if no bit is set (PRIOR==0)
	// players/missiles always win over the playfield.
	result := pf
	resultSet := tok != TokenBackground

	place := func(lit bool, color uint8, prioBit uint8) {
		if !lit {
			return
		}
		if !resultSet || c.prior&prioBit == 0 {
			result = color
			resultSet = true
		}
	}

	// objects are applied back to front: players/missiles 3 and 2 first,
	// then 1 and 0, so a later place() call overwrites an earlier one and
	// player 0 ends up on top. An object whose group bit is set in PRIOR
	// does not overwrite a playfield colour or an object placed before it.
	for i := 3; i >= 2; i-- {
		place(pLit[i], c.players[i].color, 0x02)
		place(mLit[i], c.players[i].color, 0x02)
	}
	for i := 1; i >= 0; i-- {
		place(pLit[i], c.players[i].color, 0x01)
		place(mLit[i], c.players[i].color, 0x01)
	}

	return result
}

// ReadRegister implements memory.IOHandler.
func (c *Chip) ReadRegister(offset uint8) (uint8, error) {
	offset &= 0x1f
	switch offset {
	case 0x00, 0x01, 0x02, 0x03:
		return c.m2pf[offset], nil
	case 0x04, 0x05, 0x06, 0x07:
		return c.p2pf[offset-4], nil
	case 0x08:
		return c.m2pl, nil
	case 0x09, 0x0a, 0x0b:
		return 0, nil
	case 0x0c, 0x0d, 0x0e, 0x0f:
		if offset-0x0c == 0 {
			return c.p2pl, nil
		}
		return 0, nil
	case 0x10, 0x11, 0x12, 0x13:
		i := offset - 0x10
		if c.latchedTrig[i] {
			return 1, nil
		}
		return 0, nil
	case 0x14:
		if c.PALFlag {
			return 0x01, nil
		}
		return 0x0f, nil
	case 0x1f:
		return c.ConsoleSwitches, nil
	default:
		return 0xff, nil
	}
}

// WriteRegister implements memory.IOHandler.
func (c *Chip) WriteRegister(offset uint8, v uint8) error {
	offset &= 0x1f
	switch offset {
	case 0x00, 0x01, 0x02, 0x03:
		c.players[offset].hpos = v
	case 0x04, 0x05, 0x06, 0x07:
		c.missiles[offset-4].hpos = v
	case 0x08, 0x09, 0x0a, 0x0b:
		c.players[offset-8].size = v
	case 0x0c:
		for i := range c.missiles {
			c.missiles[i].size = (v >> uint(i*2)) & 0x03
		}
	case 0x0d, 0x0e, 0x0f, 0x10:
		c.players[offset-0x0d].graf = v
	case 0x11:
		for i := range c.missiles {
			c.missiles[i].graf = (v >> uint(i*2)) & 0x03
		}
	case 0x12, 0x13, 0x14, 0x15:
		c.players[offset-0x12].color = v
	case 0x16, 0x17, 0x18, 0x19:
		c.colpf[offset-0x16] = v
	case 0x1a:
		c.colbk = v
	case 0x1b:
		c.prior = v
	case 0x1c:
		c.vdelay = v
	case 0x1d:
		c.gractl = v
		if v&0x04 != 0 {
			c.latchedTrig = c.TriggerInputs
		}
	case 0x1e:
		c.m2pf = [4]uint8{}
		c.p2pf = [4]uint8{}
		c.m2pl = 0
		c.p2pl = 0
	case 0x1f:
		c.conspk = v
	}
	return nil
}

// MissileColour returns the colour a missile uses, which on real hardware
// is shared with its same-numbered player unless PRIOR's fifth-player bit
// (0x10) combines all four missiles into a single object coloured by
// COLPF3; that combination mode is not implemented here (spec.md's
// explicit video non-goals cover exact GTIA colour fidelity), so each
// missile always uses its own player's colour.
func (c *Chip) MissileColour(i int) uint8 { return c.players[i].color }
