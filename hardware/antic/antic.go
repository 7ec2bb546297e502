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

// Package antic implements the display-list processor: it owns the DMA
// master role for a scan line, decodes the display list one instruction
// (one mode line) at a time, fetches screen and character data into an
// internal scan buffer, and drives both the CPU (advancing it cycle by
// cycle around DMA and NMI events) and GTIA (handing off one line buffer's
// worth of colour-register tokens per scan line).
package antic

import (
	"github.com/inductive-bias/atari8core/hardware/antic/generators"
	"github.com/inductive-bias/atari8core/hardware/clocks"
	"github.com/inductive-bias/atari8core/hardware/dma"
	"github.com/inductive-bias/atari8core/hardware/gtia"
	"github.com/inductive-bias/atari8core/hardware/memory/bus"
	"github.com/inductive-bias/atari8core/random"
)

// CPUControl is the narrow CPU surface ANTIC drives as DMA/NMI master,
// matching spec.md's CPU<->ANTIC contract.
type CPUControl interface {
	StealCycles(req dma.Request)
	StealMemCycles(req dma.Request)
	Go(n int) error
	CurrentXPos() int
	GenerateNMI()
	Hbi()
}

// GTIAControl is the narrow GTIA surface ANTIC hands scan lines to.
type GTIAControl interface {
	TriggerScanline(buf []byte, first, length int, fiddling bool) error
}

// scanBufferSize is the largest number of graphics bytes a single mode line
// fetches: 48, the widest (DMACTL "wide") playfield in bytes.
const scanBufferSize = 48

// displayModulo is the line buffer's full width: the widest playfield
// (384 colour clocks) plus the 32-clock fill-in margin used to simplify
// horizontal scrolling plus 64 clocks of player/missile overscan, matching
// gtia.Chip's own notion of a line's width.
const displayModulo = 384 + 32 + 64

// fillInOffset is where an unscrolled mode line's first visible column
// lands within the line buffer; columns before it are always background.
const fillInOffset = 32

// dmaWidth describes one DMACTL-selected playfield width: the colour-clock
// extent of the unscrolled and horizontally-scrolled display, and the first
// DMA cycle of each so the allocator can reserve the right slots.
type dmaWidth struct {
	columns       int // unscrolled playfield width in colour clocks
	scrollColumns int // scrolled (wider) playfield width in colour clocks
	firstCycle    int
	firstCycleHS  int
}

// dmaWidths is indexed by DMACTL bits 0-1: 0 = DMA off, 1 = narrow
// (256 clocks), 2 = normal (320 clocks), 3 = wide (384 clocks).
var dmaWidths = [4]dmaWidth{
	{columns: 0, scrollColumns: 0, firstCycle: 0, firstCycleHS: 0},
	{columns: 256, scrollColumns: 288, firstCycle: 25, firstCycleHS: 21},
	{columns: 320, scrollColumns: 352, firstCycle: 17, firstCycleHS: 13},
	{columns: 384, scrollColumns: 384, firstCycle: 9, firstCycleHS: 9},
}

const (
	beforeDLICycles     = 12
	beforeDisplayClocks = 40
	playerFetchMask     = 0x02
	missileFetchMask    = 0x01
	playerFetchFirst    = 10
	missileFetchFirst   = 14
	memRefreshFirst     = 104
)

// Chip is ANTIC: its CPU-visible register set plus the frame/mode-line/
// scan-line state machine described in spec.md §4.5.
type Chip struct {
	mem   bus.AnticBus
	cpu   CPUControl
	alloc *dma.Allocator
	gtia  GTIAControl

	dmactl uint8
	chactl uint8
	dlist  uint16
	hscrol uint8
	vscrol uint8
	pmbase uint8
	chbase uint8
	nmien  uint8
	nmist  uint8

	// dlistShadow tracks the display-list program counter as it advances
	// through the current frame, separate from dlist (which is only the
	// programmed restart address, DLISTL/DLISTH).
	dlistShadow uint16

	// pfBase is the screen-memory pointer scan-buffer fetches read from. A
	// mode-line instruction with its LMS bit set reloads it, and
	// fetchScanBuffer advances it by one for every byte it fetches.
	pfBase uint16

	yPos int

	scanBuffer [scanBufferSize]byte
	lineBuffer [displayModulo]byte

	// PAL selects which frame total line count RunDisplayList uses.
	PAL bool

	charControl generators.CharControl

	frame int
}

// GetCoords implements random.CoordsSource: ANTIC is the natural owner of
// the current video position, so chip power-on randomisation reseeds from
// wherever the display list happens to be when cold-started.
func (c *Chip) GetCoords() random.Coords {
	return random.Coords{Frame: c.frame, Scanline: c.yPos, Clock: 0}
}

// memSource adapts bus.AnticBus to generators.CharSource.
type memSource struct{ mem bus.AnticBus }

func (m memSource) ReadByte(addr uint16) uint8 {
	v, err := m.mem.ReadAntic(addr)
	if err != nil {
		return 0
	}
	return v
}

// NewChip returns an ANTIC wired to the address space ANTIC itself reads
// through, the CPU it drives, the DMA allocator it shares with the CPU, and
// the GTIA it hands finished scan lines to.
func NewChip(mem bus.AnticBus, cpu CPUControl, alloc *dma.Allocator, gtia GTIAControl) *Chip {
	c := &Chip{mem: mem, cpu: cpu, alloc: alloc, gtia: gtia}
	c.WarmStart()
	return c
}

// ColdStart resets every register and internal state variable, matching
// the documented power-on state.
func (c *Chip) ColdStart() {
	mem, cpu, alloc, gt, pal := c.mem, c.cpu, c.alloc, c.gtia, c.PAL
	*c = Chip{mem: mem, cpu: cpu, alloc: alloc, gtia: gt, PAL: pal}
}

// WarmStart resets ANTIC's registers the way a RESET pulse does: DMA off,
// character/player-missile bases cleared, display list pointer untouched.
func (c *Chip) WarmStart() {
	c.dmactl = 0
	c.chbase = 0
	c.pmbase = 0
	c.chactl = 0
	c.nmien = 0
	c.nmist = 0
	c.hscrol = 0
	c.vscrol = 0
	c.recomputeCharControl()
}

func (c *Chip) recomputeCharControl() {
	cc := generators.CharControl{CharBase: uint16(c.chbase) << 8}
	if c.chactl&0x01 != 0 {
		cc.BlankMask = 0x80
	} else {
		cc.InvertMask = 0x80
	}
	cc.UpsideDown = c.chactl&0x04 != 0
	c.charControl = cc
}

// ReadRegister implements memory.IOHandler for ANTIC's read-only register
// window (VCOUNT, PENH/PENV, NMIST).
func (c *Chip) ReadRegister(offset uint8) (uint8, error) {
	switch offset & 0x0f {
	case 0x00: // VCOUNT: half the current scan line
		return uint8(c.yPos >> 1), nil
	case 0x01, 0x02: // PENH/PENV: no light pen attached
		return 0, nil
	default: // NMIST
		return c.nmist, nil
	}
}

// WriteRegister implements memory.IOHandler for ANTIC's write register
// window.
func (c *Chip) WriteRegister(offset uint8, v uint8) error {
	switch offset & 0x0f {
	case 0x00:
		c.dmactl = v
	case 0x01:
		c.chactl = v
		c.recomputeCharControl()
	case 0x02:
		c.dlist = (c.dlist & 0xff00) | uint16(v)
	case 0x03:
		c.dlist = (c.dlist & 0x00ff) | (uint16(v) << 8)
	case 0x04:
		c.hscrol = v & 0x0f
	case 0x05:
		c.vscrol = v & 0x0f
	case 0x06:
		c.pmbase = v
	case 0x07:
		c.chbase = v
		c.recomputeCharControl()
	case 0x08: // WSYNC: block the CPU's slots from here to the release point
		c.alloc.WsyncStop(c.cpu.CurrentXPos(), clocks.WSyncDefaultPosition)
	case 0x09:
		c.nmien = v
	default: // NMIRES
		c.nmist = 0
	}
	return nil
}

// hbi runs the fixed-width pre-display and post-display border lines: pure
// memory refresh and a blanked frame, one call per scan line outside the
// visible region.
func (c *Chip) hbi() {
	c.cpu.StealMemCycles(dma.Request{FirstCycle: memRefreshFirst, LastCycle: dma.SlotsPerLine - 1, Mask: []bool{true}})
	c.cpu.Go(clocks.CPUCyclesPerLine)
	c.cpu.Hbi()
}

// RunDisplayList produces exactly one frame, implementing the state
// machine of spec.md §4.5: pre-display memory refresh, the visible region's
// display-list decode loop, then post-display blank lines up to the
// PAL/NTSC total.
func (c *Chip) RunDisplayList() {
	c.frame++
	c.yPos = 0
	c.dlistShadow = c.dlist
	for ; c.yPos < clocks.DisplayStartLine; c.yPos++ {
		c.hbi()
	}

	c.nmist = 0
	jvb := false
	for c.yPos < clocks.DisplayStartLine+clocks.DisplayLines {
		if jvb {
			c.scanline(false, generators.Mode{Generator: generatorAt(0).Generator}, 0, displayModulo, false, 0, 1)
			continue
		}

		ir, err := c.mem.ReadAntic(c.dlistShadow)
		if err != nil {
			ir = 0
		}
		c.cpu.StealCycles(dma.Request{FirstCycle: 0, LastCycle: 0, Mask: []bool{true}})
		c.dlistShadow = (c.dlistShadow & 0xfc00) | ((c.dlistShadow + 1) & 0x03ff)

		switch {
		case ir&0x0f == 0x00:
			lines := int((ir>>4)&0x07) + 1
			c.runModeLine(ir, generatorAt(0), 0, lines-1, lines, 0)
		case ir&0x0f == 0x01:
			lo, _ := c.mem.ReadAntic(c.dlistShadow)
			c.dlistShadow = (c.dlistShadow & 0xfc00) | ((c.dlistShadow + 1) & 0x03ff)
			hi, _ := c.mem.ReadAntic(c.dlistShadow)
			c.dlistShadow = (c.dlistShadow & 0xfc00) | ((c.dlistShadow + 1) & 0x03ff)
			c.dlistShadow = uint16(lo) | uint16(hi)<<8
			if ir&0x40 != 0 {
				jvb = true
			}
		default:
			if ir&0x40 != 0 {
				lo, _ := c.mem.ReadAntic(c.dlistShadow)
				c.dlistShadow = (c.dlistShadow & 0xfc00) | ((c.dlistShadow + 1) & 0x03ff)
				hi, _ := c.mem.ReadAntic(c.dlistShadow)
				c.dlistShadow = (c.dlistShadow & 0xfc00) | ((c.dlistShadow + 1) & 0x03ff)
				c.pfBase = uint16(lo) | uint16(hi)<<8
			}
			mode := generatorAt(ir & 0x0f)
			nlines := modeLineHeight(ir & 0x0f)
			c.runModeLine(ir, mode, 0, nlines-1, nlines, 0)
		}
	}

	for ; c.yPos < clocks.TotalLines(c.PAL); c.yPos++ {
		c.hbi()
	}
}

func generatorAt(low uint8) generators.Mode { return generators.Table[low&0x0f] }

// modeLineHeight is the number of physical scan lines a character-mode
// generator consumes per instruction (graphics modes are one scan line
// tall; ANTIC repeats double-height modes' generator call with the same
// scan-buffer data, relying on the generator's own scanline handling for
// which row of the font cell to fetch).
func modeLineHeight(low uint8) int {
	switch low {
	case 0x02, 0x04, 0x06:
		return 8
	case 0x03:
		return 10
	case 0x05, 0x07:
		return 16
	default:
		return 1
	}
}

// runModeLine implements Antic::Modeline from the original source: it
// fetches the mode's scan-buffer bytes once, on the mode line's first scan
// line, then calls scanline() once per physical row with that same buffer.
// Graphics modes are one scan line tall; the text modes' generators read
// the font row for each scan line from the character set themselves.
func (c *Chip) runModeLine(ir uint8, mode generators.Mode, first, last, nlines, dmaShift int) {
	nchars := c.fetchWidth()

	for scanline := first; scanline <= last && c.yPos < clocks.DisplayStartLine+clocks.DisplayLines; scanline++ {
		displayLine := scanline
		if displayLine < 0 {
			displayLine = 0
		}
		if displayLine > nlines-1 {
			displayLine = nlines - 1
		}

		if c.dmactl&0x20 != 0 {
			if mode.TokensPerByte > 0 && scanline == first {
				c.fetchScanBuffer(nchars)
			}
		}

		width := nchars * mode.TokensPerByte
		nmi := scanline == last && ir&0x80 != 0
		c.scanline(nmi, mode, fillInOffset, width, c.dmactl&0x10 != 0, displayLine, first)
	}
}

// fetchWidth returns how many scan-buffer bytes the current DMACTL
// playfield-width setting asks for.
func (c *Chip) fetchWidth() int {
	w := dmaWidths[c.dmactl&0x03]
	columns := w.columns
	if c.dmactl&0x10 != 0 {
		columns = w.scrollColumns
	}
	bytes := columns / 8
	if bytes > scanBufferSize {
		bytes = scanBufferSize
	}
	return bytes
}

// fetchScanBuffer pulls nbytes of screen/font-selector data into the scan
// buffer and reserves the matching DMA slots. The real chip fetches from
// PFBase and advances it per byte; that bookkeeping lives here rather than
// in the generators, which only ever see the result.
func (c *Chip) fetchScanBuffer(nbytes int) {
	w := dmaWidths[c.dmactl&0x03]
	first := w.firstCycle
	if c.dmactl&0x10 != 0 {
		first = w.firstCycleHS
	}
	c.cpu.StealCycles(dma.Request{FirstCycle: first, LastCycle: first + nbytes - 1, Mask: []bool{true}})
	for i := 0; i < nbytes && i < scanBufferSize; i++ {
		v, err := c.mem.ReadAntic(c.pfBase)
		if err != nil {
			v = 0
		}
		c.scanBuffer[i] = v
		c.pfBase++
	}
}

// scanline implements Antic::Scanline: it reserves player/missile DMA,
// advances the CPU up to the DLI reaction point, raises NMI for a DLI or
// VBI line, runs the mode's generator into the line buffer, advances the
// CPU the rest of the way, and finally hands the line to GTIA.
func (c *Chip) scanline(nmi bool, mode generators.Mode, fillIn, width int, xscroll bool, displayLine, first int) {
	switch c.dmactl & 0x0c {
	case 0x08, 0x0c:
		c.cpu.StealCycles(dma.Request{FirstCycle: playerFetchFirst, LastCycle: playerFetchFirst, Mask: []bool{true}})
		fallthrough
	case 0x04:
		c.cpu.StealCycles(dma.Request{FirstCycle: missileFetchFirst, LastCycle: missileFetchFirst, Mask: []bool{true}})
	}

	c.cpu.Go(beforeDLICycles)

	shift := fillIn
	if xscroll {
		shift = fillIn - int(c.hscrol)*2
		if shift < 0 {
			shift = 0
		}
	}

	if c.yPos == clocks.VBIStartLine {
		c.nmist = 0x40
		if c.nmien&0xc0 != 0 {
			c.cpu.GenerateNMI()
		}
	} else if nmi {
		c.nmist = 0x80
		if c.nmien&0xc0 != 0 {
			c.cpu.GenerateNMI()
		}
	}

	for i := range c.lineBuffer {
		c.lineBuffer[i] = byte(gtia.TokenBackground)
	}
	if width > 0 {
		end := shift + width
		if end > len(c.lineBuffer) {
			end = len(c.lineBuffer)
		}
		nbytes := c.fetchWidth()
		out := make([]gtia.Token, end-shift)
		mode.Generator(out, c.scanBuffer[:nbytes], displayLine, c.charControl, memSource{c.mem})
		for i, tok := range out {
			c.lineBuffer[shift+i] = byte(tok)
		}
	}

	if cycles := beforeDisplayClocks - c.cpu.CurrentXPos(); cycles > 0 {
		c.cpu.Go(cycles)
	}

	c.gtia.TriggerScanline(c.lineBuffer[:], shift, displayModulo-fillInOffset, mode.Fiddling)

	c.yPos++
	c.cpu.Hbi()
}

// DisplayListCounter returns ANTIC's current display-list program counter,
// for debugger/status display.
func (c *Chip) DisplayListCounter() uint16 { return c.dlistShadow }

// NMIStatus returns the live NMIST value, for debugger/status display.
func (c *Chip) NMIStatus() uint8 { return c.nmist }
