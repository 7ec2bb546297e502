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

// Package pokey implements the register-level contract of POKEY at
// $D200-$D2FF: the IRQEN/IRQST interrupt-request pair, SKCTL/SKSTAT, the
// serial I/O shift registers (SEROUT/SERIN) and the RANDOM/POT* read-only
// registers. Audio synthesis and real two-wire serial protocol timing are
// explicitly out of scope (spec.md §1); what remains is exactly the part
// of POKEY the CPU, the patch framework, and an SIO collaborator can
// observe through the bus.
package pokey

import "github.com/inductive-bias/atari8core/random"

// IRQ bit positions within IRQEN/IRQST, in the order real POKEY documents
// them. Only the bits a headless core can meaningfully assert are used
// here (serial and the two hardware timers); the audio-adjacent bits
// (timer 1/2 underflow reused for audio) are tracked for bus fidelity but
// never fire on their own since there is no audio clock driving them.
const (
	IRQTimer1 = 0x01
	IRQTimer2 = 0x02
	IRQTimer4 = 0x04
	IRQSerOutDone  = 0x08
	IRQSerOutEmpty = 0x10
	IRQSerIn       = 0x20
	IRQBreak       = 0x80
)

// IRQLine is the narrow view of the CPU's interrupt input POKEY and PIA
// both assert onto; satisfied by cpu.CPU.SetIRQLine.
type IRQLine interface {
	SetIRQLine(asserted bool)
}

// Chip is POKEY's CPU-visible register surface.
type Chip struct {
	irq IRQLine
	rng *random.Random

	audf [4]uint8
	audc [4]uint8
	audctl uint8

	irqen uint8
	irqst uint8 // active-low latch: a pending IRQ clears the matching bit

	skctl  uint8
	skstat uint8

	potgo  uint8
	allpot uint8
	pot    [8]uint8

	serout uint8
	serin  uint8
	kbcode uint8
}

// NewChip returns a POKEY register surface. rng supplies RANDOM reads; irq
// may be nil, in which case SEROUT/timer IRQ requests are tracked in
// IRQST but never actually asserted onto a CPU.
func NewChip(rng *random.Random, irq IRQLine) *Chip {
	c := &Chip{rng: rng, irq: irq}
	c.ColdStart()
	return c
}

// ColdStart resets POKEY to its documented power-on state: IRQST all 1s
// (no IRQ pending, since the latch is active-low), IRQEN all masked off.
func (c *Chip) ColdStart() {
	*c = Chip{rng: c.rng, irq: c.irq}
	c.irqst = 0xff
	c.skstat = 0xff
	c.allpot = 0xff
	for i := range c.pot {
		c.pot[i] = 0xe4
	}
}

// WarmStart leaves POKEY's audio/timer configuration alone but clears any
// latched IRQ request, matching how a RESET pulse does not silence audio
// that was already playing but does abort an in-flight serial transfer.
func (c *Chip) WarmStart() {
	c.irqst = 0xff
	c.skstat = 0xff
	c.updateIRQLine()
}

// raise sets bit in IRQST (clearing it, since the latch is active-low)
// when the matching IRQEN bit is set, and asserts the shared IRQ line.
func (c *Chip) raise(bit uint8) {
	if c.irqen&bit == 0 {
		return
	}
	c.irqst &^= bit
	c.updateIRQLine()
}

func (c *Chip) updateIRQLine() {
	if c.irq == nil {
		return
	}
	c.irq.SetIRQLine(c.irqst != 0xff)
}

// RaiseSerOutDone signals that a byte written to SEROUT has finished
// transmission, for an SIO collaborator driving the serial protocol on
// top of this register surface.
func (c *Chip) RaiseSerOutDone() { c.raise(IRQSerOutDone) }

// RaiseSerIn signals that a byte has arrived in SERIN.
func (c *Chip) RaiseSerIn(v uint8) {
	c.serin = v
	c.raise(IRQSerIn)
}

// ReadRegister implements memory.IOHandler.
func (c *Chip) ReadRegister(offset uint8) (uint8, error) {
	offset &= 0x0f
	switch offset {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return c.pot[offset], nil
	case 0x08:
		return c.allpot, nil
	case 0x09:
		return c.kbcode, nil
	case 0x0a:
		return uint8(c.rng.NoRewind(256)), nil
	case 0x0d:
		return c.serin, nil
	case 0x0e:
		return c.irqst, nil
	default: // 0x0f
		return c.skstat, nil
	}
}

// WriteRegister implements memory.IOHandler.
func (c *Chip) WriteRegister(offset uint8, v uint8) error {
	offset &= 0x0f
	switch offset {
	case 0x00, 0x02, 0x04, 0x06:
		c.audf[offset>>1] = v
	case 0x01, 0x03, 0x05, 0x07:
		c.audc[offset>>1] = v
	case 0x08:
		c.audctl = v
	case 0x09:
		// STIMER: restarts the polynomial counters; no timer simulation
		// exists here so this is a no-op beyond bus acknowledgement.
	case 0x0a:
		// SKRES: clears the framing/overrun bits of SKSTAT.
		c.skstat |= 0xe0
	case 0x0b:
		c.potgo = v
	case 0x0d:
		c.serout = v
	case 0x0e:
		c.irqen = v
		// Bits of IRQST whose enable just got masked off read back as 1
		// (no request pending) even if a request is logically queued.
		c.irqst |= ^v
		c.updateIRQLine()
	default: // 0x0f
		c.skctl = v
	}
	return nil
}
