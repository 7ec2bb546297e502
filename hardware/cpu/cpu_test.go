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

package cpu_test

import (
	"testing"

	"github.com/inductive-bias/atari8core/hardware/cpu"
	"github.com/inductive-bias/atari8core/hardware/dma"
	"github.com/inductive-bias/atari8core/hardware/memory"
	"github.com/inductive-bias/atari8core/hardware/memory/addresses"
	"github.com/inductive-bias/atari8core/test"
)

// newCPU wires a CPU to a fully RAM-backed 64K space, with the reset vector
// pointed at 0x0600 - the classic Atari "type it in" program origin - so
// tests can load a short sequence of instructions there.
func newCPU(program map[uint16]uint8) (*cpu.CPU, *memory.Space) {
	space := memory.NewSpace()
	for page := 0; page < 256; page++ {
		space.MapPage(uint16(page)<<8, memory.NewRAMPage())
	}
	space.Write(addresses.Reset, 0x00)
	space.Write(addresses.Reset+1, 0x06)
	for addr, v := range program {
		space.Write(addr, v)
	}
	c := cpu.NewCPU(nil, space, dma.NewAllocator(), cpu.NMOS)
	return c, space
}

// runToBoundary executes exactly one instruction boundary's worth of work:
// the opcode fetch (or, if an interrupt is pending, the interrupt entry,
// which this core performs synchronously within the fetch cycle) via Go(1),
// then Sync drains whatever micro-steps that fetch queued.
func runToBoundary(t *testing.T, c *cpu.CPU) {
	t.Helper()
	err := c.Go(1)
	test.ExpectSuccess(t, err)
	err = c.Sync()
	test.ExpectSuccess(t, err)
}

func TestColdStartLoadsPCFromTheResetVector(t *testing.T) {
	c, _ := newCPU(nil)
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0600))
}

func TestLDAImmediateLoadsTheAccumulatorAndSetsFlags(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{0x0600: 0xA9, 0x0601: 0x00})
	runToBoundary(t, c)
	test.ExpectEquality(t, c.A.Value(), uint8(0x00))
	test.ExpectEquality(t, c.Status.Zero, true)
}

func TestLDAAbsoluteXCrossesAPageAtNoExtraVisibleCost(t *testing.T) {
	c, space := newCPU(map[uint16]uint8{
		0x0600: 0xA2, 0x0601: 0xFF, // LDX #$FF
		0x0602: 0xBD, 0x0603: 0x01, 0x0604: 0x06, // LDA $0601,X -> $0700
	})
	space.Write(0x0700, 0x42)
	runToBoundary(t, c)
	runToBoundary(t, c)
	test.ExpectEquality(t, c.A.Value(), uint8(0x42))
}

func TestSTAWritesTheAccumulatorToAbsoluteMemory(t *testing.T) {
	c, space := newCPU(map[uint16]uint8{
		0x0600: 0xA9, 0x0601: 0x37, // LDA #$37
		0x0602: 0x8D, 0x0603: 0x00, 0x0604: 0x07, // STA $0700
	})
	runToBoundary(t, c)
	runToBoundary(t, c)
	v, err := space.Read(0x0700)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x37))
}

func TestADCSetsOverflowAndNegativeOnSignedOverflow(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{
		0x0600: 0xA9, 0x0601: 0x7F, // LDA #$7F
		0x0602: 0x69, 0x0603: 0x01, // ADC #$01
	})
	runToBoundary(t, c)
	runToBoundary(t, c)
	test.ExpectEquality(t, c.A.Value(), uint8(0x80))
	test.ExpectEquality(t, c.Status.Overflow, true)
	test.ExpectEquality(t, c.Status.Negative, true)
}

func TestJSRAndRTSRoundTripTheReturnAddress(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{
		0x0600: 0x20, 0x0601: 0x00, 0x0602: 0x07, // JSR $0700
		0x0700: 0x60, // RTS
	})
	runToBoundary(t, c) // JSR
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0700))
	runToBoundary(t, c) // RTS
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0603))
}

func TestBranchTakenJumpsRelativeToTheFollowingInstruction(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{
		0x0600: 0xA9, 0x0601: 0x00, // LDA #$00 -> sets Z
		0x0602: 0xF0, 0x0603: 0x02, // BEQ +2 -> $0606
		0x0606: 0xEA, // NOP
	})
	runToBoundary(t, c)
	runToBoundary(t, c)
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0606))
}

func TestGoLeavesTheCPUMidInstructionAfterOneCycle(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{0x0600: 0xEA, 0x0601: 0xEA}) // NOP, NOP
	err := c.Go(1)
	test.ExpectSuccess(t, err)
	// NOP is a 2-cycle instruction; after one cycle the queue is non-empty
	// (still mid-instruction), so PC has already advanced past the opcode
	// byte but the boundary has not yet been reached.
	test.ExpectEquality(t, c.AtInstructionBoundary(), false)
}

func TestGoIdlesWhileTheCurrentCycleIsStolenByDMA(t *testing.T) {
	space := memory.NewSpace()
	for page := 0; page < 256; page++ {
		space.MapPage(uint16(page)<<8, memory.NewRAMPage())
	}
	space.Write(addresses.Reset, 0x00)
	space.Write(addresses.Reset+1, 0x06)
	space.Write(0x0600, 0xEA) // NOP

	alloc := dma.NewAllocator()
	alloc.Steal(dma.Request{FirstCycle: 0, LastCycle: 0, Mask: []bool{true}})
	c := cpu.NewCPU(nil, space, alloc, cpu.NMOS)

	err := c.Go(1)
	test.ExpectSuccess(t, err)
	// the first slot is stolen by DMA, so the CPU idles through it instead
	// of fetching: still sitting at the boundary with PC untouched.
	test.ExpectEquality(t, c.AtInstructionBoundary(), true)
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0600))
}

func TestGenerateNMIIsServicedAtTheNextInstructionBoundary(t *testing.T) {
	c, space := newCPU(map[uint16]uint8{0x0600: 0xEA}) // NOP
	space.Write(addresses.NMI, 0x00)
	space.Write(addresses.NMI+1, 0x09)

	c.GenerateNMI()
	runToBoundary(t, c)
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0900))
}

func TestSetIRQLineIsIgnoredWhileInterruptsAreMasked(t *testing.T) {
	c, space := newCPU(map[uint16]uint8{0x0600: 0xEA})
	space.Write(addresses.IRQ, 0x00)
	space.Write(addresses.IRQ+1, 0x09)

	c.SetIRQLine(true) // InterruptDisable is set by ColdStart
	runToBoundary(t, c)
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0601))
}

func TestSetIRQLineIsServicedOnceInterruptsAreUnmasked(t *testing.T) {
	c, space := newCPU(map[uint16]uint8{
		0x0600: 0x58, // CLI
		0x0601: 0xEA, // NOP
	})
	space.Write(addresses.IRQ, 0x00)
	space.Write(addresses.IRQ+1, 0x09)

	c.SetIRQLine(true)
	runToBoundary(t, c) // CLI
	runToBoundary(t, c) // interrupt serviced before the NOP executes
	test.ExpectEquality(t, c.PC.Value(), uint16(0x0900))
}

func TestBreakpointFiresTheMonitorAtTheMatchingPC(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{0x0600: 0xEA, 0x0601: 0xEA})
	var broke uint16
	c.Monitor = &fakeMonitor{onBreak: func(pc uint16) { broke = pc }}
	c.SetBreakpoint(0, 0x0601, true)

	runToBoundary(t, c)
	runToBoundary(t, c)
	test.ExpectEquality(t, broke, uint16(0x0601))
}

func TestWatchpointFiresOnWriteButNotOnUnrelatedReads(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{
		0x0600: 0xA9, 0x0601: 0x99, // LDA #$99
		0x0602: 0x85, 0x0603: 0x50, // STA $50
	})
	var wrote, read bool
	c.Monitor = &fakeMonitor{onWatch: func(addr uint16, write bool) {
		if addr == 0x50 && write {
			wrote = true
		}
		if !write {
			read = true
		}
	}}
	c.SetWatchpoint(0, 0x50, true, false)

	runToBoundary(t, c)
	runToBoundary(t, c)
	test.ExpectEquality(t, wrote, true)
	test.ExpectEquality(t, read, false)
}

func TestEnableProfilingCountsOpcodeFetchesPerPC(t *testing.T) {
	c, _ := newCPU(map[uint16]uint8{0x0600: 0xEA, 0x0601: 0x4C, 0x0602: 0x00, 0x0603: 0x06})
	c.EnableProfiling(true)

	runToBoundary(t, c) // NOP at 0x0600
	runToBoundary(t, c) // JMP $0600
	runToBoundary(t, c) // NOP at 0x0600 again

	test.ExpectEquality(t, c.PCCount(0x0600), uint64(2))
}

type fakeMonitor struct {
	onBreak func(pc uint16)
	onWatch func(addr uint16, write bool)
}

func (f *fakeMonitor) OnBreak(pc uint16) {
	if f.onBreak != nil {
		f.onBreak(pc)
	}
}
func (f *fakeMonitor) OnWatch(addr uint16, write bool) {
	if f.onWatch != nil {
		f.onWatch(addr, write)
	}
}
func (f *fakeMonitor) OnJam(opcode uint8)   {}
func (f *fakeMonitor) OnCrash(opcode uint8) {}
