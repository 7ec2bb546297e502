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

package patch_test

import (
	"testing"

	"github.com/inductive-bias/atari8core/hardware/patch"
	"github.com/inductive-bias/atari8core/test"
)

type fakePatch struct {
	first, last uint8
	ran         []uint8
}

func (f *fakePatch) FirstCode() uint8 { return f.first }
func (f *fakePatch) LastCode() uint8  { return f.last }
func (f *fakePatch) Run(code uint8, regs patch.Registers, mem patch.Memory) error {
	f.ran = append(f.ran, code)
	return nil
}

type fakeRegisters struct{ a, x, y uint8 }

func (r *fakeRegisters) A() uint8            { return r.a }
func (r *fakeRegisters) SetA(v uint8)        { r.a = v }
func (r *fakeRegisters) X() uint8            { return r.x }
func (r *fakeRegisters) SetX(v uint8)        { r.x = v }
func (r *fakeRegisters) Y() uint8            { return r.y }
func (r *fakeRegisters) SetY(v uint8)        { r.y = v }
func (r *fakeRegisters) PC() uint16          { return 0 }
func (r *fakeRegisters) SetPC(uint16)        {}
func (r *fakeRegisters) StatusValue() uint8  { return 0 }
func (r *fakeRegisters) SetStatusValue(uint8) {}

type fakeMemory map[uint16]uint8

func (m fakeMemory) Read(addr uint16) (uint8, error) { return m[addr], nil }
func (m fakeMemory) Write(addr uint16, v uint8) error {
	m[addr] = v
	return nil
}
func (m fakeMemory) PatchByte(addr uint16, v uint8) error {
	m[addr] = v
	return nil
}

func TestClaimHandsOutAscendingContiguousRanges(t *testing.T) {
	tbl := patch.NewTable()
	first := &fakePatch{}
	second := &fakePatch{}

	base1, err := tbl.Claim(4, first)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, base1, uint8(0))

	base2, err := tbl.Claim(2, second)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, base2, uint8(4))
}

func TestClaimFailsOnceAllTwoHundredFiftySixCodesAreGone(t *testing.T) {
	tbl := patch.NewTable()
	_, err := tbl.Claim(256, &fakePatch{})
	test.ExpectSuccess(t, err)

	_, err = tbl.Claim(1, &fakePatch{})
	test.ExpectFailure(t, err)
}

func TestDispatchRoutesToTheClaimingPatch(t *testing.T) {
	tbl := patch.NewTable()
	p := &fakePatch{}
	base, err := tbl.Claim(3, p)
	test.ExpectSuccess(t, err)

	regs := &fakeRegisters{}
	mem := fakeMemory{}
	err = tbl.Dispatch(base+2, regs, mem)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p.ran, []uint8{base + 2})
}

func TestDispatchOnAnUnclaimedCodeFails(t *testing.T) {
	tbl := patch.NewTable()
	err := tbl.Dispatch(0x10, &fakeRegisters{}, fakeMemory{})
	test.ExpectFailure(t, err)
}

func TestIsInstalledReflectsOnlyClaimedCodes(t *testing.T) {
	tbl := patch.NewTable()
	test.ExpectEquality(t, tbl.IsInstalled(0x00), false)
	tbl.Claim(1, &fakePatch{})
	test.ExpectEquality(t, tbl.IsInstalled(0x00), true)
	test.ExpectEquality(t, tbl.IsInstalled(0x01), false)
}

func TestInstallWritesTheEscapeSequenceAtTheGivenAddress(t *testing.T) {
	mem := fakeMemory{}
	err := patch.Install(mem, 0x4000, 0x10, 0x03)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, mem[0x4000], patch.EscapeOpcode)
	test.ExpectEquality(t, mem[0x4001], uint8(0x13))
}
