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

package memory_test

import (
	"testing"

	"github.com/inductive-bias/atari8core/hardware/memory"
	"github.com/inductive-bias/atari8core/hardware/memory/bus"
	"github.com/inductive-bias/atari8core/test"
)

func TestUnmappedPageIsBusError(t *testing.T) {
	s := memory.NewSpace()
	_, err := s.Read(0x1234)
	test.ExpectEquality(t, err, bus.ErrUnmappedAddress)

	err = s.Write(0x1234, 0xff)
	test.ExpectEquality(t, err, bus.ErrUnmappedAddress)
}

func TestRAMRoundTrip(t *testing.T) {
	s := memory.NewSpace()
	test.ExpectSuccess(t, s.MapPage(0x0000, memory.NewRAMPage()))

	test.ExpectSuccess(t, s.Write(0x0012, 0x42))
	v, err := s.Read(0x0012)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x42))
}

func TestMapPageRequiresAlignment(t *testing.T) {
	s := memory.NewSpace()
	err := s.MapPage(0x0001, memory.NewRAMPage())
	test.ExpectFailure(t, err)
}

func TestROMIsNotWritableButPatchable(t *testing.T) {
	s := memory.NewSpace()
	image := make([]byte, 256)
	image[0x10] = 0xaa
	test.ExpectSuccess(t, s.MapPage(0xc000, memory.NewROMPage(image)))

	v, err := s.Read(0xc010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xaa))

	err = s.Write(0xc010, 0x00)
	test.ExpectEquality(t, err, bus.ErrNotWritable)

	test.ExpectSuccess(t, s.PatchByte(0xc010, 0x22))
	v, err = s.Read(0xc010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x22))
}

type stubIO struct {
	last uint8
}

func (s *stubIO) ReadRegister(offset uint8) (uint8, error) {
	return offset, nil
}

func (s *stubIO) WriteRegister(offset uint8, value uint8) error {
	s.last = value
	return nil
}

func TestIOPageDispatchesThroughHandler(t *testing.T) {
	s := memory.NewSpace()
	io := &stubIO{}
	test.ExpectSuccess(t, s.MapPage(0xd400, memory.NewIOPage(io)))
	test.ExpectEquality(t, s.IsIOSpace(0xd40a), true)

	v, err := s.Read(0xd40a)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x0a))

	test.ExpectSuccess(t, s.Write(0xd40a, 0x99))
	test.ExpectEquality(t, io.last, uint8(0x99))
}

func TestReadWordCrossesPageBoundary(t *testing.T) {
	s := memory.NewSpace()
	test.ExpectSuccess(t, s.MapPage(0x00ff&0xff00, memory.NewRAMPage()))
	test.ExpectSuccess(t, s.MapPage(0x0100, memory.NewRAMPage()))
	test.ExpectSuccess(t, s.Write(0x00ff, 0x34))
	test.ExpectSuccess(t, s.Write(0x0100, 0x12))

	v, err := s.ReadWord(0x00ff)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0x1234))
}

func TestZeroPageAndStackPageAreDirectSlices(t *testing.T) {
	s := memory.NewSpace()
	test.ExpectSuccess(t, s.MapPage(0x0000, memory.NewRAMPage()))
	test.ExpectSuccess(t, s.MapPage(0x0100, memory.NewRAMPage()))

	zp := s.ZeroPage()
	zp[0x80] = 0x7f
	v, err := s.Read(0x0080)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x7f))

	sp := s.StackPage()
	test.ExpectEquality(t, len(sp), 256)
}

func TestPeekAndPokeHaveNoSideEffects(t *testing.T) {
	s := memory.NewSpace()
	io := &stubIO{}
	test.ExpectSuccess(t, s.MapPage(0xd400, memory.NewIOPage(io)))

	v, err := s.Peek(0xd40a)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x00))
	test.ExpectEquality(t, io.last, uint8(0x00))

	test.ExpectSuccess(t, s.Poke(0xd40a, 0x55))
	test.ExpectEquality(t, io.last, uint8(0x00))
}
