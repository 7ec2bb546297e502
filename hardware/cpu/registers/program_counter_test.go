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

package registers_test

import (
	"testing"

	"github.com/inductive-bias/atari8core/hardware/cpu/registers"
	"github.com/inductive-bias/atari8core/test"
)

func TestProgramCounterLoad(t *testing.T) {
	pc := registers.NewProgramCounter(0x0000)
	pc.Load(0x6000)
	test.ExpectEquality(t, pc.Value(), uint16(0x6000))
	test.ExpectEquality(t, pc.String(), "6000")
}

func TestProgramCounterIncrement(t *testing.T) {
	pc := registers.NewProgramCounter(0x60ff)
	pc.Increment()
	test.ExpectEquality(t, pc.Value(), uint16(0x6100))
}

func TestProgramCounterAddNoPageCross(t *testing.T) {
	pc := registers.NewProgramCounter(0x6010)
	crossed := pc.Add(0x05)
	test.ExpectEquality(t, pc.Value(), uint16(0x6015))
	test.ExpectEquality(t, crossed, false)
}

func TestProgramCounterAddPageCross(t *testing.T) {
	pc := registers.NewProgramCounter(0x60fe)
	crossed := pc.Add(0x05)
	test.ExpectEquality(t, pc.Value(), uint16(0x6103))
	test.ExpectEquality(t, crossed, true)
}

func TestProgramCounterWraps(t *testing.T) {
	pc := registers.NewProgramCounter(0xffff)
	pc.Increment()
	test.ExpectEquality(t, pc.Value(), uint16(0x0000))
}
