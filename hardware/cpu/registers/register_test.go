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

func TestRegisterLoad(t *testing.T) {
	r := registers.NewRegister(0x00, "A")
	r.Load(0x7f)
	test.ExpectEquality(t, r.Value(), uint8(0x7f))
	test.ExpectEquality(t, r.IsNegative(), false)
	test.ExpectEquality(t, r.IsZero(), false)

	r.Load(0x00)
	test.ExpectEquality(t, r.IsZero(), true)

	r.Load(0x80)
	test.ExpectEquality(t, r.IsNegative(), true)
}

func TestRegisterAddNoCarry(t *testing.T) {
	r := registers.NewRegister(0x10, "A")
	carry, overflow := r.Add(0x20, false)
	test.ExpectEquality(t, r.Value(), uint8(0x30))
	test.ExpectEquality(t, carry, false)
	test.ExpectEquality(t, overflow, false)
}

func TestRegisterAddWithCarryIn(t *testing.T) {
	r := registers.NewRegister(0x10, "A")
	carry, _ := r.Add(0x20, true)
	test.ExpectEquality(t, r.Value(), uint8(0x31))
	test.ExpectEquality(t, carry, false)
}

func TestRegisterAddCarryOut(t *testing.T) {
	r := registers.NewRegister(0xff, "A")
	carry, _ := r.Add(0x01, false)
	test.ExpectEquality(t, r.Value(), uint8(0x00))
	test.ExpectEquality(t, carry, true)
}

func TestRegisterAddSignedOverflow(t *testing.T) {
	// 0x50 + 0x50 = 0xa0: two positives producing a negative result
	r := registers.NewRegister(0x50, "A")
	carry, overflow := r.Add(0x50, false)
	test.ExpectEquality(t, r.Value(), uint8(0xa0))
	test.ExpectEquality(t, carry, false)
	test.ExpectEquality(t, overflow, true)
}

func TestRegisterSubtract(t *testing.T) {
	r := registers.NewRegister(0x50, "A")
	carry, overflow := r.Subtract(0x10, true)
	test.ExpectEquality(t, r.Value(), uint8(0x40))
	test.ExpectEquality(t, carry, true)
	test.ExpectEquality(t, overflow, false)
}

func TestRegisterSubtractBorrow(t *testing.T) {
	r := registers.NewRegister(0x10, "A")
	carry, _ := r.Subtract(0x20, true)
	test.ExpectEquality(t, r.Value(), uint8(0xf0))
	test.ExpectEquality(t, carry, false)
}

func TestRegisterLogicalOps(t *testing.T) {
	r := registers.NewRegister(0xf0, "A")
	r.AND(0x3c)
	test.ExpectEquality(t, r.Value(), uint8(0x30))

	r.Load(0xf0)
	r.ORA(0x0f)
	test.ExpectEquality(t, r.Value(), uint8(0xff))

	r.Load(0xff)
	r.EOR(0x0f)
	test.ExpectEquality(t, r.Value(), uint8(0xf0))
}

func TestRegisterShifts(t *testing.T) {
	r := registers.NewRegister(0x81, "A")
	carry := r.ASL()
	test.ExpectEquality(t, r.Value(), uint8(0x02))
	test.ExpectEquality(t, carry, true)

	r.Load(0x81)
	carry = r.LSR()
	test.ExpectEquality(t, r.Value(), uint8(0x40))
	test.ExpectEquality(t, carry, true)
}

func TestRegisterRotates(t *testing.T) {
	r := registers.NewRegister(0x80, "A")
	carry := r.ROL(true)
	test.ExpectEquality(t, r.Value(), uint8(0x01))
	test.ExpectEquality(t, carry, true)

	r.Load(0x01)
	carry = r.ROR(true)
	test.ExpectEquality(t, r.Value(), uint8(0x80))
	test.ExpectEquality(t, carry, true)
}

func TestRegisterName(t *testing.T) {
	r := registers.NewRegister(0x00, "X")
	test.ExpectEquality(t, r.Name(), "X")
}
