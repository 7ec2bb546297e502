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

func TestNewStatusHasBreakSet(t *testing.T) {
	sr := registers.NewStatus()
	test.ExpectEquality(t, sr.Break, true)
	test.ExpectEquality(t, sr.Value(), uint8(0x30))
}

func TestStatusValueForcesUnusedBit(t *testing.T) {
	var sr registers.Status
	sr.Load(0x00)
	test.ExpectEquality(t, sr.Value()&0x20, uint8(0x20))
}

func TestStatusLoadAlwaysSetsBreak(t *testing.T) {
	var sr registers.Status
	sr.Load(0x00)
	test.ExpectEquality(t, sr.Break, true)
}

func TestStatusLoadRoundTrips(t *testing.T) {
	var sr registers.Status
	sr.Load(0xff)
	test.ExpectEquality(t, sr.Negative, true)
	test.ExpectEquality(t, sr.Overflow, true)
	test.ExpectEquality(t, sr.DecimalMode, true)
	test.ExpectEquality(t, sr.InterruptDisable, true)
	test.ExpectEquality(t, sr.Zero, true)
	test.ExpectEquality(t, sr.Carry, true)
	test.ExpectEquality(t, sr.Value(), uint8(0xff))
}

func TestStatusString(t *testing.T) {
	var sr registers.Status
	sr.Load(0x00)
	// Load always forces Break set, regardless of the byte loaded.
	test.ExpectEquality(t, sr.String(), "nv-Bdizc")

	sr.Load(0xff)
	test.ExpectEquality(t, sr.String(), "NV-BDIZC")
}
