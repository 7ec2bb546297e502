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

// Package random provides a source of randomness for power-on register
// state. Real hardware powers on with unpredictable register contents; the
// CPU's Reset() function can optionally fill A/X/Y/S/P/PC with "random"
// values drawn from here rather than zeroing them, which is useful for
// shaking out code that accidentally depends on the zero power-on state.
//
// The seed is derived from the emulated frame/scanline/colour-clock
// position rather than from wall-clock time, so that two machines stepped
// in lockstep (for regression testing, or for running a frame twice to
// compare) see the same sequence of "random" values.
package random

import "math/rand"

// Coords identifies a position in the video signal. ANTIC (or any other
// coordinate source) implements CoordsSource to let the random number
// generator reseed itself deterministically from the current position.
type Coords struct {
	Frame    int
	Scanline int
	Clock    int
}

// CoordsSource is implemented by whatever owns the current video position -
// normally the ANTIC chip by way of the Machine.
type CoordsSource interface {
	GetCoords() Coords
}

// Random is a thin wrapper around math/rand that reseeds itself from the
// current video position on every call, unless ZeroSeed is set.
type Random struct {
	coords CoordsSource

	// ZeroSeed forces the generator to behave deterministically from a
	// fixed seed of zero. Used by regression tests that require the same
	// "random" sequence on every run regardless of the coords source.
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for Random.
func NewRandom(coords CoordsSource) *Random {
	return &Random{coords: coords}
}

func (r *Random) seed() int64 {
	if r.ZeroSeed {
		return 0
	}
	c := r.coords.GetCoords()
	return int64(c.Frame)*1000003 + int64(c.Scanline)*2017 + int64(c.Clock)
}

// NoRewind returns a random number in the range [0, n) without needing to
// rewind/replay the sequence - every call reseeds from the current coords,
// so the same coords always produce the same value.
func (r *Random) NoRewind(n int) int {
	if n <= 0 {
		return 0
	}
	src := rand.New(rand.NewSource(r.seed()))
	return src.Intn(n)
}

// Rewindable returns a random number in the range [0, 256) derived from n
// and the generator's seed, or 0 when n <= 0. The seed comes from the
// coords source unless ZeroSeed is set, so the same n at the same coords
// always produces the same value.
func (r *Random) Rewindable(n int) int {
	if n <= 0 {
		return 0
	}
	src := rand.New(rand.NewSource(r.seed() + int64(n)*31))
	return src.Intn(256)
}
