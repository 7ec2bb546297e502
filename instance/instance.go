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

// Package instance defines those parts of the emulation that might change
// from instance to instance of the emulated machine, but which are not
// themselves part of the machine's architecture. This lets more than one
// Machine run in the same process (for example, a reference machine and a
// speculative/rewound machine used for lookahead) without sharing RNG state
// or preferences.
package instance

import "github.com/inductive-bias/atari8core/random"

// Preferences bundles the small set of run-time choices that affect cold
// start behaviour but are not part of the emulated hardware itself.
type Preferences struct {
	// RandomState selects whether CPU/chip power-on state is randomised
	// (closer to real hardware) or zeroed (deterministic, easier to test
	// against).
	RandomState bool
}

// Instance bundles per-run state: preferences and the random number
// generator used for power-on randomisation.
type Instance struct {
	Prefs  Preferences
	Random *random.Random
}

// NewInstance is the preferred method of initialisation for Instance.
func NewInstance(coords random.CoordsSource) *Instance {
	return &Instance{
		Random: random.NewRandom(coords),
	}
}

// Normalise puts the instance into a known, deterministic state. Used by
// regression tests that need the same initial conditions on every run.
func (ins *Instance) Normalise() {
	ins.Random.ZeroSeed = true
	ins.Prefs.RandomState = false
}
