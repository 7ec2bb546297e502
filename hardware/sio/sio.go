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

// Package sio defines the narrow Device contract spec.md leaves as an
// external collaborator: a peripheral addressable by a single-byte unit
// number that answers SIO command frames. Disk image formats, the real
// two-wire serial timing, and printer/stream byte encodings are out of
// scope (spec.md §1); what is in scope is the seam the patch/ESC
// framework's H:/E:/P:/R: handler patches would call through to reach a
// Device, so that a concrete handler patch can be built against this
// package without this package knowing anything about disks or printers.
package sio

import "github.com/inductive-bias/atari8core/errors"

// Command is one SIO command frame: device unit, command byte, and the two
// auxiliary bytes real SIO always sends alongside it.
type Command struct {
	Unit    uint8
	Command uint8
	Aux1    uint8
	Aux2    uint8
}

// Status mirrors the one-byte completion code a real SIO transaction ends
// with: 'C' (0x43) for complete, 'E' (0x45) for error, 'N' (0x4e) for NAK.
type Status uint8

const (
	StatusComplete Status = 'C'
	StatusError    Status = 'E'
	StatusNAK      Status = 'N'
)

// Device is implemented by a peripheral attached to the SIO bus: a disk
// drive, a printer, a modem. Exec runs one command frame synchronously
// (the core has no timing model for the two-wire protocol) and returns
// the data block a read command produces, if any.
type Device interface {
	// Unit returns the device's SIO unit number, used to route a Command
	// to it.
	Unit() uint8

	// Exec executes cmd against the device, returning any data block the
	// command produces (nil for a pure write or status command) and the
	// completion status.
	Exec(cmd Command, data []byte) ([]byte, Status, error)
}

// Bus routes SIO command frames to the device claiming the addressed unit
// number, the way the patch framework's escape-code Table routes a
// dispatch code to the provider that claimed it.
type Bus struct {
	devices map[uint8]Device
}

// NewBus returns an empty SIO bus with no devices attached.
func NewBus() *Bus {
	return &Bus{devices: make(map[uint8]Device)}
}

// Attach registers dev under its own unit number. Attaching a second
// device under an already-claimed unit replaces the first.
func (b *Bus) Attach(dev Device) {
	b.devices[dev.Unit()] = dev
}

// Detach removes whatever device is attached at unit, if any.
func (b *Bus) Detach(unit uint8) {
	delete(b.devices, unit)
}

// Exec routes cmd to the device claiming cmd.Unit.
func (b *Bus) Exec(cmd Command, data []byte) ([]byte, Status, error) {
	dev, ok := b.devices[cmd.Unit]
	if !ok {
		return nil, StatusNAK, errors.Errorf(errors.SIOUnitNotAttached, cmd.Unit)
	}
	return dev.Exec(cmd, data)
}
