// Package hardware is the base package for the Atari 8-bit emulation. It
// and its sub-packages contain everything required for a headless, cycle
// co-simulation of the 6502/65C02 CPU, ANTIC, and their narrow-contract
// collaborators.
//
// The Machine type in the machine sub-package is the root of the
// emulation: it wires the CPU onto the shared address space alongside
// ANTIC, GTIA, POKEY, PIA, and SIO, and drives either a continuous frame
// loop (with a required per-frame hook that can return a signal to stop
// it) or a single stepped frame.
package hardware
