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

// Package luapatch is one concrete instantiation of the patch.Patch
// contract: each escape code it claims runs a named Lua function, with the
// CPU's registers exposed to the script as a plain table of fields and the
// address space exposed as peek/poke functions. It demonstrates the
// provider contract end to end without implementing any real CIO device -
// H:/E:/P:/R: handler semantics remain out of scope.
package luapatch

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/inductive-bias/atari8core/hardware/patch"
)

// Provider owns one Lua state and a set of named entry points, each
// assigned its own escape code by the patch.Table it is installed into.
type Provider struct {
	state   *lua.LState
	entries []string
}

// NewProvider creates a provider around a fresh Lua state and loads src
// (a chunk defining the entry-point functions by name) into it.
func NewProvider(src string) (*Provider, error) {
	l := lua.NewState()
	if err := l.DoString(src); err != nil {
		l.Close()
		return nil, fmt.Errorf("luapatch: %w", err)
	}
	return &Provider{state: l}, nil
}

// Close releases the underlying Lua state.
func (p *Provider) Close() {
	p.state.Close()
}

// Register adds fn (the name of a global Lua function defined in the
// loaded chunk) as the next entry point. The index it is given corresponds
// to the offset from the base code the patch.Table later assigns.
func (p *Provider) Register(fn string) {
	p.entries = append(p.entries, fn)
}

// FirstCode and LastCode satisfy patch.Patch; they are meaningless until
// the provider has been installed into a patch.Table via Claim, at which
// point the caller is expected to keep the returned base code itself -
// these two exist only so Provider satisfies the interface uniformly.
func (p *Provider) FirstCode() uint8 { return 0 }
func (p *Provider) LastCode() uint8  { return uint8(len(p.entries) - 1) }

// Run dispatches escape code (relative to the base assigned at Claim time,
// i.e. already an index into entries) to the matching Lua function,
// passing it a registers table and peek/poke closures bound to mem.
func (p *Provider) Run(code uint8, regs patch.Registers, mem patch.Memory) error {
	if int(code) >= len(p.entries) {
		return fmt.Errorf("luapatch: escape code %#02x has no entry point", code)
	}
	l := p.state

	regTable := l.NewTable()
	regTable.RawSetString("a", lua.LNumber(regs.A()))
	regTable.RawSetString("x", lua.LNumber(regs.X()))
	regTable.RawSetString("y", lua.LNumber(regs.Y()))
	regTable.RawSetString("pc", lua.LNumber(regs.PC()))
	regTable.RawSetString("status", lua.LNumber(regs.StatusValue()))

	peek := l.NewFunction(func(ls *lua.LState) int {
		addr := uint16(ls.CheckNumber(1))
		v, err := mem.Read(addr)
		if err != nil {
			ls.RaiseError("luapatch: peek %#04x: %v", addr, err)
			return 0
		}
		ls.Push(lua.LNumber(v))
		return 1
	})
	poke := l.NewFunction(func(ls *lua.LState) int {
		addr := uint16(ls.CheckNumber(1))
		v := uint8(ls.CheckNumber(2))
		if err := mem.Write(addr, v); err != nil {
			ls.RaiseError("luapatch: poke %#04x: %v", addr, err)
		}
		return 0
	})

	fn := l.GetGlobal(p.entries[code])
	if fn == lua.LNil {
		return fmt.Errorf("luapatch: entry point %q not defined", p.entries[code])
	}

	if err := l.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, regTable, peek, poke); err != nil {
		return fmt.Errorf("luapatch: %s: %w", p.entries[code], err)
	}

	regs.SetA(uint8(lua.LVAsNumber(regTable.RawGetString("a"))))
	regs.SetX(uint8(lua.LVAsNumber(regTable.RawGetString("x"))))
	regs.SetY(uint8(lua.LVAsNumber(regTable.RawGetString("y"))))
	regs.SetPC(uint16(lua.LVAsNumber(regTable.RawGetString("pc"))))
	regs.SetStatusValue(uint8(lua.LVAsNumber(regTable.RawGetString("status"))))

	return nil
}
