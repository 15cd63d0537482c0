// Package wasmtest hand-encodes small WebAssembly modules for tests of the
// headless host bridge.
package wasmtest

import (
	"encoding/binary"
	"math"
	"slices"
)

// ValType is a wasm value type byte.
type ValType byte

// Value types.
const (
	I32 ValType = 0x7f
	F32 ValType = 0x7d
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Export kinds.
const (
	kindFunc   byte = 0x00
	kindTable  byte = 0x01
	kindMemory byte = 0x02
)

type imported struct {
	module, name string
	typeIdx      uint32
}

type function struct {
	typeIdx uint32
	body    []byte
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type segment struct {
	offset uint32
	data   []byte
}

// Module accumulates sections and encodes them in order.
type Module struct {
	types   []FuncType
	imports []imported
	funcs   []function
	pages   uint32
	table   []uint32
	exports []export
	data    []segment
}

// Import adds a function import and returns its function index. All imports
// must be added before any Func.
func (m *Module) Import(module, name string, ft FuncType) uint32 {
	if len(m.funcs) > 0 {
		panic("wasmtest: imports must precede functions")
	}
	m.imports = append(m.imports, imported{module: module, name: name, typeIdx: m.typeIndex(ft)})
	return uint32(len(m.imports) - 1) //nolint:gosec // G115: test modules are tiny
}

// Func adds a function with no locals. code is the instruction sequence
// without the trailing end.
func (m *Module) Func(ft FuncType, code ...[]byte) uint32 {
	body := []byte{0x00} // no local declarations
	for _, c := range code {
		body = append(body, c...)
	}
	body = append(body, 0x0b)
	m.funcs = append(m.funcs, function{typeIdx: m.typeIndex(ft), body: body})
	return uint32(len(m.imports) + len(m.funcs) - 1) //nolint:gosec // G115: test modules are tiny
}

// Memory declares a linear memory of the given size in 64KiB pages.
func (m *Module) Memory(pages uint32) { m.pages = pages }

// Table declares table 0 holding funcs from offset 0.
func (m *Module) Table(funcs ...uint32) { m.table = funcs }

// ExportFunc exports a function.
func (m *Module) ExportFunc(name string, idx uint32) {
	m.exports = append(m.exports, export{name: name, kind: kindFunc, idx: idx})
}

// ExportMemory exports memory 0.
func (m *Module) ExportMemory(name string) {
	m.exports = append(m.exports, export{name: name, kind: kindMemory})
}

// ExportTable exports table 0.
func (m *Module) ExportTable(name string) {
	m.exports = append(m.exports, export{name: name, kind: kindTable})
}

// Data places bytes at offset in memory 0.
func (m *Module) Data(offset uint32, data []byte) {
	m.data = append(m.data, segment{offset: offset, data: data})
}

// Bytes encodes the module.
func (m *Module) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.types) > 0 {
		items := make([][]byte, 0, len(m.types))
		for _, ft := range m.types {
			item := []byte{0x60}
			item = append(item, valTypes(ft.Params)...)
			item = append(item, valTypes(ft.Results)...)
			items = append(items, item)
		}
		out = section(out, 1, vec(items))
	}

	if len(m.imports) > 0 {
		items := make([][]byte, 0, len(m.imports))
		for _, im := range m.imports {
			item := name(im.module)
			item = append(item, name(im.name)...)
			item = append(item, kindFunc)
			item = append(item, uleb(im.typeIdx)...)
			items = append(items, item)
		}
		out = section(out, 2, vec(items))
	}

	if len(m.funcs) > 0 {
		items := make([][]byte, 0, len(m.funcs))
		for _, f := range m.funcs {
			items = append(items, uleb(f.typeIdx))
		}
		out = section(out, 3, vec(items))
	}

	if m.table != nil {
		limits := append([]byte{0x70, 0x00}, uleb(uint32(len(m.table)))...) //nolint:gosec // G115: test modules are tiny
		out = section(out, 4, vec([][]byte{limits}))
	}

	if m.pages > 0 {
		out = section(out, 5, vec([][]byte{append([]byte{0x00}, uleb(m.pages)...)}))
	}

	if len(m.exports) > 0 {
		items := make([][]byte, 0, len(m.exports))
		for _, e := range m.exports {
			item := name(e.name)
			item = append(item, e.kind)
			item = append(item, uleb(e.idx)...)
			items = append(items, item)
		}
		out = section(out, 7, vec(items))
	}

	if len(m.table) > 0 {
		elem := []byte{0x00}
		elem = append(elem, I32Const(0)...)
		elem = append(elem, 0x0b)
		idx := make([][]byte, 0, len(m.table))
		for _, f := range m.table {
			idx = append(idx, uleb(f))
		}
		elem = append(elem, vec(idx)...)
		out = section(out, 9, vec([][]byte{elem}))
	}

	if len(m.funcs) > 0 {
		items := make([][]byte, 0, len(m.funcs))
		for _, f := range m.funcs {
			items = append(items, append(uleb(uint32(len(f.body))), f.body...)) //nolint:gosec // G115: test modules are tiny
		}
		out = section(out, 10, vec(items))
	}

	if len(m.data) > 0 {
		items := make([][]byte, 0, len(m.data))
		for _, d := range m.data {
			item := []byte{0x00}
			item = append(item, I32Const(int32(d.offset))...) //nolint:gosec // G115: test offsets are small
			item = append(item, 0x0b)
			item = append(item, uleb(uint32(len(d.data)))...) //nolint:gosec // G115: test modules are tiny
			item = append(item, d.data...)
			items = append(items, item)
		}
		out = section(out, 11, vec(items))
	}

	return out
}

func (m *Module) typeIndex(ft FuncType) uint32 {
	for i, t := range m.types {
		if slices.Equal(t.Params, ft.Params) && slices.Equal(t.Results, ft.Results) {
			return uint32(i) //nolint:gosec // G115: test modules are tiny
		}
	}
	m.types = append(m.types, ft)
	return uint32(len(m.types) - 1) //nolint:gosec // G115: test modules are tiny
}

// Call encodes call idx.
func Call(idx uint32) []byte { return append([]byte{0x10}, uleb(idx)...) }

// I32Const encodes i32.const v.
func I32Const(v int32) []byte { return append([]byte{0x41}, sleb(int64(v))...) }

// F32Const encodes f32.const v.
func F32Const(v float32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{0x43}, math.Float32bits(v))
}

// LocalGet encodes local.get i.
func LocalGet(i uint32) []byte { return append([]byte{0x20}, uleb(i)...) }

// CString returns s with a trailing NUL.
func CString(s string) []byte { return append([]byte(s), 0) }

// Floats encodes values as little-endian f32.
func Floats(values ...float32) []byte {
	out := make([]byte, 0, 4*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func section(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = append(out, uleb(uint32(len(content)))...) //nolint:gosec // G115: test modules are tiny
	return append(out, content...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint32(len(items))) //nolint:gosec // G115: test modules are tiny
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func valTypes(types []ValType) []byte {
	out := uleb(uint32(len(types))) //nolint:gosec // G115: test modules are tiny
	for _, t := range types {
		out = append(out, byte(t))
	}
	return out
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...) //nolint:gosec // G115: test modules are tiny
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
