package codegen

import "strings"

// Program is the generated source, kept as four ordered buffers.
type Program struct {
	// Header holds imports, the Object type, asset tables and property declarations.
	Header string
	// State declares the runtime-state table.
	State string
	// Setup is the body of the exported main routine.
	Setup string
	// Frame is the body of the per-frame callback.
	Frame string
	// Slots is the length of the runtime-state table.
	Slots int
}

// Source concatenates the buffers into one compilable file.
func (p *Program) Source() string {
	var b strings.Builder
	b.Grow(len(p.Header) + len(p.State) + len(p.Setup) + len(p.Frame) + 128)

	b.WriteString(p.Header)
	b.WriteString("\n")
	b.WriteString(p.State)
	b.WriteString("\nexport fn " + ExportMain + "() void {\n")
	b.WriteString(p.Setup)
	b.WriteString("}\n\nfn " + frameFunc + "(" + deltaParam + ": f32) callconv(.C) void {\n")
	b.WriteString(p.Frame)
	b.WriteString("}\n")
	return b.String()
}
