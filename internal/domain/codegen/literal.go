package codegen

import (
	"math"
	"strconv"
	"strings"
)

// floatLit formats v as the shortest f32 literal. Non-finite values become 0.
func floatLit(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 32)
}

// floatLit32 formats an already narrowed value.
func floatLit32(v float32) string {
	return floatLit(float64(v))
}

// stringLit quotes s as a Zig string literal.
func stringLit(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatUint(uint64(c)|0x100, 16)[1:])
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func boolLit(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
