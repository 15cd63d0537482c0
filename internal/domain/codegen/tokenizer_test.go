package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func idents(src string) []string {
	var out []string
	for _, tok := range Tokenize(src) {
		if tok.Kind == TokenIdent {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestTokenize_SkipsCommentsAndLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"plain", "self.x += dt;", []string{"self", "x", "dt"}},
		{"line comment", "a = 1; // self.y\nb = 2;", []string{"a", "b"}},
		{"string", `t = "self.y \" dt";`, []string{"t"}},
		{"char", `c = '\'';`, []string{"c"}},
		{"multiline string", "s =\n    \\\\ self.y\n    \\\\ dt\n;", []string{"s"}},
		{"number with dot", "x = 1.5 + y.z;", []string{"x", "y", "z"}},
		{"unterminated string", "x = \"abc\ny = 1;", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, idents(tt.src))
		})
	}
}

func TestTokenize_Offsets(t *testing.T) {
	t.Parallel()

	src := "  self . speed"
	toks := Tokenize(src)
	if assert.Len(t, toks, 3) {
		assert.Equal(t, Token{Kind: TokenIdent, Text: "self", Start: 2, End: 6}, toks[0])
		assert.Equal(t, Token{Kind: TokenPunct, Text: ".", Start: 7, End: 8}, toks[1])
		assert.Equal(t, "speed", src[toks[2].Start:toks[2].End])
	}
}

func TestSelfReferences(t *testing.T) {
	t.Parallel()

	refs := SelfReferences("self.x = other.self.y + self.speed; self; self.*")
	members := make([]string, 0, len(refs))
	for _, r := range refs {
		members = append(members, r.Member)
	}
	assert.Equal(t, []string{"x", "speed"}, members)
}

func TestReferences(t *testing.T) {
	t.Parallel()

	assert.True(t, References("x += dt;", "dt"))
	assert.False(t, References("x += dtx; // dt", "dt"))
}

func TestStringLit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"a\"b\\c\n\t\x01é"`, stringLit("a\"b\\c\n\t\x01é"))
}

func TestFloatLit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.5", floatLit(0.5))
	assert.Equal(t, "64", floatLit(64))
	assert.Equal(t, "-207", floatLit(-207))
	assert.Equal(t, "0.1", floatLit(0.1))
}
