package codegen

import (
	"sort"
	"strings"

	"github.com/reglet-dev/scenepack/internal/domain/ir"
)

// Reference is a self.<member> occurrence inside a script fragment.
type Reference struct {
	Member string
	Start  int
	End    int
}

// SelfReferences lists every self.<member> reference in src, in source order.
// Whitespace between the tokens is allowed; a self preceded by a dot is a
// field of something else and is not reported.
func SelfReferences(src string) []Reference {
	toks := Tokenize(src)

	var refs []Reference
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].Kind != TokenIdent || toks[i].Text != selfBinding {
			continue
		}
		if i > 0 && toks[i-1].Kind == TokenPunct && toks[i-1].Text == "." {
			continue
		}
		if toks[i+1].Kind != TokenPunct || toks[i+1].Text != "." || toks[i+2].Kind != TokenIdent {
			continue
		}
		refs = append(refs, Reference{Member: toks[i+2].Text, Start: toks[i].Start, End: toks[i+2].End})
		i += 2
	}
	return refs
}

// Symbols is the per-entity table scripts are resolved against.
type Symbols struct {
	entity     string
	properties map[string]string
}

// NewSymbols builds the symbol table of an entity: each custom property maps
// to its entity-scoped declaration name.
func NewSymbols(e *ir.Entity) *Symbols {
	props := make(map[string]string, len(e.Properties))
	for _, p := range e.Properties {
		props[p.Name] = DeclarationName(p.Name, e.SafeName)
	}
	return &Symbols{entity: e.Name, properties: props}
}

// Declaration returns the scoped declaration name of a property.
func (s *Symbols) Declaration(property string) (string, bool) {
	name, ok := s.properties[property]
	return name, ok
}

// Binder rewrites self.<property> references in script fragments.
type Binder struct {
	lenient bool
}

// NewBinder creates a binder. In lenient mode references are substituted
// textually and unresolved ones are downgraded to warnings.
func NewBinder(lenient bool) *Binder {
	return &Binder{lenient: lenient}
}

// Bind returns the rewritten fragment. Unresolved references are recorded on
// diags with error severity, or warning severity in lenient mode.
func (b *Binder) Bind(src string, syms *Symbols, diags *ir.Diagnostics) string {
	if b.lenient {
		return b.bindLiteral(src, syms, diags)
	}

	refs := SelfReferences(src)
	if len(refs) == 0 {
		return src
	}

	var out strings.Builder
	out.Grow(len(src))
	last := 0
	for _, ref := range refs {
		if decl, ok := syms.Declaration(ref.Member); ok {
			out.WriteString(src[last:ref.Start])
			out.WriteString(decl)
			last = ref.End
			continue
		}
		if !objectMembers[ref.Member] {
			diags.Errorf(syms.entity, ir.CodeUnresolvedReference,
				"self.%s is neither a custom property nor an Object member", ref.Member)
		}
	}
	out.WriteString(src[last:])
	return out.String()
}

// bindLiteral substitutes "self.<property>" verbatim, longest property first so
// a shorter name never clobbers the prefix of a longer one.
func (b *Binder) bindLiteral(src string, syms *Symbols, diags *ir.Diagnostics) string {
	props := make([]string, 0, len(syms.properties))
	for p := range syms.properties {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool {
		if len(props[i]) != len(props[j]) {
			return len(props[i]) > len(props[j])
		}
		return props[i] < props[j]
	})

	for _, p := range props {
		src = strings.ReplaceAll(src, selfBinding+"."+p, syms.properties[p])
	}

	for _, ref := range SelfReferences(src) {
		if !objectMembers[ref.Member] {
			diags.Warnf(syms.entity, ir.CodeUnresolvedReference,
				"self.%s is neither a custom property nor an Object member", ref.Member)
		}
	}
	return src
}
