package codegen

// TokenKind classifies a script token.
type TokenKind int

const (
	// TokenIdent is an identifier or keyword.
	TokenIdent TokenKind = iota + 1
	// TokenNumber is a numeric literal.
	TokenNumber
	// TokenString is a string, character or multiline string literal.
	TokenString
	// TokenPunct is any other single character.
	TokenPunct
)

// Token is a lexical element of a script fragment. Start and End are byte offsets.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// Tokenize splits Zig source into tokens. Comments and whitespace are dropped;
// literals are kept as single opaque tokens so their contents never resolve as
// identifiers.
func Tokenize(src string) []Token {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		start := i

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = lineEnd(src, i)
			continue

		case c == '\\' && i+1 < len(src) && src[i+1] == '\\':
			i = lineEnd(src, i)
			toks = append(toks, Token{Kind: TokenString, Text: src[start:i], Start: start, End: i})
			continue

		case c == '"' || c == '\'':
			i = quotedEnd(src, i, c)
			toks = append(toks, Token{Kind: TokenString, Text: src[start:i], Start: start, End: i})
			continue

		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokenIdent, Text: src[start:i], Start: start, End: i})
			continue

		case c >= '0' && c <= '9':
			for i < len(src) && (isIdentPart(src[i]) || src[i] == '.' && i+1 < len(src) && isDigit(src[i+1])) {
				i++
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: src[start:i], Start: start, End: i})
			continue
		}

		i++
		toks = append(toks, Token{Kind: TokenPunct, Text: src[start:i], Start: start, End: i})
	}
	return toks
}

// References reports whether src mentions ident outside comments and literals.
func References(src, ident string) bool {
	for _, tok := range Tokenize(src) {
		if tok.Kind == TokenIdent && tok.Text == ident {
			return true
		}
	}
	return false
}

func lineEnd(src string, i int) int {
	for i < len(src) && src[i] != '\n' {
		i++
	}
	return i
}

// quotedEnd returns the offset just past the closing quote. An unterminated
// literal runs to the end of the line.
func quotedEnd(src string, i int, quote byte) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return i
		case quote:
			return i + 1
		}
		i++
	}
	return len(src)
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
