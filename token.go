package localise

// TokenClass classifies a lexer token per UAX #31 membership plus the
// grammar character set supplied to the lexer.
type TokenClass int

const (
	TokenWhiteSpace TokenClass = iota
	TokenIdentifier
	TokenGrammar
	TokenSyntax
)

func (c TokenClass) String() string {
	switch c {
	case TokenWhiteSpace:
		return "whitespace"
	case TokenIdentifier:
		return "identifier"
	case TokenGrammar:
		return "grammar"
	case TokenSyntax:
		return "syntax"
	}
	return "unknown"
}

// Position is a cumulative offset into the source, measured three ways.
type Position struct {
	Byte      int
	Character int
	Grapheme  int
}

// Token is an immutable slice of the pattern source. Concatenating the
// Text of every token emitted for a source reproduces it byte for byte.
type Token struct {
	Class  TokenClass
	Text   string
	Start  Position
	Length Position
}

// End returns the position immediately after the token.
func (t Token) End() Position {
	return Position{
		Byte:      t.Start.Byte + t.Length.Byte,
		Character: t.Start.Character + t.Length.Character,
		Grapheme:  t.Start.Grapheme + t.Length.Grapheme,
	}
}
