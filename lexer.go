package localise

import (
	"strings"
	"unicode/utf8"
)

// PatternGrammar holds the grammar characters of the pattern syntax. Each
// one always lexes as its own single-character Grammar token.
const PatternGrammar = "{}`#"

// Tokenise segments source into tokens using the syntax and white-space
// sets plus the grapheme segmenter of services. Runs of characters of the
// same class coalesce into one token; a grammar character always flushes
// the pending run and emits alone. No character is dropped.
func Tokenise(source, grammar string, services LocaleServices) ([]Token, error) {
	if services == nil {
		return nil, ErrNoLocaleServices
	}
	if source == "" {
		return nil, nil
	}

	var (
		tokens  []Token
		start   Position
		cursor  Position
		pending TokenClass
		hasRun  bool
	)

	flush := func(end int) {
		if !hasRun || end <= start.Byte {
			return
		}
		text := source[start.Byte:end]
		token := Token{
			Class: pending,
			Text:  text,
			Start: start,
			Length: Position{
				Byte:      len(text),
				Character: utf8.RuneCountInString(text),
				Grapheme:  services.GraphemeCount(text),
			},
		}
		tokens = append(tokens, token)
		cursor = token.End()
		hasRun = false
	}

	for offset, r := range source {
		class := classify(r, grammar, services)

		if class == TokenGrammar {
			flush(offset)
			start = cursor
			text := string(r)
			token := Token{
				Class: TokenGrammar,
				Text:  text,
				Start: start,
				Length: Position{
					Byte:      len(text),
					Character: 1,
					Grapheme:  services.GraphemeCount(text),
				},
			}
			tokens = append(tokens, token)
			cursor = token.End()
			continue
		}

		if hasRun && class != pending {
			flush(offset)
		}
		if !hasRun {
			start = cursor
			pending = class
			hasRun = true
		}
	}

	flush(len(source))
	return tokens, nil
}

func classify(r rune, grammar string, services LocaleServices) TokenClass {
	switch {
	case services.IsPatternWhiteSpace(r):
		return TokenWhiteSpace
	case strings.ContainsRune(grammar, r):
		return TokenGrammar
	case services.IsPatternSyntax(r):
		return TokenSyntax
	}
	return TokenIdentifier
}
