package localise

import (
	"errors"
	"testing"
)

func mustTokens(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenise(source, PatternGrammar, NewCLDRServices())
	if err != nil {
		t.Fatalf("Tokenise(%q): %v", source, err)
	}
	return tokens
}

func mustParse(t *testing.T, source string) *Tree {
	t.Helper()
	tree, err := Parse(mustTokens(t, source))
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return tree
}

func TestParsePlainText(t *testing.T) {
	tree := mustParse(t, "A simple plain text string.")

	root := tree.Node(tree.Root())
	if root.Kind != NodeRoot || len(root.Children) != 1 {
		t.Fatalf("root = %v children %v", root.Kind, root.Children)
	}

	str := tree.Node(root.Children[0])
	if str.Kind != NodeString || len(str.Children) != 1 {
		t.Fatalf("string node = %v children %v", str.Kind, str.Children)
	}

	text := tree.Node(str.Children[0])
	if text.Kind != NodeText || text.Text() != "A simple plain text string." {
		t.Fatalf("text node = %v %q", text.Kind, text.Text())
	}
}

func TestParsePlaceholderPattern(t *testing.T) {
	tree := mustParse(t, "Hello {name}!")

	str := tree.Node(tree.Node(tree.Root()).Children[0])
	if len(str.Children) != 3 {
		t.Fatalf("string children = %v", str.Children)
	}

	pattern := tree.Node(str.Children[1])
	if pattern.Kind != NodePattern || len(pattern.Children) != 1 {
		t.Fatalf("pattern = %v children %v", pattern.Kind, pattern.Children)
	}
	if name := tree.Node(pattern.Children[0]); name.Kind != NodeIdentifier || name.Text() != "name" {
		t.Fatalf("placeholder = %v %q", name.Kind, name.Text())
	}
}

func TestParseKeywordSelectors(t *testing.T) {
	tree := mustParse(t, "{n plural one#one_dog other#dogs}#{one_dog x}{dogs y}")

	root := tree.Node(tree.Root())
	if len(root.Children) != 2 {
		t.Fatalf("root children = %v", root.Children)
	}

	str := tree.Node(root.Children[0])
	pattern := tree.Node(str.Children[0])
	if pattern.Kind != NodePattern || len(pattern.Children) != 4 {
		t.Fatalf("pattern = %v children %v", pattern.Kind, pattern.Children)
	}

	if keyword := tree.Node(pattern.Children[1]); keyword.Text() != "plural" {
		t.Fatalf("keyword = %q", keyword.Text())
	}

	selector := tree.Node(pattern.Children[2])
	if selector.Kind != NodeSelector || len(selector.Children) != 2 {
		t.Fatalf("selector = %v children %v", selector.Kind, selector.Children)
	}
	if key := tree.Node(selector.Children[0]); key.Text() != "one" {
		t.Fatalf("selector key = %q", key.Text())
	}
	if target := tree.Node(selector.Children[1]); target.Text() != "one_dog" {
		t.Fatalf("selector target = %q", target.Text())
	}

	group := tree.Node(root.Children[1])
	if group.Kind != NodeNamedGroup || len(group.Children) != 2 {
		t.Fatalf("group = %v children %v", group.Kind, group.Children)
	}
	named := tree.Node(group.Children[0])
	if named.Kind != NodeNamedString || len(named.Children) != 2 {
		t.Fatalf("named = %v children %v", named.Kind, named.Children)
	}
	if name := tree.Node(named.Children[0]); name.Text() != "one_dog" {
		t.Fatalf("named identifier = %q", name.Text())
	}
	if inner := tree.Node(named.Children[1]); inner.Kind != NodeString {
		t.Fatalf("named body = %v", inner.Kind)
	}
}

func TestParseNumberSignInSubString(t *testing.T) {
	tree := mustParse(t, "x#{dogs are # dogs}")

	group := tree.Node(tree.Node(tree.Root()).Children[1])
	named := tree.Node(group.Children[0])
	str := tree.Node(named.Children[1])

	kinds := make([]NodeKind, 0, len(str.Children))
	for _, index := range str.Children {
		kinds = append(kinds, tree.Node(index).Kind)
	}
	want := []NodeKind{NodeText, NodeNumberSign, NodeText}
	if len(kinds) != len(want) {
		t.Fatalf("substring children = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("substring children = %v, want %v", kinds, want)
		}
	}
}

func TestParseEscapes(t *testing.T) {
	tree := mustParse(t, "pre`{`post")

	str := tree.Node(tree.Node(tree.Root()).Children[0])
	if len(str.Children) != 1 {
		t.Fatalf("string children = %v", str.Children)
	}
	text := tree.Node(str.Children[0])
	if text.Text() != "pre{post" {
		t.Fatalf("escaped text = %q", text.Text())
	}
}

func TestParseDelayedCommand(t *testing.T) {
	tree := mustParse(t, "{#english_a_or_an # prey}")

	str := tree.Node(tree.Node(tree.Root()).Children[0])
	command := tree.Node(str.Children[0])
	if command.Kind != NodeCommand || len(command.Children) != 3 {
		t.Fatalf("command = %v children %v", command.Kind, command.Children)
	}
	if name := tree.Node(command.Children[0]); name.Text() != "english_a_or_an" {
		t.Fatalf("command name = %q", name.Text())
	}
	if sign := tree.Node(command.Children[1]); sign.Kind != NodeNumberSign {
		t.Fatalf("delayed marker = %v", sign.Kind)
	}
	if param := tree.Node(command.Children[2]); param.Text() != "prey" {
		t.Fatalf("parameter = %q", param.Text())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ParserErrorKind
	}{
		{"unterminated pattern", "{name", ParserEndedAbruptly},
		{"trailing escape", "text `", ParserEndedAbruptly},
		{"open named substring", "x#{dogs are", ParserEndedAbruptly},
		{"stray close brace", "oops }", ParserInvalidToken},
		{"syntax after open brace", "{!}", ParserInvalidToken},
		{"empty command", "{#}", ParserInvalidToken},
		{"delayed marker after parameter", "{#cmd arg # more}", ParserInvalidToken},
		{"duplicate named substring", "x#{a b}{a c}", ParserUniqueNamed},
		{"reserved named substring", "x#{_ b}", ParserUniqueNamed},
		{"duplicate placeholder", "{name} and {name}", ParserUniquePattern},
		{"adjacent number signs", "x#{s ##}", ParserMultiNumberSign},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(mustTokens(t, tc.source))
			var parserErr *ParserError
			if !errors.As(err, &parserErr) {
				t.Fatalf("Parse(%q) err = %v, want ParserError", tc.source, err)
			}
			if parserErr.Kind != tc.kind {
				t.Fatalf("Parse(%q) kind = %v, want %v", tc.source, parserErr.Kind, tc.kind)
			}
		})
	}
}

func TestParseEmptyTokenStream(t *testing.T) {
	tree, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	str := tree.Node(tree.Node(tree.Root()).Children[0])
	if str.Kind != NodeString || len(str.Children) != 0 {
		t.Fatalf("empty parse produced %v children %v", str.Kind, str.Children)
	}
}
