package localise

// parserState identifies the grammar production currently being parsed.
type parserState int

const (
	stateString parserState = iota
	stateSubString
	statePattern
	stateKeyword
	stateLiteralText
	stateLiteral
	stateCommand
	stateNamedString
	stateNamedGroup
)

type parserFrame struct {
	state parserState
	node  int
}

type parser struct {
	tree   *Tree
	tokens []Token
	pos    int
	state  parserState
	nested []parserFrame

	// current container node receiving children.
	current int
	// text is the open Text node under current, or -1.
	text int
	// literalReturn is the state resumed when a literal-text run closes.
	literalReturn parserState

	names        map[string]struct{}
	placeholders map[string]struct{}
}

// Parse builds a pattern tree from the token stream, enforcing the
// structural rules of the pattern grammar.
func Parse(tokens []Token) (*Tree, error) {
	p := &parser{
		tree:         newTree(),
		tokens:       tokens,
		state:        stateString,
		text:         -1,
		names:        make(map[string]struct{}),
		placeholders: make(map[string]struct{}),
	}
	p.current = p.tree.add(NodeString, p.tree.Root())

	for p.pos < len(p.tokens) {
		token := p.tokens[p.pos]

		var err error
		switch p.state {
		case stateString, stateSubString:
			err = p.parseString(token)
		case statePattern:
			err = p.parsePattern(token)
		case stateKeyword:
			err = p.parseKeyword(token)
		case stateLiteralText:
			err = p.parseLiteralText(token)
		case stateLiteral:
			err = p.parseLiteral(token)
		case stateCommand:
			err = p.parseCommand(token)
		case stateNamedString:
			err = p.parseNamedString(token)
		case stateNamedGroup:
			err = p.parseNamedGroup(token)
		}
		if err != nil {
			return nil, err
		}
		p.pos++
	}

	switch p.state {
	case stateString, stateNamedGroup:
		if len(p.nested) == 0 {
			return p.tree, nil
		}
	}
	return nil, &ParserError{Kind: ParserEndedAbruptly}
}

func (p *parser) invalid(token Token) error {
	return &ParserError{Kind: ParserInvalidToken, Position: token.Start, Token: token.Text}
}

func (p *parser) push(next parserState, node int) {
	p.nested = append(p.nested, parserFrame{state: p.state, node: p.current})
	p.state = next
	p.current = node
	p.text = -1
}

func (p *parser) pop() {
	frame := p.nested[len(p.nested)-1]
	p.nested = p.nested[:len(p.nested)-1]
	p.state = frame.state
	p.current = frame.node
	p.text = -1
}

// appendText adds token to the open Text run of the current container,
// starting a new run when none is open.
func (p *parser) appendText(token Token) {
	if p.text == -1 || p.tree.lastChild(p.current) != p.text {
		p.text = p.tree.add(NodeText, p.current)
	}
	p.tree.appendToken(p.text, token)
}

// next consumes and returns the following token.
func (p *parser) next() (Token, bool) {
	if p.pos+1 >= len(p.tokens) {
		return Token{}, false
	}
	p.pos++
	return p.tokens[p.pos], true
}

// peek returns the following token without consuming it.
func (p *parser) peek() (Token, bool) {
	if p.pos+1 >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos+1], true
}

func (p *parser) parseString(token Token) error {
	if token.Class != TokenGrammar {
		p.appendText(token)
		return nil
	}

	switch token.Text {
	case "`":
		escaped, ok := p.next()
		if !ok {
			return &ParserError{Kind: ParserEndedAbruptly}
		}
		p.appendText(escaped)
		return nil
	case "{":
		return p.patternStart()
	case "#":
		if p.state == stateString {
			// End of the main string; the named-substring group follows.
			p.text = -1
			group := p.tree.add(NodeNamedGroup, p.tree.Root())
			p.state = stateNamedGroup
			p.current = group
			return nil
		}
		if p.pos > 0 && p.tokens[p.pos-1].Class == TokenGrammar && p.tokens[p.pos-1].Text == "#" {
			return &ParserError{Kind: ParserMultiNumberSign, Position: token.Start}
		}
		p.text = -1
		sign := p.tree.add(NodeNumberSign, p.current)
		p.tree.appendToken(sign, token)
		return nil
	case "}":
		if p.state == stateSubString {
			// Closes the named substring; back to the group.
			p.pop()
			return nil
		}
		return p.invalid(token)
	}
	return p.invalid(token)
}

// patternStart dispatches on the token after "{": an identifier opens a
// placeholder pattern, a backtick a literal pattern, a number sign a
// command pattern.
func (p *parser) patternStart() error {
	p.text = -1

	token, ok := p.next()
	if !ok {
		return &ParserError{Kind: ParserEndedAbruptly}
	}

	switch {
	case token.Class == TokenIdentifier:
		if _, exists := p.placeholders[token.Text]; exists {
			return &ParserError{Kind: ParserUniquePattern, Position: token.Start, Name: token.Text}
		}
		p.placeholders[token.Text] = struct{}{}

		pattern := p.tree.add(NodePattern, p.current)
		placeholder := p.tree.add(NodeIdentifier, pattern)
		p.tree.appendToken(placeholder, token)
		p.push(statePattern, pattern)
		return nil
	case token.Class == TokenGrammar && token.Text == "`":
		text := p.tree.add(NodeText, p.current)
		p.push(stateLiteralText, p.current)
		p.text = text
		p.literalReturn = stateLiteral
		return nil
	case token.Class == TokenGrammar && token.Text == "#":
		command := p.tree.add(NodeCommand, p.current)
		p.push(stateCommand, command)
		return nil
	}
	return p.invalid(token)
}

func (p *parser) parsePattern(token Token) error {
	switch {
	case token.Class == TokenWhiteSpace:
		return nil
	case token.Class == TokenIdentifier:
		keyword := p.tree.add(NodeIdentifier, p.current)
		p.tree.appendToken(keyword, token)
		p.state = stateKeyword
		return nil
	case token.Class == TokenGrammar && token.Text == "}":
		p.pop()
		return nil
	}
	return p.invalid(token)
}

func (p *parser) parseKeyword(token Token) error {
	switch {
	case token.Class == TokenWhiteSpace:
		return nil
	case token.Class == TokenIdentifier:
		// A selector is the fixed sequence identifier "#" identifier.
		selector := p.tree.add(NodeSelector, p.current)
		key := p.tree.add(NodeIdentifier, selector)
		p.tree.appendToken(key, token)

		sign, ok := p.next()
		if !ok {
			return &ParserError{Kind: ParserEndedAbruptly}
		}
		if sign.Class != TokenGrammar || sign.Text != "#" {
			return p.invalid(sign)
		}

		target, ok := p.next()
		if !ok {
			return &ParserError{Kind: ParserEndedAbruptly}
		}
		if target.Class != TokenIdentifier {
			return p.invalid(target)
		}
		named := p.tree.add(NodeIdentifier, selector)
		p.tree.appendToken(named, target)
		return nil
	case token.Class == TokenGrammar && token.Text == "}":
		p.pop()
		return nil
	}
	return p.invalid(token)
}

func (p *parser) parseLiteralText(token Token) error {
	if token.Class == TokenGrammar && token.Text == "`" {
		if doubled, ok := p.peek(); ok && doubled.Class == TokenGrammar && doubled.Text == "`" {
			// A doubled backtick inside a literal is a single backtick.
			p.next()
			p.tree.appendToken(p.text, doubled)
			return nil
		}
		p.state = p.literalReturn
		return nil
	}
	p.tree.appendToken(p.text, token)
	return nil
}

func (p *parser) parseLiteral(token Token) error {
	if token.Class == TokenGrammar && token.Text == "}" {
		p.pop()
		return nil
	}
	return p.invalid(token)
}

func (p *parser) parseCommand(token Token) error {
	node := p.tree.Node(p.current)

	switch {
	case token.Class == TokenWhiteSpace:
		return nil
	case token.Class == TokenIdentifier:
		parameter := p.tree.add(NodeIdentifier, p.current)
		p.tree.appendToken(parameter, token)
		return nil
	case token.Class == TokenGrammar && token.Text == "#":
		// Valid only directly after the command name; marks the command
		// as delayed until format time.
		if len(node.Children) != 1 {
			return p.invalid(token)
		}
		sign := p.tree.add(NodeNumberSign, p.current)
		p.tree.appendToken(sign, token)
		return nil
	case token.Class == TokenGrammar && token.Text == "`":
		text := p.tree.add(NodeText, p.current)
		p.text = text
		p.literalReturn = stateCommand
		p.state = stateLiteralText
		return nil
	case token.Class == TokenGrammar && token.Text == "}":
		if len(node.Children) == 0 {
			return p.invalid(token)
		}
		p.pop()
		return nil
	}
	return p.invalid(token)
}

func (p *parser) parseNamedString(token Token) error {
	node := p.tree.Node(p.current)

	if len(node.Children) == 0 {
		if token.Class != TokenIdentifier {
			return p.invalid(token)
		}
		if token.Text == "_" {
			return &ParserError{Kind: ParserUniqueNamed, Position: token.Start, Name: token.Text}
		}
		if _, exists := p.names[token.Text]; exists {
			return &ParserError{Kind: ParserUniqueNamed, Position: token.Start, Name: token.Text}
		}
		p.names[token.Text] = struct{}{}

		name := p.tree.add(NodeIdentifier, p.current)
		p.tree.appendToken(name, token)
		return nil
	}

	if token.Class != TokenWhiteSpace {
		return p.invalid(token)
	}
	str := p.tree.add(NodeString, p.current)
	p.state = stateSubString
	p.current = str
	p.text = -1
	return nil
}

func (p *parser) parseNamedGroup(token Token) error {
	switch {
	case token.Class == TokenWhiteSpace:
		return nil
	case token.Class == TokenGrammar && token.Text == "{":
		named := p.tree.add(NodeNamedString, p.current)
		p.push(stateNamedString, named)
		return nil
	}
	return p.invalid(token)
}
