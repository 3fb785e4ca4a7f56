package localise

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PartKind discriminates the compiled pattern part variants.
type PartKind int

const (
	PartText PartKind = iota
	PartNumberSign
	PartString
	PartDecimal
	PartDateTime
	PartComplex
	PartCommand
)

func (k PartKind) String() string {
	switch k {
	case PartText:
		return "text"
	case PartNumberSign:
		return "number-sign"
	case PartString:
		return "string"
	case PartDecimal:
		return "decimal"
	case PartDateTime:
		return "date-time"
	case PartComplex:
		return "complex"
	case PartCommand:
		return "command"
	}
	return "unknown"
}

// ComplexKind selects the branching strategy of a complex placeholder.
type ComplexKind int

const (
	ComplexPlural ComplexKind = iota
	ComplexOrdinal
	ComplexSelect
)

func (k ComplexKind) String() string {
	switch k {
	case ComplexPlural:
		return "plural"
	case ComplexOrdinal:
		return "ordinal"
	case ComplexSelect:
		return "select"
	}
	return "unknown"
}

// SignDisplay controls when a decimal placeholder renders its sign.
type SignDisplay int

const (
	SignAuto SignDisplay = iota
	SignNever
	SignAlways
	SignExceptZero
	SignNegative
)

// GroupingMode controls integer digit grouping of a decimal placeholder.
type GroupingMode int

const (
	GroupAuto GroupingMode = iota
	GroupNever
	GroupAlways
	GroupMin2
)

// PatternLength is a CLDR-style date or time format length.
type PatternLength int

const (
	LengthFull PatternLength = iota
	LengthLong
	LengthMedium
	LengthShort
)

// PatternPart is one instruction of a compiled pattern program. Kind
// selects which fields are meaningful.
type PatternPart struct {
	Kind PartKind

	// Text for PartText.
	Text string
	// Slot for PartNumberSign, an index into the numbers slot array.
	Slot int

	// Placeholder for PartString, PartDecimal, PartDateTime, PartComplex.
	Placeholder string

	// PartDecimal.
	Sign     SignDisplay
	Grouping GroupingMode

	// PartDateTime.
	DateLength PatternLength
	TimeLength PatternLength
	Calendar   *LanguageTag

	// PartComplex.
	Complex   ComplexKind
	Selectors int

	// PartCommand, for delayed commands. The first element is the command
	// name; the rest are symbolic parameters resolved at format time.
	Parameters []string
}

// MainPattern is the program key of the main pattern string.
const MainPattern = "_"

// PatternFormatter is a compiled pattern program bound to a language tag.
// Format mutates the number-sign slots, so each call takes the formatter's
// lock; formatting of a single program is serialised.
type PatternFormatter struct {
	mu        sync.Mutex
	tag       *LanguageTag
	services  LocaleServices
	commands  *CommandRegistry
	parts     map[string][]PatternPart
	selectors []map[string]string
	numbers   []string
}

// Tag returns the language tag the formatter was compiled for.
func (f *PatternFormatter) Tag() *LanguageTag { return f.tag }

// Parts returns the part list compiled under name, MainPattern for the
// main string.
func (f *PatternFormatter) Parts(name string) ([]PatternPart, bool) {
	parts, ok := f.parts[name]
	return parts, ok
}

// PatternNames lists the compiled pattern keys, the main pattern first
// and named substrings sorted after it.
func (f *PatternFormatter) PatternNames() []string {
	names := make([]string, 0, len(f.parts))
	for name := range f.parts {
		if name != MainPattern {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := f.parts[MainPattern]; ok {
		names = append([]string{MainPattern}, names...)
	}
	return names
}

// Describe renders a part for diagnostics.
func (p PatternPart) Describe() string {
	switch p.Kind {
	case PartText:
		return fmt.Sprintf("text %q", p.Text)
	case PartNumberSign:
		return fmt.Sprintf("number-sign slot=%d", p.Slot)
	case PartString:
		return fmt.Sprintf("string {%s}", p.Placeholder)
	case PartDecimal:
		return fmt.Sprintf("decimal {%s} sign=%d grouping=%d", p.Placeholder, p.Sign, p.Grouping)
	case PartDateTime:
		return fmt.Sprintf("date-time {%s} date=%d time=%d", p.Placeholder, p.DateLength, p.TimeLength)
	case PartComplex:
		return fmt.Sprintf("%s {%s} selectors=%d", p.Complex, p.Placeholder, p.Selectors)
	case PartCommand:
		return fmt.Sprintf("command {#%s}", strings.Join(p.Parameters, " "))
	}
	return "unknown"
}

type compiler struct {
	tree      *Tree
	tags      *TagRegistry
	formatter *PatternFormatter
}

// Compile semantically analyses a parsed pattern tree and produces a
// formatter for the given language tag. Named substrings compile under
// their identifiers, the main string under MainPattern.
func Compile(tree *Tree, tag *LanguageTag, services LocaleServices, commands *CommandRegistry, tags *TagRegistry) (*PatternFormatter, error) {
	if services == nil {
		return nil, &FormatterError{Kind: FormatterNoIcuProvider}
	}
	if tags == nil {
		return nil, ErrNoTagRegistry
	}

	root := tree.Node(tree.Root())
	if root == nil || root.Kind != NodeRoot {
		return nil, &FormatterError{Kind: FormatterInvalidRoot}
	}

	var main, group *Node
	for _, index := range root.Children {
		child := tree.Node(index)
		switch child.Kind {
		case NodeString:
			main = child
		case NodeNamedGroup:
			group = child
		default:
			return nil, &FormatterError{Kind: FormatterInvalidNode, Node: child.Kind}
		}
	}
	if main == nil {
		return nil, &FormatterError{Kind: FormatterInvalidRoot}
	}
	if group == nil && isPlainText(tree, main) {
		return nil, &FormatterError{Kind: FormatterNoGrammar}
	}

	c := &compiler{
		tree: tree,
		tags: tags,
		formatter: &PatternFormatter{
			tag:      tag,
			services: services,
			commands: commands,
			parts:    make(map[string][]PatternPart),
		},
	}

	if group != nil {
		for _, index := range group.Children {
			named := tree.Node(index)
			if named.Kind != NodeNamedString || len(named.Children) != 2 {
				return nil, &FormatterError{Kind: FormatterInvalidNode, Node: named.Kind}
			}
			name, err := c.identifierText(named.Children[0])
			if err != nil {
				return nil, err
			}
			if _, exists := c.formatter.parts[name]; exists || name == MainPattern {
				return nil, &FormatterError{Kind: FormatterNamedStringIdentifier, Named: name}
			}
			parts, err := c.compileString(tree.Node(named.Children[1]))
			if err != nil {
				return nil, err
			}
			c.formatter.parts[name] = parts
		}
	}

	parts, err := c.compileString(main)
	if err != nil {
		return nil, err
	}
	c.formatter.parts[MainPattern] = parts

	if err := c.checkSelectorTargets(); err != nil {
		return nil, err
	}
	return c.formatter, nil
}

// isPlainText reports whether the string node holds nothing but unescaped
// text, which the localiser degrades to a literal cache entry.
func isPlainText(tree *Tree, str *Node) bool {
	for _, index := range str.Children {
		child := tree.Node(index)
		if child.Kind != NodeText {
			return false
		}
		for _, token := range child.Tokens {
			if token.Class == TokenGrammar {
				return false
			}
		}
	}
	return true
}

func (c *compiler) identifierText(index int) (string, error) {
	node := c.tree.Node(index)
	if node == nil {
		return "", &FormatterError{Kind: FormatterNodeNotFound}
	}
	if node.Kind != NodeIdentifier {
		return "", &FormatterError{Kind: FormatterInvalidNode, Node: node.Kind}
	}
	if len(node.Tokens) == 0 {
		return "", &FormatterError{Kind: FormatterRetrieveNodeToken, Node: node.Kind}
	}
	return node.Text(), nil
}

func (c *compiler) compileString(str *Node) ([]PatternPart, error) {
	if str == nil {
		return nil, &FormatterError{Kind: FormatterNodeNotFound}
	}
	if str.Kind != NodeString {
		return nil, &FormatterError{Kind: FormatterInvalidNode, Node: str.Kind}
	}

	var parts []PatternPart
	for _, index := range str.Children {
		child := c.tree.Node(index)
		switch child.Kind {
		case NodeText:
			parts = append(parts, PatternPart{Kind: PartText, Text: child.Text()})
		case NodeNumberSign:
			slot := len(c.formatter.numbers)
			c.formatter.numbers = append(c.formatter.numbers, "")
			parts = append(parts, PatternPart{Kind: PartNumberSign, Slot: slot})
		case NodePattern:
			part, err := c.compilePattern(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case NodeCommand:
			part, err := c.compileCommand(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		default:
			return nil, &FormatterError{Kind: FormatterInvalidNode, Node: child.Kind}
		}
	}
	return parts, nil
}

func (c *compiler) compilePattern(pattern *Node) (PatternPart, error) {
	if len(pattern.Children) == 0 {
		return PatternPart{}, &FormatterError{Kind: FormatterFirstChild, Node: pattern.Kind}
	}

	placeholder, err := c.identifierText(pattern.Children[0])
	if err != nil {
		return PatternPart{}, err
	}

	if len(pattern.Children) == 1 {
		return PatternPart{Kind: PartString, Placeholder: placeholder}, nil
	}

	keyword, err := c.identifierText(pattern.Children[1])
	if err != nil {
		return PatternPart{}, err
	}

	selectors, err := c.selectorPairs(pattern.Children[2:])
	if err != nil {
		return PatternPart{}, err
	}

	switch keyword {
	case "decimal":
		return c.compileDecimal(placeholder, keyword, selectors)
	case "date_time":
		return c.compileDateTime(placeholder, keyword, selectors)
	case "plural":
		return c.compileComplex(placeholder, keyword, ComplexPlural, selectors)
	case "ordinal":
		return c.compileComplex(placeholder, keyword, ComplexOrdinal, selectors)
	case "select":
		return c.compileComplex(placeholder, keyword, ComplexSelect, selectors)
	}
	return PatternPart{}, &FormatterError{Kind: FormatterInvalidKeyword, Keyword: keyword, Placeholder: placeholder}
}

type selectorPair struct {
	key   string
	value string
}

func (c *compiler) selectorPairs(children []int) ([]selectorPair, error) {
	pairs := make([]selectorPair, 0, len(children))
	for _, index := range children {
		selector := c.tree.Node(index)
		if selector.Kind != NodeSelector || len(selector.Children) != 2 {
			return nil, &FormatterError{Kind: FormatterInvalidNode, Node: selector.Kind}
		}
		key, err := c.identifierText(selector.Children[0])
		if err != nil {
			return nil, err
		}
		value, err := c.identifierText(selector.Children[1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, selectorPair{key: key, value: value})
	}
	return pairs, nil
}

// compileDecimal resolves the sign and group options; a repeated option
// takes its last value.
func (c *compiler) compileDecimal(placeholder, keyword string, selectors []selectorPair) (PatternPart, error) {
	part := PatternPart{Kind: PartDecimal, Placeholder: placeholder}

	for _, pair := range selectors {
		switch pair.key {
		case "sign":
			switch pair.value {
			case "auto":
				part.Sign = SignAuto
			case "never":
				part.Sign = SignNever
			case "always":
				part.Sign = SignAlways
			case "except_zero":
				part.Sign = SignExceptZero
			case "negative":
				part.Sign = SignNegative
			default:
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder}
			}
		case "group":
			switch pair.value {
			case "auto":
				part.Grouping = GroupAuto
			case "never":
				part.Grouping = GroupNever
			case "always":
				part.Grouping = GroupAlways
			case "min2":
				part.Grouping = GroupMin2
			default:
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder}
			}
		default:
			return PatternPart{}, &FormatterError{Kind: FormatterInvalidOption, Option: pair.key, Keyword: keyword, Placeholder: placeholder}
		}
	}
	return part, nil
}

// calendarExtensions maps the calendar option values onto their BCP 47
// -u-ca- extension forms.
var calendarExtensions = map[string]string{
	"gregorian": "gregory",
	"buddhist":  "buddhist",
	"japanese":  "japanese",
	"ethiopian": "ethiopic",
	"indian":    "indian",
	"coptic":    "coptic",
	"iso":       "iso8601",
}

func (c *compiler) compileDateTime(placeholder, keyword string, selectors []selectorPair) (PatternPart, error) {
	part := PatternPart{
		Kind:        PartDateTime,
		Placeholder: placeholder,
		DateLength:  LengthMedium,
		TimeLength:  LengthMedium,
	}

	for _, pair := range selectors {
		switch pair.key {
		case "date":
			length, ok := parsePatternLength(pair.value)
			if !ok {
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder}
			}
			part.DateLength = length
		case "time":
			length, ok := parsePatternLength(pair.value)
			if !ok {
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder}
			}
			part.TimeLength = length
		case "calendar":
			extension, ok := calendarExtensions[pair.value]
			if !ok {
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder}
			}
			calendar, err := c.tags.WithExtension(c.formatter.tag, "ca", extension)
			if err != nil {
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidOptionValue, Value: pair.value, Option: pair.key, Placeholder: placeholder, Err: err}
			}
			part.Calendar = calendar
		default:
			return PatternPart{}, &FormatterError{Kind: FormatterInvalidOption, Option: pair.key, Keyword: keyword, Placeholder: placeholder}
		}
	}
	return part, nil
}

func parsePatternLength(value string) (PatternLength, bool) {
	switch value {
	case "full":
		return LengthFull, true
	case "long":
		return LengthLong, true
	case "medium":
		return LengthMedium, true
	case "short":
		return LengthShort, true
	}
	return 0, false
}

var pluralCategories = map[string]struct{}{
	"zero":  {},
	"one":   {},
	"two":   {},
	"few":   {},
	"many":  {},
	"other": {},
}

func (c *compiler) compileComplex(placeholder, keyword string, kind ComplexKind, selectors []selectorPair) (PatternPart, error) {
	if len(selectors) == 0 {
		return PatternPart{}, &FormatterError{Kind: FormatterInvalidSelector, Keyword: keyword, Placeholder: placeholder}
	}

	table := make(map[string]string, len(selectors))
	for _, pair := range selectors {
		if kind != ComplexSelect {
			if _, valid := pluralCategories[pair.key]; !valid {
				return PatternPart{}, &FormatterError{Kind: FormatterInvalidSelector, Selector: pair.key, Keyword: keyword, Placeholder: placeholder}
			}
		}
		table[pair.key] = pair.value
	}

	if kind != ComplexSelect {
		if _, ok := table["other"]; !ok {
			return PatternPart{}, &FormatterError{Kind: FormatterSelectorOther, Keyword: keyword, Placeholder: placeholder}
		}
	}

	index := len(c.formatter.selectors)
	c.formatter.selectors = append(c.formatter.selectors, table)
	return PatternPart{Kind: PartComplex, Placeholder: placeholder, Complex: kind, Selectors: index}, nil
}

func (c *compiler) compileCommand(command *Node) (PatternPart, error) {
	if len(command.Children) == 0 {
		return PatternPart{}, &FormatterError{Kind: FormatterFirstChild, Node: command.Kind}
	}

	name, err := c.identifierText(command.Children[0])
	if err != nil {
		return PatternPart{}, err
	}

	delayed := false
	parameters := []string{name}
	for _, index := range command.Children[1:] {
		child := c.tree.Node(index)
		switch child.Kind {
		case NodeNumberSign:
			delayed = true
		case NodeIdentifier, NodeText:
			parameters = append(parameters, child.Text())
		default:
			return PatternPart{}, &FormatterError{Kind: FormatterInvalidNode, Node: child.Kind}
		}
	}

	if delayed {
		return PatternPart{Kind: PartCommand, Parameters: parameters}, nil
	}

	if c.formatter.commands == nil {
		return PatternPart{}, &CommandError{Kind: CommandNotFound, Command: name}
	}
	result, err := c.formatter.commands.Execute(parameters)
	if err != nil {
		return PatternPart{}, err
	}
	return PatternPart{Kind: PartText, Text: result}, nil
}

// checkSelectorTargets verifies that every selector of every complex part
// names a substring compiled into this program.
func (c *compiler) checkSelectorTargets() error {
	for _, parts := range c.formatter.parts {
		for _, part := range parts {
			if part.Kind != PartComplex {
				continue
			}
			if part.Selectors < 0 || part.Selectors >= len(c.formatter.selectors) {
				return &FormatterError{Kind: FormatterSelectorsIndex, Placeholder: part.Placeholder}
			}
			for selector, target := range c.formatter.selectors[part.Selectors] {
				if _, ok := c.formatter.parts[target]; !ok || target == MainPattern {
					return &FormatterError{Kind: FormatterSelectorNamed, Selector: selector, Named: target}
				}
			}
		}
	}
	return nil
}
