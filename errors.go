package localise

import (
	"errors"
	"fmt"
)

// ErrNoLocaleServices indicates the pattern pipeline was invoked without a
// LocaleServices implementation.
var ErrNoLocaleServices = errors.New("localise: locale services not configured")

// ErrNoTagRegistry indicates a nil tag registry.
var ErrNoTagRegistry = errors.New("localise: tag registry not configured")

// ErrNoProvider indicates the localiser has no repository provider.
var ErrNoProvider = errors.New("localise: repository provider not configured")

// errorComponent is the repository component under which the library's own
// error messages are localised.
const errorComponent = "localise"

// Localisable is implemented by errors that can be rendered through the
// localiser: they name the repository string that describes them and supply
// the placeholder values needed to format it.
type Localisable interface {
	error
	LocalisationComponent() string
	LocalisationIdentifier() string
	LocalisationValues() map[string]PlaceholderValue
}

// ParserErrorKind enumerates the parser failure variants.
type ParserErrorKind int

const (
	ParserEndedAbruptly ParserErrorKind = iota
	ParserInvalidToken
	ParserUniqueNamed
	ParserUniquePattern
	ParserMultiNumberSign
)

func (k ParserErrorKind) String() string {
	switch k {
	case ParserEndedAbruptly:
		return "ended_abruptly"
	case ParserInvalidToken:
		return "invalid_token"
	case ParserUniqueNamed:
		return "unique_named"
	case ParserUniquePattern:
		return "unique_pattern"
	case ParserMultiNumberSign:
		return "multi_number_sign"
	}
	return "never_reached"
}

// ParserError reports a structural failure, pinpointing the grapheme offset
// of the offending token where one exists.
type ParserError struct {
	Kind     ParserErrorKind
	Position Position
	Token    string
	Name     string
}

func (e *ParserError) Error() string {
	switch e.Kind {
	case ParserEndedAbruptly:
		return "localise: parser: pattern ended abruptly"
	case ParserInvalidToken:
		return fmt.Sprintf("localise: parser: invalid token %q at grapheme %d", e.Token, e.Position.Grapheme)
	case ParserUniqueNamed:
		return fmt.Sprintf("localise: parser: named substring %q already exists", e.Name)
	case ParserUniquePattern:
		return fmt.Sprintf("localise: parser: pattern placeholder %q already exists", e.Name)
	case ParserMultiNumberSign:
		return fmt.Sprintf("localise: parser: consecutive number signs at grapheme %d", e.Position.Grapheme)
	}
	return "localise: parser: never reached"
}

func (e *ParserError) LocalisationComponent() string { return errorComponent }

func (e *ParserError) LocalisationIdentifier() string {
	return "parser_" + e.Kind.String()
}

func (e *ParserError) LocalisationValues() map[string]PlaceholderValue {
	return map[string]PlaceholderValue{
		"token":    StringValue(e.Token),
		"name":     StringValue(e.Name),
		"position": UnsignedValue(uint64(e.Position.Grapheme)),
	}
}

// CommandErrorKind enumerates the command registry failure variants.
type CommandErrorKind int

const (
	CommandAlreadyExists CommandErrorKind = iota
	CommandNotFound
	CommandParameterMissing
	CommandInvalidType
	CommandCustom
)

func (k CommandErrorKind) String() string {
	switch k {
	case CommandAlreadyExists:
		return "already_exists"
	case CommandNotFound:
		return "not_found"
	case CommandParameterMissing:
		return "parameter_missing"
	case CommandInvalidType:
		return "invalid_type"
	case CommandCustom:
		return "custom"
	}
	return "never_reached"
}

// CommandError reports a registry or callback failure for a named command.
type CommandError struct {
	Kind      CommandErrorKind
	Command   string
	Parameter string
	Err       error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandAlreadyExists:
		return fmt.Sprintf("localise: command %q already registered", e.Command)
	case CommandNotFound:
		return fmt.Sprintf("localise: command %q not registered", e.Command)
	case CommandParameterMissing:
		return fmt.Sprintf("localise: command %q missing parameter %q", e.Command, e.Parameter)
	case CommandInvalidType:
		return fmt.Sprintf("localise: command %q parameter %q has invalid type", e.Command, e.Parameter)
	case CommandCustom:
		return fmt.Sprintf("localise: command %q failed: %v", e.Command, e.Err)
	}
	return "localise: command: never reached"
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) LocalisationComponent() string { return errorComponent }

func (e *CommandError) LocalisationIdentifier() string {
	return "command_" + e.Kind.String()
}

func (e *CommandError) LocalisationValues() map[string]PlaceholderValue {
	return map[string]PlaceholderValue{
		"command":   StringValue(e.Command),
		"parameter": StringValue(e.Parameter),
	}
}

// FormatterErrorKind enumerates the compiler and runtime failure variants.
type FormatterErrorKind int

const (
	FormatterInvalidRoot FormatterErrorKind = iota
	FormatterNodeNotFound
	FormatterFirstChild
	FormatterLastChild
	FormatterRetrieveChildren
	FormatterRetrieveNodeData
	FormatterRetrieveNodeToken
	FormatterInvalidNode
	FormatterNamedStringIdentifier
	FormatterPatternNamed
	FormatterPatternPart
	FormatterPlaceholderValue
	FormatterInvalidValue
	FormatterInvalidKeyword
	FormatterInvalidOption
	FormatterInvalidOptionValue
	FormatterInvalidSelector
	FormatterSelectorNamed
	FormatterSelectorOther
	FormatterSelectorsIndex
	FormatterSelectorsIndexNamed
	FormatterNumberSignString
	FormatterNoGrammar
	FormatterNoIcuProvider
	FormatterNeverReached
)

func (k FormatterErrorKind) String() string {
	switch k {
	case FormatterInvalidRoot:
		return "invalid_root"
	case FormatterNodeNotFound:
		return "node_not_found"
	case FormatterFirstChild:
		return "first_child"
	case FormatterLastChild:
		return "last_child"
	case FormatterRetrieveChildren:
		return "retrieve_children"
	case FormatterRetrieveNodeData:
		return "retrieve_node_data"
	case FormatterRetrieveNodeToken:
		return "retrieve_node_token"
	case FormatterInvalidNode:
		return "invalid_node"
	case FormatterNamedStringIdentifier:
		return "named_string_identifier"
	case FormatterPatternNamed:
		return "pattern_named"
	case FormatterPatternPart:
		return "pattern_part"
	case FormatterPlaceholderValue:
		return "placeholder_value"
	case FormatterInvalidValue:
		return "invalid_value"
	case FormatterInvalidKeyword:
		return "invalid_keyword"
	case FormatterInvalidOption:
		return "invalid_option"
	case FormatterInvalidOptionValue:
		return "invalid_option_value"
	case FormatterInvalidSelector:
		return "invalid_selector"
	case FormatterSelectorNamed:
		return "selector_named"
	case FormatterSelectorOther:
		return "selector_other"
	case FormatterSelectorsIndex:
		return "selectors_index"
	case FormatterSelectorsIndexNamed:
		return "selectors_index_named"
	case FormatterNumberSignString:
		return "number_sign_string"
	case FormatterNoGrammar:
		return "no_grammar"
	case FormatterNoIcuProvider:
		return "no_icu_provider"
	}
	return "never_reached"
}

// FormatterError reports a semantic failure from the compiler or the
// runtime, naming the offending placeholder and part where applicable.
type FormatterError struct {
	Kind        FormatterErrorKind
	Placeholder string
	Keyword     string
	Option      string
	Value       string
	Selector    string
	Named       string
	Node        NodeKind
	Err         error
}

func (e *FormatterError) Error() string {
	switch e.Kind {
	case FormatterInvalidRoot:
		return "localise: formatter: tree root is not a root node"
	case FormatterNoGrammar:
		return "localise: formatter: pattern contains no grammar syntax"
	case FormatterNoIcuProvider:
		return "localise: formatter: locale services unavailable"
	case FormatterInvalidKeyword:
		return fmt.Sprintf("localise: formatter: invalid keyword %q for placeholder %q", e.Keyword, e.Placeholder)
	case FormatterInvalidOption:
		return fmt.Sprintf("localise: formatter: invalid option %q for keyword %q of placeholder %q", e.Option, e.Keyword, e.Placeholder)
	case FormatterInvalidOptionValue:
		return fmt.Sprintf("localise: formatter: invalid value %q for option %q of placeholder %q", e.Value, e.Option, e.Placeholder)
	case FormatterInvalidSelector:
		return fmt.Sprintf("localise: formatter: invalid selector %q for keyword %q of placeholder %q", e.Selector, e.Keyword, e.Placeholder)
	case FormatterSelectorNamed:
		return fmt.Sprintf("localise: formatter: selector %q targets missing named substring %q", e.Selector, e.Named)
	case FormatterSelectorOther:
		return fmt.Sprintf("localise: formatter: keyword %q of placeholder %q requires an \"other\" selector", e.Keyword, e.Placeholder)
	case FormatterSelectorsIndex:
		return fmt.Sprintf("localise: formatter: selectors index out of range for placeholder %q", e.Placeholder)
	case FormatterSelectorsIndexNamed:
		return fmt.Sprintf("localise: formatter: no selector entry %q for placeholder %q", e.Selector, e.Placeholder)
	case FormatterNamedStringIdentifier:
		return fmt.Sprintf("localise: formatter: named substring %q already compiled", e.Named)
	case FormatterPatternNamed:
		return fmt.Sprintf("localise: formatter: named pattern %q not present in program", e.Named)
	case FormatterPatternPart:
		return fmt.Sprintf("localise: formatter: malformed pattern part for placeholder %q", e.Placeholder)
	case FormatterPlaceholderValue:
		return fmt.Sprintf("localise: formatter: no value supplied for placeholder %q", e.Placeholder)
	case FormatterInvalidValue:
		return fmt.Sprintf("localise: formatter: invalid value kind for placeholder %q", e.Placeholder)
	case FormatterNumberSignString:
		return fmt.Sprintf("localise: formatter: number sign slot %q is unset", e.Value)
	case FormatterNodeNotFound, FormatterFirstChild, FormatterLastChild,
		FormatterRetrieveChildren, FormatterRetrieveNodeData,
		FormatterRetrieveNodeToken, FormatterInvalidNode:
		return fmt.Sprintf("localise: formatter: %s on %v node", e.Kind, e.Node)
	}
	return "localise: formatter: never reached"
}

func (e *FormatterError) Unwrap() error { return e.Err }

func (e *FormatterError) LocalisationComponent() string { return errorComponent }

func (e *FormatterError) LocalisationIdentifier() string {
	return "formatter_" + e.Kind.String()
}

func (e *FormatterError) LocalisationValues() map[string]PlaceholderValue {
	return map[string]PlaceholderValue{
		"placeholder": StringValue(e.Placeholder),
		"keyword":     StringValue(e.Keyword),
		"option":      StringValue(e.Option),
		"value":       StringValue(e.Value),
		"selector":    StringValue(e.Selector),
		"named":       StringValue(e.Named),
	}
}

// LocaliserErrorKind enumerates the localiser failure variants.
type LocaliserErrorKind int

const (
	LocaliserRegistry LocaliserErrorKind = iota
	LocaliserParser
	LocaliserFormatter
	LocaliserProvider
	LocaliserStringNotFound
	LocaliserCacheEntry
)

func (k LocaliserErrorKind) String() string {
	switch k {
	case LocaliserRegistry:
		return "registry"
	case LocaliserParser:
		return "parser"
	case LocaliserFormatter:
		return "formatter"
	case LocaliserProvider:
		return "provider"
	case LocaliserStringNotFound:
		return "string_not_found"
	case LocaliserCacheEntry:
		return "cache_entry"
	}
	return "never_reached"
}

// LocaliserError wraps failures surfaced by the public entry points.
type LocaliserError struct {
	Kind         LocaliserErrorKind
	Component    string
	Identifier   string
	Tag          *LanguageTag
	UsedFallback bool
	Err          error
}

func (e *LocaliserError) Error() string {
	switch e.Kind {
	case LocaliserStringNotFound:
		return fmt.Sprintf("localise: no string for %s/%s in %q (fallback used: %t)",
			e.Component, e.Identifier, e.Tag.String(), e.UsedFallback)
	case LocaliserCacheEntry:
		return fmt.Sprintf("localise: cache entry for %s/%s requires values", e.Component, e.Identifier)
	case LocaliserRegistry, LocaliserParser, LocaliserFormatter, LocaliserProvider:
		return fmt.Sprintf("localise: %s: %v", e.Kind, e.Err)
	}
	return "localise: never reached"
}

func (e *LocaliserError) Unwrap() error { return e.Err }

func (e *LocaliserError) LocalisationComponent() string { return errorComponent }

func (e *LocaliserError) LocalisationIdentifier() string {
	return "localiser_" + e.Kind.String()
}

func (e *LocaliserError) LocalisationValues() map[string]PlaceholderValue {
	values := map[string]PlaceholderValue{
		"component":  StringValue(e.Component),
		"identifier": StringValue(e.Identifier),
		"language":   StringValue(e.Tag.String()),
	}
	if nested, ok := e.Err.(Localisable); ok {
		values["cause"] = DataValue(&LocalisationData{
			Component:  nested.LocalisationComponent(),
			Identifier: nested.LocalisationIdentifier(),
			Values:     nested.LocalisationValues(),
		})
	} else if e.Err != nil {
		values["cause"] = StringValue(e.Err.Error())
	}
	return values
}
