package localise

import (
	"errors"
	"strings"
	"sync"
)

// cacheEntry is either a literal tagged string or a compiled formatter.
type cacheEntry struct {
	literal   *TaggedString
	formatter *PatternFormatter
}

// Localiser is the public entry point of the pattern pipeline: it looks
// patterns up in the repository, compiles them, caches the programs and
// formats them against caller-supplied values.
type Localiser struct {
	mu       sync.RWMutex
	provider RepositoryProvider
	services LocaleServices
	tags     *TagRegistry
	commands *CommandRegistry

	defaultTag *LanguageTag
	fallback   bool
	caching    bool

	// cache is keyed by interned tag, then by "component/identifier".
	cache map[*LanguageTag]map[string]cacheEntry
}

// TagRegistry returns the registry the localiser interns tags through.
func (l *Localiser) TagRegistry() *TagRegistry { return l.tags }

// Commands returns the command registry used for pattern commands.
func (l *Localiser) Commands() *CommandRegistry { return l.commands }

// DefaultLanguage returns the configured default tag.
func (l *Localiser) DefaultLanguage() *LanguageTag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultTag
}

// SetDefaultLanguage replaces the default tag used by the *WithDefaults
// methods.
func (l *Localiser) SetDefaultLanguage(tag *LanguageTag) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaultTag = tag
}

// SetFallback replaces the default fallback policy.
func (l *Localiser) SetFallback(fallback bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fallback = fallback
}

// SetCaching replaces the default caching policy.
func (l *Localiser) SetCaching(caching bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caching = caching
}

func (l *Localiser) defaults() (tag *LanguageTag, fallback, caching bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaultTag, l.fallback, l.caching
}

// Format looks up component/identifier for the tag, compiles the pattern
// when needed and formats it against values.
func (l *Localiser) Format(component, identifier string, values map[string]PlaceholderValue, tag *LanguageTag, fallback, caching bool) (TaggedString, error) {
	return l.localise(component, identifier, values, tag, fallback, caching, false)
}

// FormatWithDefaults is Format with the localiser's configured language,
// fallback and caching defaults.
func (l *Localiser) FormatWithDefaults(component, identifier string, values map[string]PlaceholderValue) (TaggedString, error) {
	tag, fallback, caching := l.defaults()
	return l.localise(component, identifier, values, tag, fallback, caching, false)
}

// Literal returns the pattern string without formatting. Patterns that
// need values fail with a CacheEntry error.
func (l *Localiser) Literal(component, identifier string, tag *LanguageTag, fallback, caching bool) (TaggedString, error) {
	return l.localise(component, identifier, nil, tag, fallback, caching, true)
}

// LiteralWithDefaults is Literal with the localiser's configured
// defaults.
func (l *Localiser) LiteralWithDefaults(component, identifier string) (TaggedString, error) {
	tag, fallback, caching := l.defaults()
	return l.localise(component, identifier, nil, tag, fallback, caching, true)
}

// FormatLocalisationData formats component/identifier after recursively
// formatting every nested LocalisationData value into a tagged string.
func (l *Localiser) FormatLocalisationData(component, identifier string, values map[string]PlaceholderValue, tag *LanguageTag, fallback, caching bool) (TaggedString, error) {
	resolved, err := l.resolveData(values, tag, fallback, caching)
	if err != nil {
		return TaggedString{}, err
	}
	return l.localise(component, identifier, resolved, tag, fallback, caching, false)
}

// FormatLocalisationDataWithDefaults is FormatLocalisationData with the
// localiser's configured defaults.
func (l *Localiser) FormatLocalisationDataWithDefaults(component, identifier string, values map[string]PlaceholderValue) (TaggedString, error) {
	tag, fallback, caching := l.defaults()
	return l.FormatLocalisationData(component, identifier, values, tag, fallback, caching)
}

// FormatError renders a localisable error's structured description.
func (l *Localiser) FormatError(localisable Localisable, tag *LanguageTag, fallback, caching bool) (TaggedString, error) {
	return l.FormatLocalisationData(
		localisable.LocalisationComponent(),
		localisable.LocalisationIdentifier(),
		localisable.LocalisationValues(),
		tag, fallback, caching,
	)
}

// FormatErrorWithDefaults is FormatError with the localiser's configured
// defaults.
func (l *Localiser) FormatErrorWithDefaults(localisable Localisable) (TaggedString, error) {
	tag, fallback, caching := l.defaults()
	return l.FormatError(localisable, tag, fallback, caching)
}

func (l *Localiser) resolveData(values map[string]PlaceholderValue, tag *LanguageTag, fallback, caching bool) (map[string]PlaceholderValue, error) {
	resolved := make(map[string]PlaceholderValue, len(values))
	for name, value := range values {
		if value.Kind != ValueLocalisationData {
			resolved[name] = value
			continue
		}
		data := value.Data()
		if data == nil {
			resolved[name] = StringValue("")
			continue
		}
		formatted, err := l.FormatLocalisationData(data.Component, data.Identifier, data.Values, tag, fallback, caching)
		if err != nil {
			return nil, err
		}
		resolved[name] = TaggedValue(formatted)
	}
	return resolved, nil
}

func (l *Localiser) localise(component, identifier string, values map[string]PlaceholderValue, tag *LanguageTag, fallback, caching, wantLiteral bool) (TaggedString, error) {
	if l.provider == nil {
		return TaggedString{}, ErrNoProvider
	}
	if tag == nil {
		return TaggedString{}, &LocaliserError{Kind: LocaliserRegistry, Component: component, Identifier: identifier}
	}

	key := component + "/" + identifier

	l.mu.RLock()
	entry, cached := l.cache[tag][key]
	l.mu.RUnlock()

	if cached {
		return l.fromEntry(entry, component, identifier, values, wantLiteral)
	}

	pattern, found, err := l.provider.String(component, identifier, tag)
	if err != nil {
		return TaggedString{}, &LocaliserError{Kind: LocaliserProvider, Component: component, Identifier: identifier, Tag: tag, Err: err}
	}

	usedFallback := false
	if !found && fallback {
		usedFallback = true
		details, err := l.provider.ComponentDetails(component)
		if err != nil {
			return TaggedString{}, &LocaliserError{Kind: LocaliserProvider, Component: component, Identifier: identifier, Tag: tag, Err: err}
		}
		if details.Default != nil && details.Default != tag {
			pattern, found, err = l.provider.String(component, identifier, details.Default)
			if err != nil {
				return TaggedString{}, &LocaliserError{Kind: LocaliserProvider, Component: component, Identifier: identifier, Tag: tag, Err: err}
			}
		}
	}
	if !found {
		return TaggedString{}, &LocaliserError{
			Kind:         LocaliserStringNotFound,
			Component:    component,
			Identifier:   identifier,
			Tag:          tag,
			UsedFallback: usedFallback,
		}
	}

	patternTag := pattern.Tag
	if patternTag == nil {
		patternTag = tag
	}

	// A pattern without grammar characters formats to itself; cache it as
	// a literal so later calls skip the pipeline entirely.
	if pattern.Value == "" || !strings.ContainsAny(pattern.Value, PatternGrammar) {
		literal := TaggedString{Value: pattern.Value, Tag: patternTag}
		if caching {
			l.store(tag, key, cacheEntry{literal: &literal})
		}
		return literal, nil
	}

	formatter, err := l.compile(pattern.Value, patternTag)
	if err != nil {
		var formatterErr *FormatterError
		if errors.As(err, &formatterErr) && formatterErr.Kind == FormatterNoGrammar {
			literal := TaggedString{Value: pattern.Value, Tag: patternTag}
			if caching {
				l.store(tag, key, cacheEntry{literal: &literal})
			}
			return literal, nil
		}
		return TaggedString{}, err
	}

	if caching {
		l.store(tag, key, cacheEntry{formatter: formatter})
	}
	return l.fromEntry(cacheEntry{formatter: formatter}, component, identifier, values, wantLiteral)
}

func (l *Localiser) compile(pattern string, tag *LanguageTag) (*PatternFormatter, error) {
	tokens, err := Tokenise(pattern, PatternGrammar, l.services)
	if err != nil {
		return nil, &LocaliserError{Kind: LocaliserParser, Err: err}
	}

	tree, err := Parse(tokens)
	if err != nil {
		return nil, &LocaliserError{Kind: LocaliserParser, Err: err}
	}

	formatter, err := Compile(tree, tag, l.services, l.commands, l.tags)
	if err != nil {
		var formatterErr *FormatterError
		if errors.As(err, &formatterErr) && formatterErr.Kind == FormatterNoGrammar {
			return nil, err
		}
		return nil, &LocaliserError{Kind: LocaliserFormatter, Err: err}
	}
	return formatter, nil
}

func (l *Localiser) fromEntry(entry cacheEntry, component, identifier string, values map[string]PlaceholderValue, wantLiteral bool) (TaggedString, error) {
	if entry.literal != nil {
		return *entry.literal, nil
	}
	if wantLiteral {
		return TaggedString{}, &LocaliserError{Kind: LocaliserCacheEntry, Component: component, Identifier: identifier}
	}

	result, err := entry.formatter.Format(values)
	if err != nil {
		return TaggedString{}, &LocaliserError{Kind: LocaliserFormatter, Component: component, Identifier: identifier, Err: err}
	}
	return result, nil
}

func (l *Localiser) store(tag *LanguageTag, key string, entry cacheEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cache == nil {
		l.cache = make(map[*LanguageTag]map[string]cacheEntry)
	}
	byKey := l.cache[tag]
	if byKey == nil {
		byKey = make(map[string]cacheEntry)
		l.cache[tag] = byKey
	}
	byKey[key] = entry
}
