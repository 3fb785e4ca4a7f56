package localise

import "sort"

// RepositoryProvider exposes read-only access to the pattern strings of a
// localisation repository, grouped by component and identifier and tagged
// by language.
type RepositoryProvider interface {
	// String looks up the exact tag first, then truncates the rightmost
	// subtag and retries until nothing remains. ok reports whether a
	// pattern was found.
	String(component, identifier string, tag *LanguageTag) (pattern TaggedString, ok bool, err error)
	// StringExactMatch looks up without truncation.
	StringExactMatch(component, identifier string, tag *LanguageTag) (pattern TaggedString, ok bool, err error)
	// Strings returns every language's pattern for the identifier.
	Strings(component, identifier string) ([]TaggedString, error)
	// IdentifierDetails lists the available tags and the default tag for
	// the identifier.
	IdentifierDetails(component, identifier string) (IdentifierDetails, error)
	// ComponentDetails reports per-language statistics for a component.
	ComponentDetails(component string) (ComponentDetails, error)
	// RepositoryDetails reports the union across components.
	RepositoryDetails() (RepositoryDetails, error)
}

// IdentifierDetails describes one identifier of a component.
type IdentifierDetails struct {
	Tags    []*LanguageTag
	Default *LanguageTag
}

// LanguageDetails carries the statistics of one language of a component.
type LanguageDetails struct {
	Tag *LanguageTag
	// Count is the number of strings present in this language.
	Count int
	// Ratio is Count relative to the default language's count.
	Ratio float64
	// Contributors lists who worked on this language.
	Contributors []string
}

// ComponentDetails aggregates the statistics of one component.
type ComponentDetails struct {
	Component    string
	Default      *LanguageTag
	Languages    []LanguageDetails
	TotalStrings int
}

// RepositoryDetails aggregates across all components.
type RepositoryDetails struct {
	Default      *LanguageTag
	Components   []ComponentDetails
	TotalStrings int
}

type staticComponent struct {
	defaultTag   *LanguageTag
	strings      map[string]map[*LanguageTag]string // identifier → tag → pattern
	contributors map[*LanguageTag][]string
}

// StaticProvider is an immutable in-memory repository provider.
type StaticProvider struct {
	registry   *TagRegistry
	defaultTag *LanguageTag
	components map[string]*staticComponent
}

var _ RepositoryProvider = &StaticProvider{}

// ComponentData seeds one component of a StaticProvider.
type ComponentData struct {
	// Default is the component's default language.
	Default string
	// Strings maps language → identifier → pattern.
	Strings map[string]map[string]string
	// Contributors maps language → contributor list.
	Contributors map[string][]string
}

// NewStaticProvider builds an immutable provider snapshot. Language
// identifiers are canonicalised and interned through registry.
func NewStaticProvider(registry *TagRegistry, data map[string]ComponentData) (*StaticProvider, error) {
	if registry == nil {
		return nil, ErrNoTagRegistry
	}

	provider := &StaticProvider{
		registry:   registry,
		components: make(map[string]*staticComponent, len(data)),
	}

	for name, component := range data {
		if name == "" {
			continue
		}

		built := &staticComponent{
			strings:      make(map[string]map[*LanguageTag]string),
			contributors: make(map[*LanguageTag][]string),
		}

		if component.Default != "" {
			tag, err := registry.Tag(component.Default)
			if err != nil {
				return nil, err
			}
			built.defaultTag = tag
			if provider.defaultTag == nil {
				provider.defaultTag = tag
			}
		}

		for language, patterns := range component.Strings {
			tag, err := registry.Tag(language)
			if err != nil {
				return nil, err
			}
			for identifier, pattern := range patterns {
				if identifier == "" {
					continue
				}
				byTag := built.strings[identifier]
				if byTag == nil {
					byTag = make(map[*LanguageTag]string)
					built.strings[identifier] = byTag
				}
				byTag[tag] = pattern
			}
		}

		for language, contributors := range component.Contributors {
			tag, err := registry.Tag(language)
			if err != nil {
				return nil, err
			}
			built.contributors[tag] = append([]string(nil), contributors...)
		}

		provider.components[name] = built
	}

	return provider, nil
}

// DefaultLanguage reports the component's default tag.
func (p *StaticProvider) DefaultLanguage(component string) (*LanguageTag, bool) {
	built, ok := p.components[component]
	if !ok || built.defaultTag == nil {
		return nil, false
	}
	return built.defaultTag, true
}

func (p *StaticProvider) String(component, identifier string, tag *LanguageTag) (TaggedString, bool, error) {
	built, ok := p.components[component]
	if !ok {
		return TaggedString{}, false, nil
	}
	byTag, ok := built.strings[identifier]
	if !ok {
		return TaggedString{}, false, nil
	}

	for candidate := tag; candidate != nil; candidate = p.registry.Truncate(candidate) {
		if pattern, ok := byTag[candidate]; ok {
			return TaggedString{Value: pattern, Tag: candidate}, true, nil
		}
	}
	return TaggedString{}, false, nil
}

func (p *StaticProvider) StringExactMatch(component, identifier string, tag *LanguageTag) (TaggedString, bool, error) {
	built, ok := p.components[component]
	if !ok {
		return TaggedString{}, false, nil
	}
	pattern, ok := built.strings[identifier][tag]
	if !ok {
		return TaggedString{}, false, nil
	}
	return TaggedString{Value: pattern, Tag: tag}, true, nil
}

func (p *StaticProvider) Strings(component, identifier string) ([]TaggedString, error) {
	built, ok := p.components[component]
	if !ok {
		return nil, nil
	}

	byTag := built.strings[identifier]
	result := make([]TaggedString, 0, len(byTag))
	for tag, pattern := range byTag {
		result = append(result, TaggedString{Value: pattern, Tag: tag})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Tag.String() < result[j].Tag.String()
	})
	return result, nil
}

func (p *StaticProvider) IdentifierDetails(component, identifier string) (IdentifierDetails, error) {
	built, ok := p.components[component]
	if !ok {
		return IdentifierDetails{}, nil
	}

	details := IdentifierDetails{Default: built.defaultTag}
	for tag := range built.strings[identifier] {
		details.Tags = append(details.Tags, tag)
	}
	sort.Slice(details.Tags, func(i, j int) bool {
		return details.Tags[i].String() < details.Tags[j].String()
	})
	return details, nil
}

func (p *StaticProvider) ComponentDetails(component string) (ComponentDetails, error) {
	built, ok := p.components[component]
	if !ok {
		return ComponentDetails{}, nil
	}

	counts := make(map[*LanguageTag]int)
	total := 0
	for _, byTag := range built.strings {
		for tag := range byTag {
			counts[tag]++
			total++
		}
	}

	defaultCount := counts[built.defaultTag]
	details := ComponentDetails{
		Component:    component,
		Default:      built.defaultTag,
		TotalStrings: total,
	}
	for tag, count := range counts {
		language := LanguageDetails{
			Tag:          tag,
			Count:        count,
			Contributors: built.contributors[tag],
		}
		if defaultCount > 0 {
			language.Ratio = float64(count) / float64(defaultCount)
		}
		details.Languages = append(details.Languages, language)
	}
	sort.Slice(details.Languages, func(i, j int) bool {
		return details.Languages[i].Tag.String() < details.Languages[j].Tag.String()
	})
	return details, nil
}

func (p *StaticProvider) RepositoryDetails() (RepositoryDetails, error) {
	names := make([]string, 0, len(p.components))
	for name := range p.components {
		names = append(names, name)
	}
	sort.Strings(names)

	details := RepositoryDetails{Default: p.defaultTag}
	for _, name := range names {
		component, err := p.ComponentDetails(name)
		if err != nil {
			return RepositoryDetails{}, err
		}
		details.Components = append(details.Components, component)
		details.TotalStrings += component.TotalStrings
	}
	return details, nil
}
