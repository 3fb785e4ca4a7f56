package localise

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// LanguageTag is an interned BCP 47 language tag. The registry hands out
// exactly one instance per canonical form, so equality between tags is
// pointer equality.
type LanguageTag struct {
	tag       language.Tag
	canonical string
}

// String returns the canonical BCP 47 form of the tag.
func (t *LanguageTag) String() string {
	if t == nil {
		return ""
	}
	return t.canonical
}

// Raw exposes the underlying x/text tag.
func (t *LanguageTag) Raw() language.Tag {
	if t == nil {
		return language.Und
	}
	return t.tag
}

// TaggedString pairs a string with the language it is written in.
type TaggedString struct {
	Value string
	Tag   *LanguageTag
}

// TagRegistry canonicalises language identifiers and interns one shared
// handle per tag.
type TagRegistry struct {
	mu       sync.RWMutex
	interned map[string]*LanguageTag
}

func NewTagRegistry() *TagRegistry {
	return &TagRegistry{interned: make(map[string]*LanguageTag)}
}

// Tag canonicalises locale and returns its interned handle, creating it on
// first observation.
func (r *TagRegistry) Tag(locale string) (*LanguageTag, error) {
	if r == nil {
		return nil, ErrNoTagRegistry
	}

	normalized := normalizeLocale(locale)
	if normalized == "" {
		return nil, &LocaliserError{Kind: LocaliserRegistry, Identifier: locale}
	}

	parsed, err := language.Parse(normalized)
	if err != nil {
		return nil, &LocaliserError{Kind: LocaliserRegistry, Identifier: locale, Err: err}
	}

	return r.intern(parsed), nil
}

// MustTag is Tag for statically known locales; it panics on malformed input.
func (r *TagRegistry) MustTag(locale string) *LanguageTag {
	tag, err := r.Tag(locale)
	if err != nil {
		panic(err)
	}
	return tag
}

func (r *TagRegistry) intern(parsed language.Tag) *LanguageTag {
	canonical := parsed.String()

	r.mu.RLock()
	if handle, ok := r.interned[canonical]; ok {
		r.mu.RUnlock()
		return handle
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.interned[canonical]; ok {
		return handle
	}

	handle := &LanguageTag{tag: parsed, canonical: canonical}
	if r.interned == nil {
		r.interned = make(map[string]*LanguageTag)
	}
	r.interned[canonical] = handle
	return handle
}

// WithExtension returns the interned tag with the given BCP 47 extension
// key/value applied, replacing any existing value for the key.
func (r *TagRegistry) WithExtension(tag *LanguageTag, key, value string) (*LanguageTag, error) {
	if r == nil {
		return nil, ErrNoTagRegistry
	}
	if tag == nil {
		return nil, &LocaliserError{Kind: LocaliserRegistry}
	}

	extended, err := tag.tag.SetTypeForKey(key, value)
	if err != nil {
		return nil, &LocaliserError{Kind: LocaliserRegistry, Identifier: tag.canonical, Err: err}
	}
	return r.intern(extended), nil
}

// Truncate drops the rightmost subtag, returning nil when nothing remains.
// Extension sequences are dropped whole so truncation never produces a tag
// with a dangling singleton.
func (r *TagRegistry) Truncate(tag *LanguageTag) *LanguageTag {
	if r == nil || tag == nil {
		return nil
	}

	parts := strings.Split(tag.canonical, "-")
	cut := len(parts) - 1
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 1 {
			cut = i
			break
		}
	}
	if cut == 0 {
		return nil
	}
	parts = parts[:cut]

	truncated, err := r.Tag(strings.Join(parts, "-"))
	if err != nil || truncated == tag {
		return nil
	}
	return truncated
}

// normalizeLocale normalizes a locale identifier by replacing underscores
// with hyphens and trimming whitespace.
func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
}
