package localise

import "testing"

func seedProvider(t *testing.T, registry *TagRegistry) *StaticProvider {
	t.Helper()
	provider, err := NewStaticProvider(registry, map[string]ComponentData{
		"web": {
			Default: "en",
			Strings: map[string]map[string]string{
				"en": {
					"title":  "Welcome",
					"footer": "All rights reserved.",
				},
				"en-ZA": {
					"title": "Howzit",
				},
				"es": {
					"title": "Bienvenido",
				},
			},
			Contributors: map[string][]string{
				"es": {"alex"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	return provider
}

func TestStaticProviderString(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	tests := []struct {
		locale  string
		id      string
		want    string
		wantTag string
		ok      bool
	}{
		{"en-ZA", "title", "Howzit", "en-ZA", true},
		// en-ZA has no footer; truncation reaches en.
		{"en-ZA", "footer", "All rights reserved.", "en", true},
		{"es", "title", "Bienvenido", "es", true},
		// es has no footer and es truncates to nothing useful but en is
		// not a parent of es, so the lookup fails.
		{"es", "footer", "", "", false},
		{"fr", "title", "", "", false},
		{"en", "missing", "", "", false},
	}

	for _, tc := range tests {
		pattern, ok, err := provider.String("web", tc.id, registry.MustTag(tc.locale))
		if err != nil {
			t.Fatalf("String(%s,%s): %v", tc.locale, tc.id, err)
		}
		if ok != tc.ok || pattern.Value != tc.want {
			t.Fatalf("String(%s,%s) = %q,%v want %q,%v", tc.locale, tc.id, pattern.Value, ok, tc.want, tc.ok)
		}
		if ok && pattern.Tag != registry.MustTag(tc.wantTag) {
			t.Fatalf("String(%s,%s) tag = %v, want %s", tc.locale, tc.id, pattern.Tag, tc.wantTag)
		}
	}
}

func TestStaticProviderStringExactMatch(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	if _, ok, _ := provider.StringExactMatch("web", "footer", registry.MustTag("en-ZA")); ok {
		t.Fatal("exact match must not truncate")
	}
	pattern, ok, _ := provider.StringExactMatch("web", "footer", registry.MustTag("en"))
	if !ok || pattern.Value != "All rights reserved." {
		t.Fatalf("got %q,%v", pattern.Value, ok)
	}
}

func TestStaticProviderStrings(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	all, err := provider.Strings("web", "title")
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d strings: %v", len(all), all)
	}
	// Sorted by canonical tag.
	if all[0].Tag.String() != "en" || all[1].Tag.String() != "en-ZA" || all[2].Tag.String() != "es" {
		t.Fatalf("order = %v %v %v", all[0].Tag, all[1].Tag, all[2].Tag)
	}
}

func TestStaticProviderIdentifierDetails(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	details, err := provider.IdentifierDetails("web", "footer")
	if err != nil {
		t.Fatalf("IdentifierDetails: %v", err)
	}
	if details.Default != registry.MustTag("en") {
		t.Fatalf("default = %v", details.Default)
	}
	if len(details.Tags) != 1 || details.Tags[0] != registry.MustTag("en") {
		t.Fatalf("tags = %v", details.Tags)
	}
}

func TestStaticProviderComponentDetails(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	details, err := provider.ComponentDetails("web")
	if err != nil {
		t.Fatalf("ComponentDetails: %v", err)
	}
	if details.Default != registry.MustTag("en") || details.TotalStrings != 4 {
		t.Fatalf("details = %+v", details)
	}
	if len(details.Languages) != 3 {
		t.Fatalf("languages = %v", details.Languages)
	}

	for _, language := range details.Languages {
		switch language.Tag.String() {
		case "en":
			if language.Count != 2 || language.Ratio != 1 {
				t.Fatalf("en stats = %+v", language)
			}
		case "en-ZA", "es":
			if language.Count != 1 || language.Ratio != 0.5 {
				t.Fatalf("%s stats = %+v", language.Tag, language)
			}
		default:
			t.Fatalf("unexpected language %v", language.Tag)
		}
	}

	es := details.Languages[2]
	if es.Tag.String() != "es" || len(es.Contributors) != 1 || es.Contributors[0] != "alex" {
		t.Fatalf("es contributors = %+v", es)
	}
}

func TestStaticProviderRepositoryDetails(t *testing.T) {
	registry := NewTagRegistry()
	provider := seedProvider(t, registry)

	details, err := provider.RepositoryDetails()
	if err != nil {
		t.Fatalf("RepositoryDetails: %v", err)
	}
	if details.TotalStrings != 4 || len(details.Components) != 1 {
		t.Fatalf("details = %+v", details)
	}
	if details.Default != registry.MustTag("en") {
		t.Fatalf("default = %v", details.Default)
	}
}

func TestNewStaticProviderRequiresRegistry(t *testing.T) {
	if _, err := NewStaticProvider(nil, nil); err != ErrNoTagRegistry {
		t.Fatalf("err = %v, want ErrNoTagRegistry", err)
	}
}
