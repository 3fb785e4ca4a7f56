package localise

import (
	"errors"
	"testing"
)

func testProvider(t *testing.T, registry *TagRegistry) *StaticProvider {
	t.Helper()
	provider, err := NewStaticProvider(registry, map[string]ComponentData{
		"game": {
			Default: "en",
			Strings: map[string]map[string]string{
				"en": {
					"motd":    "A simple plain text string.",
					"greet":   "Hello {name}!",
					"dogs":    "There {dogs_number plural one#one_dog other#dogs} in the park.#{dogs are # dogs}{one_dog is 1 dog}",
					"en_only": "english only",
				},
				"en-ZA": {
					"greet": "Howzit {name}!",
				},
			},
		},
		"localise": {
			Default: "en",
			Strings: map[string]map[string]string{
				"en": {
					"command_not_found": "Command {command} is not registered.",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	return provider
}

func testLocaliser(t *testing.T, opts ...Option) (*Localiser, *TagRegistry) {
	t.Helper()
	registry := NewTagRegistry()
	provider := testProvider(t, registry)
	localiser, err := New(provider, append([]Option{WithTagRegistry(registry)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return localiser, registry
}

func TestLocaliserFormat(t *testing.T) {
	localiser, registry := testLocaliser(t)

	result, err := localiser.Format("game", "greet",
		map[string]PlaceholderValue{"name": StringValue("Thandi")},
		registry.MustTag("en-ZA"), true, true)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "Howzit Thandi!" {
		t.Fatalf("got %q", result.Value)
	}
	if result.Tag != registry.MustTag("en-ZA") {
		t.Fatalf("result tag = %v", result.Tag)
	}
}

func TestLocaliserTruncationLookup(t *testing.T) {
	localiser, registry := testLocaliser(t)

	// en-ZA has no "dogs" string; lookup truncates to en.
	result, err := localiser.Format("game", "dogs",
		map[string]PlaceholderValue{"dogs_number": UnsignedValue(3)},
		registry.MustTag("en-ZA"), true, true)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "There are 3 dogs in the park." {
		t.Fatalf("got %q", result.Value)
	}
	if result.Tag != registry.MustTag("en") {
		t.Fatalf("result tag = %v, want en", result.Tag)
	}
}

func TestLocaliserPlainTextLiteral(t *testing.T) {
	localiser, registry := testLocaliser(t)
	tag := registry.MustTag("en")

	result, err := localiser.Format("game", "motd", nil, tag, true, true)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "A simple plain text string." {
		t.Fatalf("got %q", result.Value)
	}

	// The literal cache entry serves Literal too.
	literal, err := localiser.Literal("game", "motd", tag, true, true)
	if err != nil {
		t.Fatalf("Literal: %v", err)
	}
	if literal.Value != result.Value {
		t.Fatalf("literal = %q", literal.Value)
	}
}

func TestLocaliserLiteralOnCompiledEntry(t *testing.T) {
	localiser, registry := testLocaliser(t)
	tag := registry.MustTag("en")

	if _, err := localiser.Format("game", "greet",
		map[string]PlaceholderValue{"name": StringValue("x")}, tag, true, true); err != nil {
		t.Fatalf("Format: %v", err)
	}

	_, err := localiser.Literal("game", "greet", tag, true, true)
	var localiserErr *LocaliserError
	if !errors.As(err, &localiserErr) || localiserErr.Kind != LocaliserCacheEntry {
		t.Fatalf("err = %v, want cache_entry", err)
	}
}

func TestLocaliserFallback(t *testing.T) {
	localiser, registry := testLocaliser(t)
	french := registry.MustTag("fr")

	// With fallback the component default language serves the string.
	result, err := localiser.Format("game", "en_only", nil, french, true, true)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "english only" {
		t.Fatalf("got %q", result.Value)
	}

	// Without fallback the lookup fails.
	_, err = localiser.Format("game", "en_only", nil, french, false, false)
	var localiserErr *LocaliserError
	if !errors.As(err, &localiserErr) || localiserErr.Kind != LocaliserStringNotFound {
		t.Fatalf("err = %v, want string_not_found", err)
	}
	if localiserErr.UsedFallback {
		t.Fatal("UsedFallback set without fallback")
	}

	// A string absent everywhere reports that fallback was attempted.
	_, err = localiser.Format("game", "missing", nil, french, true, true)
	if !errors.As(err, &localiserErr) || localiserErr.Kind != LocaliserStringNotFound {
		t.Fatalf("err = %v, want string_not_found", err)
	}
	if !localiserErr.UsedFallback {
		t.Fatal("UsedFallback not set")
	}
}

func TestLocaliserWithDefaults(t *testing.T) {
	localiser, _ := testLocaliser(t, WithDefaultLanguage("en-ZA"))

	result, err := localiser.FormatWithDefaults("game", "greet",
		map[string]PlaceholderValue{"name": StringValue("Sipho")})
	if err != nil {
		t.Fatalf("FormatWithDefaults: %v", err)
	}
	if result.Value != "Howzit Sipho!" {
		t.Fatalf("got %q", result.Value)
	}

	literal, err := localiser.LiteralWithDefaults("game", "motd")
	if err != nil {
		t.Fatalf("LiteralWithDefaults: %v", err)
	}
	if literal.Value != "A simple plain text string." {
		t.Fatalf("got %q", literal.Value)
	}
}

func TestLocaliserSetters(t *testing.T) {
	localiser, registry := testLocaliser(t)

	localiser.SetDefaultLanguage(registry.MustTag("en-ZA"))
	if localiser.DefaultLanguage() != registry.MustTag("en-ZA") {
		t.Fatalf("default language = %v", localiser.DefaultLanguage())
	}

	localiser.SetFallback(false)
	localiser.SetCaching(false)

	_, err := localiser.FormatWithDefaults("game", "en_only", nil)
	var localiserErr *LocaliserError
	if !errors.As(err, &localiserErr) || localiserErr.Kind != LocaliserStringNotFound {
		t.Fatalf("err = %v, want string_not_found", err)
	}
}

func TestLocaliserFormatLocalisationData(t *testing.T) {
	localiser, registry := testLocaliser(t)
	tag := registry.MustTag("en")

	result, err := localiser.FormatLocalisationData("game", "greet",
		map[string]PlaceholderValue{
			"name": DataValue(&LocalisationData{
				Component:  "game",
				Identifier: "motd",
			}),
		}, tag, true, true)
	if err != nil {
		t.Fatalf("FormatLocalisationData: %v", err)
	}
	if result.Value != "Hello A simple plain text string.!" {
		t.Fatalf("got %q", result.Value)
	}
}

func TestLocaliserFormatError(t *testing.T) {
	localiser, registry := testLocaliser(t)

	commandErr := &CommandError{Kind: CommandNotFound, Command: "nope"}
	result, err := localiser.FormatError(commandErr, registry.MustTag("en"), true, true)
	if err != nil {
		t.Fatalf("FormatError: %v", err)
	}
	if result.Value != "Command nope is not registered." {
		t.Fatalf("got %q", result.Value)
	}
}

func TestLocaliserParserErrorWrapped(t *testing.T) {
	registry := NewTagRegistry()
	provider, err := NewStaticProvider(registry, map[string]ComponentData{
		"bad": {
			Default: "en",
			Strings: map[string]map[string]string{
				"en": {"broken": "unterminated {name"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	localiser, err := New(provider, WithTagRegistry(registry))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = localiser.Format("bad", "broken", nil, registry.MustTag("en"), true, true)
	var localiserErr *LocaliserError
	if !errors.As(err, &localiserErr) || localiserErr.Kind != LocaliserParser {
		t.Fatalf("err = %v, want parser", err)
	}
	var parserErr *ParserError
	if !errors.As(err, &parserErr) || parserErr.Kind != ParserEndedAbruptly {
		t.Fatalf("wrapped err = %v, want ended_abruptly", err)
	}
}

func TestLocaliserWithCommand(t *testing.T) {
	registry := NewTagRegistry()
	provider, err := NewStaticProvider(registry, map[string]ComponentData{
		"game": {
			Default: "en",
			Strings: map[string]map[string]string{
				"en": {"shout": "{#upper # word}"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}

	localiser, err := New(provider,
		WithTagRegistry(registry),
		WithCommand("upper", func(parameters []string) (string, error) {
			if len(parameters) < 2 {
				return "", &CommandError{Kind: CommandParameterMissing, Command: "upper", Parameter: "word"}
			}
			result := make([]byte, len(parameters[1]))
			for i := 0; i < len(parameters[1]); i++ {
				c := parameters[1][i]
				if c >= 'a' && c <= 'z' {
					c -= 'a' - 'A'
				}
				result[i] = c
			}
			return string(result), nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := localiser.Format("game", "shout",
		map[string]PlaceholderValue{"word": StringValue("loud")},
		registry.MustTag("en"), true, true)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "LOUD" {
		t.Fatalf("got %q", result.Value)
	}
}

func TestNewRequiresProvider(t *testing.T) {
	if _, err := New(nil); err != ErrNoProvider {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
}
