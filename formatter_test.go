package localise

import (
	"errors"
	"testing"
	"time"
)

func formatPattern(t *testing.T, source, locale string, values map[string]PlaceholderValue) string {
	t.Helper()
	formatter := mustCompile(t, source, locale)
	result, err := formatter.Format(values)
	if err != nil {
		t.Fatalf("Format(%q): %v", source, err)
	}
	if result.Tag != formatter.Tag() {
		t.Fatalf("result tag = %v, want %v", result.Tag, formatter.Tag())
	}
	return result.Value
}

func TestFormatStringPlaceholder(t *testing.T) {
	got := formatPattern(t, "Expecting a string for placeholder: {string}", "en-ZA",
		map[string]PlaceholderValue{"string": StringValue("This is a string.")})
	if got != "Expecting a string for placeholder: This is a string." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatPluralWithNumberSign(t *testing.T) {
	source := "There {dogs_number plural one#one_dog other#dogs} in the park.#{dogs are # dogs}{one_dog is 1 dog}"

	tests := []struct {
		dogs uint64
		want string
	}{
		{3, "There are 3 dogs in the park."},
		{1, "There is 1 dog in the park."},
	}

	for _, tc := range tests {
		got := formatPattern(t, source, "en-ZA",
			map[string]PlaceholderValue{"dogs_number": UnsignedValue(tc.dogs)})
		if got != tc.want {
			t.Fatalf("dogs=%d got %q, want %q", tc.dogs, got, tc.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	got := formatPattern(t, "There is {amount decimal} kg of rice in the container.", "en-ZA",
		map[string]PlaceholderValue{"amount": FloatValue(3.678)})
	if got != "There is 3.678 kg of rice in the container." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDecimalSign(t *testing.T) {
	got := formatPattern(t, "There is {amount decimal sign#always} kg of rice in the container.", "en-ZA",
		map[string]PlaceholderValue{"amount": FloatValue(3.678)})
	if got != "There is +3.678 kg of rice in the container." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDecimalSignDisplay(t *testing.T) {
	tests := []struct {
		option string
		value  PlaceholderValue
		want   string
	}{
		{"sign#auto", IntegerValue(-5), "-5"},
		{"sign#auto", IntegerValue(5), "5"},
		{"sign#never", IntegerValue(-5), "5"},
		{"sign#always", IntegerValue(5), "+5"},
		{"sign#always", IntegerValue(-5), "-5"},
		{"sign#except_zero", IntegerValue(0), "0"},
		{"sign#except_zero", IntegerValue(5), "+5"},
		{"sign#except_zero", IntegerValue(-5), "-5"},
		{"sign#negative", DecimalValue(FixedDecimal{Negative: true, Integer: 0, Fraction: 0, Scale: 1}), "0.0"},
		{"sign#negative", IntegerValue(-5), "-5"},
	}

	for _, tc := range tests {
		got := formatPattern(t, "{n decimal "+tc.option+"}", "en-ZA",
			map[string]PlaceholderValue{"n": tc.value})
		if got != tc.want {
			t.Fatalf("%s of %v = %q, want %q", tc.option, tc.value, got, tc.want)
		}
	}
}

func TestFormatDecimalGrouping(t *testing.T) {
	tests := []struct {
		locale string
		option string
		value  PlaceholderValue
		want   string
	}{
		{"en-ZA", "", FloatValue(1234567.89), "1 234 567.89"},
		{"en", "", FloatValue(1234567.89), "1,234,567.89"},
		{"en", " group#never", FloatValue(1234567.89), "1234567.89"},
		{"en", "", IntegerValue(1234), "1,234"},
		// es ships min_grouping_digits 2, so four digits stay ungrouped.
		{"es", "", IntegerValue(1234), "1234"},
		{"es", "", IntegerValue(12345), "12.345"},
		{"es", "", FloatValue(1.5), "1,5"},
		{"en", " group#min2", IntegerValue(1234), "1234"},
		{"en", " group#min2", IntegerValue(12345), "12,345"},
	}

	for _, tc := range tests {
		got := formatPattern(t, "{n decimal"+tc.option+"}", tc.locale,
			map[string]PlaceholderValue{"n": tc.value})
		if got != tc.want {
			t.Fatalf("%s%s of %v = %q, want %q", tc.locale, tc.option, tc.value, got, tc.want)
		}
	}
}

func TestFormatDateTimeFromString(t *testing.T) {
	got := formatPattern(t, "At this point in time {time date_time} the moon winked out.", "en-ZA",
		map[string]PlaceholderValue{"time": StringValue("+248624-10-06T05:47:23.254")})
	if got != "At this point in time 06 Oct 248624, 05:47:23 the moon winked out." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDateTimeKinds(t *testing.T) {
	moment := time.Date(2024, time.March, 5, 14, 30, 9, 0, time.UTC)

	tests := []struct {
		value PlaceholderValue
		want  string
	}{
		{DateValue(moment), "05 Mar 2024"},
		{TimeValue(moment), "14:30:09"},
		{DateTimeValue(moment), "05 Mar 2024, 14:30:09"},
		{StringValue("2024-03-05"), "05 Mar 2024"},
		{StringValue("T14:30:09"), "14:30:09"},
	}

	for _, tc := range tests {
		got := formatPattern(t, "{t date_time}", "en-ZA",
			map[string]PlaceholderValue{"t": tc.value})
		if got != tc.want {
			t.Fatalf("%v = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatDelayedCommands(t *testing.T) {
	source := "At night {#english_a_or_an# hunter} {hunter} stalked {#english_a_or_an # prey} {prey}."
	got := formatPattern(t, source, "en-ZA", map[string]PlaceholderValue{
		"hunter": StringValue("owl"),
		"prey":   StringValue("mouse"),
	})
	if got != "At night an owl stalked a mouse." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatSelect(t *testing.T) {
	source := "{color select red#warm blue#cool}#{warm warm}{cool cool}"

	got := formatPattern(t, source, "en",
		map[string]PlaceholderValue{"color": StringValue("blue")})
	if got != "cool" {
		t.Fatalf("got %q", got)
	}

	formatter := mustCompile(t, source, "en")
	_, err := formatter.Format(map[string]PlaceholderValue{"color": StringValue("green")})
	var formatterErr *FormatterError
	if !errors.As(err, &formatterErr) || formatterErr.Kind != FormatterSelectorsIndexNamed {
		t.Fatalf("err = %v, want selectors_index_named", err)
	}
}

func TestFormatOrdinal(t *testing.T) {
	source := "You came {n ordinal one#st two#nd few#rd other#th}.#{st #st}{nd #nd}{rd #rd}{th #th}"

	tests := []struct {
		n    uint64
		want string
	}{
		{1, "You came 1st."},
		{2, "You came 2nd."},
		{3, "You came 3rd."},
		{4, "You came 4th."},
		{11, "You came 11th."},
	}

	for _, tc := range tests {
		got := formatPattern(t, source, "en",
			map[string]PlaceholderValue{"n": UnsignedValue(tc.n)})
		if got != tc.want {
			t.Fatalf("n=%d got %q, want %q", tc.n, got, tc.want)
		}
	}

	// Ordinal placeholders accept unsigned values only.
	formatter := mustCompile(t, source, "en")
	_, err := formatter.Format(map[string]PlaceholderValue{"n": IntegerValue(2)})
	var formatterErr *FormatterError
	if !errors.As(err, &formatterErr) || formatterErr.Kind != FormatterInvalidValue {
		t.Fatalf("err = %v, want invalid_value", err)
	}
}

func TestFormatValueErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		values map[string]PlaceholderValue
		kind   FormatterErrorKind
	}{
		{"missing value", "{name}", nil, FormatterPlaceholderValue},
		{"number for string", "{name}", map[string]PlaceholderValue{"name": IntegerValue(7)}, FormatterInvalidValue},
		{"string for decimal", "{n decimal}", map[string]PlaceholderValue{"n": StringValue("x")}, FormatterInvalidValue},
		{"bad date string", "{t date_time}", map[string]PlaceholderValue{"t": StringValue("not a date")}, FormatterInvalidValue},
		{"string for plural", "{n plural other#a}#{a b}", map[string]PlaceholderValue{"n": StringValue("x")}, FormatterInvalidValue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			formatter := mustCompile(t, tc.source, "en")
			_, err := formatter.Format(tc.values)
			var formatterErr *FormatterError
			if !errors.As(err, &formatterErr) {
				t.Fatalf("err = %v, want FormatterError", err)
			}
			if formatterErr.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", formatterErr.Kind, tc.kind)
			}
		})
	}
}

func TestFormatTaggedStringDiscardsTag(t *testing.T) {
	registry := NewTagRegistry()
	inner := TaggedString{Value: "bonjour", Tag: registry.MustTag("fr")}

	formatter := mustCompile(t, "greeting: {word}", "en")
	result, err := formatter.Format(map[string]PlaceholderValue{"word": TaggedValue(inner)})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if result.Value != "greeting: bonjour" {
		t.Fatalf("got %q", result.Value)
	}
	if result.Tag != formatter.Tag() {
		t.Fatalf("result tag = %v", result.Tag)
	}
}

func TestFixedDecimalString(t *testing.T) {
	tests := []struct {
		decimal FixedDecimal
		want    string
	}{
		{FixedDecimal{Integer: 12}, "12"},
		{FixedDecimal{Negative: true, Integer: 12, Fraction: 34, Scale: 3}, "-12.034"},
		{FixedDecimal{Integer: 0, Fraction: 5, Scale: 1}, "0.5"},
	}
	for _, tc := range tests {
		if got := tc.decimal.String(); got != tc.want {
			t.Fatalf("%+v = %q, want %q", tc.decimal, got, tc.want)
		}
	}
}
