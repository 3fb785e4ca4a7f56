package localise

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the placeholder value variants.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueTaggedString
	ValueUnsigned
	ValueInteger
	ValueFloat
	ValueFixedDecimal
	ValueDate
	ValueTime
	ValueDateTime
	ValueLocalisationData
)

// FixedDecimal is a number with a fixed count of visible fraction digits.
type FixedDecimal struct {
	Negative bool
	Integer  uint64
	Fraction uint64
	Scale    int
}

// String renders the decimal in plain ASCII form, e.g. "-12.340".
func (d FixedDecimal) String() string {
	sign := ""
	if d.Negative {
		sign = "-"
	}
	if d.Scale <= 0 {
		return fmt.Sprintf("%s%d", sign, d.Integer)
	}
	return fmt.Sprintf("%s%d.%0*d", sign, d.Integer, d.Scale, d.Fraction)
}

// LocalisationData names a repository string together with the values
// needed to format it; used for nesting localised content in values.
type LocalisationData struct {
	Component  string
	Identifier string
	Values     map[string]PlaceholderValue
}

// PlaceholderValue is the tagged union of values a caller can bind to a
// placeholder. Use the *Value constructors.
type PlaceholderValue struct {
	Kind ValueKind

	text     string
	tagged   TaggedString
	unsigned uint64
	integer  int64
	float    float64
	decimal  FixedDecimal
	moment   time.Time
	data     *LocalisationData
}

func StringValue(s string) PlaceholderValue {
	return PlaceholderValue{Kind: ValueString, text: s}
}

func TaggedValue(s TaggedString) PlaceholderValue {
	return PlaceholderValue{Kind: ValueTaggedString, tagged: s}
}

func UnsignedValue(v uint64) PlaceholderValue {
	return PlaceholderValue{Kind: ValueUnsigned, unsigned: v}
}

func IntegerValue(v int64) PlaceholderValue {
	return PlaceholderValue{Kind: ValueInteger, integer: v}
}

func FloatValue(v float64) PlaceholderValue {
	return PlaceholderValue{Kind: ValueFloat, float: v}
}

func DecimalValue(d FixedDecimal) PlaceholderValue {
	return PlaceholderValue{Kind: ValueFixedDecimal, decimal: d}
}

func DateValue(t time.Time) PlaceholderValue {
	return PlaceholderValue{Kind: ValueDate, moment: t}
}

func TimeValue(t time.Time) PlaceholderValue {
	return PlaceholderValue{Kind: ValueTime, moment: t}
}

func DateTimeValue(t time.Time) PlaceholderValue {
	return PlaceholderValue{Kind: ValueDateTime, moment: t}
}

func DataValue(data *LocalisationData) PlaceholderValue {
	return PlaceholderValue{Kind: ValueLocalisationData, data: data}
}

// Data returns the nested localisation data, or nil for other kinds.
func (v PlaceholderValue) Data() *LocalisationData {
	if v.Kind != ValueLocalisationData {
		return nil
	}
	return v.data
}

// isNumeric reports whether the value can feed a decimal or plural part.
func (v PlaceholderValue) isNumeric() bool {
	switch v.Kind {
	case ValueUnsigned, ValueInteger, ValueFloat, ValueFixedDecimal:
		return true
	}
	return false
}

// plain renders a numeric value in plain ASCII decimal form. Floats use
// the shortest representation that round-trips.
func (v PlaceholderValue) plain() string {
	switch v.Kind {
	case ValueUnsigned:
		return strconv.FormatUint(v.unsigned, 10)
	case ValueInteger:
		return strconv.FormatInt(v.integer, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.float, 'f', -1, 64)
	case ValueFixedDecimal:
		return v.decimal.String()
	}
	return ""
}

// stringForm renders the value as a selector key or command parameter.
func (v PlaceholderValue) stringForm() (string, bool) {
	switch v.Kind {
	case ValueString:
		return v.text, true
	case ValueTaggedString:
		return v.tagged.Value, true
	case ValueUnsigned, ValueInteger, ValueFloat, ValueFixedDecimal:
		return v.plain(), true
	case ValueDate:
		return v.moment.Format("2006-01-02"), true
	case ValueTime:
		return v.moment.Format("15:04:05"), true
	case ValueDateTime:
		return v.moment.Format("2006-01-02T15:04:05"), true
	}
	return "", false
}

// Format executes the compiled program against the placeholder values,
// producing a string tagged with the program's language.
func (f *PatternFormatter) Format(values map[string]PlaceholderValue) (TaggedString, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.numbers {
		f.numbers[i] = ""
	}

	var sb strings.Builder
	if err := f.formatParts(MainPattern, values, &sb); err != nil {
		return TaggedString{}, err
	}
	return TaggedString{Value: sb.String(), Tag: f.tag}, nil
}

func (f *PatternFormatter) formatParts(name string, values map[string]PlaceholderValue, sb *strings.Builder) error {
	parts, ok := f.parts[name]
	if !ok {
		return &FormatterError{Kind: FormatterPatternNamed, Named: name}
	}

	for _, part := range parts {
		switch part.Kind {
		case PartText:
			sb.WriteString(part.Text)
		case PartNumberSign:
			if part.Slot < 0 || part.Slot >= len(f.numbers) {
				return &FormatterError{Kind: FormatterNumberSignString, Value: strconv.Itoa(part.Slot)}
			}
			sb.WriteString(f.numbers[part.Slot])
		case PartString:
			if err := f.formatString(part, values, sb); err != nil {
				return err
			}
		case PartDecimal:
			if err := f.formatDecimal(part, values, sb); err != nil {
				return err
			}
		case PartDateTime:
			if err := f.formatDateTime(part, values, sb); err != nil {
				return err
			}
		case PartComplex:
			if err := f.formatComplex(part, values, sb); err != nil {
				return err
			}
		case PartCommand:
			if err := f.formatCommand(part, values, sb); err != nil {
				return err
			}
		default:
			return &FormatterError{Kind: FormatterNeverReached}
		}
	}
	return nil
}

func (f *PatternFormatter) value(part PatternPart, values map[string]PlaceholderValue) (PlaceholderValue, error) {
	value, ok := values[part.Placeholder]
	if !ok {
		return PlaceholderValue{}, &FormatterError{Kind: FormatterPlaceholderValue, Placeholder: part.Placeholder}
	}
	return value, nil
}

func (f *PatternFormatter) formatString(part PatternPart, values map[string]PlaceholderValue, sb *strings.Builder) error {
	value, err := f.value(part, values)
	if err != nil {
		return err
	}

	switch value.Kind {
	case ValueString:
		sb.WriteString(value.text)
	case ValueTaggedString:
		// The value's own tag is discarded; the program's tag governs
		// the concatenated result.
		sb.WriteString(value.tagged.Value)
	default:
		return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
	}
	return nil
}

func (f *PatternFormatter) formatDecimal(part PatternPart, values map[string]PlaceholderValue, sb *strings.Builder) error {
	value, err := f.value(part, values)
	if err != nil {
		return err
	}
	if !value.isNumeric() {
		return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
	}

	formatter, err := f.services.DecimalFormatter(f.tag, part.Grouping)
	if err != nil {
		return &FormatterError{Kind: FormatterNoIcuProvider, Placeholder: part.Placeholder, Err: err}
	}

	plain := value.plain()
	sb.WriteString(applySign(formatter.Format(plain), part.Sign, plain))
	return nil
}

// applySign rewrites the sign of a formatted number according to the
// compiled sign display. The plain form supplies negativity and zeroness.
func applySign(formatted string, sign SignDisplay, plain string) string {
	negative := strings.HasPrefix(plain, "-")
	zero := true
	for _, r := range plain {
		if r >= '1' && r <= '9' {
			zero = false
			break
		}
	}

	switch sign {
	case SignAuto:
		return formatted
	case SignNever:
		return strings.TrimPrefix(formatted, "-")
	case SignAlways:
		if !negative {
			return "+" + formatted
		}
		return formatted
	case SignExceptZero:
		if zero {
			return strings.TrimPrefix(formatted, "-")
		}
		if !negative {
			return "+" + formatted
		}
		return formatted
	case SignNegative:
		if negative && zero {
			return strings.TrimPrefix(formatted, "-")
		}
		return formatted
	}
	return formatted
}

func (f *PatternFormatter) formatDateTime(part PatternPart, values map[string]PlaceholderValue, sb *strings.Builder) error {
	value, err := f.value(part, values)
	if err != nil {
		return err
	}

	var (
		moment  time.Time
		hasDate bool
		hasTime bool
	)

	switch value.Kind {
	case ValueDate:
		moment, hasDate = value.moment, true
	case ValueTime:
		moment, hasTime = value.moment, true
	case ValueDateTime:
		moment, hasDate, hasTime = value.moment, true, true
	case ValueString, ValueTaggedString:
		text, _ := value.stringForm()
		moment, hasDate, hasTime, err = parseISODateTime(text)
		if err != nil {
			return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder, Value: text, Err: err}
		}
	default:
		return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
	}

	tag := f.tag
	if part.Calendar != nil {
		tag = part.Calendar
	}
	formatter, err := f.services.DateTimeFormatter(tag, part.DateLength, part.TimeLength)
	if err != nil {
		return &FormatterError{Kind: FormatterNoIcuProvider, Placeholder: part.Placeholder, Err: err}
	}

	switch {
	case hasDate && hasTime:
		sb.WriteString(formatter.FormatDateTime(moment))
	case hasDate:
		sb.WriteString(formatter.FormatDate(moment))
	default:
		sb.WriteString(formatter.FormatTime(moment))
	}
	return nil
}

func (f *PatternFormatter) formatComplex(part PatternPart, values map[string]PlaceholderValue, sb *strings.Builder) error {
	value, err := f.value(part, values)
	if err != nil {
		return err
	}
	if part.Selectors < 0 || part.Selectors >= len(f.selectors) {
		return &FormatterError{Kind: FormatterSelectorsIndex, Placeholder: part.Placeholder}
	}
	table := f.selectors[part.Selectors]

	switch part.Complex {
	case ComplexSelect:
		key, ok := value.stringForm()
		if !ok {
			return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
		}
		target, ok := table[key]
		if !ok {
			return &FormatterError{Kind: FormatterSelectorsIndexNamed, Selector: key, Placeholder: part.Placeholder}
		}
		return f.formatParts(target, values, sb)
	case ComplexOrdinal:
		if value.Kind != ValueUnsigned {
			return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
		}
	case ComplexPlural:
		if !value.isNumeric() {
			return &FormatterError{Kind: FormatterInvalidValue, Placeholder: part.Placeholder}
		}
	}

	plain := value.plain()

	var rules PluralSelector
	if part.Complex == ComplexOrdinal {
		rules, err = f.services.OrdinalRules(f.tag)
	} else {
		rules, err = f.services.CardinalRules(f.tag)
	}
	if err != nil {
		return &FormatterError{Kind: FormatterNoIcuProvider, Placeholder: part.Placeholder, Err: err}
	}

	category := rules.Select(plain)
	target, ok := table[category]
	if !ok {
		target, ok = table["other"]
		if !ok {
			return &FormatterError{Kind: FormatterSelectorsIndexNamed, Selector: category, Placeholder: part.Placeholder}
		}
	}

	// Format the number through the locale formatter and write it into
	// every number-sign slot of the chosen substring before recursing.
	formatter, err := f.services.DecimalFormatter(f.tag, GroupAuto)
	if err != nil {
		return &FormatterError{Kind: FormatterNoIcuProvider, Placeholder: part.Placeholder, Err: err}
	}
	digits := formatter.Format(plain)

	chosen, ok := f.parts[target]
	if !ok {
		return &FormatterError{Kind: FormatterPatternNamed, Named: target}
	}
	for _, p := range chosen {
		if p.Kind == PartNumberSign && p.Slot >= 0 && p.Slot < len(f.numbers) {
			f.numbers[p.Slot] = digits
		}
	}
	return f.formatParts(target, values, sb)
}

func (f *PatternFormatter) formatCommand(part PatternPart, values map[string]PlaceholderValue, sb *strings.Builder) error {
	if f.commands == nil {
		return &CommandError{Kind: CommandNotFound, Command: firstParameter(part.Parameters)}
	}

	parameters := make([]string, len(part.Parameters))
	copy(parameters, part.Parameters)
	for i := 1; i < len(parameters); i++ {
		if value, ok := values[parameters[i]]; ok {
			if text, ok := value.stringForm(); ok {
				parameters[i] = text
			}
		}
	}

	result, err := f.commands.Execute(parameters)
	if err != nil {
		return err
	}
	sb.WriteString(result)
	return nil
}

func firstParameter(parameters []string) string {
	if len(parameters) == 0 {
		return ""
	}
	return parameters[0]
}
