package localise

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DecimalFormatter applies locale separators and grouping to a number in
// plain ASCII form ("-1234.567").
type DecimalFormatter interface {
	Format(plain string) string
}

// DateTimeFormatter renders moments at the lengths it was obtained for.
type DateTimeFormatter interface {
	FormatDate(t time.Time) string
	FormatTime(t time.Time) string
	FormatDateTime(t time.Time) string
}

// PluralSelector maps a number in plain ASCII form to a plural category
// name (zero, one, two, few, many, other).
type PluralSelector interface {
	Select(plain string) string
}

// LocaleServices supplies the locale-aware primitives the pattern
// pipeline depends on.
type LocaleServices interface {
	GraphemeCount(s string) int
	IsPatternSyntax(r rune) bool
	IsPatternWhiteSpace(r rune) bool
	DecimalFormatter(tag *LanguageTag, grouping GroupingMode) (DecimalFormatter, error)
	DateTimeFormatter(tag *LanguageTag, date, time PatternLength) (DateTimeFormatter, error)
	CardinalRules(tag *LanguageTag) (PluralSelector, error)
	OrdinalRules(tag *LanguageTag) (PluralSelector, error)
}

// DecimalRules carries the number symbols for one locale.
type DecimalRules struct {
	Locale            string `json:"locale" yaml:"locale"`
	DecimalSep        string `json:"decimal_separator" yaml:"decimal_separator"`
	GroupSep          string `json:"group_separator" yaml:"group_separator"`
	MinGroupingDigits int    `json:"min_grouping_digits" yaml:"min_grouping_digits"`
}

// DateTimeRules carries the date and time layouts for one locale. Layouts
// use Go reference-time notation; month names, when set, replace the
// English names the layouts produce.
type DateTimeRules struct {
	Locale string `json:"locale" yaml:"locale"`

	DateFull   string `json:"date_full" yaml:"date_full"`
	DateLong   string `json:"date_long" yaml:"date_long"`
	DateMedium string `json:"date_medium" yaml:"date_medium"`
	DateShort  string `json:"date_short" yaml:"date_short"`

	TimeFull   string `json:"time_full" yaml:"time_full"`
	TimeLong   string `json:"time_long" yaml:"time_long"`
	TimeMedium string `json:"time_medium" yaml:"time_medium"`
	TimeShort  string `json:"time_short" yaml:"time_short"`

	// Combiner joins a formatted date and time: "{date}, {time}".
	Combiner string `json:"combiner" yaml:"combiner"`

	MonthNames   []string `json:"month_names" yaml:"month_names"`
	MonthAbbrevs []string `json:"month_abbrevs" yaml:"month_abbrevs"`
}

// decimalRulesData holds the number symbols we ship by default. Keeping
// the map next to dateTimeRulesData ensures new locales are added in a
// single place.
var decimalRulesData = map[string]DecimalRules{
	"en": {
		Locale:            "en",
		DecimalSep:        ".",
		GroupSep:          ",",
		MinGroupingDigits: 1,
	},
	"en-ZA": {
		Locale:            "en-ZA",
		DecimalSep:        ".",
		GroupSep:          " ",
		MinGroupingDigits: 1,
	},
	"es": {
		Locale:            "es",
		DecimalSep:        ",",
		GroupSep:          ".",
		MinGroupingDigits: 2,
	},
}

var dateTimeRulesData = map[string]DateTimeRules{
	"en": {
		Locale:     "en",
		DateFull:   "Monday, January 2, 2006",
		DateLong:   "January 2, 2006",
		DateMedium: "Jan 2, 2006",
		DateShort:  "1/2/06",
		TimeFull:   "3:04:05 PM",
		TimeLong:   "3:04:05 PM",
		TimeMedium: "3:04:05 PM",
		TimeShort:  "3:04 PM",
		Combiner:   "{date}, {time}",
	},
	"en-ZA": {
		Locale:     "en-ZA",
		DateFull:   "Monday, 02 January 2006",
		DateLong:   "02 January 2006",
		DateMedium: "02 Jan 2006",
		DateShort:  "2006/01/02",
		TimeFull:   "15:04:05",
		TimeLong:   "15:04:05",
		TimeMedium: "15:04:05",
		TimeShort:  "15:04",
		Combiner:   "{date}, {time}",
	},
	"es": {
		Locale:     "es",
		DateFull:   "Monday, 2 de January de 2006",
		DateLong:   "2 de January de 2006",
		DateMedium: "2 Jan 2006",
		DateShort:  "2/1/06",
		TimeFull:   "15:04:05",
		TimeLong:   "15:04:05",
		TimeMedium: "15:04:05",
		TimeShort:  "15:04",
		Combiner:   "{date}, {time}",
		MonthNames: []string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
		MonthAbbrevs: []string{
			"ene", "feb", "mar", "abr", "may", "jun",
			"jul", "ago", "sep", "oct", "nov", "dic",
		},
	},
}

// CLDRServices is the default LocaleServices implementation: grapheme
// segmentation via uniseg, UAX #31 sets from the unicode tables, number
// and date formatting driven by the rules tables with an x/text fallback
// for locales the tables do not cover, plural selection via
// x/text/feature/plural.
type CLDRServices struct {
	mu            sync.RWMutex
	decimalRules  map[string]DecimalRules
	dateTimeRules map[string]DateTimeRules
}

var _ LocaleServices = &CLDRServices{}

// ServicesOption mutates CLDRServices during construction.
type ServicesOption func(*CLDRServices)

// WithDecimalRules sets or replaces the number symbols for the rule's
// locale.
func WithDecimalRules(rules DecimalRules) ServicesOption {
	return func(s *CLDRServices) {
		if rules.Locale == "" {
			return
		}
		s.decimalRules[rules.Locale] = rules
	}
}

// WithDateTimeRules sets or replaces the date/time layouts for the rule's
// locale.
func WithDateTimeRules(rules DateTimeRules) ServicesOption {
	return func(s *CLDRServices) {
		if rules.Locale == "" {
			return
		}
		s.dateTimeRules[rules.Locale] = rules
	}
}

// NewCLDRServices seeds the default locale services with the shipped rule
// tables.
func NewCLDRServices(opts ...ServicesOption) *CLDRServices {
	s := &CLDRServices{
		decimalRules:  make(map[string]DecimalRules, len(decimalRulesData)),
		dateTimeRules: make(map[string]DateTimeRules, len(dateTimeRulesData)),
	}
	for locale, rules := range decimalRulesData {
		s.decimalRules[locale] = rules
	}
	for locale, rules := range dateTimeRulesData {
		s.dateTimeRules[locale] = rules
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *CLDRServices) GraphemeCount(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

func (s *CLDRServices) IsPatternSyntax(r rune) bool {
	return unicode.Is(unicode.Pattern_Syntax, r)
}

func (s *CLDRServices) IsPatternWhiteSpace(r rune) bool {
	return unicode.Is(unicode.Pattern_White_Space, r)
}

// candidateLocales lists tag and its parents, most specific first.
// Extension sequences are dropped before subtag truncation.
func candidateLocales(tag *LanguageTag) []string {
	canonical := tag.String()
	if canonical == "" {
		return []string{"en"}
	}

	if idx := strings.Index(canonical, "-u-"); idx > 0 {
		canonical = canonical[:idx]
	}
	if idx := strings.Index(canonical, "-x-"); idx > 0 {
		canonical = canonical[:idx]
	}

	chain := []string{canonical}
	for {
		idx := strings.LastIndex(canonical, "-")
		if idx <= 0 {
			break
		}
		canonical = canonical[:idx]
		chain = append(chain, canonical)
	}
	if chain[len(chain)-1] != "en" {
		chain = append(chain, "en")
	}
	return chain
}

func (s *CLDRServices) DecimalFormatter(tag *LanguageTag, grouping GroupingMode) (DecimalFormatter, error) {
	if tag == nil {
		return nil, ErrNoTagRegistry
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, candidate := range candidateLocales(tag) {
		if rules, ok := s.decimalRules[candidate]; ok {
			return &ruleDecimalFormatter{rules: rules, grouping: grouping}, nil
		}
	}

	// No symbols on file for the locale; fall back to x/text.
	return &xtextDecimalFormatter{
		printer:  message.NewPrinter(tag.Raw()),
		grouping: grouping,
	}, nil
}

func (s *CLDRServices) DateTimeFormatter(tag *LanguageTag, date, timeLen PatternLength) (DateTimeFormatter, error) {
	if tag == nil {
		return nil, ErrNoTagRegistry
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, candidate := range candidateLocales(tag) {
		if rules, ok := s.dateTimeRules[candidate]; ok {
			return &ruleDateTimeFormatter{
				rules:      rules,
				dateLayout: rules.dateLayout(date),
				timeLayout: rules.timeLayout(timeLen),
			}, nil
		}
	}

	fallback := dateTimeRulesData["en"]
	return &ruleDateTimeFormatter{
		rules:      fallback,
		dateLayout: fallback.dateLayout(date),
		timeLayout: fallback.timeLayout(timeLen),
	}, nil
}

func (s *CLDRServices) CardinalRules(tag *LanguageTag) (PluralSelector, error) {
	if tag == nil {
		return nil, ErrNoTagRegistry
	}
	return &pluralSelector{rules: plural.Cardinal, tag: tag}, nil
}

func (s *CLDRServices) OrdinalRules(tag *LanguageTag) (PluralSelector, error) {
	if tag == nil {
		return nil, ErrNoTagRegistry
	}
	return &pluralSelector{rules: plural.Ordinal, tag: tag}, nil
}

func (r DateTimeRules) dateLayout(length PatternLength) string {
	switch length {
	case LengthFull:
		return r.DateFull
	case LengthLong:
		return r.DateLong
	case LengthShort:
		return r.DateShort
	}
	return r.DateMedium
}

func (r DateTimeRules) timeLayout(length PatternLength) string {
	switch length {
	case LengthFull:
		return r.TimeFull
	case LengthLong:
		return r.TimeLong
	case LengthShort:
		return r.TimeShort
	}
	return r.TimeMedium
}

// splitPlain breaks a plain ASCII number into sign, integer digits and
// fraction digits.
func splitPlain(plain string) (sign, integer, fraction string) {
	rest := plain
	if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
		sign, rest = rest[:1], rest[1:]
	}
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		return sign, rest[:idx], rest[idx+1:]
	}
	return sign, rest, ""
}

type ruleDecimalFormatter struct {
	rules    DecimalRules
	grouping GroupingMode
}

func (d *ruleDecimalFormatter) Format(plain string) string {
	sign, integer, fraction := splitPlain(plain)

	if d.shouldGroup(len(integer)) && d.rules.GroupSep != "" {
		var sb strings.Builder
		for i, digit := range integer {
			if i > 0 && (len(integer)-i)%3 == 0 {
				sb.WriteString(d.rules.GroupSep)
			}
			sb.WriteRune(digit)
		}
		integer = sb.String()
	}

	result := sign + integer
	if fraction != "" {
		separator := d.rules.DecimalSep
		if separator == "" {
			separator = "."
		}
		result += separator + fraction
	}
	return result
}

func (d *ruleDecimalFormatter) shouldGroup(integerDigits int) bool {
	switch d.grouping {
	case GroupNever:
		return false
	case GroupMin2:
		return integerDigits > 4
	case GroupAlways:
		return integerDigits > 3
	}
	minGrouping := d.rules.MinGroupingDigits
	if minGrouping < 1 {
		minGrouping = 1
	}
	return integerDigits > 2+minGrouping
}

// xtextDecimalFormatter is the path for locales without shipped symbols,
// mirroring the x/text fallback of the rules-based number formatter.
type xtextDecimalFormatter struct {
	printer  *message.Printer
	grouping GroupingMode
}

func (d *xtextDecimalFormatter) Format(plain string) string {
	value, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return plain
	}

	_, _, fraction := splitPlain(plain)
	opts := []number.Option{
		number.MinFractionDigits(len(fraction)),
		number.MaxFractionDigits(len(fraction)),
	}
	if d.grouping == GroupNever {
		opts = append(opts, number.NoSeparator())
	}
	return d.printer.Sprintf("%v", number.Decimal(value, opts...))
}

type ruleDateTimeFormatter struct {
	rules      DateTimeRules
	dateLayout string
	timeLayout string
}

func (f *ruleDateTimeFormatter) FormatDate(t time.Time) string {
	return f.localiseMonths(t.Format(f.dateLayout), t.Month())
}

func (f *ruleDateTimeFormatter) FormatTime(t time.Time) string {
	return t.Format(f.timeLayout)
}

func (f *ruleDateTimeFormatter) FormatDateTime(t time.Time) string {
	combiner := f.rules.Combiner
	if combiner == "" {
		combiner = "{date}, {time}"
	}
	result := strings.ReplaceAll(combiner, "{date}", f.FormatDate(t))
	return strings.ReplaceAll(result, "{time}", f.FormatTime(t))
}

// localiseMonths swaps the English month name the layout produced for the
// locale's own, long form first so abbreviations do not clobber it.
func (f *ruleDateTimeFormatter) localiseMonths(formatted string, month time.Month) string {
	index := int(month) - 1
	if len(f.rules.MonthNames) == 12 {
		formatted = strings.ReplaceAll(formatted, month.String(), f.rules.MonthNames[index])
	}
	if len(f.rules.MonthAbbrevs) == 12 {
		formatted = strings.ReplaceAll(formatted, month.String()[:3], f.rules.MonthAbbrevs[index])
	}
	return formatted
}

type pluralSelector struct {
	rules *plural.Rules
	tag   *LanguageTag
}

func (p *pluralSelector) Select(plain string) string {
	_, integer, fraction := splitPlain(plain)

	i, err := strconv.ParseInt(integer, 10, 64)
	if err != nil {
		// Out-of-range integers cannot be "one"; clamp to a large value.
		i = 1 << 62
	}

	v := len(fraction)
	var f, t int64
	if fraction != "" {
		f, _ = strconv.ParseInt(fraction, 10, 64)
	}
	trimmed := strings.TrimRight(fraction, "0")
	w := len(trimmed)
	if trimmed != "" {
		t, _ = strconv.ParseInt(trimmed, 10, 64)
	}

	form := p.rules.MatchPlural(p.tag.Raw(), int(i), v, w, int(f), int(t))
	switch form {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	}
	return "other"
}
