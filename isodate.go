package localise

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errISODateTime = errors.New("localise: malformed ISO 8601 date-time")

// parseISODateTime parses string-typed date-time values. Both extended
// and basic forms are accepted; a leading "-" on the date denotes a BC
// year, and time-zone suffixes are accepted syntactically and discarded.
func parseISODateTime(value string) (moment time.Time, hasDate, hasTime bool, err error) {
	datePart := value
	timePart := ""
	if idx := strings.IndexByte(value, 'T'); idx >= 0 {
		datePart = value[:idx]
		timePart = value[idx+1:]
		hasTime = true
	}
	hasDate = datePart != ""

	if !hasDate && !hasTime {
		return time.Time{}, false, false, errISODateTime
	}

	year, month, day := 0, 1, 1
	if hasDate {
		year, month, day, err = parseISODate(datePart)
		if err != nil {
			return time.Time{}, false, false, err
		}
	}

	hour, minute, second, nanos := 0, 0, 0, 0
	if hasTime && timePart != "" {
		hour, minute, second, nanos, err = parseISOTime(timePart)
		if err != nil {
			return time.Time{}, false, false, err
		}
	}

	moment = time.Date(year, time.Month(month), day, hour, minute, second, nanos, time.UTC)
	return moment, hasDate, hasTime, nil
}

func parseISODate(value string) (year, month, day int, err error) {
	negative := false
	switch {
	case strings.HasPrefix(value, "+"):
		value = value[1:]
	case strings.HasPrefix(value, "-"):
		negative = true
		value = value[1:]
	}
	if value == "" {
		return 0, 0, 0, errISODateTime
	}

	month, day = 1, 1
	parts := strings.Split(value, "-")
	switch len(parts) {
	case 1:
		digits := parts[0]
		if !isDigits(digits) {
			return 0, 0, 0, errISODateTime
		}
		// The compact form is YYYYMMDD only; six digits would be the
		// ambiguous YYYYMM, which the grammar rejects.
		if len(digits) == 8 {
			year, _ = strconv.Atoi(digits[:4])
			month, err = dateField(digits[4:6], 1, 12)
			if err != nil {
				return 0, 0, 0, err
			}
			day, err = dateField(digits[6:8], 1, 31)
			if err != nil {
				return 0, 0, 0, err
			}
		} else if len(digits) == 6 {
			return 0, 0, 0, errISODateTime
		} else {
			year, err = strconv.Atoi(digits)
			if err != nil {
				return 0, 0, 0, errISODateTime
			}
		}
	case 2:
		year, month, err = yearAndField(parts[0], parts[1], 12)
		if err != nil {
			return 0, 0, 0, err
		}
	case 3:
		year, month, err = yearAndField(parts[0], parts[1], 12)
		if err != nil {
			return 0, 0, 0, err
		}
		day, err = dateField(parts[2], 1, 31)
		if err != nil {
			return 0, 0, 0, err
		}
	default:
		return 0, 0, 0, errISODateTime
	}

	if negative {
		year = -year
	}
	return year, month, day, nil
}

func yearAndField(yearDigits, fieldDigits string, max int) (year, field int, err error) {
	if !isDigits(yearDigits) || len(yearDigits) < 4 {
		return 0, 0, errISODateTime
	}
	year, err = strconv.Atoi(yearDigits)
	if err != nil {
		return 0, 0, errISODateTime
	}
	field, err = dateField(fieldDigits, 1, max)
	return year, field, err
}

func dateField(digits string, min, max int) (int, error) {
	if len(digits) != 2 || !isDigits(digits) {
		return 0, errISODateTime
	}
	value, _ := strconv.Atoi(digits)
	if value < min || value > max {
		return 0, fmt.Errorf("%w: field %q out of range", errISODateTime, digits)
	}
	return value, nil
}

func parseISOTime(value string) (hour, minute, second, nanos int, err error) {
	value = stripZone(value)
	if value == "" {
		return 0, 0, 0, 0, nil
	}

	fraction := ""
	if idx := strings.IndexAny(value, ".,"); idx >= 0 {
		fraction = value[idx+1:]
		value = value[:idx]
	}

	var fields []string
	if strings.Contains(value, ":") {
		fields = strings.Split(value, ":")
	} else {
		// Basic form: hhmmss with trailing components optional.
		if len(value)%2 != 0 || len(value) > 6 {
			return 0, 0, 0, 0, errISODateTime
		}
		for i := 0; i < len(value); i += 2 {
			fields = append(fields, value[i:i+2])
		}
	}
	if len(fields) > 3 {
		return 0, 0, 0, 0, errISODateTime
	}

	parsed := [3]int{}
	limits := [3]int{23, 59, 60}
	for i, field := range fields {
		if len(field) != 2 || !isDigits(field) {
			return 0, 0, 0, 0, errISODateTime
		}
		parsed[i], _ = strconv.Atoi(field)
		if parsed[i] > limits[i] {
			return 0, 0, 0, 0, fmt.Errorf("%w: field %q out of range", errISODateTime, field)
		}
	}

	if fraction != "" {
		if !isDigits(fraction) {
			return 0, 0, 0, 0, errISODateTime
		}
		if len(fraction) > 9 {
			fraction = fraction[:9]
		}
		value, _ := strconv.Atoi(fraction)
		for i := len(fraction); i < 9; i++ {
			value *= 10
		}
		nanos = value
	}

	return parsed[0], parsed[1], parsed[2], nanos, nil
}

// stripZone drops a trailing Z, ±hh:mm or ±hhmm zone designator. Offsets
// are not applied; the grammar accepts them and discards them.
func stripZone(value string) string {
	if strings.HasSuffix(value, "Z") {
		return value[:len(value)-1]
	}
	for i := len(value) - 1; i > 0; i-- {
		c := value[i]
		if c == '+' || c == '-' {
			suffix := value[i+1:]
			if len(suffix) == 5 && suffix[2] == ':' && isDigits(suffix[:2]) && isDigits(suffix[3:]) {
				return value[:i]
			}
			if (len(suffix) == 4 || len(suffix) == 2) && isDigits(suffix) {
				return value[:i]
			}
			return value
		}
		if c == ':' || c == '.' || c == ',' || (c >= '0' && c <= '9') {
			continue
		}
		return value
	}
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
