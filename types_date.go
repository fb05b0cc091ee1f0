package expenses

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 form dates take in files and reports.
const DateFormat = "2006-01-02"

// lenientFormat also accepts single-digit months and days, "2025-7-1".
const lenientFormat = "2006-1-2"

// Date is a calendar day. Transactions carry no meaningful time-of-day, so
// the ledger stores nothing finer than this.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns the date for year/month/day. Out-of-range components
// normalize the way time.Date normalizes them, so NewDate(2025, 1, 0) is
// 2024-12-31.
func NewDate(year int, month time.Month, day int) Date {
	var d Date
	d.y, d.m, d.d = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return d
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// time maps the date to midnight UTC. Every date maps to the same time.Time,
// which keeps == comparisons on the results meaningful.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// String formats the date as ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Format formats the date with a time.Format layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Before reports whether d falls before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d falls after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns the date i days later (earlier when negative).
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// AddMonth returns the date i months later.
func (d Date) AddMonth(i int) Date { return NewDate(d.y, d.m+time.Month(i), d.d) }

// AddYear returns the date i years later.
func (d Date) AddYear(i int) Date { return NewDate(d.y+i, d.m, d.d) }

var (
	// ±N followed by a unit: days, weeks, months, quarters, years.
	relativeForm = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)
	// a day number with an optional month prefix: "27", "8-27".
	monthDayForm = regexp.MustCompile(`^(?:(\d+)-)?(\d+)$`)
)

// ParseDate parses the flag-friendly date syntax:
//
//	2025-01-15    ISO, single-digit month and day accepted
//	27            day 27 of the current month
//	8-27          August 27 of the current year
//	-3d, +2w      relative to today (days, weeks, months, quarters, years)
//	RFC3339       full timestamps, as bank feeds produce them
//
// Shorthand months and days accept 0 as "the one before": day 0 is the last
// day of the previous month, month 0 is December of the previous year.
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)

	if str == "0d" { // the only relative offset valid without a sign
		return Today(), nil
	}
	if m := relativeForm.FindStringSubmatch(str); m != nil {
		return parseRelative(m[1], m[2], m[3])
	}
	if m := monthDayForm.FindStringSubmatch(str); m != nil {
		return parseMonthDay(m[1], m[2])
	}

	on, err := time.Parse(lenientFormat, str)
	if err != nil {
		on, err = time.Parse(time.RFC3339, str)
	}
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %q, a day shorthand or a relative offset like -3d", str, DateFormat)
	}
	return NewDate(on.Date()), nil
}

func parseRelative(sign, digits, unit string) (Date, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Date{}, fmt.Errorf("invalid relative date offset %q: %w", digits, err)
	}
	if sign == "-" {
		n = -n
	}
	today := Today()
	switch unit {
	case "w":
		return today.Add(7 * n), nil
	case "m":
		return today.AddMonth(n), nil
	case "q":
		return today.AddMonth(3 * n), nil
	case "y":
		return today.AddYear(n), nil
	default:
		return today.Add(n), nil
	}
}

func parseMonthDay(monthDigits, dayDigits string) (Date, error) {
	day, err := strconv.Atoi(dayDigits)
	if err != nil {
		return Date{}, fmt.Errorf("invalid day %q: %w", dayDigits, err)
	}

	today := Today()
	year, month := today.Year(), today.Month()
	if monthDigits != "" {
		m, err := strconv.Atoi(monthDigits)
		if err != nil {
			return Date{}, fmt.Errorf("invalid month %q: %w", monthDigits, err)
		}
		if m == 0 {
			year, month = year-1, time.December
		} else {
			month = time.Month(m)
		}
	}
	// day 0 normalizes to the last day of the previous month.
	return NewDate(year, month, day), nil
}

// MustParse is ParseDate for constants, it panics on error.
func MustParse(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalJSON encodes the date as an ISO string, the zero date as "".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string. Data files do not get the
// shorthand forms, only the calendar format is accepted.
func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	on, err := time.Parse(lenientFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in data file, want %q: %w", str, DateFormat, err)
	}
	*d = NewDate(on.Date())
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
