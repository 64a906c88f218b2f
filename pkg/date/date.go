package date

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout is the wire and storage format for calendar dates.
const Layout = "2006-01-02"

// Date is a calendar date without a time component. Loan due-date logic
// compares whole days, never timestamps, so a loan due today is not overdue
// regardless of the hour.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// FromTime truncates a timestamp to its calendar day in the timestamp's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day. Callers that classify a list of
// loans must sample this once and pass the same value everywhere.
func Today() Date {
	return FromTime(time.Now())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) Equal(o Date) bool {
	return d == o
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return FromTime(t.AddDate(0, 0, n))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Tolerate full timestamps from older backends; only the day matters.
	if len(s) > len(Layout) {
		s = s[:len(Layout)]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as its YYYY-MM-DD string.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into date.Date", src)
	}
}
