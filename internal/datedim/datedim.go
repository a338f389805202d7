// Package datedim generates calendar dimension tables: one row per time step
// between two dates, with the date key and decomposed calendar fields.
package datedim

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/dbhandler/internal/clock"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// DateIDLayout formats the date key column.
const DateIDLayout = "20060102"

// DateRow is one row of the dimension.
type DateRow struct {
	// DimensionDate is the step timestamp in the configured timezone.
	DimensionDate time.Time
	// DateID is DimensionDate formatted as YYYYMMDD.
	DateID string
	// TimestampUTC is the same instant as DimensionDate, in UTC.
	TimestampUTC time.Time

	Year  int
	Month int
	Day   int
	// Week is the ISO 8601 week number.
	Week int
}

type options struct {
	timezone  string
	frequency string
}

// Option configures CreateDateTable.
type Option func(*options)

// WithTimezone sets the zone naive dates are interpreted in. Any name
// clock.LoadLocation accepts is valid. The zone moves the UTC column: midnight
// in "br" is 03:00 UTC, not a wall-clock time relabelled as UTC.
func WithTimezone(name string) Option {
	return func(o *options) {
		o.timezone = name
	}
}

// WithFrequency sets the step: an optional positive multiple followed by one of
// D (day), H or h (hour), Min, min or T (minute), S or s (second), ms or L (millisecond).
func WithFrequency(freq string) Option {
	return func(o *options) {
		o.frequency = freq
	}
}

// CreateDateTable returns one row per step from start to end inclusive.
// Defaults: timezone "utc", frequency "Min".
func CreateDateTable(start, end string, opts ...Option) ([]DateRow, error) {
	o := options{
		timezone:  dbhandler.DefaultTimezone,
		frequency: dbhandler.DefaultDateFrequency,
	}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := clock.LoadLocation(o.timezone)
	if err != nil {
		return nil, err
	}
	step, err := ParseFrequency(o.frequency)
	if err != nil {
		return nil, err
	}
	from, err := ParseDate(start, loc)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	to, err := ParseDate(end, loc)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end %s is before start %s: %w", end, start, dbhandler.ErrInvalidArgument)
	}

	var rows []DateRow
	for t := from; !t.After(to); {
		rows = append(rows, newDateRow(t))
		next := step.next(t)
		if !next.After(t) {
			break
		}
		t = next
	}
	return rows, nil
}

func newDateRow(t time.Time) DateRow {
	_, week := t.ISOWeek()
	return DateRow{
		DimensionDate: t,
		DateID:        t.Format(DateIDLayout),
		TimestampUTC:  t.UTC(),
		Year:          t.Year(),
		Month:         int(t.Month()),
		Day:           t.Day(),
		Week:          week,
	}
}

// ToTable converts rows into a Table with columns dimension_date, date_id,
// dimension_timestamp_utc, year, month, day, week.
func ToTable(rows []DateRow) *dbhandler.Table {
	t := &dbhandler.Table{
		Columns: []dbhandler.Column{
			{Name: "dimension_date", Type: "timestamp"},
			{Name: "date_id", Type: "text"},
			{Name: "dimension_timestamp_utc", Type: "timestamptz"},
			{Name: "year", Type: "int"},
			{Name: "month", Type: "int"},
			{Name: "day", Type: "int"},
			{Name: "week", Type: "int"},
		},
	}
	for _, r := range rows {
		t.Append(r.DimensionDate, r.DateID, r.TimestampUTC, r.Year, r.Month, r.Day, r.Week)
	}
	return t
}

// Frequency is a parsed step. Days advance by calendar day so that local
// midnight stays at midnight across DST changes; other units are fixed durations.
type Frequency struct {
	Days     int
	Duration time.Duration
}

func (f Frequency) next(t time.Time) time.Time {
	if f.Days > 0 {
		return t.AddDate(0, 0, f.Days)
	}
	return t.Add(f.Duration)
}

var frequencyPattern = regexp.MustCompile(`^(\d*)\s*(D|H|h|Min|min|T|S|s|ms|L)$`)

// ParseFrequency parses a frequency alias such as "D", "15Min" or "500ms".
func ParseFrequency(freq string) (Frequency, error) {
	m := frequencyPattern.FindStringSubmatch(strings.TrimSpace(freq))
	if m == nil {
		return Frequency{}, fmt.Errorf("unknown frequency %q: %w", freq, dbhandler.ErrInvalidArgument)
	}

	n := 1
	if m[1] != "" {
		v, err := strconv.Atoi(m[1])
		if err != nil || v <= 0 {
			return Frequency{}, fmt.Errorf("frequency multiple must be positive in %q: %w", freq, dbhandler.ErrInvalidArgument)
		}
		n = v
	}

	var unit time.Duration
	switch m[2] {
	case "D":
		unit = 24 * time.Hour
	case "H", "h":
		unit = time.Hour
	case "Min", "min", "T":
		unit = time.Minute
	case "S", "s":
		unit = time.Second
	default: // ms, L
		unit = time.Millisecond
	}
	// A step must fit in a time.Duration.
	if int64(n) > math.MaxInt64/int64(unit) {
		return Frequency{}, fmt.Errorf("frequency %q is too large: %w", freq, dbhandler.ErrInvalidArgument)
	}

	if m[2] == "D" {
		return Frequency{Days: n}, nil
	}
	return Frequency{Duration: time.Duration(n) * unit}, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ParseDate parses s in loc. RFC 3339 input keeps its own offset and is
// converted to loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, dbhandler.ErrInvalidArgument)
}
