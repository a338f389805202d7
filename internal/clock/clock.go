// Package clock returns the current time in the zones reports are written for.
package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// Zone names used by the shortcut helpers.
const (
	ZoneBrazil   = "America/Sao_Paulo"
	ZonePortugal = "Europe/Lisbon"
)

// Clock reads the current instant from a source function.
type Clock struct {
	now func() time.Time
}

// New returns a Clock backed by now. A nil now uses time.Now.
func New(now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return Clock{now: now}
}

// System is the wall clock.
var System = New(time.Now)

// Now returns the current instant in UTC.
func (c Clock) Now() time.Time {
	return c.source()().UTC()
}

// NowIn returns the current instant in the named zone.
func (c Clock) NowIn(zone string) (time.Time, error) {
	loc, err := LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	return c.Now().In(loc), nil
}

// NowBR returns the current instant in America/Sao_Paulo.
func (c Clock) NowBR() time.Time {
	return c.Now().In(mustLoad(ZoneBrazil))
}

// NowPT returns the current instant in Europe/Lisbon.
func (c Clock) NowPT() time.Time {
	return c.Now().In(mustLoad(ZonePortugal))
}

func (c Clock) source() func() time.Time {
	if c.now == nil {
		return time.Now
	}
	return c.now
}

// Now returns the current instant in UTC.
func Now() time.Time { return System.Now() }

// NowIn returns the current instant in the named zone.
func NowIn(zone string) (time.Time, error) { return System.NowIn(zone) }

// NowBR returns the current instant in America/Sao_Paulo.
func NowBR() time.Time { return System.NowBR() }

// NowPT returns the current instant in Europe/Lisbon.
func NowPT() time.Time { return System.NowPT() }

// LoadLocation resolves a timezone name. "utc" and "local" match
// case-insensitively; "br" and "pt" are shortcuts for the helper zones.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utc":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	case "br":
		return mustLoad(ZoneBrazil), nil
	case "pt":
		return mustLoad(ZonePortugal), nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w: %w", name, dbhandler.ErrInvalidArgument, err)
	}
	return loc, nil
}

// mustLoad loads a zone from the embedded database.
func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("timezone %s missing from embedded tzdata: %v", name, err))
	}
	return loc
}
