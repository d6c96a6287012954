// Package datemask formats free-typed digits into a DD/MM/YYYY date and
// parses the result once it is complete.
package datemask

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the display layout produced by Format.
const Layout = "02/01/2006"

const maxDigits = 8

var (
	// ErrShape means the input is not three slash-separated groups of 2, 2 and 4 digits.
	ErrShape = errors.New("date must be in DD/MM/YYYY format")
	// ErrCalendar means the shape is right but the date does not exist.
	ErrCalendar = errors.New("date does not exist")
)

// Format keeps only the digits of raw, caps them at eight and inserts a
// slash after the day and month groups. It never validates the date.
func Format(raw string) string {
	digits := make([]byte, 0, maxDigits)
	for i := 0; i < len(raw) && len(digits) < maxDigits; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}

	var b strings.Builder
	for i, c := range digits {
		if i == 2 || i == 4 {
			b.WriteByte('/')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Complete reports whether masked has the full DD/MM/YYYY shape.
func Complete(masked string) bool {
	parts := strings.Split(masked, "/")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 4 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

// Parse validates the shape of masked, then the calendar date, and returns
// midnight of that day in loc.
func Parse(masked string, loc *time.Location) (time.Time, error) {
	if !Complete(masked) {
		return time.Time{}, ErrShape
	}
	parts := strings.Split(masked, "/")
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])

	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrCalendar, masked)
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow, so 31/02 comes back as March.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %s", ErrCalendar, masked)
	}
	return t, nil
}

// At combines the date in masked with an HH:MM clock time in loc.
func At(masked, clock string, loc *time.Location) (time.Time, error) {
	day, err := Parse(masked, loc)
	if err != nil {
		return time.Time{}, err
	}
	hm, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, day.Location()), nil
}
