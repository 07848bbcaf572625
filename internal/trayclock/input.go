package trayclock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// LocalInputLayout is the wall-clock form used for editing a start instant.
const LocalInputLayout = "2006-01-02T15:04"

// isoLayout matches what browsers produce for Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

var ErrEmptyInput = errors.New("empty date input")

var localLayouts = []string{
	LocalInputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO reads a stored start instant.
func ParseISO(iso string) (time.Time, error) {
	iso = strings.TrimSpace(iso)
	if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start date %q", iso)
}

// FormatISO serialises t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ToLocalInput converts a stored instant into the editable wall-clock form.
func ToLocalInput(iso string, loc *time.Location) (string, error) {
	t, err := ParseISO(iso)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(LocalInputLayout), nil
}

// FromLocalInput interprets value as wall-clock time in loc and returns the
// instant as an ISO string. Values with an explicit offset keep it. Anything
// the fixed layouts reject goes through natural-language parsing relative to now.
func FromLocalInput(value string, loc *time.Location, now time.Time) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyInput
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return FormatISO(t), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return FormatISO(t), nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now.In(loc),
	}
	result, err := dateparser.Parse(cfg, value)
	if err != nil {
		return "", fmt.Errorf("cannot understand date %q: %w", value, err)
	}
	if result.Time.IsZero() {
		return "", fmt.Errorf("cannot understand date %q", value)
	}

	t := result.Time
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	return FormatISO(wall), nil
}
