// Package daterange converts named date presets into concrete time windows
// and handles the timestamp formats used on the API wire and in the UI.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Preset is a duration code selecting a relative time window.
// The codes are hour counts kept as strings to match the API query format.
type Preset string

// Known presets.
const (
	PresetDay    Preset = "24"
	PresetTwoDay Preset = "48"
	PresetWeek   Preset = "168"
	PresetMonth  Preset = "720"
	PresetCustom Preset = "custom"
)

// wireFormat is the timestamp layout used in API requests.
// Millisecond precision with an explicit Z, always UTC.
const wireFormat = "2006-01-02T15:04:05.000Z"

// displayFormat is for UI labels only and never appears in requests.
const displayFormat = "Jan 2, 2006 15:04"

const hoursPerDay = 24

var presetDurations = map[Preset]time.Duration{
	PresetDay:    hoursPerDay * time.Hour,
	PresetTwoDay: 2 * hoursPerDay * time.Hour,
	PresetWeek:   7 * hoursPerDay * time.Hour,
	PresetMonth:  30 * hoursPerDay * time.Hour,
}

// Range is a half-open time window [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

// Presets lists the relative presets in menu order.
func Presets() []Preset {
	return []Preset{PresetDay, PresetTwoDay, PresetWeek, PresetMonth}
}

// Duration returns the window length for a relative preset.
// Unrecognized codes (including "custom") fall back to the 24-hour preset.
func (p Preset) Duration() time.Duration {
	if d, ok := presetDurations[p]; ok {
		return d
	}

	return presetDurations[PresetDay]
}

// Hours returns the window length in whole hours, as sent in the `hours`
// query parameter.
func (p Preset) Hours() int {
	return int(p.Duration() / time.Hour)
}

// Label returns a human-readable name for the preset.
func (p Preset) Label() string {
	switch p {
	case PresetDay:
		return "Last 24 hours"
	case PresetTwoDay:
		return "Last 48 hours"
	case PresetWeek:
		return "Last 7 days"
	case PresetMonth:
		return "Last 30 days"
	case PresetCustom:
		return "Custom range"
	default:
		return "Last 24 hours"
	}
}

// PresetRange maps a preset to a concrete window ending at now.
// Unrecognized codes yield the same window as the 24-hour preset.
func PresetRange(p Preset, now time.Time) Range {
	return Range{
		Start: now.Add(-p.Duration()),
		End:   now,
	}
}

// FormatISO renders a timestamp in the API wire format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(wireFormat)
}

// ParseISO parses a wire-format timestamp. FormatISO(ParseISO(s)) == s for
// any valid wire string.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(wireFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}

	return t, nil
}

// FormatDisplay renders a timestamp for UI labels.
func FormatDisplay(t time.Time) string {
	return t.Format(displayFormat)
}

// ParseFlexible parses an operator-entered date in any common format.
// Used for custom range bounds, never for wire values.
func ParseFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return t, nil
}
