// Package trayclock turns a start instant and a tray length into the current
// tray index, the next change instant and a countdown.
package trayclock

import (
	"fmt"
	"math"
	"time"
	"tray-rotation/internal/models"
)

// Unset is shown in place of every computed field when no start is configured.
const Unset = "—"

const day = 24 * time.Hour

// Tray lengths outside these bounds are treated as unset. The upper bound
// keeps start + n·tray representable for any start within a century.
const (
	MinTrayDuration = time.Second
	MaxTrayDuration = 100 * 365 * day
)

type Status struct {
	Configured  bool
	CurrentTray int
	NextChange  time.Time
	Remaining   time.Duration
}

// ValidTrayDays reports whether trayDays converts to a usable tray length.
func ValidTrayDays(trayDays float64) bool {
	if math.IsNaN(trayDays) || math.IsInf(trayDays, 0) {
		return false
	}
	ns := trayDays * float64(day)
	return ns >= float64(MinTrayDuration) && ns <= float64(MaxTrayDuration)
}

// TrayDuration returns the length of one tray, falling back to the default
// when ValidTrayDays rejects the day count.
func TrayDuration(trayDays float64) time.Duration {
	if !ValidTrayDays(trayDays) {
		trayDays = models.DefaultTrayDays
	}
	return time.Duration(trayDays * float64(day))
}

// Compute places now within the tray cycle that begins at start. A start in
// the future counts as tray 1.
func Compute(start time.Time, trayDays float64, now time.Time) Status {
	tray := TrayDuration(trayDays)
	elapsed := now.Sub(start)

	if elapsed < 0 {
		nextChange := start.Add(tray)
		return Status{
			Configured:  true,
			CurrentTray: 1,
			NextChange:  nextChange,
			Remaining:   nextChange.Sub(now),
		}
	}

	// Measured from now so a saturated elapsed never wraps the multiplication.
	currentTray := int(elapsed/tray) + 1
	remaining := tray - elapsed%tray
	nextChange := now.Add(remaining)

	return Status{
		Configured:  true,
		CurrentTray: currentTray,
		NextChange:  nextChange,
		Remaining:   remaining,
	}
}

// ComputeFromSettings is Compute for a payload; an unset or unparseable start
// yields an unconfigured Status.
func ComputeFromSettings(settings models.SettingsPayload, now time.Time) Status {
	if !settings.Configured() {
		return Status{}
	}
	start, err := ParseISO(*settings.StartDateIso)
	if err != nil {
		return Status{}
	}
	return Compute(start, settings.TrayDays, now)
}

// FormatDuration renders d as "{days}d HH:MM:SS", truncating to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}

func (s Status) TrayLabel() string {
	if !s.Configured {
		return Unset
	}
	return fmt.Sprintf("%d", s.CurrentTray)
}

func (s Status) NextChangeLabel(loc *time.Location) string {
	if !s.Configured {
		return Unset
	}
	return s.NextChange.In(loc).Format("Mon Jan 2 2006, 15:04:05")
}

func (s Status) CountdownLabel() string {
	if !s.Configured {
		return Unset
	}
	return FormatDuration(s.Remaining)
}
