package trayclock

import (
	"testing"
	"time"
	"tray-rotation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestCompute(t *testing.T) {
	t.Run("Third tray after 25 days", func(t *testing.T) {
		start := now.Add(-25 * day)
		status := Compute(start, 10, now)

		assert.True(t, status.Configured)
		assert.Equal(t, 3, status.CurrentTray)
		assert.Equal(t, start.Add(30*day), status.NextChange)
		assert.Equal(t, 5*day, status.Remaining)
	})

	t.Run("Start in the future is tray one", func(t *testing.T) {
		start := now.Add(3 * day)
		status := Compute(start, 10, now)

		assert.Equal(t, 1, status.CurrentTray)
		assert.Equal(t, start.Add(10*day), status.NextChange)
		assert.Equal(t, 13*day, status.Remaining)
	})

	t.Run("Exactly on a boundary starts the next tray", func(t *testing.T) {
		start := now.Add(-20 * day)
		status := Compute(start, 10, now)

		assert.Equal(t, 3, status.CurrentTray)
		assert.Equal(t, 10*day, status.Remaining)
	})

	t.Run("Start equals now", func(t *testing.T) {
		status := Compute(now, 10, now)
		assert.Equal(t, 1, status.CurrentTray)
		assert.Equal(t, 10*day, status.Remaining)
	})

	t.Run("Persisted tray length is honoured", func(t *testing.T) {
		start := now.Add(-25 * day)
		status := Compute(start, 7, now)

		assert.Equal(t, 4, status.CurrentTray)
		assert.Equal(t, 3*day, status.Remaining)
	})

	t.Run("Fractional tray length", func(t *testing.T) {
		status := Compute(now.Add(-36*time.Hour), 0.5, now)
		assert.Equal(t, 4, status.CurrentTray)
		assert.Equal(t, 12*time.Hour, status.Remaining)
	})

	t.Run("Invalid tray length falls back to default", func(t *testing.T) {
		for _, days := range []float64{0, -4, 1e-15, 1e6} {
			var status Status
			require.NotPanics(t, func() { status = Compute(now.Add(-25*day), days, now) }, "trayDays=%v", days)
			assert.Equal(t, 3, status.CurrentTray, "trayDays=%v", days)
			assert.Equal(t, 5*day, status.Remaining, "trayDays=%v", days)
		}
	})

	t.Run("Ancient start stays in the future", func(t *testing.T) {
		var status Status
		require.NotPanics(t, func() { status = Compute(time.Time{}, 10, now) })

		assert.Greater(t, status.CurrentTray, 1)
		assert.True(t, status.NextChange.After(now))
		assert.Greater(t, status.Remaining, time.Duration(0))
		assert.LessOrEqual(t, status.Remaining, 10*day)
	})

	t.Run("Largest valid tray length", func(t *testing.T) {
		status := Compute(now.Add(-time.Hour), 365*100, now)

		assert.Equal(t, 1, status.CurrentTray)
		assert.Equal(t, MaxTrayDuration-time.Hour, status.Remaining)
		assert.True(t, status.NextChange.After(now))
	})
}

func TestValidTrayDays(t *testing.T) {
	assert.True(t, ValidTrayDays(10))
	assert.True(t, ValidTrayDays(0.5))
	assert.True(t, ValidTrayDays(36500))

	assert.False(t, ValidTrayDays(0))
	assert.False(t, ValidTrayDays(-1))
	assert.False(t, ValidTrayDays(1e-15))
	assert.False(t, ValidTrayDays(1e6))
}

func TestComputeFromSettings(t *testing.T) {
	assert.False(t, ComputeFromSettings(models.DefaultSettings(), now).Configured)

	garbage := "yesterday-ish"
	assert.False(t, ComputeFromSettings(models.SettingsPayload{StartDateIso: &garbage, TrayDays: 10}, now).Configured)

	start := FormatISO(now.Add(-25 * day))
	status := ComputeFromSettings(models.SettingsPayload{StartDateIso: &start, TrayDays: 10}, now)
	assert.True(t, status.Configured)
	assert.Equal(t, 3, status.CurrentTray)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{90125000 * time.Millisecond, "1d 01:02:05"},
		{90125999 * time.Millisecond, "1d 01:02:05"},
		{0, "0d 00:00:00"},
		{-5 * time.Second, "0d 00:00:00"},
		{999 * time.Millisecond, "0d 00:00:00"},
		{10 * day, "10d 00:00:00"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "0d 23:59:59"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), tc.in.String())
	}
}

func TestLabels(t *testing.T) {
	unset := Status{}
	assert.Equal(t, Unset, unset.TrayLabel())
	assert.Equal(t, Unset, unset.NextChangeLabel(time.UTC))
	assert.Equal(t, Unset, unset.CountdownLabel())

	status := Compute(now.Add(-25*day), 10, now)
	assert.Equal(t, "3", status.TrayLabel())
	assert.Equal(t, "5d 00:00:00", status.CountdownLabel())
	assert.Equal(t, "Wed Oct 21 2026, 12:00:00", status.NextChangeLabel(time.UTC))
}

func TestLocalInput(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)

	t.Run("Stored instant to wall clock", func(t *testing.T) {
		value, err := ToLocalInput("2026-01-05T07:30:00.000Z", berlin)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-05T08:30", value)
	})

	t.Run("Wall clock to stored instant", func(t *testing.T) {
		iso, err := FromLocalInput("2026-01-05T08:30", berlin, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-05T07:30:00.000Z", iso)
	})

	t.Run("Round trip", func(t *testing.T) {
		iso, err := FromLocalInput("2026-03-29T02:15", berlin, now)
		require.NoError(t, err)
		value, err := ToLocalInput(iso, berlin)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-29T02:15", value)
	})

	t.Run("Date only and explicit offsets", func(t *testing.T) {
		iso, err := FromLocalInput("2026-01-05", berlin, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-04T23:00:00.000Z", iso)

		iso, err = FromLocalInput("2026-01-05T08:30:00+02:00", berlin, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-05T06:30:00.000Z", iso)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := FromLocalInput("   ", berlin, now)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("Natural language", func(t *testing.T) {
		iso, err := FromLocalInput("yesterday", time.UTC, now)
		require.NoError(t, err)
		parsed, err := ParseISO(iso)
		require.NoError(t, err)
		assert.True(t, parsed.Before(now))
	})

	t.Run("Unparseable stored value", func(t *testing.T) {
		_, err := ToLocalInput("soon", berlin)
		assert.Error(t, err)
	})
}
