package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
	"tray-rotation/internal/client"
	"tray-rotation/internal/models"
	"tray-rotation/internal/trayclock"
	"tray-rotation/internal/tui"

	"github.com/spf13/cobra"
)

var flagJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current tray once",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagJSON, "json", false, "print as JSON")
}

type statusReport struct {
	StartDateIso *string `json:"startDateIso"`
	TrayDays     float64 `json:"trayDays"`
	CurrentTray  *int    `json:"currentTray"`
	NextChange   *string `json:"nextChange"`
	Remaining    *string `json:"remaining"`
	Hint         string  `json:"hint,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := current.api.Load(cmd.Context())
	hint := loadHint(err)
	if err != nil {
		current.logger.WithError(err).Warn("Could not load settings")
		settings = models.DefaultSettings()
	}

	report := buildReport(settings, hint, time.Now())
	return printReport(cmd.OutOrStdout(), report, flagJSON, time.Local)
}

// loadHint mirrors the live view: a failed load still prints the unset status.
func loadHint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrUnauthenticated):
		return tui.HintLoginToSync
	default:
		return tui.HintLoadFailed
	}
}

func buildReport(settings models.SettingsPayload, hint string, now time.Time) statusReport {
	report := statusReport{
		StartDateIso: settings.StartDateIso,
		TrayDays:     settings.TrayDays,
		Hint:         hint,
	}
	status := trayclock.ComputeFromSettings(settings, now)
	if status.Configured {
		tray := status.CurrentTray
		next := trayclock.FormatISO(status.NextChange)
		remaining := trayclock.FormatDuration(status.Remaining)
		report.CurrentTray = &tray
		report.NextChange = &next
		report.Remaining = &remaining
	}
	return report
}

func printReport(w io.Writer, report statusReport, asJSON bool, loc *time.Location) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	tray, next, remaining := trayclock.Unset, trayclock.Unset, trayclock.Unset
	if report.CurrentTray != nil {
		tray = fmt.Sprintf("%d", *report.CurrentTray)
		if t, err := trayclock.ParseISO(*report.NextChange); err == nil {
			next = t.In(loc).Format("Mon Jan 2 2006, 15:04:05")
		}
		remaining = *report.Remaining
	}

	fmt.Fprintf(w, "Current tray:  %s\n", tray)
	fmt.Fprintf(w, "Next change:   %s\n", next)
	fmt.Fprintf(w, "Countdown:     %s\n", remaining)
	fmt.Fprintf(w, "Tray length:   %g days\n", report.TrayDays)
	if report.Hint != "" {
		fmt.Fprintln(w, report.Hint)
	}
	return nil
}

// loadTrayDays fetches the stored tray length, falling back to the default.
func loadTrayDays(ctx context.Context, api client.SettingsAPI) float64 {
	settings, err := api.Load(ctx)
	if err != nil || settings.TrayDays <= 0 {
		return models.DefaultTrayDays
	}
	return settings.TrayDays
}
