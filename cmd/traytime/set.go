package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"tray-rotation/internal/client"
	"tray-rotation/internal/trayclock"
	"tray-rotation/internal/tui"

	"github.com/spf13/cobra"
)

var flagTrayDays float64

var setCmd = &cobra.Command{
	Use:   "set <datetime>",
	Short: "Store the start of tray 1 (interpreted as local time)",
	Long: `Store the start of tray 1. The value is read as local wall-clock time,
e.g. 2026-10-01T08:00, "2026-10-01 08:00", 2026-10-01, or phrases like
"yesterday 9am". Without --tray-days the stored tray length is kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().Float64Var(&flagTrayDays, "tray-days", 0, "length of one tray in days")
	setCmd.Flags().BoolVar(&flagJSON, "json", false, "print as JSON")
}

func runSet(cmd *cobra.Command, args []string) error {
	now := time.Now()
	iso, err := trayclock.FromLocalInput(strings.Join(args, " "), time.Local, now)
	if err != nil {
		return err
	}

	trayDays := flagTrayDays
	if !cmd.Flags().Changed("tray-days") || trayDays <= 0 {
		trayDays = loadTrayDays(cmd.Context(), current.api)
	}

	saved, err := current.api.Save(cmd.Context(), iso, trayDays)
	if errors.Is(err, client.ErrUnauthenticated) {
		return errors.New(tui.StatusLoginSave)
	}
	if err != nil {
		current.logger.WithError(err).Error("Failed to save settings")
		return fmt.Errorf("%s %w", tui.StatusSaveFail, err)
	}

	if !flagJSON {
		fmt.Fprintln(cmd.OutOrStdout(), tui.StatusSaved)
	}
	return printReport(cmd.OutOrStdout(), buildReport(saved, "", now), flagJSON, time.Local)
}
