package main

import (
	"io"
	"os"
	"time"
	"tray-rotation/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live countdown with an editable start date",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	// log lines would tear the alt screen
	if !flagDebug {
		logrus.SetOutput(io.Discard)
		defer logrus.SetOutput(os.Stderr)
	}

	model := tui.NewTrayModel(tui.TrayConfig{
		API:      current.api,
		Location: time.Local,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
