package main

import (
	"net/http"
	"os"
	"time"
	"tray-rotation/internal/client"
	"tray-rotation/internal/config"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	COMPONENT   = "component"
	SERVICENAME = "traytime"
)

// Global flags.
var (
	flagConfig  string
	flagAPIURL  string
	flagUserID  string
	flagTimeout time.Duration
	flagDebug   bool
)

// app is built once per invocation by the root pre-run hook.
type app struct {
	logger *logrus.Entry
	cfg    *config.ClientConfig
	api    client.SettingsAPI
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "traytime",
	Short: "Track which tray you are on and when the next one starts",
	Long: `traytime shows the current tray of a fixed-length rotation, when the
next change is due and a live countdown. The start date is stored per user
by the /api/settings endpoint so every device sees the same schedule.

Examples:
  traytime                      live view (status when not on a terminal)
  traytime status --json
  traytime set 2026-10-01T08:00
  traytime set "yesterday 9am" --tray-days 14`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		current, err = newApp(cmd)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return runWatch(cmd, args)
		}
		return runStatus(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "origin serving /api/settings")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user-id", "", "send a client principal for this user id")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "deadline for each request")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging on stderr")

	rootCmd.AddCommand(statusCmd, setCmd, watchCmd)
}

func newApp(cmd *cobra.Command) (*app, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = flagAPIURL
	}
	if flags.Changed("user-id") {
		cfg.UserID = flagUserID
	}
	if flags.Changed("timeout") && flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}

	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)
	if flagDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.WithField(COMPONENT, SERVICENAME)

	api, err := client.NewSettingsClient(logger, &http.Client{}, cfg.APIURL, cfg.UserID, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &app{logger: logger, cfg: cfg, api: api}, nil
}
