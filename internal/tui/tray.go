package tui

import (
	"context"
	"errors"
	"strings"
	"time"
	"tray-rotation/internal/client"
	"tray-rotation/internal/models"
	"tray-rotation/internal/trayclock"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	HintLoginToSync = "Login to save & sync across devices."
	HintLoadFailed  = "Could not load settings (check deployment/API)."
	StatusSaving    = "Saving..."
	StatusSaved     = "Saved ✅"
	StatusLoginSave = "Login first to save."
	StatusSaveFail  = "Save failed."
	StatusBadInput  = "Invalid date."
)

// StatusClearDelay is how long a save status stays on screen.
const StatusClearDelay = 2 * time.Second

// tickMsg drives the once-per-second recompute.
type tickMsg time.Time

type settingsLoadedMsg struct {
	settings models.SettingsPayload
	err      error
}

type settingsSavedMsg struct {
	settings models.SettingsPayload
	err      error
}

// clearStatusMsg clears the save status unless a newer one replaced it.
type clearStatusMsg struct {
	seq int
}

// ViewState is everything the tray view shows. It is owned by TrayModel and
// only changed from Update.
type ViewState struct {
	StartDateIso *string
	TrayDays     float64
	Input        string
	AuthHint     string
	SaveStatus   string
	Saving       bool
	Status       trayclock.Status
}

type TrayConfig struct {
	API             client.SettingsAPI
	Location        *time.Location
	Now             func() time.Time
	RefreshInterval time.Duration
}

type TrayModel struct {
	api             client.SettingsAPI
	loc             *time.Location
	now             func() time.Time
	refreshInterval time.Duration

	state     ViewState
	statusSeq int
	width     int
}

func NewTrayModel(config TrayConfig) *TrayModel {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}

	return &TrayModel{
		api:             config.API,
		loc:             config.Location,
		now:             config.Now,
		refreshInterval: config.RefreshInterval,
		state: ViewState{
			TrayDays: models.DefaultTrayDays,
		},
	}
}

// State returns a copy of the current view state.
func (m *TrayModel) State() ViewState {
	return m.state
}

func (m *TrayModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		m.tickCmd(),
	)
}

func (m *TrayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.recompute()
		return m, m.tickCmd()

	case settingsLoadedMsg:
		m.applyLoaded(msg)
		m.recompute()
		return m, nil

	case settingsSavedMsg:
		m.applySaved(msg)
		m.recompute()
		return m, m.clearStatusCmd()

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.state.SaveStatus = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *TrayModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter, tea.KeyCtrlS:
		return m, m.save()

	case tea.KeyBackspace:
		if runes := []rune(m.state.Input); len(runes) > 0 {
			m.state.Input = string(runes[:len(runes)-1])
		}
		return m, nil

	case tea.KeyCtrlU:
		m.state.Input = ""
		return m, nil

	case tea.KeySpace:
		m.state.Input += " "
		return m, nil

	case tea.KeyRunes:
		m.state.Input += string(msg.Runes)
		return m, nil
	}

	return m, nil
}

// save validates the input and hands the request to a command so the tick
// keeps running while it is in flight.
func (m *TrayModel) save() tea.Cmd {
	if strings.TrimSpace(m.state.Input) == "" {
		return nil
	}

	iso, err := trayclock.FromLocalInput(m.state.Input, m.loc, m.now())
	if err != nil {
		m.setStatus(StatusBadInput)
		m.recompute()
		return m.clearStatusCmd()
	}

	m.setStatus(StatusSaving)
	m.state.Saving = true
	api := m.api
	trayDays := m.state.TrayDays
	return func() tea.Msg {
		saved, err := api.Save(context.Background(), iso, trayDays)
		return settingsSavedMsg{settings: saved, err: err}
	}
}

func (m *TrayModel) applyLoaded(msg settingsLoadedMsg) {
	m.state.AuthHint = ""
	switch {
	case errors.Is(msg.err, client.ErrUnauthenticated):
		m.state.AuthHint = HintLoginToSync
		return
	case msg.err != nil:
		m.state.AuthHint = HintLoadFailed
		return
	}

	if msg.settings.TrayDays > 0 {
		m.state.TrayDays = msg.settings.TrayDays
	}
	if msg.settings.Configured() {
		m.state.StartDateIso = msg.settings.StartDateIso
		if input, err := trayclock.ToLocalInput(*msg.settings.StartDateIso, m.loc); err == nil {
			m.state.Input = input
		}
	}
}

func (m *TrayModel) applySaved(msg settingsSavedMsg) {
	m.state.Saving = false
	switch {
	case errors.Is(msg.err, client.ErrUnauthenticated):
		m.setStatus(StatusLoginSave)
		return
	case msg.err != nil:
		m.setStatus(StatusSaveFail)
		return
	}

	m.state.StartDateIso = msg.settings.StartDateIso
	if msg.settings.TrayDays > 0 {
		m.state.TrayDays = msg.settings.TrayDays
	}
	m.setStatus(StatusSaved)
}

func (m *TrayModel) setStatus(status string) {
	m.statusSeq++
	m.state.SaveStatus = status
}

func (m *TrayModel) recompute() {
	m.state.Status = trayclock.ComputeFromSettings(models.SettingsPayload{
		StartDateIso: m.state.StartDateIso,
		TrayDays:     m.state.TrayDays,
	}, m.now())
}

func (m *TrayModel) loadCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		settings, err := api.Load(context.Background())
		return settingsLoadedMsg{settings: settings, err: err}
	}
}

func (m *TrayModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *TrayModel) clearStatusCmd() tea.Cmd {
	seq := m.statusSeq
	return tea.Tick(StatusClearDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *TrayModel) View() string {
	status := m.state.Status

	rows := []string{
		StyleTitle.Render("Tray rotation"),
		row("Current tray", StyleValue.Render(status.TrayLabel())),
		row("Next change", StyleValue.Render(status.NextChangeLabel(m.loc))),
		row("Countdown", StyleCountdown.Render(status.CountdownLabel())),
		"",
		row("Start (local)", StyleInput.Render(m.state.Input+"▏")),
	}
	if m.state.AuthHint != "" {
		rows = append(rows, StyleHint.Render(m.state.AuthHint))
	}
	if m.state.SaveStatus != "" {
		rows = append(rows, StyleStatus.Render(m.state.SaveStatus))
	}
	rows = append(rows, StyleHelp.Render("enter save • ctrl+u clear • esc quit"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center, StyleLabel.Render(label), value)
}
