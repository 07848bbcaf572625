package models

// DefaultTrayDays is used whenever a record has no usable tray duration.
const DefaultTrayDays = 10

// SettingsRowKey is the fixed sort key of the single settings row per user.
const SettingsRowKey = "settings"

// Settings is the persisted per-user record.
type Settings struct {
	UserID       string  `json:"userId" dynamodbav:"partitionKey"`
	RowKey       string  `json:"-" dynamodbav:"rowKey"`
	StartDateIso *string `json:"startDateIso" dynamodbav:"startDateIso,omitempty"`
	TrayDays     float64 `json:"trayDays" dynamodbav:"trayDays,omitempty"`
	UpdatedAt    string  `json:"updatedAt" dynamodbav:"updatedAt,omitempty"` // ISO timestamp
}

// SettingsPayload is the body exchanged on /api/settings.
type SettingsPayload struct {
	StartDateIso *string `json:"startDateIso"`
	TrayDays     float64 `json:"trayDays"`
}

// DefaultSettings is what a caller sees when nothing is stored yet.
func DefaultSettings() SettingsPayload {
	return SettingsPayload{
		StartDateIso: nil,
		TrayDays:     DefaultTrayDays,
	}
}

// Payload converts a stored record to the wire shape.
func (s *Settings) Payload() SettingsPayload {
	trayDays := s.TrayDays
	if trayDays == 0 {
		trayDays = DefaultTrayDays
	}
	return SettingsPayload{
		StartDateIso: s.StartDateIso,
		TrayDays:     trayDays,
	}
}

// Configured reports whether a start instant has been recorded.
func (p SettingsPayload) Configured() bool {
	return p.StartDateIso != nil && *p.StartDateIso != ""
}
