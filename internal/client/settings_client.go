package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"tray-rotation/internal/models"
	"tray-rotation/internal/utils"

	"github.com/sirupsen/logrus"
)

const SettingsPath = "/api/settings"

var ErrUnauthenticated = errors.New("not authenticated")

// StatusError is any non-2xx answer other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", SettingsPath, e.StatusCode, strings.TrimSpace(e.Body))
}

// SettingsAPI is what the tray view needs from the settings endpoint.
type SettingsAPI interface {
	Load(ctx context.Context) (models.SettingsPayload, error)
	Save(ctx context.Context, startDateIso string, trayDays float64) (models.SettingsPayload, error)
}

type SettingsClient struct {
	logger     *logrus.Entry
	httpClient *http.Client
	baseURL    string
	principal  string
	timeout    time.Duration
}

// NewSettingsClient targets baseURL. When userID is set the requests carry a
// client principal for it, for deployments where nothing in front of the API
// injects one.
func NewSettingsClient(logger *logrus.Entry, httpClient *http.Client, baseURL, userID string, timeout time.Duration) (SettingsAPI, error) {
	if baseURL == "" {
		return nil, errors.New("api url is not set")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var principal string
	if userID != "" {
		encoded, err := utils.EncodePrincipal(utils.ClientPrincipal{IdentityProvider: "traytime", UserID: userID})
		if err != nil {
			return nil, err
		}
		principal = encoded
	}

	return &SettingsClient{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		principal:  principal,
		timeout:    timeout,
	}, nil
}

func (c *SettingsClient) Load(ctx context.Context) (models.SettingsPayload, error) {
	return c.do(ctx, http.MethodGet, nil)
}

func (c *SettingsClient) Save(ctx context.Context, startDateIso string, trayDays float64) (models.SettingsPayload, error) {
	body, err := json.Marshal(models.SettingsPayload{StartDateIso: &startDateIso, TrayDays: trayDays})
	if err != nil {
		return models.SettingsPayload{}, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return c.do(ctx, http.MethodPost, body)
}

func (c *SettingsClient) do(ctx context.Context, method string, body []byte) (models.SettingsPayload, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+SettingsPath, reader)
	if err != nil {
		return models.SettingsPayload{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.principal != "" {
		req.Header.Set(utils.PrincipalHeader, c.principal)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warnf("%s %s failed", method, SettingsPath)
		return models.SettingsPayload{}, fmt.Errorf("%s %s: %w", method, SettingsPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SettingsPayload{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return models.SettingsPayload{}, ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.SettingsPayload{}, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var payload models.SettingsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.SettingsPayload{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"source": resp.Header.Get("X-Settings-Source"),
	}).Debug("Settings exchanged")
	return payload, nil
}
