package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"tray-rotation/internal/models"
	"tray-rotation/internal/trayclock"
	"tray-rotation/internal/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// SettingsSourceHeader tells operators where a GET answer came from.
const SettingsSourceHeader = "X-Settings-Source"

const (
	sourceStored   = "stored"
	sourceDefault  = "default"
	sourceFallback = "fallback"
)

type Handler struct {
	logger       *logrus.Entry
	envVars      *EnvVars
	settingsRepo utils.SettingsRepository
	configErr    error
}

func NewHandler(logger *logrus.Entry, envVars *EnvVars, settingsRepo utils.SettingsRepository, configErr error) (*Handler, error) {
	if settingsRepo == nil && configErr == nil {
		configErr = utils.ErrMissingConnectionString
	}
	return &Handler{
		logger:       logger,
		envVars:      envVars,
		settingsRepo: settingsRepo,
		configErr:    configErr,
	}, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) EventHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.configErr != nil {
		h.logger.WithError(h.configErr).Error("Storage is not configured")
		if errors.Is(h.configErr, utils.ErrMissingConnectionString) {
			return h.textResponse(http.StatusInternalServerError, "Missing STORAGE_CONNECTION_STRING"), nil
		}
		return h.textResponse(http.StatusInternalServerError, "Invalid STORAGE_CONNECTION_STRING"), nil
	}

	principal, err := utils.PrincipalFromHeaders(request.Headers, request.MultiValueHeaders)
	if err != nil {
		h.logger.WithError(err).Warn("User not authenticated")
		return h.textResponse(http.StatusUnauthorized, "Not authenticated. Use "+h.envVars.LoginPath), nil
	}
	logger := h.logger.WithFields(logrus.Fields{
		"userId":    principal.UserID,
		"method":    request.HTTPMethod,
		"requestId": request.RequestContext.RequestID,
	})

	if err := h.settingsRepo.EnsureTable(ctx); err != nil {
		logger.WithError(err).Error("Error creating table")
		return h.textResponse(http.StatusInternalServerError, "Error creating table"), nil
	}

	switch strings.ToUpper(request.HTTPMethod) {
	case http.MethodGet:
		return h.handleGet(ctx, logger, principal.UserID), nil
	case http.MethodPost:
		return h.handlePost(ctx, logger, principal.UserID, request), nil
	default:
		logger.Warn("Method not allowed")
		return h.textResponse(http.StatusMethodNotAllowed, "Method not allowed"), nil
	}
}

// handleGet never fails: a missing record and a failing store both answer
// with the defaults, told apart only by SettingsSourceHeader and the log.
func (h *Handler) handleGet(ctx context.Context, logger *logrus.Entry, userID string) events.APIGatewayProxyResponse {
	settings, err := h.settingsRepo.GetSettings(ctx, userID)
	if err != nil {
		logger.WithError(err).Warn("Settings lookup failed, answering with defaults")
		return h.settingsResponse(models.DefaultSettings(), sourceFallback)
	}
	if settings == nil {
		logger.Info("No settings stored yet")
		return h.settingsResponse(models.DefaultSettings(), sourceDefault)
	}

	logger.Info("Fetched settings")
	return h.settingsResponse(settings.Payload(), sourceStored)
}

func (h *Handler) handlePost(ctx context.Context, logger *logrus.Entry, userID string, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := parseBody(logger, request)

	startDateIso, _ := body["startDateIso"].(string)
	if startDateIso == "" {
		logger.Warn("Missing startDateIso in POST")
		return h.jsonResponse(http.StatusBadRequest, ErrorResponse{Error: "startDateIso is required"}, nil)
	}
	trayDays := coerceTrayDays(body["trayDays"])

	saved, err := h.settingsRepo.UpsertSettings(ctx, userID, startDateIso, trayDays)
	if err != nil {
		logger.WithError(err).Error("Error saving settings")
		return h.textResponse(http.StatusInternalServerError, err.Error())
	}

	logger.WithFields(logrus.Fields{
		"startDateIso": startDateIso,
		"trayDays":     trayDays,
	}).Info("Saved settings")
	return h.jsonResponse(http.StatusOK, saved.Payload(), nil)
}

// parseBody treats an absent or malformed body as an empty object.
func parseBody(logger *logrus.Entry, request events.APIGatewayProxyRequest) map[string]interface{} {
	raw := request.Body
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			logger.WithError(err).Warn("Failed to decode base64 body")
			return map[string]interface{}{}
		}
		raw = string(decoded)
	}

	body := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return body
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		logger.WithError(err).Warn("Failed to parse request body")
		return map[string]interface{}{}
	}
	return body
}

// coerceTrayDays converts whatever the client sent into a tray length in
// days. Missing, falsy and non-numeric values become the default, and so does
// anything the clock could not turn into a tray length.
func coerceTrayDays(value interface{}) float64 {
	var days float64
	switch v := value.(type) {
	case float64:
		days = v
	case bool:
		if v {
			days = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			days = parsed
		}
	}
	if !trayclock.ValidTrayDays(days) {
		return models.DefaultTrayDays
	}
	return days
}

func (h *Handler) settingsResponse(payload models.SettingsPayload, source string) events.APIGatewayProxyResponse {
	return h.jsonResponse(http.StatusOK, payload, map[string]string{SettingsSourceHeader: source})
}

func (h *Handler) jsonResponse(statusCode int, data interface{}, extraHeaders map[string]string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(data)
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}
}

func (h *Handler) textResponse(statusCode int, message string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
		Body: message,
	}
}
