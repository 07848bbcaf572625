package main

import (
	"context"
	"time"
	"tray-rotation/internal/repository"
	"tray-rotation/internal/utils"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	SEVERITY    = "severity"
	MESSAGE     = "message"
	TIMESTAMP   = "timestamp"
	COMPONENT   = "component"
	SERVICENAME = "tray-settings"
)

type EnvVars struct {
	StorageConnectionString string        `envconfig:"STORAGE_CONNECTION_STRING"`
	TableName               string        `envconfig:"TABLE_NAME" default:"TraySettings"`
	LoginPath               string        `envconfig:"LOGIN_PATH" default:"/.auth/login/github"`
	TableWaitTimeout        time.Duration `envconfig:"TABLE_WAIT_TIMEOUT" default:"30s"`
	LogLevel                string        `envconfig:"LOG_LEVEL" default:"info"`
}

func getEnvironmentVariables() (*EnvVars, error) {
	var envVars EnvVars
	if err := envconfig.Process("", &envVars); err != nil {
		return nil, err
	}
	return &envVars, nil
}

// newSettingsRepository returns a configuration error instead of panicking so
// that every request can report it.
func newSettingsRepository(logger *logrus.Entry, envVars *EnvVars) (utils.SettingsRepository, error) {
	conn, err := utils.ParseStorageConnection(envVars.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	dynamodbClient, err := utils.NewDynamoDBClient(context.Background(), conn)
	if err != nil {
		return nil, err
	}

	return repository.NewSettingsRepository(logger, dynamodbClient, envVars.TableName, envVars.TableWaitTimeout), nil
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  TIMESTAMP,
			logrus.FieldKeyLevel: SEVERITY,
			logrus.FieldKeyMsg:   MESSAGE,
		},
	})
	logger := logrus.WithField(COMPONENT, SERVICENAME)

	envVars, err := getEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Error("Failed to get environment variables")
		panic(err)
	}

	if level, err := logrus.ParseLevel(envVars.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	settingsRepo, configErr := newSettingsRepository(logger, envVars)
	if configErr != nil {
		logger.WithError(configErr).Error("Storage is not configured, every request will fail")
	}

	handler, err := NewHandler(logger, envVars, settingsRepo, configErr)
	if err != nil {
		logger.WithError(err).Error("Failed to create handler")
		panic(err)
	}

	lambda.Start(handler.EventHandler)
}
