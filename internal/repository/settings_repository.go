package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tray-rotation/internal/models"
	"tray-rotation/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const (
	partitionKeyAttr = "partitionKey"
	rowKeyAttr       = "rowKey"
)

type settingsRepository struct {
	logger      *logrus.Entry
	dynamodb    utils.DynamoDbAPI
	tableName   string
	waitTimeout time.Duration
}

func NewSettingsRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string, waitTimeout time.Duration) utils.SettingsRepository {
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &settingsRepository{
		logger:      logger,
		dynamodb:    dynamodb,
		tableName:   tableName,
		waitTimeout: waitTimeout,
	}
}

// EnsureTable creates the settings table if it is missing. An existing table
// is not an error.
func (r *settingsRepository) EnsureTable(ctx context.Context) error {
	_, err := r.dynamodb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(partitionKeyAttr), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(rowKeyAttr), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(partitionKeyAttr), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rowKeyAttr), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})

	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to create settings table")
		return fmt.Errorf("failed to create table: %w", err)
	}

	r.logger.WithField("table", r.tableName).Info("Created settings table, waiting for it to become active")

	waiter := dynamodb.NewTableExistsWaiter(r.dynamodb, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = time.Second
		o.MaxDelay = 5 * time.Second
	})
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}, r.waitTimeout)
	if err != nil {
		r.logger.WithError(err).Error("Settings table did not become active")
		return fmt.Errorf("failed waiting for table: %w", err)
	}
	return nil
}

// GetSettings returns nil, nil when the user has no record.
func (r *settingsRepository) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       settingsKey(userID),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get settings from DynamoDB")
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var settings models.Settings
	if err := attributevalue.UnmarshalMap(result.Item, &settings); err != nil {
		r.logger.WithError(err).Error("Failed to unmarshal settings")
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"startDateIso": aws.ToString(settings.StartDateIso),
		"trayDays":     settings.TrayDays,
	}).Info("Successfully retrieved settings")

	return &settings, nil
}

// UpsertSettings merges the two fields into the user's record, creating it
// if needed. Other attributes on the row are left alone.
func (r *settingsRepository) UpsertSettings(ctx context.Context, userID, startDateIso string, trayDays float64) (*models.Settings, error) {
	values, err := attributevalue.MarshalMap(map[string]interface{}{
		":startDateIso": startDateIso,
		":trayDays":     trayDays,
		":updatedAt":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	result, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              settingsKey(userID),
		UpdateExpression: aws.String("SET #startDateIso = :startDateIso, #trayDays = :trayDays, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#startDateIso": "startDateIso",
			"#trayDays":     "trayDays",
			"#updatedAt":    "updatedAt",
		},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to save settings to DynamoDB")
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	var settings models.Settings
	if err := attributevalue.UnmarshalMap(result.Attributes, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved settings: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"startDateIso": startDateIso,
		"trayDays":     trayDays,
	}).Info("Successfully saved settings")

	return &settings, nil
}

func settingsKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		partitionKeyAttr: &types.AttributeValueMemberS{Value: userID},
		rowKeyAttr:       &types.AttributeValueMemberS{Value: models.SettingsRowKey},
	}
}
