package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var ErrMissingConnectionString = errors.New("STORAGE_CONNECTION_STRING is not set")

// StorageConnection is the parsed form of
// "Region=eu-west-1;Endpoint=http://localhost:8000;AccessKeyId=...;SecretAccessKey=..."
type StorageConnection struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func ParseStorageConnection(connectionString string) (*StorageConnection, error) {
	if strings.TrimSpace(connectionString) == "" {
		return nil, ErrMissingConnectionString
	}

	conn := &StorageConnection{}
	for _, part := range strings.Split(connectionString, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed connection string segment %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "region":
			conn.Region = value
		case "endpoint":
			conn.Endpoint = value
		case "accesskeyid":
			conn.AccessKeyID = value
		case "secretaccesskey":
			conn.SecretAccessKey = value
		case "sessiontoken":
			conn.SessionToken = value
		default:
			return nil, fmt.Errorf("unknown connection string key %q", key)
		}
	}

	if conn.Region == "" {
		return nil, errors.New("connection string has no Region")
	}
	if (conn.AccessKeyID == "") != (conn.SecretAccessKey == "") {
		return nil, errors.New("connection string needs both AccessKeyId and SecretAccessKey")
	}
	return conn, nil
}

// NewDynamoDBClient builds a client from the connection; without static keys
// the default credential chain of the runtime is used.
func NewDynamoDBClient(ctx context.Context, conn *StorageConnection) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conn.Region),
	}
	if conn.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conn.AccessKeyID, conn.SecretAccessKey, conn.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	}), nil
}
