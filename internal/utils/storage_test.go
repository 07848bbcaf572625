package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStorageConnection(t *testing.T) {
	t.Run("Full connection string", func(t *testing.T) {
		conn, err := ParseStorageConnection("Region=eu-west-1; Endpoint=http://localhost:8000;AccessKeyId=key;SecretAccessKey=secret;")
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", conn.Region)
		assert.Equal(t, "http://localhost:8000", conn.Endpoint)
		assert.Equal(t, "key", conn.AccessKeyID)
		assert.Equal(t, "secret", conn.SecretAccessKey)
	})

	t.Run("Keys are case-insensitive", func(t *testing.T) {
		conn, err := ParseStorageConnection("region=us-east-1")
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", conn.Region)
		assert.Empty(t, conn.AccessKeyID)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ParseStorageConnection("  ")
		assert.ErrorIs(t, err, ErrMissingConnectionString)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, value := range []string{
			"Endpoint=http://localhost:8000",
			"Region",
			"Region=eu-west-1;Colour=blue",
			"Region=eu-west-1;AccessKeyId=key",
		} {
			_, err := ParseStorageConnection(value)
			assert.Error(t, err, value)
		}
	})
}

func TestNewDynamoDBClient(t *testing.T) {
	client, err := NewDynamoDBClient(context.Background(), &StorageConnection{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:8000",
		AccessKeyID:     "local",
		SecretAccessKey: "local",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:8000", *client.Options().BaseEndpoint)
	assert.Equal(t, "eu-west-1", client.Options().Region)
}
