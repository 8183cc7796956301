package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxyspa/b2b/internal/config"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(&config.Config{DatabaseURL: "mongodb://db.internal:27017", AppName: "OxySPA B2B API"})

	require.NoError(t, opts.Validate())
	require.NotNil(t, opts.RetryWrites)
	assert.False(t, *opts.RetryWrites)
	require.NotNil(t, opts.AppName)
	assert.Equal(t, "OxySPA B2B API", *opts.AppName)
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, serverSelectionTimeout, *opts.ServerSelectionTimeout)
	assert.Equal(t, []string{"db.internal:27017"}, opts.Hosts)
}

func TestClientOptions_URICannotReenableRetries(t *testing.T) {
	opts := clientOptions(&config.Config{DatabaseURL: "mongodb://db.internal:27017/?retryWrites=true"})

	require.NotNil(t, opts.RetryWrites)
	assert.False(t, *opts.RetryWrites)
}

func TestConnectDB_InvalidURL(t *testing.T) {
	client, database, err := ConnectDB(context.Background(), &config.Config{DatabaseURL: "postgres://db.internal", DatabaseName: "oxyspa"})

	assert.ErrorContains(t, err, "failed to connect to MongoDB")
	assert.Nil(t, client)
	assert.Nil(t, database)
}

func TestDisconnectDB_Nil(t *testing.T) {
	assert.NoError(t, DisconnectDB(nil))
}
