package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/storage"
)

func TestWireWithoutDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.JobTitles = []string{"Designer"}

	d, err := Wire(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer d.Close()

	assert.Nil(t, d.Pool)
	assert.Nil(t, d.Attachments)
	assert.NotNil(t, d.Submitter)
	assert.IsType(t, &storage.MemoryCatalog{}, d.Titles)

	titles, err := d.Titles.JobTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Designer"}, titles)
}

func TestWireRejectsBadDSN(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "postgres://%zz"
	_, err := Wire(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestWireWithS3(t *testing.T) {
	cfg := config.Default()
	cfg.S3 = config.S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}
	d, err := Wire(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer d.Close()
	assert.NotNil(t, d.Attachments)
}
