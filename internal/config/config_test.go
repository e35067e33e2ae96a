package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

const sampleYAML = `
env: prod
address: ":9000"
http_timeout: 15s
endpoints:
  contact: https://hooks.example.com/webhook/React-Contact-Form
  job-posting: https://hooks.example.com/webhook/company-form
headers:
  X-Extra: "yes"
job_titles:
  - Backend Engineer
  - Designer
s3:
  endpoint: localhost:9000
  use_ssl: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formdrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, ":5678", cfg.Address)
	assert.Equal(t, "1", cfg.Headers["ngrok-skip-browser-warning"])
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadYAMLFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, ":9000", cfg.Address)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"Backend Engineer", "Designer"}, cfg.JobTitles)
	assert.Equal(t, "yes", cfg.Headers["X-Extra"])
	assert.True(t, cfg.S3.Enabled())
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("FORMDROP_ENV", "dev")
	t.Setenv("FORMDROP_DEV_BASE_URL", "http://127.0.0.1:5678/n8n/")
	t.Setenv("FORMDROP_JOB_TITLES", "Welder, , Pilot")
	t.Setenv("FORMDROP_JOB_APPLICATION_URL", "https://hooks.example.com/webhook/candidate-form")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, []string{"Welder", "Pilot"}, cfg.JobTitles)
	assert.Equal(t, "https://hooks.example.com/webhook/candidate-form", cfg.Endpoints["job-application"])

	url, err := cfg.Endpoint(form.JobApplication)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5678/n8n/webhook/candidate-form", url)
}

func TestEndpointSelection(t *testing.T) {
	cfg := Default()
	cfg.Endpoints["contact"] = "https://prod.example.com/webhook/React-Contact-Form"

	dev, err := cfg.Endpoint(form.Contact)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5678/n8n/webhook/React-Contact-Form", dev)

	cfg.Env = EnvProd
	prod, err := cfg.Endpoint(form.Contact)
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com/webhook/React-Contact-Form", prod)

	_, err = cfg.Endpoint(form.JobPosting)
	assert.ErrorContains(t, err, "FORMDROP_JOB_POSTING_URL")

	_, err = cfg.Endpoint("newsletter")
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Env = "staging"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Endpoints["newsletter"] = "https://x"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.HTTPTimeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Env = " PROD "
	cfg.MaxFileSize = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, int64(defaultMaxFileSize), cfg.MaxFileSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "env: [unterminated"))
	assert.Error(t, err)
}
