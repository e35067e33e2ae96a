// Package config centralizes how FormDrop reads its settings. Values come from
// defaults, then an optional .env file, then an optional YAML file, and finally
// FORMDROP_* environment variables, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	// DefaultFile is read when Load is given no explicit path and it exists.
	DefaultFile = "formdrop.yaml"
)

// Config is the runtime configuration. The yaml struct tags tell yaml.v3 which
// key maps to each exported field; unexported fields would be skipped.
type Config struct {
	Env      string `yaml:"env"`
	Address  string `yaml:"address"`
	LogLevel string `yaml:"log_level"`

	// DevBaseURL prefixes webhook paths in dev, normally the relay's /n8n proxy.
	DevBaseURL string `yaml:"dev_base_url"`
	// ProxyTarget is where the relay's /n8n proxy forwards to.
	ProxyTarget string `yaml:"proxy_target"`
	// Endpoints holds the production webhook URL per form type.
	Endpoints   map[string]string `yaml:"endpoints"`
	Headers     map[string]string `yaml:"headers"`
	HTTPTimeout time.Duration     `yaml:"http_timeout"`

	DatabaseURL string   `yaml:"database_url"`
	JobTitles   []string `yaml:"job_titles"`

	S3            S3Config `yaml:"s3"`
	SigningSecret string   `yaml:"signing_secret"`
	MaxFileSize   int64    `yaml:"max_file_size"`
}

// S3Config points at an S3-compatible store used to load file attachments.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether an S3 endpoint is configured.
func (s S3Config) Enabled() bool {
	return s.Endpoint != ""
}

const (
	defaultAddress     = ":5678"
	defaultDevBaseURL  = "http://localhost:5678/n8n"
	// Shifts work on integer constants, so 10 << 20 equals 10 * 2^20 bytes.
	defaultMaxFileSize = 10 << 20 // 10 MiB
)

// Default returns the configuration before any file or environment is read.
func Default() *Config {
	return &Config{
		Env:         EnvDev,
		Address:     defaultAddress,
		LogLevel:    "info",
		DevBaseURL:  defaultDevBaseURL,
		Endpoints:   map[string]string{},
		Headers:     map[string]string{"ngrok-skip-browser-warning": "1"},
		MaxFileSize: defaultMaxFileSize,
	}
}

// Load builds the configuration. path names a YAML file; when empty,
// DefaultFile is used if present.
func Load(path string) (*Config, error) {
	// godotenv.Load never overrides variables already present in the process
	// environment, so a real FORMDROP_* value always beats the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	// Unmarshal only touches keys present in the file; everything else keeps
	// the defaults already stored in c.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var endpointEnv = map[form.Type]string{
	form.Contact:        "FORMDROP_CONTACT_URL",
	form.JobApplication: "FORMDROP_JOB_APPLICATION_URL",
	form.JobPosting:     "FORMDROP_JOB_POSTING_URL",
}

func (c *Config) applyEnv() {
	c.Env = readEnv("FORMDROP_ENV", c.Env)
	c.Address = readEnv("FORMDROP_ADDRESS", c.Address)
	c.LogLevel = readEnv("FORMDROP_LOG_LEVEL", c.LogLevel)
	c.DevBaseURL = readEnv("FORMDROP_DEV_BASE_URL", c.DevBaseURL)
	c.ProxyTarget = readEnv("FORMDROP_PROXY_TARGET", c.ProxyTarget)
	// A YAML file with "endpoints:" and no entries leaves a nil map, and
	// writing to a nil map panics.
	if c.Endpoints == nil {
		c.Endpoints = map[string]string{}
	}
	for t, key := range endpointEnv {
		if v := readEnv(key, ""); v != "" {
			c.Endpoints[string(t)] = v
		}
	}
	c.HTTPTimeout = parseDuration("FORMDROP_HTTP_TIMEOUT", c.HTTPTimeout)
	c.DatabaseURL = readEnv("FORMDROP_DATABASE_URL", c.DatabaseURL)
	if v := parseList("FORMDROP_JOB_TITLES"); v != nil {
		c.JobTitles = v
	}
	c.S3.Endpoint = readEnv("FORMDROP_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = readEnv("FORMDROP_S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = readEnv("FORMDROP_S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.Region = readEnv("FORMDROP_S3_REGION", c.S3.Region)
	c.S3.UseSSL = parseBool("FORMDROP_S3_USE_SSL", c.S3.UseSSL)
	c.SigningSecret = readEnv("FORMDROP_SIGNING_SECRET", c.SigningSecret)
	c.MaxFileSize = parseInt64("FORMDROP_MAX_FILE_BYTES", c.MaxFileSize)
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env != EnvDev && c.Env != EnvProd {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDev, EnvProd, c.Env)
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http_timeout must not be negative")
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	for k := range c.Endpoints {
		if _, err := form.ParseType(k); err != nil {
			return fmt.Errorf("endpoints: %w", err)
		}
	}
	return nil
}

// IsDev reports whether the dev (proxied) endpoints are in use.
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// Endpoint resolves the webhook URL for t: the proxied dev endpoint in dev,
// the configured production endpoint otherwise.
func (c *Config) Endpoint(t form.Type) (string, error) {
	def, err := form.Lookup(t, nil)
	if err != nil {
		return "", err
	}
	if c.IsDev() {
		return strings.TrimRight(c.DevBaseURL, "/") + def.WebhookPath, nil
	}
	if u := c.Endpoints[string(t)]; u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no production endpoint configured for %s (set %s)", t, endpointEnv[t])
}

func readEnv(key, def string) string {
	// LookupEnv returns (value, true) when the variable is present; empty values
	// are treated as unset so FORMDROP_X= does not wipe a default.
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseList(key string) []string {
	v := readEnv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	// strings.Split returns a slice of substrings that we trim, dropping blanks.
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt64(key string, def int64) int64 {
	if v := readEnv(key, ""); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v := readEnv(key, ""); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := readEnv(key, ""); v != "" {
		// ParseDuration understands values such as "15s" or "1m30s".
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
