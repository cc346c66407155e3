package config

import (
	"os"
	"time"

	"github.com/chrissnell/bandmap/internal/constants"
	"github.com/chrissnell/bandmap/internal/sentinelhub"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSentinelHubConfig() (*SentinelHubData, error)
	GetLogConfig() (*LogData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	SentinelHub SentinelHubData `json:"sentinelhub"`
	Log         LogData         `json:"log"`
}

// SentinelHubData holds the Sentinel Hub account and endpoints
type SentinelHubData struct {
	ClientID     string        `json:"client_id,omitempty"`
	ClientSecret string        `json:"client_secret,omitempty"`
	APIURL       string        `json:"api_url,omitempty"`
	OAuth2URL    string        `json:"oauth2_url,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty"`
}

// LogData holds logging configuration
type LogData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// applyDefaults fills endpoints and falls back to the environment for credentials
func (c *ConfigData) applyDefaults() {
	sh := &c.SentinelHub
	if sh.ClientID == "" {
		sh.ClientID = os.Getenv(constants.EnvClientID)
	}
	if sh.ClientSecret == "" {
		sh.ClientSecret = os.Getenv(constants.EnvClientSecret)
	}
	if sh.APIURL == "" {
		sh.APIURL = sentinelhub.DefaultAPIURL
	}
	if sh.OAuth2URL == "" {
		sh.OAuth2URL = sentinelhub.DefaultOAuth2URL
	}
	if sh.Timeout == 0 {
		sh.Timeout = 60 * time.Second
	}
}

// EnvProvider implements ConfigProvider with defaults and environment credentials only
type EnvProvider struct {
	config *ConfigData
}

// NewEnvProvider creates a provider used when no configuration file exists
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// LoadConfig builds the default configuration
func (e *EnvProvider) LoadConfig() (*ConfigData, error) {
	e.config = defaultConfig()
	return e.config, nil
}

// GetSentinelHubConfig returns the Sentinel Hub configuration
func (e *EnvProvider) GetSentinelHubConfig() (*SentinelHubData, error) {
	if e.config == nil {
		e.config = defaultConfig()
	}
	return &e.config.SentinelHub, nil
}

// GetLogConfig returns the logging configuration
func (e *EnvProvider) GetLogConfig() (*LogData, error) {
	if e.config == nil {
		e.config = defaultConfig()
	}
	return &e.config.Log, nil
}

func defaultConfig() *ConfigData {
	config := &ConfigData{}
	config.applyDefaults()
	return config
}

// Close is a no-op
func (e *EnvProvider) Close() error {
	return nil
}
