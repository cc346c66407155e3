package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		SentinelHub SentinelHubYAML `yaml:"sentinelhub,omitempty"`
		Log         LogYAML         `yaml:"log,omitempty"`
	}

	err = yaml.UnmarshalStrict(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		SentinelHub: SentinelHubData{
			ClientID:     yamlConfig.SentinelHub.ClientID,
			ClientSecret: yamlConfig.SentinelHub.ClientSecret,
			APIURL:       yamlConfig.SentinelHub.APIURL,
			OAuth2URL:    yamlConfig.SentinelHub.OAuth2URL,
		},
		Log: LogData{
			Debug:      yamlConfig.Log.Debug,
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
		},
	}

	if yamlConfig.SentinelHub.Timeout != "" {
		timeout, err := time.ParseDuration(yamlConfig.SentinelHub.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid sentinelhub timeout %q: %w", yamlConfig.SentinelHub.Timeout, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("sentinelhub timeout must be positive, got %s", timeout)
		}
		config.SentinelHub.Timeout = timeout
	}

	config.applyDefaults()

	y.config = config
	return config, nil
}

// GetSentinelHubConfig returns the Sentinel Hub configuration
func (y *YAMLProvider) GetSentinelHubConfig() (*SentinelHubData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.SentinelHub, nil
}

// GetLogConfig returns the logging configuration
func (y *YAMLProvider) GetLogConfig() (*LogData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Log, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags
type SentinelHubYAML struct {
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	APIURL       string `yaml:"api_url,omitempty"`
	OAuth2URL    string `yaml:"oauth2_url,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"`
}

type LogYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}
