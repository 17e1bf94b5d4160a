// Package httpheaders ports the teacher's layered HTTP header configuration
// (default < config-file < CLI) with validation and log-safe redaction, used
// by every outbound HTTP client in both pipeline stages.
package httpheaders

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is where a missing headers config gets templated to.
	DefaultConfigFile = "configs/headers.yaml"

	// MaxConfigFileSize bounds how large a headers.yaml may be (1MB).
	MaxConfigFileSize = 1 * 1024 * 1024
)

//go:embed headers_template.yaml
var defaultHeaderTemplate string

// ConfigLoader loads, validates, and parses the headers config file.
type ConfigLoader struct {
	configPath string
}

// NewConfigLoader builds a loader for configPath, defaulting to
// DefaultConfigFile when empty.
func NewConfigLoader(configPath string) *ConfigLoader {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return &ConfigLoader{configPath: configPath}
}

// EnsureExists writes the embedded template if configPath is missing.
func (cl *ConfigLoader) EnsureExists() error {
	if _, err := os.Stat(cl.configPath); os.IsNotExist(err) {
		dir := filepath.Dir(cl.configPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create config dir [%s]: %w", dir, err)
		}
		if err := os.WriteFile(cl.configPath, []byte(defaultHeaderTemplate), 0644); err != nil {
			return fmt.Errorf("cannot write config template [%s]: %w", cl.configPath, err)
		}
	}
	return nil
}

// ValidateFileSize rejects a headers.yaml larger than MaxConfigFileSize.
func (cl *ConfigLoader) ValidateFileSize() error {
	info, err := os.Stat(cl.configPath)
	if err != nil {
		return fmt.Errorf("cannot stat config file [%s]: %w", cl.configPath, err)
	}
	if info.Size() > MaxConfigFileSize {
		return &model.ConfigError{
			FilePath: cl.configPath,
			Cause:    fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// LoadConfig ensures the file exists, checks its size, parses the YAML via
// viper, and degrades gracefully to an empty config if the file is locked
// by another process.
func (cl *ConfigLoader) LoadConfig() (*model.HeaderConfig, error) {
	if err := cl.EnsureExists(); err != nil {
		return nil, err
	}
	if err := cl.ValidateFileSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(cl.configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			logging.Warnf("config file locked [%s], falling back to defaults", cl.configPath)
			return &model.HeaderConfig{Headers: make(map[string]string)}, nil
		}
		return nil, &model.ConfigError{FilePath: cl.configPath, Cause: err}
	}

	var config model.HeaderConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &model.ConfigError{FilePath: cl.configPath, Cause: fmt.Errorf("unmarshal failed: %w", err)}
	}

	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}

	return &config, nil
}
