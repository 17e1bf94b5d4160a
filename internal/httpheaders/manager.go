package httpheaders

import (
	"net/http"

	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
	"github.com/RecoveryAshes/webqa-inspector/internal/model"
)

// DefaultUserAgent is applied to every outbound request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Manager layers default < config-file < CLI headers and implements
// model.HeaderProvider so every discovery/inspection HTTP client shares one
// source of truth for outbound headers.
type Manager struct {
	configFile string

	defaults http.Header
	config   http.Header
	cli      http.Header

	validator    *Validator
	redactor     *Redactor
	configLoader *ConfigLoader

	loaded bool
}

// NewManager parses cliHeaders ("Name: Value" strings) and prepares to load
// configFile lazily on first GetHeaders call.
func NewManager(configFile string, cliHeaders []string) (*Manager, error) {
	hm := &Manager{
		configFile:   configFile,
		defaults:     defaultHeaders(),
		validator:    NewValidator(),
		redactor:     NewRedactor(),
		configLoader: NewConfigLoader(configFile),
	}

	if len(cliHeaders) > 0 {
		parsed, err := model.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	} else {
		hm.cli = make(http.Header)
	}

	return hm, nil
}

func defaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"*/*"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// LoadConfig reads the headers config file once; subsequent calls are no-ops.
func (hm *Manager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		logging.Errorf("failed to load HTTP header config: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		logging.Debugf("loaded %d HTTP header entries: %v", len(headerConfig.Headers), hm.redactor.Redact(hm.config))
	}

	return nil
}

// Validate checks default, config, and CLI headers in that order.
func (hm *Manager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		return err
	}
	if err := hm.validator.Validate(hm.config); err != nil {
		return err
	}
	return hm.validator.Validate(hm.cli)
}

// MergedHeaders layers default < config < CLI.
func (hm *Manager) MergedHeaders() http.Header {
	result := make(http.Header)
	for name, values := range hm.defaults {
		result[name] = values
	}
	for name, values := range hm.config {
		result[name] = values
	}
	for name, values := range hm.cli {
		result[name] = values
	}
	return result
}

// SafeHeaders returns the merged headers with sensitive values redacted,
// for logging.
func (hm *Manager) SafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.MergedHeaders())
}

// GetHeaders implements model.HeaderProvider.
func (hm *Manager) GetHeaders() (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.MergedHeaders(), nil
}
