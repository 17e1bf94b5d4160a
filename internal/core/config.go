// Package core holds the application-level configuration for the
// discovery and inspection pipeline stages.
package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level application configuration, loaded from
// configs/config.yaml (or a path given on the CLI) and layered with
// viper defaults.
type Config struct {
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Inspection InspectionConfig `mapstructure:"inspection"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Resource   ResourceConfig   `mapstructure:"resource"`
}

// DiscoveryConfig controls the discovery stage (live crawl, JS extraction,
// archive search, robots/sitemap, brute force, liveness validation).
type DiscoveryConfig struct {
	Depth       int      `mapstructure:"depth"`
	Threads     int      `mapstructure:"threads"`
	Timeout     int      `mapstructure:"timeout"` // seconds
	Techniques  []string `mapstructure:"techniques"`
	OnlyAlive   bool     `mapstructure:"only_alive"`
	ValidateSSL bool     `mapstructure:"validate_ssl"`
}

// InspectionConfig controls the inspection stage (crawl, validation,
// browser analysis, scoring).
type InspectionConfig struct {
	MaxPages              int  `mapstructure:"max_pages"`
	CrawlerConcurrency    int  `mapstructure:"crawler_concurrency"`
	ValidatorConcurrency  int  `mapstructure:"validator_concurrency"`
	BrowserConcurrency    int  `mapstructure:"browser_concurrency"`
	HTTPTimeoutSeconds    int  `mapstructure:"http_timeout"`
	BrowserTimeoutSeconds int  `mapstructure:"browser_timeout"`
	Headless              bool `mapstructure:"headless"`
	ValidateSSL            bool `mapstructure:"validate_ssl"`
}

// LoggingConfig configures the zerolog/lumberjack logging pipeline.
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures lumberjack log rotation.
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// ResourceConfig bounds the inspection stage's browser-tab pool, ported
// near-verbatim from the teacher's resource-optimization config since the
// memory/CPU-pressure math is domain-independent.
type ResourceConfig struct {
	SafetyReserveMemory int `mapstructure:"safety_reserve_memory"` // MB
	SafetyThreshold     int `mapstructure:"safety_threshold"`      // MB
	CPULoadThreshold    int `mapstructure:"cpu_load_threshold"`    // %
	MaxTabsLimit        int `mapstructure:"max_tabs_limit"`
	TabMemoryUsage      int `mapstructure:"tab_memory_usage"` // MB per tab
}

// Validate checks that resource bounds are within sane operating ranges.
func (r *ResourceConfig) Validate() error {
	if r.SafetyReserveMemory < 512 {
		return fmt.Errorf("safety reserve memory must be >= 512MB, got %dMB", r.SafetyReserveMemory)
	}
	if r.SafetyThreshold < 200 {
		return fmt.Errorf("safety threshold must be >= 200MB, got %dMB", r.SafetyThreshold)
	}
	if r.CPULoadThreshold < 50 || r.CPULoadThreshold > 999 {
		return fmt.Errorf("CPU load threshold must be between 50-999, got %d%%", r.CPULoadThreshold)
	}
	if r.MaxTabsLimit < 1 || r.MaxTabsLimit > 32 {
		return fmt.Errorf("max tabs limit must be between 1-32, got %d", r.MaxTabsLimit)
	}
	return nil
}

// LoadConfig loads configPath if given, otherwise searches ./configs, ".",
// and ~/.webqa-inspector for config.yaml, layering in defaults before
// parsing and validating resource bounds.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".webqa-inspector"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := config.Resource.Validate(); err != nil {
		return nil, fmt.Errorf("resource config validation: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discovery.depth", 3)
	v.SetDefault("discovery.threads", 50)
	v.SetDefault("discovery.timeout", 5)
	v.SetDefault("discovery.techniques", []string{"live", "js", "wayback", "bruteforce", "robots", "sitemap"})
	v.SetDefault("discovery.only_alive", false)
	v.SetDefault("discovery.validate_ssl", true)

	v.SetDefault("inspection.max_pages", 100)
	v.SetDefault("inspection.crawler_concurrency", 1)
	v.SetDefault("inspection.validator_concurrency", 10)
	v.SetDefault("inspection.browser_concurrency", 4)
	v.SetDefault("inspection.http_timeout", 10)
	v.SetDefault("inspection.browser_timeout", 30)
	v.SetDefault("inspection.headless", true)
	v.SetDefault("inspection.validate_ssl", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("resource.safety_reserve_memory", 1024)
	v.SetDefault("resource.safety_threshold", 500)
	v.SetDefault("resource.cpu_load_threshold", 80)
	v.SetDefault("resource.max_tabs_limit", 16)
	v.SetDefault("resource.tab_memory_usage", 150)
}
