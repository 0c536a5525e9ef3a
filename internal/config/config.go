// Package config handles configuration loading for bizreport.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Report  ReportConfig  `mapstructure:"report"  yaml:"report" json:"report"`
	SMTP    SMTPConfig    `mapstructure:"smtp"    yaml:"smtp" json:"smtp"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview" json:"preview"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	Output string `mapstructure:"output" yaml:"output" json:"output"` // default output file
	Title  string `mapstructure:"title"  yaml:"title" json:"title"`
}

// SMTPConfig holds the mail relay used to deliver reports.
type SMTPConfig struct {
	Host               string        `mapstructure:"host"                 yaml:"host" json:"host"`
	Port               int           `mapstructure:"port"                 yaml:"port" json:"port"` // implicit TLS, usually 465
	Username           string        `mapstructure:"username"             yaml:"username" json:"username"`
	Password           string        `mapstructure:"password"             yaml:"password" json:"-"`
	From               string        `mapstructure:"from"                 yaml:"from" json:"from"`
	Timeout            time.Duration `mapstructure:"timeout"              yaml:"timeout" json:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// PreviewConfig holds settings for the local report preview server.
type PreviewConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// Addr returns the listen address.
func (p PreviewConfig) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.bizreport/config.yaml (home directory)
//  3. /etc/bizreport/config.yaml (system)
//
// Environment variables override config file values.
// Format: BIZREPORT_<SECTION>_<KEY>, e.g., BIZREPORT_SMTP_HOST
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".bizreport"))
	v.AddConfigPath("/etc/bizreport")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BIZREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Report defaults
	v.SetDefault("report.output", "report.html")
	v.SetDefault("report.title", "Business Performance Report")

	// SMTP defaults (Gmail over SMTPS)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", "30s")
	v.SetDefault("smtp.insecure_skip_verify", false)

	// Preview defaults
	v.SetDefault("preview.host", "127.0.0.1")
	v.SetDefault("preview.port", 8080)
	v.SetDefault("preview.cors_origins", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if pw := os.Getenv("BIZREPORT_SMTP_PASSWORD"); pw != "" {
		cfg.SMTP.Password = pw
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
