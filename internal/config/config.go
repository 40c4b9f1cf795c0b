// Package config loads reporter settings and receiver credentials.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/breeze-rmm/system-reporter/internal/collectors"
	"github.com/breeze-rmm/system-reporter/internal/shell"
)

// DefaultConfigDir is searched for system-reporter.yaml before the working directory.
const DefaultConfigDir = "/etc/system-reporter"

// EnvPrefix namespaces environment overrides, e.g. SYSREPORTER_LOG_LEVEL.
const EnvPrefix = "SYSREPORTER"

type Config struct {
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
	SendRetries    int           `mapstructure:"send_retries"`

	CredentialsFile string `mapstructure:"credentials_file"`

	Services     []string              `mapstructure:"services"`
	Applications []collectors.AppWatch `mapstructure:"applications"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		CommandTimeout:  shell.DefaultTimeout,
		SendTimeout:     30 * time.Second,
		SendRetries:     0,
		CredentialsFile: DefaultCredentialsFile,
		Services:        append([]string(nil), collectors.DefaultServices...),
		Applications:    append([]collectors.AppWatch(nil), collectors.DefaultApplications...),
	}
}

// Load reads cfgFile, or system-reporter.yaml from the default search path,
// over Default(). A missing default file is not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("system-reporter")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{
		"log_level", "log_format", "log_file", "log_max_size_mb", "log_max_backups",
		"command_timeout", "send_timeout", "send_retries", "credentials_file",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Configured watchlists replace the defaults rather than merging into them.
	if v.IsSet("services") {
		cfg.Services = nil
	}
	if v.IsSet("applications") {
		cfg.Applications = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
