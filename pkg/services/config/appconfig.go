package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server holds the HTTP listen address parts.
type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// App is the dashboard configuration. Every field has a default; a config
// file is optional and DATALENS_* environment variables override both.
type App struct {
	Server         Server        `mapstructure:"server"`
	ChartDir       string        `mapstructure:"chart_dir"`
	ExportDir      string        `mapstructure:"export_dir"`
	LocaleDir      string        `mapstructure:"locale_dir"`
	DefaultLocale  string        `mapstructure:"default_locale"`
	InsightTimeout time.Duration `mapstructure:"insight_timeout"`
}

// Load reads the config file at path when path is non-empty, otherwise runs
// on defaults and environment overrides alone.
func Load(path string) (*App, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("chart_dir", "./charts")
	v.SetDefault("export_dir", "./exports")
	v.SetDefault("locale_dir", "./locales")
	v.SetDefault("default_locale", "en")
	v.SetDefault("insight_timeout", 30*time.Second)

	v.SetEnvPrefix("DATALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
