package hxpager

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds process-wide settings, read from the "pager" section of a
// viper configuration.
//
//	pager:
//	  debug: false
//	  log_level: info
//	  log_format: text
//	  addr: ":8080"
//	  key: "change-me"
//	  seal_cursors: false
type Config struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
	Addr      string `json:"addr" yaml:"addr"`
	Key       string `json:"key" yaml:"key"`

	// SealCursors encrypts navigation cursors instead of signing them.
	SealCursors bool `json:"seal_cursors" yaml:"seal_cursors"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pager.debug", false)
	v.SetDefault("pager.log_level", "info")
	v.SetDefault("pager.log_format", "text")
	v.SetDefault("pager.addr", ":8080")
	v.SetDefault("pager.key", "")
	v.SetDefault("pager.seal_cursors", false)
}

// GetConfig reads the configuration from v, falling back to the defaults.
func GetConfig(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Debug:     v.GetBool("pager.debug"),
		LogLevel:  strings.ToLower(v.GetString("pager.log_level")),
		LogFormat: strings.ToLower(v.GetString("pager.log_format")),
		Addr:      v.GetString("pager.addr"),
		Key:       v.GetString("pager.key"),

		SealCursors: v.GetBool("pager.seal_cursors"),
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: log_level %q", ErrConfig, cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("%w: log_format %q", ErrConfig, cfg.LogFormat)
	}
	return cfg, nil
}

// NewLogger builds a logger writing to stderr as configured.
func NewLogger(cfg *Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// Apply installs cfg as the process-wide debug mode and logger.
func (cfg *Config) Apply() error {
	l, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	SetLogger(l)
	SetDebug(cfg.Debug)
	return nil
}
