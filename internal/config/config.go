// Package config loads benchshare settings from defaults, an optional YAML
// file, BENCHSHARE_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MinSessionKeyLength is the shortest session key serve accepts.
const MinSessionKeyLength = 32

// ErrSessionKey is returned when the session key is missing or too short.
var ErrSessionKey = fmt.Errorf("session_key must be at least %d characters", MinSessionKeyLength)

type Config struct {
	Addr          string `mapstructure:"addr"`
	DSN           string `mapstructure:"dsn"`
	SessionKey    string `mapstructure:"session_key"`
	LogLevel      string `mapstructure:"log_level"`
	Dev           bool   `mapstructure:"dev"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("dsn", "benchshare.db")
	v.SetDefault("session_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("dev", false)
	v.SetDefault("secure_cookies", false)

	v.SetEnvPrefix("BENCHSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every flag in fs to the key of the same name, with dashes
// read as underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

// Load reads the config file, if one is given, and decodes the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings serve needs.
func (c Config) Validate() error {
	var errs []error
	if len(c.SessionKey) < MinSessionKeyLength {
		errs = append(errs, ErrSessionKey)
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn must not be empty"))
	}
	return errors.Join(errs...)
}
