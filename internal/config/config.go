// Package config resolves the single ambient setting the REPL cares about:
// log verbosity. Precedence is CLI flag > config file > default, following
// viper's normal layering.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the fully-resolved set of ambient settings.
type Config struct {
	LogLevel logrus.Level
}

// Load resolves Config from (in priority order) an explicit --log-level
// flag value, the DB_LOG_LEVEL environment variable, a
// db-tutorial.yaml/.json/.toml config file on the usual search path, and
// finally "info".
// flagLevel may be empty, meaning "flag not set".
func Load(flagLevel string) (Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetEnvPrefix("db")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("db-tutorial")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, errors.Wrap(err, "read config file")
		}
	}

	if flagLevel != "" {
		v.Set("log_level", flagLevel)
	}

	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse log_level %q", v.GetString("log_level"))
	}

	return Config{LogLevel: level}, nil
}
