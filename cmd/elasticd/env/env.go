// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package env layers the daemon settings: flags override ELASTIC_ prefixed
// environment variables, which override the config file.
package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/elastic/utils"
)

const (
	Prefix = "ELASTIC"

	ConfigFileKey = "config-file"
	EnvFileKey    = "env-file"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ConfigFileKey, "", "Optional JSON, YAML or TOML file holding flag values")
	flags.String(EnvFileKey, ".env", "Optional dotenv file loaded into the environment")
}

// Load returns the settings of flags. Variables of the env file do not
// override variables already present in the environment.
func Load(flags *pflag.FlagSet) (*viper.Viper, error) {
	envFile, err := flags.GetString(EnvFileKey)
	if err != nil {
		return nil, err
	}
	if envFile = utils.ExpandHome(envFile); utils.FileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if configFile := v.GetString(ConfigFileKey); configFile != "" {
		v.SetConfigFile(utils.ExpandHome(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// ReadFile reads the file named by key. An unset key returns nil.
func ReadFile(v *viper.Viper, key string) ([]byte, error) {
	name := v.GetString(key)
	if name == "" {
		return nil, nil
	}
	b, err := os.ReadFile(utils.ExpandHome(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return b, nil
}
