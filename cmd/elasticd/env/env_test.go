// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const portKey = "http-port"

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	flags.Uint16(portKey, 9650, "port")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	t.Chdir(t.TempDir())
	v, err := Load(newFlags(t))
	require.NoError(err)
	require.Equal(uint16(9650), v.GetUint16(portKey))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "elasticd.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("http-port: 1000\n"), 0o600))
	envFile := filepath.Join(dir, "elasticd.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ELASTIC_HTTP_PORT=3000\n"), 0o600))

	tests := []struct {
		name         string
		args         []string
		environment  map[string]string
		expectedPort uint16
	}{
		{
			name:         "config file",
			args:         []string{"--config-file", configFile, "--env-file", ""},
			expectedPort: 1000,
		},
		{
			name:         "environment over config file",
			args:         []string{"--config-file", configFile, "--env-file", ""},
			environment:  map[string]string{"ELASTIC_HTTP_PORT": "2000"},
			expectedPort: 2000,
		},
		{
			name:         "env file over config file",
			args:         []string{"--config-file", configFile, "--env-file", envFile},
			expectedPort: 3000,
		},
		{
			name:         "environment over env file",
			args:         []string{"--env-file", envFile},
			environment:  map[string]string{"ELASTIC_HTTP_PORT": "2000"},
			expectedPort: 2000,
		},
		{
			name:         "flag over everything",
			args:         []string{"--config-file", configFile, "--env-file", envFile, "--http-port", "4000"},
			environment:  map[string]string{"ELASTIC_HTTP_PORT": "2000"},
			expectedPort: 4000,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Setenv restores the variable, including one set by the env file.
			t.Setenv("ELASTIC_HTTP_PORT", "")
			require.NoError(t, os.Unsetenv("ELASTIC_HTTP_PORT"))
			for k, v := range test.environment {
				t.Setenv(k, v)
			}

			v, err := Load(newFlags(t, test.args...))
			require.NoError(t, err)
			require.Equal(t, test.expectedPort, v.GetUint16(portKey))
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config-file", filepath.Join(t.TempDir(), "missing.yaml"), "--env-file", ""))
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	require := require.New(t)

	name := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(os.WriteFile(name, []byte("{}"), 0o600))

	flags := newFlags(t, "--config-file", "", "--env-file", "")
	flags.String("genesis-file", "", "genesis")
	flags.String("other-file", "", "other")
	require.NoError(flags.Set("genesis-file", name))
	v, err := Load(flags)
	require.NoError(err)

	b, err := ReadFile(v, "genesis-file")
	require.NoError(err)
	require.Equal([]byte("{}"), b)

	b, err = ReadFile(v, "other-file")
	require.NoError(err)
	require.Nil(b)

	require.NoError(flags.Set("other-file", filepath.Join(t.TempDir(), "missing")))
	_, err = ReadFile(v, "other-file")
	require.Error(err)
}
