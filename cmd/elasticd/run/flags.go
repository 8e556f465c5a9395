// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/luxfi/elastic/api/server"
	"github.com/luxfi/elastic/cmd/elasticd/env"
	"github.com/luxfi/elastic/utils"
	"github.com/luxfi/elastic/utils/profiler"
)

const (
	GenesisFileKey       = "genesis-file"
	VMConfigFileKey      = "vm-config-file"
	HTTPHostKey          = "http-host"
	HTTPPortKey          = "http-port"
	AllowedOriginsKey    = "http-allowed-origins"
	ShutdownTimeoutKey   = "http-shutdown-timeout"
	ReadHeaderTimeoutKey = "http-read-header-timeout"
	IdleTimeoutKey       = "http-idle-timeout"
	SnapshotFileKey      = "snapshot-file"
	SnapshotCompressKey  = "snapshot-compress"
	ProfileDirKey        = "profile-dir"
	ProfileFreqKey       = "profile-freq"
	ProfileMaxFilesKey   = "profile-max-files"
)

var (
	errMissingGenesis         = errors.New("missing genesis file")
	errInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
)

func AddFlags(flags *pflag.FlagSet) {
	env.AddFlags(flags)
	flags.String(GenesisFileKey, "", "JSON genesis of the ledger (required)")
	flags.String(VMConfigFileKey, "", "JSON config of the ledger")
	flags.String(HTTPHostKey, "127.0.0.1", "Address the HTTP server listens on")
	flags.Uint16(HTTPPortKey, 9650, "Port the HTTP server listens on")
	flags.StringSlice(AllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin requests")
	flags.Duration(ShutdownTimeoutKey, 10*time.Second, "Time to wait for in-flight requests on shutdown")
	flags.Duration(ReadHeaderTimeoutKey, 30*time.Second, "Maximum duration to read request headers")
	flags.Duration(IdleTimeoutKey, 120*time.Second, "Maximum duration to wait for the next keep-alive request")
	flags.String(SnapshotFileKey, "", "File the ledger snapshot is written to on shutdown")
	flags.Bool(SnapshotCompressKey, false, "Compress the shutdown snapshot with zstd")
	flags.String(ProfileDirKey, "", "Directory continuous profiles are written to, profiling is off when empty")
	flags.Duration(ProfileFreqKey, 15*time.Minute, "Period of each continuous profile")
	flags.Int(ProfileMaxFilesKey, 5, "Number of continuous profiles kept")
}

type Config struct {
	GenesisBytes     []byte
	VMConfigBytes    []byte
	HTTPHost         string
	HTTPPort         uint16
	Server           server.Config
	SnapshotFile     string
	SnapshotCompress bool
	Profile          profiler.Config
}

func ParseFlags(flags *pflag.FlagSet, args []string) (Config, error) {
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v, err := env.Load(flags)
	if err != nil {
		return Config{}, err
	}

	genesisBytes, err := env.ReadFile(v, GenesisFileKey)
	if err != nil {
		return Config{}, err
	}
	if len(genesisBytes) == 0 {
		return Config{}, errMissingGenesis
	}
	vmConfigBytes, err := env.ReadFile(v, VMConfigFileKey)
	if err != nil {
		return Config{}, err
	}

	profileDir := v.GetString(ProfileDirKey)
	config := Config{
		GenesisBytes:  genesisBytes,
		VMConfigBytes: vmConfigBytes,
		HTTPHost:      v.GetString(HTTPHostKey),
		HTTPPort:      v.GetUint16(HTTPPortKey),
		Server: server.Config{
			HTTPConfig: server.HTTPConfig{
				ReadHeaderTimeout: v.GetDuration(ReadHeaderTimeoutKey),
				IdleTimeout:       v.GetDuration(IdleTimeoutKey),
			},
			AllowedOrigins:  v.GetStringSlice(AllowedOriginsKey),
			ShutdownTimeout: v.GetDuration(ShutdownTimeoutKey),
			ServerName:      "elasticd",
		},
		SnapshotFile:     utils.ExpandHome(v.GetString(SnapshotFileKey)),
		SnapshotCompress: v.GetBool(SnapshotCompressKey),
		Profile: profiler.Config{
			Dir:         utils.ExpandHome(profileDir),
			Enabled:     profileDir != "",
			Freq:        v.GetDuration(ProfileFreqKey),
			MaxNumFiles: v.GetInt(ProfileMaxFilesKey),
		},
	}
	if config.Server.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidShutdownTimeout, config.Server.ShutdownTimeout)
	}
	return config, nil
}
