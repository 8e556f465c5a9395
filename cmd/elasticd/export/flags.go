// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package export

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/luxfi/elastic/cmd/elasticd/env"
	"github.com/luxfi/elastic/utils"
)

const (
	URIKey          = "uri"
	GenesisFileKey  = "genesis-file"
	VMConfigFileKey = "vm-config-file"
	OutputKey       = "output"
	CompressKey     = "compress"
)

var (
	errMissingOutput = errors.New("missing output file")
	errMissingSource = errors.New("either uri or genesis file is required")
	errBothSources   = errors.New("uri and genesis file are exclusive")
)

func AddFlags(flags *pflag.FlagSet) {
	env.AddFlags(flags)
	flags.String(URIKey, "", "API URI of a running daemon, for example http://127.0.0.1:9650/ext/elastic")
	flags.String(GenesisFileKey, "", "JSON genesis to export the initial ledger of")
	flags.String(VMConfigFileKey, "", "JSON config of the ledger built from the genesis")
	flags.String(OutputKey, "", "File the snapshot is written to (required)")
	flags.Bool(CompressKey, false, "Compress the snapshot with zstd")
}

type Config struct {
	URI           string
	GenesisBytes  []byte
	VMConfigBytes []byte
	Output        string
	Compress      bool
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
	vmConfigBytes, err := env.ReadFile(v, VMConfigFileKey)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		URI:           v.GetString(URIKey),
		GenesisBytes:  genesisBytes,
		VMConfigBytes: vmConfigBytes,
		Output:        utils.ExpandHome(v.GetString(OutputKey)),
		Compress:      v.GetBool(CompressKey),
	}
	switch {
	case config.Output == "":
		return Config{}, errMissingOutput
	case config.URI == "" && len(config.GenesisBytes) == 0:
		return Config{}, errMissingSource
	case config.URI != "" && len(config.GenesisBytes) != 0:
		return Config{}, errBothSources
	}
	return config, nil
}
