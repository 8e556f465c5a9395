// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/luxfi/elastic/utils/compression"
)

const (
	filePerms = 0o600

	// MaxSize bounds a decompressed snapshot.
	MaxSize = 1 << 30
)

// NewCompressor returns the compressor used for compressed snapshot files.
func NewCompressor() (compression.Compressor, error) {
	return compression.NewZstdCompressor(MaxSize)
}

// WriteFile atomically replaces name with the encoded snapshot. The bytes are
// compressed when c is non-nil.
func WriteFile(name string, s *Snapshot, c compression.Compressor) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	if c != nil {
		b, err = c.Compress(b)
		if err != nil {
			return fmt.Errorf("failed to compress snapshot: %w", err)
		}
	}
	return renameio.WriteFile(name, b, filePerms)
}

// ReadFile parses a snapshot written by WriteFile with the same compressor.
func ReadFile(name string, c compression.Compressor) (*Snapshot, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if c != nil {
		b, err = c.Decompress(b)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
	}
	return Parse(b)
}
