// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package compression

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZstdCompressor(t *testing.T) {
	require := require.New(t)

	c, err := NewZstdCompressor(1024)
	require.NoError(err)

	msg := bytes.Repeat([]byte("elastic"), 100)
	compressed, err := c.Compress(msg)
	require.NoError(err)
	require.Less(len(compressed), len(msg))

	decompressed, err := c.Decompress(compressed)
	require.NoError(err)
	require.Equal(msg, decompressed)
}

func TestZstdCompressorSizeLimits(t *testing.T) {
	require := require.New(t)

	_, err := NewZstdCompressor(math.MaxInt64)
	require.ErrorIs(err, ErrInvalidMaxSizeCompressor)
	_, err = NewZstdCompressor(0)
	require.ErrorIs(err, ErrInvalidMaxSizeCompressor)

	small, err := NewZstdCompressor(16)
	require.NoError(err)
	_, err = small.Compress(make([]byte, 17))
	require.ErrorIs(err, ErrMsgTooLarge)

	large, err := NewZstdCompressor(1024)
	require.NoError(err)
	compressed, err := large.Compress(make([]byte, 1024))
	require.NoError(err)
	_, err = small.Decompress(compressed)
	require.ErrorIs(err, ErrDecompressedMsgTooLarge)
}
