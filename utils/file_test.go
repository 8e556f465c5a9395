// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	name := filepath.Join(dir, ".env")
	require.False(FileExists(name))
	require.False(FileExists(dir))

	require.NoError(os.WriteFile(name, nil, 0o600))
	require.True(FileExists(name))
}

func TestExpandHome(t *testing.T) {
	require := require.New(t)

	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(home, ExpandHome("~"))
	require.Equal(filepath.Join(home, "snapshots"), ExpandHome("~/snapshots"))
	require.Equal("/var/lib/elastic", ExpandHome("/var/lib/elastic"))
	require.Equal("~other/x", ExpandHome("~other/x"))
}
