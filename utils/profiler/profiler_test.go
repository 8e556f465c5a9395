// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package profiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"
)

func TestProfiler(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	p := New(log.NewNoOpLogger(), dir)

	require.NoError(p.StartCPUProfiler())
	require.ErrorIs(p.StartCPUProfiler(), errCPUProfilerRunning)
	require.NoError(p.StopCPUProfiler())
	require.ErrorIs(p.StopCPUProfiler(), errCPUProfilerNotRunning)
	require.NoError(p.MemoryProfile())
	require.NoError(p.LockProfile())

	for _, name := range []string{cpuProfileFile, memProfileFile, lockProfileFile} {
		require.FileExists(filepath.Join(dir, name))
	}
}

func TestRotate(t *testing.T) {
	require := require.New(t)

	name := filepath.Join(t.TempDir(), "cpu.profile")
	for i := 0; i < 3; i++ {
		require.NoError(os.WriteFile(name, []byte{byte(i)}, filePerms))
		require.NoError(rotate(name, 2))
	}

	require.NoFileExists(name)
	contents, err := os.ReadFile(name + ".1")
	require.NoError(err)
	require.Equal([]byte{2}, contents)
	contents, err = os.ReadFile(name + ".2")
	require.NoError(err)
	require.Equal([]byte{1}, contents)
	require.NoFileExists(name + ".3")
}

func TestNewContinuousInvalid(t *testing.T) {
	_, err := NewContinuous(log.NewNoOpLogger(), Config{}, nil)
	require.ErrorIs(t, err, errInvalidFrequency)
}

func TestContinuousDispatch(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	clock := clockwork.NewFakeClock()
	p, err := NewContinuous(log.NewNoOpLogger(), Config{
		Dir:         dir,
		Enabled:     true,
		Freq:        time.Minute,
		MaxNumFiles: 2,
	}, clock)
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Dispatch(ctx)
	}()

	require.NoError(clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	require.Eventually(func() bool {
		_, err := os.Stat(filepath.Join(dir, memProfileFile+".1"))
		return err == nil
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(<-done)
	require.FileExists(filepath.Join(dir, memProfileFile))
}
