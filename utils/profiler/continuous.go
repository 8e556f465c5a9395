// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package profiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/log"
)

var errInvalidFrequency = errors.New("profile frequency must be positive")

// Config for the continuous profiler.
type Config struct {
	Dir         string        `json:"dir"`
	Enabled     bool          `json:"enabled"`
	Freq        time.Duration `json:"freq"`
	MaxNumFiles int           `json:"maxNumFiles"`
}

// Continuous captures a new set of profiles every period, keeping the last
// MaxNumFiles of each.
type Continuous struct {
	profiler    *profiler
	clock       clockwork.Clock
	freq        time.Duration
	maxNumFiles int
}

func NewContinuous(logger log.Logger, config Config, clock clockwork.Clock) (*Continuous, error) {
	if config.Freq <= 0 {
		return nil, errInvalidFrequency
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Continuous{
		profiler:    newProfiler(logger, config.Dir),
		clock:       clock,
		freq:        config.Freq,
		maxNumFiles: config.MaxNumFiles,
	}, nil
}

// Dispatch profiles until ctx is cancelled. The profiles of the final period
// are written before returning.
func (p *Continuous) Dispatch(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.freq)
	defer ticker.Stop()

	for {
		if err := p.profiler.StartCPUProfiler(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return p.stop()
		case <-ticker.Chan():
			if err := p.stop(); err != nil {
				return err
			}
		}

		if err := p.rotate(); err != nil {
			return err
		}
	}
}

func (p *Continuous) stop() error {
	g := errgroup.Group{}
	g.Go(p.profiler.StopCPUProfiler)
	g.Go(p.profiler.MemoryProfile)
	g.Go(p.profiler.LockProfile)
	return g.Wait()
}

func (p *Continuous) rotate() error {
	g := errgroup.Group{}
	for _, name := range []string{
		p.profiler.cpuProfileName,
		p.profiler.memProfileName,
		p.profiler.lockProfileName,
	} {
		g.Go(func() error {
			return rotate(name, p.maxNumFiles)
		})
	}
	return g.Wait()
}

// rotate shifts name.i to name.i+1 and name to name.1, dropping the oldest
// file past maxNumFiles.
func rotate(name string, maxNumFiles int) error {
	for i := maxNumFiles - 1; i > 0; i-- {
		src := fmt.Sprintf("%s.%d", name, i)
		dst := fmt.Sprintf("%s.%d", name, i+1)
		if err := renameIfExists(src, dst); err != nil {
			return err
		}
	}
	return renameIfExists(name, name+".1")
}

func renameIfExists(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	return os.Rename(src, dst)
}
