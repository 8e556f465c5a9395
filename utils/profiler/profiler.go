// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package profiler captures CPU, heap and mutex profiles of the daemon.
package profiler

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/luxfi/log"
)

const (
	cpuProfileFile  = "cpu.profile"
	memProfileFile  = "mem.profile"
	lockProfileFile = "lock.profile"

	dirPerms  = 0o750
	filePerms = 0o600
)

var (
	_ Profiler = (*profiler)(nil)

	errCPUProfilerRunning    = errors.New("cpu profiler already running")
	errCPUProfilerNotRunning = errors.New("cpu profiler doesn't exist")
	errNoMutexProfile        = errors.New("mutex profile not found")
)

// Profiler provides methods for measuring process performance.
type Profiler interface {
	StartCPUProfiler() error
	StopCPUProfiler() error
	MemoryProfile() error
	LockProfile() error
}

type profiler struct {
	log             log.Logger
	dir             string
	cpuProfileName  string
	memProfileName  string
	lockProfileName string
	cpuProfileFile  *os.File
}

// New returns a Profiler that writes to dir.
func New(logger log.Logger, dir string) Profiler {
	return newProfiler(logger, dir)
}

func newProfiler(logger log.Logger, dir string) *profiler {
	return &profiler{
		log:             logger,
		dir:             dir,
		cpuProfileName:  filepath.Join(dir, cpuProfileFile),
		memProfileName:  filepath.Join(dir, memProfileFile),
		lockProfileName: filepath.Join(dir, lockProfileFile),
	}
}

func (p *profiler) create(name string) (*os.File, error) {
	if err := os.MkdirAll(p.dir, dirPerms); err != nil {
		return nil, err
	}
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, filePerms)
}

func (p *profiler) StartCPUProfiler() error {
	if p.cpuProfileFile != nil {
		return errCPUProfilerRunning
	}

	file, err := p.create(p.cpuProfileName)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		_ = file.Close()
		return err
	}
	p.cpuProfileFile = file
	p.log.Debug("started cpu profiler",
		log.String("file", p.cpuProfileName),
	)
	return nil
}

func (p *profiler) StopCPUProfiler() error {
	if p.cpuProfileFile == nil {
		return errCPUProfilerNotRunning
	}

	pprof.StopCPUProfile()
	err := p.cpuProfileFile.Close()
	p.cpuProfileFile = nil
	return err
}

func (p *profiler) MemoryProfile() error {
	file, err := p.create(p.memProfileName)
	if err != nil {
		return err
	}
	defer file.Close()

	runtime.GC()
	return pprof.WriteHeapProfile(file)
}

func (p *profiler) LockProfile() error {
	profile := pprof.Lookup("mutex")
	if profile == nil {
		return errNoMutexProfile
	}

	file, err := p.create(p.lockProfileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return profile.WriteTo(file, 0)
}
