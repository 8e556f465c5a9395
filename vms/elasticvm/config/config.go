// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the elastic VM.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// ImplementationV2 counts only burned tokens towards the burn cycle.
	ImplementationV2 = "v2"
	// ImplementationV1 counts both the fee and the burn towards the burn
	// cycle.
	ImplementationV1 = "v1"
)

var (
	ErrInvalidEventHistory = errors.New("event history must be positive")
	ErrInvalidEventLimit   = errors.New("max events per request must be positive")
)

// Config contains configuration parameters for the elastic VM.
type Config struct {
	// Implementation selects the active ledger rules
	Implementation string `json:"implementation"`

	// EventHistory is the number of ledger events kept in memory
	EventHistory int `json:"eventHistory"`
	// MaxEventsPerRequest caps the events returned by a single API call
	MaxEventsPerRequest int `json:"maxEventsPerRequest"`
}

// DefaultConfig returns the default configuration for the elastic VM.
func DefaultConfig() Config {
	return Config{
		Implementation:      ImplementationV2,
		EventHistory:        4096,
		MaxEventsPerRequest: 256,
	}
}

// Parse overlays configBytes on the defaults. Empty bytes yield the
// defaults.
func Parse(configBytes []byte) (Config, error) {
	c := DefaultConfig()
	if len(configBytes) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(configBytes, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return c, c.Verify()
}

func (c Config) Verify() error {
	switch {
	case c.EventHistory <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidEventHistory, c.EventHistory)
	case c.MaxEventsPerRequest <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidEventLimit, c.MaxEventsPerRequest)
	default:
		return nil
	}
}
