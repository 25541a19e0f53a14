// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build !linux

package edge

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// GPIOSource is only available on Linux
type GPIOSource struct{}

// OpenGPIOSource always fails off Linux
func OpenGPIOSource(chip string, offset int, logger zerolog.Logger) (*GPIOSource, error) {
	return nil, errors.New("gpio capture requires linux")
}

func (s *GPIOSource) Run(ctx context.Context, out chan<- Event) error { return ErrSourceClosed }
func (s *GPIOSource) Close() error                                     { return nil }
func (s *GPIOSource) Dropped() uint64                                  { return 0 }
func (s *GPIOSource) String() string                                   { return "GPIO: unavailable" }
