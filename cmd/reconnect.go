// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"time"

	"github.com/Thermoquad/tirestat/pkg/edge"
)

const (
	reconnectBackoff    = 1 * time.Second
	reconnectMaxBackoff = 30 * time.Second
)

// openFunc opens a fresh edge source
type openFunc func() (edge.Source, string, error)

// runSupervised runs the session and reopens the source whenever the
// connection drops. It returns when ctx is done or a file source ends.
func (s *session) runSupervised(ctx context.Context, open openFunc) error {
	for {
		err := s.run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if _, isFile := s.source.(*edge.FileSource); isFile {
			return err
		}

		logger.Warn().Err(err).Str("source", s.source.String()).Msg("connection lost")
		s.source.Close()

		if !s.reconnect(ctx, open) {
			return nil
		}
	}
}

// reconnect retries open with exponential backoff.
// Returns false if ctx ended first.
func (s *session) reconnect(ctx context.Context, open openFunc) bool {
	backoff := reconnectBackoff

	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		src, connInfo, err := open()
		if err == nil {
			s.source = src
			s.receiver.Reset()
			if s.hopper != nil {
				if tuner, ok := src.(edge.Tuner); ok {
					s.tuner = tuner
				}
			}
			logger.Info().Str("source", connInfo).Msg("reconnected")
			return true
		}

		logger.Debug().Err(err).Dur("backoff", backoff).Msg("reconnect failed")

		backoff *= 2
		if backoff > reconnectMaxBackoff {
			backoff = reconnectMaxBackoff
		}
	}
}
