// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package publish

import (
	"sync"

	"github.com/Thermoquad/tirestat/pkg/tpms"
)

// FakePublisher records published readings for test assertions
type FakePublisher struct {
	mu sync.Mutex

	// Prefix is used to compute Topics
	Prefix string

	// Readings contains every reading that was published
	Readings []*tpms.Reading

	// Topics and Payloads parallel Readings
	Topics   []string
	Payloads [][]byte

	// PublishError, if set, is returned by Publish
	PublishError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePublisher creates a FakePublisher
func NewFakePublisher(prefix string) *FakePublisher {
	return &FakePublisher{Prefix: prefix}
}

// Publish records the reading
func (f *FakePublisher) Publish(r *tpms.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(r)
	if err != nil {
		return err
	}
	f.Readings = append(f.Readings, r)
	f.Topics = append(f.Topics, Topic(f.Prefix, r))
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Count returns the number of published readings
func (f *FakePublisher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Readings)
}
