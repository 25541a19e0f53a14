// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "errors"

var (
	// ErrBitCountMismatch is returned when a frame or record does not have
	// the protocol's fixed width
	ErrBitCountMismatch = errors.New("bit count mismatch")

	// ErrProtocolMismatch is returned when a record names another protocol
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrChecksum is returned when a frame fails its checksum or CRC
	ErrChecksum = errors.New("checksum mismatch")

	// ErrPressureMismatch is returned when redundant pressure fields disagree
	ErrPressureMismatch = errors.New("pressure cross-check failed")

	// ErrNoReading is returned when serializing a decoder that has not decoded anything
	ErrNoReading = errors.New("no reading decoded")

	// ErrEncodeUnsupported is returned for every transmit request
	ErrEncodeUnsupported = errors.New("encoding not supported")
)
