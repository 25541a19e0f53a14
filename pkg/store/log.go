// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// LogMagic opens every session log
const LogMagic = "tirestat-log"

// ErrNotLog is returned when a file does not start with a session header
var ErrNotLog = errors.New("not a session log")

// SessionHeader is the first item of a session log
type SessionHeader struct {
	Magic   string `cbor:"1,keyasint"`
	Version int    `cbor:"2,keyasint"`
	Session string `cbor:"3,keyasint"`
	Started int64  `cbor:"4,keyasint"`
}

// NewSessionID returns a fresh session identifier
func NewSessionID() string {
	return uuid.New().String()
}

// IsCompressed reports whether a log path uses zstd compression
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

//////////////////////////////////////////////////////////////
// Writer
//////////////////////////////////////////////////////////////

// LogWriter appends CBOR records to a session log
type LogWriter struct {
	header SessionHeader
	w      *bufio.Writer
	zw     *zstd.Encoder
	closer io.Closer
	enc    *cbor.Encoder
	count  int
}

// NewLogWriter starts a session log on w and flushes the header. With
// compress, the stream is zstd compressed.
func NewLogWriter(w io.Writer, session string, compress bool) (*LogWriter, error) {
	l := &LogWriter{
		header: SessionHeader{
			Magic:   LogMagic,
			Version: 1,
			Session: session,
			Started: time.Now().Unix(),
		},
	}

	if compress {
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		l.zw = zw
		w = zw
	}

	l.w = bufio.NewWriter(w)
	l.enc = cbor.NewEncoder(l.w)
	err := l.enc.Encode(l.header)
	if err == nil {
		err = l.Flush()
	}
	if err != nil {
		if l.zw != nil {
			l.zw.Close()
		}
		return nil, fmt.Errorf("failed to write log header: %w", err)
	}
	return l, nil
}

// CreateLog creates a session log file; a .zst suffix enables compression
func CreateLog(path, session string) (*LogWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	l, err := NewLogWriter(f, session, IsCompressed(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	l.closer = f
	return l, nil
}

// Append writes one record
func (l *LogWriter) Append(rec *tpms.Record) error {
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	l.count++
	return nil
}

// Flush pushes buffered records to the underlying writer
func (l *LogWriter) Flush() error {
	if err := l.w.Flush(); err != nil {
		return err
	}
	if l.zw != nil {
		return l.zw.Flush()
	}
	return nil
}

// Count returns the number of records appended
func (l *LogWriter) Count() int {
	return l.count
}

// Header returns the session header
func (l *LogWriter) Header() SessionHeader {
	return l.header
}

// Close flushes and closes the log
func (l *LogWriter) Close() error {
	err := l.w.Flush()
	if l.zw != nil {
		if zerr := l.zw.Close(); err == nil {
			err = zerr
		}
	}
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

//////////////////////////////////////////////////////////////
// Reader
//////////////////////////////////////////////////////////////

// LogReader iterates over the records of a session log
type LogReader struct {
	header SessionHeader
	dec    *cbor.Decoder
	zr     *zstd.Decoder
	closer io.Closer
}

// NewLogReader reads the session header from r
func NewLogReader(r io.Reader, compressed bool) (*LogReader, error) {
	l := &LogReader{}

	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		l.zr = zr
		r = zr
	}

	l.dec = cbor.NewDecoder(bufio.NewReader(r))
	if err := l.dec.Decode(&l.header); err != nil {
		l.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotLog, err)
	}
	if l.header.Magic != LogMagic {
		l.Close()
		return nil, fmt.Errorf("%w: magic %q", ErrNotLog, l.header.Magic)
	}
	return l, nil
}

// OpenLog opens a session log file
func OpenLog(path string) (*LogReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	l, err := NewLogReader(f, IsCompressed(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.closer = f
	return l, nil
}

// Header returns the session header
func (l *LogReader) Header() SessionHeader {
	return l.header
}

// Next returns the next record, or io.EOF
func (l *LogReader) Next() (*tpms.Record, error) {
	var rec tpms.Record
	if err := l.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

// Close releases the reader
func (l *LogReader) Close() error {
	if l.zr != nil {
		l.zr.Close()
	}
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ReadLog reads a whole session log
func ReadLog(path string) (SessionHeader, []*tpms.Record, error) {
	l, err := OpenLog(path)
	if err != nil {
		return SessionHeader{}, nil, err
	}
	defer l.Close()

	var records []*tpms.Record
	for {
		rec, err := l.Next()
		if err == io.EOF {
			return l.header, records, nil
		}
		if err != nil {
			return l.header, records, err
		}
		records = append(records, rec)
	}
}
