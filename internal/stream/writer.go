// Package stream implements the single-file streaming recording format:
// a format identifier, followed by an append-only sequence of records
// with absolute timestamps, terminated by an End record. It carries no
// in-memory aggregation beyond a small I/O buffer and is intended for a
// single-threaded producer.
package stream

import (
	"bufio"
	"io"

	"rfr/internal/identifier"
	"rfr/internal/schema"
	"rfr/internal/wire"
)

// Writer appends records to a single streaming recording file.
type Writer struct {
	out         *bufio.Writer
	recordCount int
	closed      bool
}

// NewWriter wraps w, immediately writing the format identifier header.
func NewWriter(w io.Writer) (*Writer, error) {
	buffered := bufio.NewWriter(w)
	id := identifier.Current(identifier.VariantStreaming)
	enc := wire.NewWriter()
	id.Encode(enc)
	if _, err := buffered.Write(enc.Bytes()); err != nil {
		return nil, err
	}
	return &Writer{out: buffered}, nil
}

// WriteRecord appends a single record's encoding to the stream.
func (sw *Writer) WriteRecord(rec schema.StreamRecord) error {
	if sw.closed {
		return io.ErrClosedPipe
	}
	enc := wire.NewWriter()
	rec.Encode(enc)
	if _, err := sw.out.Write(enc.Bytes()); err != nil {
		return err
	}
	sw.recordCount++
	return nil
}

// RecordCount returns how many records have been written so far
// (excluding the terminal End record).
func (sw *Writer) RecordCount() int { return sw.recordCount }

// Close writes the terminal End record and flushes the underlying
// buffer. After Close, WriteRecord returns io.ErrClosedPipe.
func (sw *Writer) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	enc := wire.NewWriter()
	schema.StreamRecord{
		Meta: schema.StreamMeta{Timestamp: schema.AbsTimestamp{}},
		Data: schema.NewStreamEnd(),
	}.Encode(enc)
	if _, err := sw.out.Write(enc.Bytes()); err != nil {
		return err
	}
	return sw.out.Flush()
}

// Flush pushes buffered bytes to the underlying writer without emitting
// an End record.
func (sw *Writer) Flush() error { return sw.out.Flush() }
