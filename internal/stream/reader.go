package stream

import (
	"errors"
	"io"
	"os"

	"rfr/internal/identifier"
	"rfr/internal/schema"
	"rfr/internal/wire"
)

// ErrTruncated is returned by Next when the final record in the stream
// is present but incomplete. Records decoded before the truncation point
// remain valid and are not affected.
var ErrTruncated = errors.New("stream: truncated trailing record")

// Reader decodes records from a streaming recording file, in order,
// until an End record or end-of-input.
type Reader struct {
	id  identifier.FormatIdentifier
	r   *wire.Reader
	end bool
}

// Open reads the full contents of path and returns a Reader positioned
// just after the format identifier header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f)
}

// NewReader reads all of r's remaining bytes and returns a Reader
// positioned just after the format identifier header. Unlike a live
// tailing reader, this consumes a snapshot of r's current contents.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wr := wire.NewReader(data)
	id, err := identifier.Decode(wr)
	if err != nil {
		return nil, err
	}
	current := identifier.Current(identifier.VariantStreaming)
	if err := current.CanReadVersion(id); err != nil {
		return nil, err
	}
	return &Reader{id: id, r: wr}, nil
}

// FormatIdentifier returns the identifier read from the file header.
func (sr *Reader) FormatIdentifier() identifier.FormatIdentifier { return sr.id }

// Next decodes the next record. It returns io.EOF once an End record has
// been consumed or the input is exhausted cleanly, and ErrTruncated if a
// partial record remains at the tail.
func (sr *Reader) Next() (schema.StreamRecord, error) {
	if sr.end {
		return schema.StreamRecord{}, io.EOF
	}
	if sr.r.Remaining() == 0 {
		return schema.StreamRecord{}, io.EOF
	}
	rec, err := schema.DecodeStreamRecord(sr.r)
	if err != nil {
		return schema.StreamRecord{}, ErrTruncated
	}
	if rec.IsEnd() {
		sr.end = true
		return rec, io.EOF
	}
	return rec, nil
}

// ReadAll drains the reader, returning every decoded record (excluding
// the terminal End) and reporting whether the stream ended with a
// truncated trailing record rather than a clean End/EOF.
func ReadAll(path string) ([]schema.StreamRecord, bool, error) {
	r, err := Open(path)
	if err != nil {
		return nil, false, err
	}
	var records []schema.StreamRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, false, nil
		}
		if err == ErrTruncated {
			return records, true, nil
		}
		if err != nil {
			return records, false, err
		}
		records = append(records, rec)
	}
}
