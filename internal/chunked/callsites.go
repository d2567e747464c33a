package chunked

import (
	"bufio"
	"io"
	"os"

	"rfr/internal/identifier"
	"rfr/internal/schema"
	"rfr/internal/wire"
)

// RegistrationResult reports whether PushCallsite added a new entry or
// found that the callsite id was already registered.
type RegistrationResult int

const (
	// Added means the callsite was new and has been appended.
	Added RegistrationResult = iota
	// Duplicate means a callsite with this CallsiteId was already
	// present; the call was a no-op.
	Duplicate
)

// ReadCallsites reads and validates a complete callsites.rfr file,
// tolerating a file that is still growing: each callsite is appended
// back-to-back with no length prefix, so readers simply decode until
// input is exhausted.
func ReadCallsites(r io.Reader) (identifier.FormatIdentifier, []schema.Callsite, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return identifier.FormatIdentifier{}, nil, err
	}
	rd := wire.NewReader(data)
	id, err := identifier.Decode(rd)
	if err != nil {
		return identifier.FormatIdentifier{}, nil, err
	}
	current := identifier.Current(identifier.VariantChunkedCallsites)
	if err := current.CanReadVersion(id); err != nil {
		return identifier.FormatIdentifier{}, nil, err
	}
	var callsites []schema.Callsite
	for rd.Remaining() > 0 {
		c, err := schema.DecodeCallsite(rd)
		if err != nil {
			return identifier.FormatIdentifier{}, nil, err
		}
		callsites = append(callsites, c)
	}
	return id, callsites, nil
}

// CallsitesWriter incrementally writes a callsites.rfr file: new
// callsites are staged with PushCallsite and committed to the
// underlying writer by Flush. Duplicate callsite ids (by CallsiteId)
// are rejected rather than written twice.
type CallsitesWriter struct {
	out     *bufio.Writer
	known   []schema.Callsite
	written int
}

// NewCallsitesWriter wraps w, immediately writing the format identifier
// header.
func NewCallsitesWriter(w io.Writer) (*CallsitesWriter, error) {
	buffered := bufio.NewWriter(w)
	id := identifier.Current(identifier.VariantChunkedCallsites)
	enc := wire.NewWriter()
	id.Encode(enc)
	if _, err := buffered.Write(enc.Bytes()); err != nil {
		return nil, err
	}
	return &CallsitesWriter{out: buffered}, nil
}

// CreateCallsitesWriter creates path and wraps it with NewCallsitesWriter.
func CreateCallsitesWriter(path string) (*CallsitesWriter, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	cw, err := NewCallsitesWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return cw, f, nil
}

// PushCallsite stages callsite to be written on the next Flush, after
// checking for a duplicate CallsiteId among everything already staged
// or flushed.
func (cw *CallsitesWriter) PushCallsite(c schema.Callsite) RegistrationResult {
	for _, existing := range cw.known {
		if existing.CallsiteId == c.CallsiteId {
			return Duplicate
		}
	}
	cw.known = append(cw.known, c)
	return Added
}

// NeedsFlush reports whether any staged callsites remain unwritten.
func (cw *CallsitesWriter) NeedsFlush() bool {
	return cw.written < len(cw.known)
}

// Flush writes every callsite staged since the last Flush and pushes
// buffered bytes to the underlying writer.
func (cw *CallsitesWriter) Flush() error {
	if cw.written >= len(cw.known) {
		return nil
	}
	for _, c := range cw.known[cw.written:] {
		enc := wire.NewWriter()
		c.Encode(enc)
		if _, err := cw.out.Write(enc.Bytes()); err != nil {
			return err
		}
		cw.written++
	}
	return cw.out.Flush()
}
