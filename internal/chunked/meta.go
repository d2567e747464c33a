// Package chunked implements the on-disk container format for chunked
// recordings: the recording-wide meta and callsites files, individual
// chunk files, and the directory layout that links them together. It
// holds no engine state of its own — see internal/engine for the
// stateful writer that drives these containers during a live recording.
package chunked

import (
	"errors"
	"io"

	"rfr/internal/identifier"
	"rfr/internal/schema"
	"rfr/internal/wire"
)

// ErrMissingFormatIdentifiers is returned when a meta file's header
// lists no format identifiers at all, leaving a reader unable to tell
// what the rest of the recording is encoded with.
var ErrMissingFormatIdentifiers = errors.New("chunked: meta file has no format identifiers")

// Meta is the parsed contents of a recording's meta.rfr file.
type Meta struct {
	FormatIdentifier identifier.FormatIdentifier
	Header           schema.MetaHeader
}

// NewMeta builds meta file contents recording when the session started
// and which format identifiers the rest of the recording may use. At
// least the chunk-container identifier must be present.
func NewMeta(createdTime schema.AbsTimestamp, formatIdentifiers []string) (Meta, error) {
	if len(formatIdentifiers) == 0 {
		return Meta{}, ErrMissingFormatIdentifiers
	}
	return Meta{
		FormatIdentifier: identifier.Current(identifier.VariantChunkedMeta),
		Header: schema.MetaHeader{
			CreatedTime:       createdTime,
			FormatIdentifiers: formatIdentifiers,
		},
	}, nil
}

// WriteMeta serializes m to w: format identifier header followed by
// the meta header.
func WriteMeta(w io.Writer, m Meta) error {
	enc := wire.NewWriter()
	m.FormatIdentifier.Encode(enc)
	m.Header.Encode(enc)
	_, err := w.Write(enc.Bytes())
	return err
}

// ReadMeta reads and validates a meta.rfr file's full contents.
func ReadMeta(r io.Reader) (Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Meta{}, err
	}
	rd := wire.NewReader(data)
	id, err := identifier.Decode(rd)
	if err != nil {
		return Meta{}, err
	}
	current := identifier.Current(identifier.VariantChunkedMeta)
	if err := current.CanReadVersion(id); err != nil {
		return Meta{}, err
	}
	header, err := schema.DecodeMetaHeader(rd)
	if err != nil {
		return Meta{}, err
	}
	if len(header.FormatIdentifiers) == 0 {
		return Meta{}, ErrMissingFormatIdentifiers
	}
	return Meta{FormatIdentifier: id, Header: header}, nil
}
