package schema

import "rfr/internal/wire"

// MetaHeader is the body of a chunked recording's meta.rfr file: when
// the recording was created and which format identifiers it may contain.
type MetaHeader struct {
	CreatedTime       AbsTimestamp
	FormatIdentifiers []string
}

// Encode writes the meta header.
func (h MetaHeader) Encode(w *wire.Writer) {
	h.CreatedTime.Encode(w)
	w.PutSeqLen(len(h.FormatIdentifiers))
	for _, id := range h.FormatIdentifiers {
		w.PutString(id)
	}
}

// DecodeMetaHeader reads a MetaHeader.
func DecodeMetaHeader(r *wire.Reader) (MetaHeader, error) {
	created, err := DecodeAbsTimestamp(r)
	if err != nil {
		return MetaHeader{}, err
	}
	n, err := r.GetSeqLen()
	if err != nil {
		return MetaHeader{}, err
	}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.GetString()
		if err != nil {
			return MetaHeader{}, err
		}
		ids = append(ids, s)
	}
	return MetaHeader{CreatedTime: created, FormatIdentifiers: ids}, nil
}
