package diag

import "fmt"

// Location replaces the compiler's source.Span: a recording carries no
// source text to point into, so a diagnostic instead names the
// container file it came from and, where applicable, the sequence and
// record position within it.
type Location struct {
	// Path is the .rfr file the diagnostic concerns (meta.rfr,
	// callsites.rfr, or a chunk file), relative to the recording root.
	Path string
	// SeqID is the sequence the record belongs to. Zero if the
	// diagnostic is not scoped to a particular sequence.
	SeqID uint64
	// RecordIndex is the position of the record within its sequence's
	// SeqChunk, counting from zero. Negative if not applicable.
	RecordIndex int
}

func (l Location) String() string {
	if l.Path == "" {
		return "<unknown>"
	}
	if l.RecordIndex < 0 {
		return l.Path
	}
	return fmt.Sprintf("%s#seq=%d@%d", l.Path, l.SeqID, l.RecordIndex)
}

// AtFile builds a Location scoped to a whole file, with no sequence or
// record position.
func AtFile(path string) Location {
	return Location{Path: path, RecordIndex: -1}
}

// AtRecord builds a Location scoped to a specific record.
func AtRecord(path string, seqID uint64, index int) Location {
	return Location{Path: path, SeqID: seqID, RecordIndex: index}
}
