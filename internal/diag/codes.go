package diag

import "fmt"

// Code is a compact, stable identifier for a kind of recording-reader
// or recording-writer finding.
type Code uint16

const (
	UnknownCode Code = 0

	// Wire-level decode failures (internal/wire, internal/stream).
	CodecTruncated         Code = 1000 // input ended mid-value
	CodecOverlongVarint    Code = 1001 // varint used more bytes than its value required
	CodecInvalidUTF8       Code = 1002 // decoded string is not valid UTF-8
	CodecLengthOutOfBounds Code = 1003 // length prefix exceeds remaining input

	// Format/version compatibility (internal/identifier).
	UnsupportedFormat  Code = 2000 // format identifier variant does not match the reader
	UnsupportedVersion Code = 2001 // major version is newer than the reader supports

	// Chunked-container structural issues (internal/chunked, internal/engine).
	RecordOutsideInterval    Code = 3000 // record timestamp falls outside its chunk interval
	SequenceOutOfOrder       Code = 3001 // record observed with an earlier timestamp than a prior one in the same sequence
	DuplicateCallsite        Code = 3002 // callsite id registered more than once
	UnknownCallsite          Code = 3003 // record references a callsite id absent from callsites.rfr
	PartialChunk             Code = 3004 // chunk file ended before its declared sequence-chunk count was reached
	MissingFormatIdentifiers Code = 3005 // meta.rfr carries an empty format identifier list

	// I/O (any package performing file access).
	IOFailure Code = 4000
)

var codeDescription = map[Code]string{
	UnknownCode:              "unknown error",
	CodecTruncated:           "input ended before a value finished decoding",
	CodecOverlongVarint:      "varint encoded using more bytes than necessary",
	CodecInvalidUTF8:         "decoded string is not valid UTF-8",
	CodecLengthOutOfBounds:   "length prefix exceeds the remaining input",
	UnsupportedFormat:        "file's format identifier variant does not match the reader",
	UnsupportedVersion:       "file was written by a newer, incompatible format version",
	RecordOutsideInterval:    "record timestamp falls outside its chunk interval",
	SequenceOutOfOrder:       "record timestamp precedes an earlier record in the same sequence",
	DuplicateCallsite:        "callsite id registered more than once",
	UnknownCallsite:          "record references a callsite id not present in callsites.rfr",
	PartialChunk:             "chunk file ended before its declared sequence-chunk count was reached",
	MissingFormatIdentifiers: "meta.rfr carries an empty format identifier list",
	IOFailure:                "I/O failure reading or writing a recording file",
}

// ID returns the code's stable string form, grouped by the thousands
// digit into a short category prefix.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CDC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CHK%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// Title returns the human-readable description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
