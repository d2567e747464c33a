// Package identifier implements the FormatIdentifier grammar that leads
// every RFR file: "variant/major.minor.patch". It is the very first
// thing a reader decodes and is what lets a reader refuse a file it
// cannot safely interpret.
package identifier

import (
	"fmt"
	"strconv"
	"strings"

	"rfr/internal/wire"
)

// Variant names the four file kinds the core format allocates.
type Variant string

const (
	VariantStreaming        Variant = "rfr-s"
	VariantChunk            Variant = "rfr-c"
	VariantChunkedMeta      Variant = "rfc-cm"
	VariantChunkedCallsites Variant = "rfc-cc"
)

// FormatIdentifier is the self-describing header every RFR file begins
// with: a 1-8 character variant tag plus a semver-like version triple.
type FormatIdentifier struct {
	Variant Variant
	Major   uint64
	Minor   uint64
	Patch   uint64
}

// MaxLength is the normative maximum encoded length in bytes.
const MaxLength = 24

// Current returns the identifier this build of the software writes for
// the given variant.
func Current(v Variant) FormatIdentifier {
	return FormatIdentifier{Variant: v, Major: 0, Minor: 1, Patch: 0}
}

// String renders "variant/major.minor.patch".
func (f FormatIdentifier) String() string {
	return fmt.Sprintf("%s/%d.%d.%d", f.Variant, f.Major, f.Minor, f.Patch)
}

// ErrMalformed is returned by Parse when the input does not match the
// variant/major.minor.patch grammar.
type ErrMalformed struct {
	Input string
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("identifier: malformed format identifier %q", e.Input)
}

// Parse decodes a FormatIdentifier from its string form, validating the
// grammar: variant is 1-8 printable ASCII characters excluding '/', each
// numeric component has no leading zeros (except the literal "0"), and
// the whole string is at most MaxLength bytes.
func Parse(s string) (FormatIdentifier, error) {
	if len(s) == 0 || len(s) > MaxLength {
		return FormatIdentifier{}, &ErrMalformed{Input: s}
	}
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return FormatIdentifier{}, &ErrMalformed{Input: s}
	}
	variant := s[:slash]
	rest := s[slash+1:]
	if len(variant) < 1 || len(variant) > 8 {
		return FormatIdentifier{}, &ErrMalformed{Input: s}
	}
	for i := 0; i < len(variant); i++ {
		if variant[i] < 0x20 || variant[i] > 0x7e {
			return FormatIdentifier{}, &ErrMalformed{Input: s}
		}
	}
	parts := strings.Split(rest, ".")
	if len(parts) != 3 {
		return FormatIdentifier{}, &ErrMalformed{Input: s}
	}
	nums := make([]uint64, 3)
	for i, p := range parts {
		if !isNormalizedDecimal(p) {
			return FormatIdentifier{}, &ErrMalformed{Input: s}
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return FormatIdentifier{}, &ErrMalformed{Input: s}
		}
		nums[i] = n
	}
	return FormatIdentifier{
		Variant: Variant(variant),
		Major:   nums[0],
		Minor:   nums[1],
		Patch:   nums[2],
	}, nil
}

func isNormalizedDecimal(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	return true
}

// CompatibilityError describes why a reader rejected a file's identifier.
type CompatibilityError struct {
	Unsupported bool // true => UnsupportedFormat (unknown variant)
	Reader      FormatIdentifier
	Writer      FormatIdentifier
}

func (e *CompatibilityError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("identifier: unsupported format %q", e.Writer.Variant)
	}
	return fmt.Sprintf("identifier: unsupported version %s (reader supports %s)", e.Writer, e.Reader)
}

// CanReadVersion reports whether a reader identifying as `reader` can
// safely interpret a file written with `writer`'s identifier, following
// the pre-1.0 tightened compatibility rule: variant must match exactly;
// before 1.0.0 the minor version must match exactly; before 0.1.0 the
// patch version must match exactly too; otherwise the reader's minor
// must be >= the writer's minor (new fields are additive and appended).
func (reader FormatIdentifier) CanReadVersion(writer FormatIdentifier) error {
	if reader.Variant != writer.Variant {
		return &CompatibilityError{Unsupported: true, Reader: reader, Writer: writer}
	}
	if reader.Major != writer.Major {
		return &CompatibilityError{Reader: reader, Writer: writer}
	}
	if reader.Major == 0 {
		if reader.Minor != writer.Minor {
			return &CompatibilityError{Reader: reader, Writer: writer}
		}
		if reader.Minor == 0 && reader.Patch != writer.Patch {
			return &CompatibilityError{Reader: reader, Writer: writer}
		}
		return nil
	}
	if reader.Minor < writer.Minor {
		return &CompatibilityError{Reader: reader, Writer: writer}
	}
	return nil
}

// Encode writes the identifier as a length-prefixed wire string.
func (f FormatIdentifier) Encode(w *wire.Writer) {
	w.PutString(f.String())
}

// Decode reads a FormatIdentifier as a length-prefixed wire string.
func Decode(r *wire.Reader) (FormatIdentifier, error) {
	s, err := r.GetString()
	if err != nil {
		return FormatIdentifier{}, err
	}
	return Parse(s)
}
