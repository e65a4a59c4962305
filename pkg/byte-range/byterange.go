// Package byterange parses HTTP Range headers into a normalized,
// size-limited byte range.
//
// Only single ranges of the `bytes` unit are understood. Headers that do
// not match the grammar are ignored rather than rejected: an ignored range
// falls back to a full fetch, which is always safe. Headers that do match
// the grammar but violate a limit are rejected with a ValidationError.
package byterange

import (
	"fmt"
	"strconv"
	"strings"
)

// Form is the shape a Range header normalizes to.
type Form int

const (
	// FormNone means no range was requested (absent or ignored header).
	FormNone Form = iota
	// FormBounded is `bytes=<start>-<end>`, both inclusive.
	FormBounded
	// FormOpen is `bytes=<start>-`, from start to end of object.
	FormOpen
	// FormSuffix is `bytes=-<n>`, the last n bytes of the object.
	FormSuffix
)

// Limits bounds the ranges a caller may request.
type Limits struct {
	// MaxRangeBytes caps the length of a bounded range.
	MaxRangeBytes int64
	// MaxSuffixBytes caps the size of a suffix range.
	// Suffix ranges force the store to seek from the object tail,
	// so this cap is expected to be smaller than MaxRangeBytes.
	MaxSuffixBytes int64
}

// ByteRange is a validated byte range request.
// The zero value means "no range requested".
type ByteRange struct {
	Form  Form
	Start int64 // FormBounded and FormOpen
	End   int64 // FormBounded only, inclusive
	N     int64 // FormSuffix only
}

// IsZero reports whether no range was requested.
func (b ByteRange) IsZero() bool {
	return b.Form == FormNone
}

// Length returns the number of bytes a bounded range covers,
// and 0 for every other form.
func (b ByteRange) Length() int64 {
	if b.Form != FormBounded {
		return 0
	}
	return b.End - b.Start + 1
}

// Header renders the canonical `bytes=` text for the range.
// It returns the empty string for the zero value.
func (b ByteRange) Header() string {
	switch b.Form {
	case FormBounded:
		return fmt.Sprintf("bytes=%d-%d", b.Start, b.End)
	case FormOpen:
		return fmt.Sprintf("bytes=%d-", b.Start)
	case FormSuffix:
		return fmt.Sprintf("bytes=-%d", b.N)
	}
	return ""
}

// ValidationError is returned for ranges that match the grammar but
// violate a limit. The caller must respond 400 and stop processing.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid range: " + e.Reason
}

const bytesUnitPrefix = "bytes="

// Parse normalizes a Range header value.
//
// An absent header, or one that does not match the single-range `bytes=`
// grammar (including multi-range headers), yields the zero ByteRange with
// no error. A grammatical range that violates limits yields a
// *ValidationError.
func Parse(header string, limits Limits) (ByteRange, error) {
	if header == "" {
		return ByteRange{}, nil
	}
	spec, ok := strings.CutPrefix(header, bytesUnitPrefix)
	if !ok {
		return ByteRange{}, nil
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok || strings.Contains(last, ",") {
		return ByteRange{}, nil
	}

	switch {
	case first == "" && last == "":
		return ByteRange{}, nil

	case first == "":
		n, err := parseOffset(last)
		if err != nil {
			return ByteRange{}, nil
		}
		if n > limits.MaxSuffixBytes {
			return ByteRange{}, &ValidationError{Reason: fmt.Sprintf("suffix of %d bytes exceeds limit of %d", n, limits.MaxSuffixBytes)}
		}
		return ByteRange{Form: FormSuffix, N: n}, nil

	case last == "":
		start, err := parseOffset(first)
		if err != nil {
			return ByteRange{}, nil
		}
		// open-ended ranges are unbounded: the store streams to the end
		// of the object and the transport bounds the actual transfer
		return ByteRange{Form: FormOpen, Start: start}, nil

	default:
		start, err := parseOffset(first)
		if err != nil {
			return ByteRange{}, nil
		}
		end, err := parseOffset(last)
		if err != nil {
			return ByteRange{}, nil
		}
		if end < start {
			return ByteRange{}, &ValidationError{Reason: fmt.Sprintf("end %d before start %d", end, start)}
		}
		if length := end - start + 1; length > limits.MaxRangeBytes {
			return ByteRange{}, &ValidationError{Reason: fmt.Sprintf("range of %d bytes exceeds limit of %d", length, limits.MaxRangeBytes)}
		}
		return ByteRange{Form: FormBounded, Start: start, End: end}, nil
	}
}

// parseOffset parses a non-negative decimal offset.
// The grammar cannot produce a negative number, but the sign check guards
// against ranges constructed through other paths.
func parseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative offset %d", v)
	}
	return v, nil
}
