package hold

import "fmt"

// ErrorKind classifies why a record could not be classified.
type ErrorKind string

const (
	// KindMalformedRecord means a required field is missing or empty, the amplitude and
	// timestamp lengths differ, or the hold length is invalid.
	KindMalformedRecord ErrorKind = "MalformedRecord"

	// KindDegenerateSegment means locating or trimming the plateau produced an empty or
	// unusable segment.
	KindDegenerateSegment ErrorKind = "DegenerateSegment"

	// KindEmptyWindow means the settled window had no samples at evaluation time.
	KindEmptyWindow ErrorKind = "EmptyWindow"

	// KindIdentifierParseFailure means the record id did not follow the device naming
	// convention. It is tolerated and never reported on a Result.
	KindIdentifierParseFailure ErrorKind = "IdentifierParseFailure"
)

// Error is the typed error returned by every stage of the pipeline.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrDegenerateSegment) matches regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for use with errors.Is
var (
	ErrMalformedRecord        = &Error{Kind: KindMalformedRecord}
	ErrDegenerateSegment      = &Error{Kind: KindDegenerateSegment}
	ErrEmptyWindow            = &Error{Kind: KindEmptyWindow}
	ErrIdentifierParseFailure = &Error{Kind: KindIdentifierParseFailure}
)

func malformed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformedRecord, Msg: fmt.Sprintf(format, args...)}
}

func degenerate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDegenerateSegment, Msg: fmt.Sprintf(format, args...)}
}
