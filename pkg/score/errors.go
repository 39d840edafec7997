package score

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error surfaced by the score packages matches exactly
// one of these through errors.Is.
var (
	ErrMalformedDocument      = errors.New("score: malformed document")
	ErrMissingField           = errors.New("score: missing field")
	ErrTypeMismatch           = errors.New("score: type mismatch")
	ErrUnknownElementType     = errors.New("score: unknown element type")
	ErrUnsupportedElementType = errors.New("score: unsupported element type")
	ErrInvalidPitch           = errors.New("score: invalid pitch")
	ErrInvalidNoteName        = errors.New("score: invalid note name")
	ErrInvalidDuration        = errors.New("score: invalid duration")
	ErrInvalidDotted          = errors.New("score: invalid dotted count")
)

// Error locates a failure inside a document. Kind is one of the sentinel
// errors above; Path is a JSON-style path such as
// "songs[0].sheetMusic[1].staves[0]".
type Error struct {
	Kind   error
	Path   string
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf returns an *Error of the given kind with a formatted detail.
func Errorf(kind error, path, format string, args ...any) error {
	return &Error{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// At re-roots err at path. Non-*Error values are wrapped as-is.
func At(err error, path string) error {
	var se *Error
	if errors.As(err, &se) {
		if se.Path == "" {
			return &Error{Kind: se.Kind, Path: path, Detail: se.Detail}
		}
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
