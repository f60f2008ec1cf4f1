package hic

import (
	"fmt"
)

// Error codes, one per failure condition of a query.
const (
	CodeFormat              = "FORMAT"
	CodeUnsupportedVersion  = "UNSUPPORTED_VERSION"
	CodePairNotFound        = "PAIR_NOT_FOUND"
	CodeZoomLevelNotFound   = "ZOOM_LEVEL_NOT_FOUND"
	CodeNormVectorNotFound  = "NORM_VECTOR_NOT_FOUND"
	CodeCorruptBlock        = "CORRUPT_BLOCK"
	CodeUnsupportedEncoding = "UNSUPPORTED_ENCODING"
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeChromosomeNotFound  = "CHROMOSOME_NOT_FOUND"
	CodeIO                  = "IO"
	CodeEOF                 = "EOF"
)

var (
	// ErrFormat is returned when the magic string is not "HIC"
	ErrFormat = &Error{Code: CodeFormat, Message: "not a HiC format file"}

	// ErrUnsupportedVersion is returned for files older than version 6
	ErrUnsupportedVersion = &Error{Code: CodeUnsupportedVersion, Message: "hic version no longer supported"}

	// ErrPairNotFound is returned when the master index has no chr_chr entry
	ErrPairNotFound = &Error{Code: CodePairNotFound, Message: "chromosome pair not found in master index"}

	// ErrZoomLevelNotFound is returned when a matrix has no zoom level for the unit and resolution
	ErrZoomLevelNotFound = &Error{Code: CodeZoomLevelNotFound, Message: "zoom level not found"}

	// ErrNormVectorNotFound is returned when a normalization vector is missing or too short
	ErrNormVectorNotFound = &Error{Code: CodeNormVectorNotFound, Message: "normalization vector not found"}

	// ErrCorruptBlock is returned when a block cannot be inflated or decoded
	ErrCorruptBlock = &Error{Code: CodeCorruptBlock, Message: "corrupt block"}

	// ErrUnsupportedEncoding is returned for an unknown block encoding type
	ErrUnsupportedEncoding = &Error{Code: CodeUnsupportedEncoding, Message: "unsupported block encoding"}

	// ErrInvalidParameter is returned for a bad norm, unit, matrix type or locus
	ErrInvalidParameter = &Error{Code: CodeInvalidParameter, Message: "invalid parameter"}

	// ErrChromosomeNotFound is returned when a chromosome name is not in the header
	ErrChromosomeNotFound = &Error{Code: CodeChromosomeNotFound, Message: "chromosome not found"}

	// ErrIO is returned when the byte source fails
	ErrIO = &Error{Code: CodeIO, Message: "i/o error"}

	// ErrEOF is returned on a short read
	ErrEOF = &Error{Code: CodeEOF, Message: "unexpected end of file"}
)

// Error is the error type of every failure surfaced by this package.
// Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Code    string
	Message string
	Cause   error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// ErrorCode extracts the code of the first *Error in err's chain.
func ErrorCode(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			c, ok := err.(interface{ Cause() error })
			if !ok {
				return ""
			}
			err = c.Cause()
			continue
		}
		err = u.Unwrap()
	}
	return ""
}
