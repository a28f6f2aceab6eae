package model

// Error is a coded fffconv error. Errors with the same Code match each
// other under errors.Is, so wrapped instances can be compared against the
// package-level sentinels.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code. A header error is also a
// format error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == codeInvalidHeader && t.Code == codeInvalidFormat
}

const (
	codeInvalidFormat = "invalid_format"
	codeInvalidHeader = "invalid_header"
)

// Common errors
var (
	ErrFormat             = &Error{Code: codeInvalidFormat, Message: "invalid FFF content"}
	ErrInvalidHeader      = &Error{Code: codeInvalidHeader, Message: "invalid FFF header"}
	ErrUnsupportedSubtype = &Error{Code: "unsupported_subtype", Message: "unsupported raw record subtype"}
	ErrMissingProperty    = &Error{Code: "missing_property", Message: "missing calibration property"}
	ErrNoThermalData      = &Error{Code: "no_thermal_data", Message: "no thermal data present"}
)

// Wrap builds a coded error sharing code and message with base and
// carrying cause. Use it to attach details to one of the sentinels.
func Wrap(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Cause: cause}
}
