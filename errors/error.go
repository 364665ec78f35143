package errors

import "fmt"

// Error codes shared across the module. Packages wrap an *Error carrying one of
// these codes so callers can match failures with the standard errors.Is.
const (
	CodeInvalidCommand int64 = 10000 + iota
	CodeEmptyFrame
	CodeNotConnected
	CodeAlreadyConnected
	CodeClosed
	CodeTransport
	CodeProtocol
	CodeSerialization
	CodeTimeout
	CodeInvalidArgument
)

type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Cause   error  // the underlying error
	Details any    `json:"details,omitempty"`
}

func NewError(code int64, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) GetCode() int64 {
	return e.Code
}

func (e *Error) GetMessage() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) GetDetails() any {
	return e.Details
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
