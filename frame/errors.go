package frame

import "github.com/infigaming-com/go-stomp/errors"

var (
	// ErrInvalidCommand matches decode failures on the command line.
	ErrInvalidCommand = errors.NewError(errors.CodeInvalidCommand, "stomp: invalid command", nil)
	// ErrEmptyFrame matches decode failures on blank input.
	ErrEmptyFrame = errors.NewError(errors.CodeEmptyFrame, "stomp: empty frame", nil)
)

// DecodeError reports an inbound frame that could not be parsed. It is never
// fatal: the engine logs it and keeps listening.
type DecodeError struct {
	baseErr *errors.Error
	Line    string
}

func newDecodeError(code int64, message, line string) *DecodeError {
	return &DecodeError{
		baseErr: errors.NewError(code, message, nil),
		Line:    line,
	}
}

func (e *DecodeError) Error() string {
	if e.Line == "" {
		return e.baseErr.Error()
	}
	return e.baseErr.Error() + ": " + e.Line
}

func (e *DecodeError) GetCode() int64 {
	return e.baseErr.GetCode()
}

func (e *DecodeError) GetMessage() string {
	return e.baseErr.GetMessage()
}

func (e *DecodeError) Unwrap() error {
	return e.baseErr
}
