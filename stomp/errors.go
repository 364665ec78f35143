package stomp

import (
	"fmt"

	"github.com/infigaming-com/go-stomp/errors"
)

var (
	ErrNotConnected     = errors.NewError(errors.CodeNotConnected, "stomp: not connected", nil)
	ErrAlreadyConnected = errors.NewError(errors.CodeAlreadyConnected, "stomp: already connected", nil)
	ErrClosed           = errors.NewError(errors.CodeClosed, "stomp: client closed", nil)
	ErrTransport        = errors.NewError(errors.CodeTransport, "stomp: transport failure", nil)
	ErrProtocol         = errors.NewError(errors.CodeProtocol, "stomp: protocol error", nil)
	ErrSerialization    = errors.NewError(errors.CodeSerialization, "stomp: serialization failed", nil)
	ErrTimeout          = errors.NewError(errors.CodeTimeout, "stomp: timed out", nil)
)

// StateError is returned when an operation is not allowed in the current
// connection status. Nothing is sent.
type StateError struct {
	baseErr *errors.Error
	Op      string
	Status  Status
}

func newStateError(base *errors.Error, op string, status Status) *StateError {
	return &StateError{baseErr: base, Op: op, Status: status}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", e.baseErr.GetMessage(), e.Op, e.Status)
}

func (e *StateError) GetCode() int64 { return e.baseErr.GetCode() }

func (e *StateError) Unwrap() error { return e.baseErr }

// TransportError wraps a failure reported by the Transport.
type TransportError struct {
	baseErr *errors.Error
	Op      string
}

func newTransportError(op string, cause error) *TransportError {
	return &TransportError{
		baseErr: errors.NewError(ErrTransport.Code, ErrTransport.Message, cause),
		Op:      op,
	}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s (%s)", e.baseErr.Error(), e.Op)
}

func (e *TransportError) GetCode() int64 { return e.baseErr.GetCode() }

// Unwrap exposes both the code carrying base error and the transport cause.
func (e *TransportError) Unwrap() []error {
	if e.baseErr.Cause == nil {
		return []error{e.baseErr}
	}
	return []error{e.baseErr, e.baseErr.Cause}
}

// ProtocolError carries the content of an ERROR frame.
type ProtocolError struct {
	baseErr   *errors.Error
	Brief     string
	Full      string
	ReceiptID string
}

func newProtocolError(brief, full, receiptID string) *ProtocolError {
	return &ProtocolError{
		baseErr:   errors.NewError(ErrProtocol.Code, ErrProtocol.Message, nil),
		Brief:     brief,
		Full:      full,
		ReceiptID: receiptID,
	}
}

func (e *ProtocolError) Error() string {
	return e.baseErr.Error() + ": " + e.Brief
}

func (e *ProtocolError) GetCode() int64 { return e.baseErr.GetCode() }

func (e *ProtocolError) Unwrap() error { return e.baseErr }

type SerializationError struct {
	baseErr *errors.Error
}

func newSerializationError(cause error) *SerializationError {
	return &SerializationError{baseErr: errors.NewError(ErrSerialization.Code, ErrSerialization.Message, cause)}
}

func (e *SerializationError) Error() string { return e.baseErr.Error() }

func (e *SerializationError) GetCode() int64 { return e.baseErr.GetCode() }

func (e *SerializationError) Unwrap() []error {
	if e.baseErr.Cause == nil {
		return []error{e.baseErr}
	}
	return []error{e.baseErr, e.baseErr.Cause}
}

func invalidArgument(message string) error {
	return errors.NewError(errors.CodeInvalidArgument, "stomp: "+message, nil)
}
