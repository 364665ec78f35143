package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	sentinel := NewError(CodeNotConnected, "not connected", nil)
	err := NewError(CodeNotConnected, "send rejected", stderrors.New("status disconnected"))

	assert.True(t, stderrors.Is(err, sentinel))
	assert.True(t, stderrors.Is(fmt.Errorf("wrapped: %w", err), sentinel))
	assert.False(t, stderrors.Is(err, NewError(CodeTimeout, "timeout", nil)))
}

func TestError_Message(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewError(CodeTransport, "transport failed", cause).WithDetails(map[string]string{"op": "send"})

	assert.Equal(t, "transport failed: boom", err.Error())
	assert.Equal(t, CodeTransport, err.GetCode())
	assert.Equal(t, "transport failed", err.GetMessage())
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, map[string]string{"op": "send"}, err.GetDetails())
	assert.Equal(t, "plain", NewError(CodeClosed, "plain", nil).Error())
}
