package stomp

import "github.com/google/uuid"

// disconnectReceiptID is the receipt requested by a graceful DISCONNECT.
const disconnectReceiptID = "disconnect/safe"

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewReceiptID returns a unique value for SendOptions.ReceiptID.
func NewReceiptID() string {
	return "receipt-" + newID()
}
