package utils

import "github.com/google/uuid"

// NewTransactionID generates a server-side transaction reference for a
// payment record.
func NewTransactionID() string {
	return uuid.NewString()
}
