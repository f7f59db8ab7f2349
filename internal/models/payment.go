package models

import (
	"fmt"

	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "Card"
	PaymentMethodUPI           PaymentMethod = "UPI"
	PaymentMethodDigitalWallet PaymentMethod = "DigitalWallet"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodDigitalWallet:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("invalid payment method: %q", s)
}

type PaymentStatus string

const (
	PaymentStatusFailed  PaymentStatus = "Failed"
	PaymentStatusSuccess PaymentStatus = "Success"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusFailed, PaymentStatusSuccess:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid payment status: %q", s)
}

// Payment records a funds settlement against a booking. Rows are immutable
// after creation; there is no update or delete path.
type Payment struct {
	gorm.Model
	BookingID     uint          `json:"bookingId" gorm:"not null;index"`
	Booking       Booking       `json:"-" gorm:"foreignKey:BookingID"`
	Amount        int64         `json:"-" gorm:"not null"` // minor units
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"not null"`
	TransactionID string        `json:"transactionId" gorm:"not null"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"not null"`
}

func (Payment) TableName() string {
	return "payments"
}
