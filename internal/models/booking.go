package models

import (
	"fmt"

	"gorm.io/gorm"
)

// BookingStatus tracks trip fulfillment. It evolves independently of the
// driver's approval decision on the same booking.
type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "Upcoming"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusUpcoming, BookingStatusCompleted, BookingStatusCancelled:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("invalid booking status: %q", s)
}

// BookingRequest tracks the driver's approval decision. Withdrawn marks a
// passenger-initiated cancellation, kept distinct from a driver rejection.
type BookingRequest string

const (
	BookingRequestPending   BookingRequest = "Pending"
	BookingRequestAccepted  BookingRequest = "Accepted"
	BookingRequestRejected  BookingRequest = "Rejected"
	BookingRequestWithdrawn BookingRequest = "Withdrawn"
)

func ParseBookingRequest(s string) (BookingRequest, error) {
	switch BookingRequest(s) {
	case BookingRequestPending, BookingRequestAccepted, BookingRequestRejected, BookingRequestWithdrawn:
		return BookingRequest(s), nil
	}
	return "", fmt.Errorf("invalid booking request status: %q", s)
}

// Terminal reports whether the approval axis can no longer move.
func (r BookingRequest) Terminal() bool {
	return r == BookingRequestRejected || r == BookingRequestWithdrawn
}

type Booking struct {
	gorm.Model
	RideID         uint           `json:"rideId" gorm:"not null;index"`
	Ride           Ride           `json:"ride" gorm:"foreignKey:RideID"`
	PassengerID    uint           `json:"passengerId" gorm:"not null;index"`
	Passenger      User           `json:"passenger" gorm:"foreignKey:PassengerID"`
	SeatsRequested int            `json:"seatsRequested" gorm:"not null"`
	BookingStatus  BookingStatus  `json:"bookingStatus" gorm:"not null;default:'Upcoming'"`
	BookingRequest BookingRequest `json:"bookingRequest" gorm:"not null;default:'Pending'"`
	Payments       []Payment      `json:"-" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Payable reports whether payment may still be confirmed for the booking.
// A rejected or withdrawn request is terminal, as is a booking that already
// completed or was cancelled.
func (b *Booking) Payable() bool {
	return b.BookingStatus == BookingStatusUpcoming && !b.BookingRequest.Terminal()
}
