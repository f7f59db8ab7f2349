package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CarType string

const (
	CarTypeFiveSeater  CarType = "five_seater"
	CarTypeSevenSeater CarType = "seven_seater"
)

// ParseCarType validates a car type string at the API boundary.
func ParseCarType(s string) (CarType, error) {
	switch CarType(s) {
	case CarTypeFiveSeater, CarTypeSevenSeater:
		return CarType(s), nil
	}
	return "", fmt.Errorf("invalid car type: %q", s)
}

// BookableSeats returns the maximum seats a driver can offer for the car
// type. One seat is always reserved for the driver.
func (t CarType) BookableSeats() int {
	switch t {
	case CarTypeFiveSeater:
		return 4
	case CarTypeSevenSeater:
		return 6
	}
	return 0
}

type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

func ParseRideStatus(s string) (RideStatus, error) {
	switch RideStatus(s) {
	case RideStatusActive, RideStatusCompleted, RideStatusCancelled:
		return RideStatus(s), nil
	}
	return "", fmt.Errorf("invalid ride status: %q", s)
}

type Ride struct {
	gorm.Model
	DriverID       uint       `json:"driverId" gorm:"not null;index"`
	Driver         User       `json:"driver" gorm:"foreignKey:DriverID"`
	CarNumber      string     `json:"carNumber" gorm:"not null"`
	CarOwnerName   string     `json:"carOwnerName" gorm:"not null"`
	LicenseNumber  string     `json:"licenseNumber" gorm:"not null"`
	DepartureLoc   string     `json:"departure" gorm:"not null;index"`
	DestinationLoc string     `json:"destination" gorm:"not null;index"`
	DepartureDate  time.Time  `json:"departureDate" gorm:"type:date;not null"`
	DepartureTime  string     `json:"departureTime" gorm:"not null"` // HH:MM, 24h
	CarType        CarType    `json:"carType" gorm:"not null"`
	SeatsAvailable int        `json:"seatsAvailable" gorm:"not null"`
	PricePerSeat   int64      `json:"-" gorm:"not null"` // minor units
	RideStatus     RideStatus `json:"rideStatus" gorm:"not null;default:'active'"`
}

func (Ride) TableName() string {
	return "rides"
}

// AcceptsBookings reports whether new bookings may be placed against the ride.
func (r *Ride) AcceptsBookings() bool {
	return r.RideStatus == RideStatusActive && r.SeatsAvailable > 0
}
