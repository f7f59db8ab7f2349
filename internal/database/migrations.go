package database

import (
	"github.com/smartride/connect-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Booking{},
		&models.Payment{},
		&models.Rating{},
	)
	if err != nil {
		return err
	}

	// Status columns are stored as strings; constrain them at the database
	// level so no invalid value can land regardless of the write path.
	checks := []struct {
		table      string
		constraint string
		expr       string
	}{
		{"rides", "rides_seats_available_check", "seats_available >= 0"},
		{"rides", "rides_ride_status_check", "ride_status IN ('active', 'completed', 'cancelled')"},
		{"rides", "rides_car_type_check", "car_type IN ('five_seater', 'seven_seater')"},
		{"bookings", "bookings_seats_requested_check", "seats_requested >= 1"},
		{"bookings", "bookings_booking_status_check", "booking_status IN ('Upcoming', 'Completed', 'Cancelled')"},
		{"bookings", "bookings_booking_request_check", "booking_request IN ('Pending', 'Accepted', 'Rejected', 'Withdrawn')"},
		{"payments", "payments_payment_method_check", "payment_method IN ('Card', 'UPI', 'DigitalWallet')"},
		{"payments", "payments_payment_status_check", "payment_status IN ('Failed', 'Success')"},
		{"ratings", "ratings_stars_check", "stars BETWEEN 1 AND 5"},
	}

	for _, c := range checks {
		db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.constraint)
		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.constraint + " CHECK (" + c.expr + ")").Error; err != nil {
			return err
		}
	}

	return nil
}
