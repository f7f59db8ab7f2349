package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/smartride/connect-backend/internal/models"
	"github.com/smartride/connect-backend/internal/services"
	"github.com/smartride/connect-backend/pkg/utils"
	"gorm.io/gorm"
)

var errInsufficientSeats = errors.New("insufficient seats available")

// reserveSeats decrements a ride's seat inventory with a guarded conditional
// update. Seats are reserved exactly once per booking, at the moment its
// request moves from Pending to Accepted, so concurrent accepts cannot
// jointly overbook the ride.
func reserveSeats(tx *gorm.DB, rideID uint, seats int) error {
	result := tx.Model(&models.Ride{}).
		Where("id = ? AND seats_available >= ?", rideID, seats).
		UpdateColumn("seats_available", gorm.Expr("seats_available - ?", seats))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errInsufficientSeats
	}
	return nil
}

// releaseSeats returns previously reserved seats after a withdrawal.
func releaseSeats(tx *gorm.DB, rideID uint, seats int) error {
	return tx.Model(&models.Ride{}).
		Where("id = ?", rideID).
		UpdateColumn("seats_available", gorm.Expr("seats_available + ?", seats)).Error
}

// CreateBooking handles a passenger's request to book seats on a ride
func CreateBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID         uint `json:"rideId" binding:"required"`
			SeatsRequested int  `json:"seatsRequested" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, input.RideID).Error; err != nil {
			c.JSON(400, gin.H{"error": "Ride not found"})
			return
		}

		if !ride.AcceptsBookings() {
			c.JSON(400, gin.H{"error": "Ride is not open for bookings"})
			return
		}

		if ride.SeatsAvailable < input.SeatsRequested {
			c.JSON(400, gin.H{"error": "Insufficient seats available"})
			return
		}

		booking := models.Booking{
			RideID:         input.RideID,
			PassengerID:    userId,
			SeatsRequested: input.SeatsRequested,
			BookingStatus:  models.BookingStatusUpcoming,
			BookingRequest: models.BookingRequestPending,
		}

		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create booking"})
			return
		}

		hub.SendBookingEvent(ride.DriverID, "booking_request", services.BookingEvent{
			BookingID:      booking.ID,
			RideID:         ride.ID,
			BookingStatus:  string(booking.BookingStatus),
			BookingRequest: string(booking.BookingRequest),
			SeatsRequested: booking.SeatsRequested,
		})

		c.JSON(200, gin.H{
			"message":   "Booking request sent to driver",
			"bookingId": booking.ID,
		})
	}
}

// GetMyBookings retrieves all bookings for a passenger, joined with ride and
// driver details
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		pathUserId := c.Param("userId")

		if !sameUser(pathUserId, userId) {
			c.JSON(403, gin.H{"error": "You can only view your own bookings"})
			return
		}

		query := db.Where("passenger_id = ?", userId)
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseBookingStatus(status)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("booking_status = ?", parsed)
		}

		var bookings []models.Booking
		if err := query.
			Preload("Ride").
			Preload("Ride.Driver").
			Preload("Passenger").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		results := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			results = append(results, bookingResponse(&bookings[i]))
		}

		c.JSON(200, results)
	}
}

// GetBookingRequestsForDriver retrieves all bookings placed against the
// driver's rides
func GetBookingRequestsForDriver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		pathDriverId := c.Param("driverId")

		if !sameUser(pathDriverId, userId) {
			c.JSON(403, gin.H{"error": "You can only view requests for your own rides"})
			return
		}

		var bookings []models.Booking
		if err := db.Joins("JOIN rides ON rides.id = bookings.ride_id").
			Where("rides.driver_id = ?", userId).
			Preload("Ride").
			Preload("Passenger").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch booking requests"})
			return
		}

		results := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			results = append(results, bookingResponse(&bookings[i]))
		}

		c.JSON(200, results)
	}
}

// UpdateBookingRequest records the driver's decision on a pending booking.
// Accepting reserves the requested seats inside the same transaction.
func UpdateBookingRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			BookingID        uint   `json:"bookingId" binding:"required"`
			NewRequestStatus string `json:"newRequestStatus" binding:"required,oneof=Accepted Rejected"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		newStatus, err := models.ParseBookingRequest(input.NewRequestStatus)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.Preload("Ride").First(&booking, input.BookingID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.Ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "Only the ride's driver can decide booking requests"})
			return
		}

		if booking.BookingRequest != models.BookingRequestPending {
			c.JSON(400, gin.H{"error": "Booking request has already been decided"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if newStatus == models.BookingRequestAccepted {
			if err := reserveSeats(tx, booking.RideID, booking.SeatsRequested); err != nil {
				tx.Rollback()
				if errors.Is(err, errInsufficientSeats) {
					c.JSON(400, gin.H{"error": "Insufficient seats available"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to reserve seats"})
				return
			}
		}

		if err := tx.Model(&booking).Update("booking_request", newStatus).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update booking request"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update booking request"})
			return
		}

		hub.SendBookingEvent(booking.PassengerID, "booking_decision", services.BookingEvent{
			BookingID:      booking.ID,
			RideID:         booking.RideID,
			BookingStatus:  string(booking.BookingStatus),
			BookingRequest: string(newStatus),
			SeatsRequested: booking.SeatsRequested,
		})

		c.JSON(200, gin.H{
			"message":        "Booking request updated",
			"bookingId":      booking.ID,
			"bookingRequest": newStatus,
		})
	}
}

// CancelBooking lets a passenger withdraw a booking that has not completed.
// Withdrawal is a distinct terminal state, not a driver rejection; seats
// already reserved for an accepted booking are returned.
func CancelBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId := c.Param("bookingId")

		var booking models.Booking
		if err := db.Preload("Ride").First(&booking, bookingId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.PassengerID != userId {
			c.JSON(403, gin.H{"error": "Only the passenger can cancel this booking"})
			return
		}

		if booking.BookingStatus != models.BookingStatusUpcoming {
			c.JSON(400, gin.H{"error": "Only upcoming bookings can be cancelled"})
			return
		}

		if booking.BookingRequest == models.BookingRequestRejected {
			c.JSON(400, gin.H{"error": "Rejected bookings cannot be cancelled"})
			return
		}

		wasAccepted := booking.BookingRequest == models.BookingRequestAccepted

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"booking_status":  models.BookingStatusCancelled,
			"booking_request": models.BookingRequestWithdrawn,
		}).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		if wasAccepted {
			if err := releaseSeats(tx, booking.RideID, booking.SeatsRequested); err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to release seats"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		hub.SendBookingEvent(booking.Ride.DriverID, "booking_withdrawn", services.BookingEvent{
			BookingID:      booking.ID,
			RideID:         booking.RideID,
			BookingStatus:  string(models.BookingStatusCancelled),
			BookingRequest: string(models.BookingRequestWithdrawn),
			SeatsRequested: booking.SeatsRequested,
		})

		c.JSON(200, gin.H{"message": "Booking cancelled"})
	}
}

func bookingResponse(booking *models.Booking) gin.H {
	resp := gin.H{
		"bookingId":      booking.ID,
		"rideId":         booking.RideID,
		"passengerId":    booking.PassengerID,
		"seatsRequested": booking.SeatsRequested,
		"bookingStatus":  booking.BookingStatus,
		"bookingRequest": booking.BookingRequest,
	}
	if booking.Passenger.ID != 0 {
		resp["passengerName"] = booking.Passenger.Name
	}
	if booking.Ride.ID != 0 {
		resp["from"] = booking.Ride.DepartureLoc
		resp["to"] = booking.Ride.DestinationLoc
		resp["departureDate"] = booking.Ride.DepartureDate.Format(dateLayout)
		resp["departureTime"] = booking.Ride.DepartureTime
		resp["carType"] = booking.Ride.CarType
		resp["carNumber"] = booking.Ride.CarNumber
		resp["pricePerSeat"] = utils.FromMinorUnits(booking.Ride.PricePerSeat)
		resp["totalAmount"] = utils.FromMinorUnits(booking.Ride.PricePerSeat * int64(booking.SeatsRequested))
		if booking.Ride.Driver.ID != 0 {
			resp["driverName"] = booking.Ride.Driver.Name
		}
	}
	return resp
}
