package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/smartride/connect-backend/internal/models"
	"github.com/smartride/connect-backend/internal/services"
	"github.com/smartride/connect-backend/pkg/utils"
	"gorm.io/gorm"
)

// ConfirmPayment settles a booking: the booking moves to Completed/Accepted
// and a payment row is inserted, atomically. If the driver never decided the
// request, payment implies acceptance and the seat reservation happens here.
func ConfirmPayment(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			BookingID uint    `json:"bookingId" binding:"required"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.Preload("Ride").First(&booking, input.BookingID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.PassengerID != userId {
			c.JSON(403, gin.H{"error": "Only the passenger can pay for this booking"})
			return
		}

		if !booking.Payable() {
			c.JSON(400, gin.H{"error": "Booking is not payable"})
			return
		}

		payment := models.Payment{
			BookingID:     booking.ID,
			Amount:        utils.ToMinorUnits(input.Amount),
			PaymentMethod: models.PaymentMethodUPI,
			TransactionID: utils.NewTransactionID(),
			PaymentStatus: models.PaymentStatusSuccess,
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if booking.BookingRequest == models.BookingRequestPending {
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

		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"booking_status":  models.BookingStatusCompleted,
			"booking_request": models.BookingRequestAccepted,
		}).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update booking"})
			return
		}

		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to confirm payment"})
			return
		}

		event := services.BookingEvent{
			BookingID:      booking.ID,
			RideID:         booking.RideID,
			BookingStatus:  string(models.BookingStatusCompleted),
			BookingRequest: string(models.BookingRequestAccepted),
			SeatsRequested: booking.SeatsRequested,
		}
		hub.SendBookingEvent(booking.PassengerID, "payment_confirmed", event)
		hub.SendBookingEvent(booking.Ride.DriverID, "payment_confirmed", event)

		c.JSON(200, gin.H{
			"message":       "Payment confirmed successfully",
			"bookingId":     booking.ID,
			"status":        models.BookingStatusCompleted,
			"transactionId": payment.TransactionID,
		})
	}
}

// MakePayment records a standalone payment against a booking (legacy path).
// The caller supplies method, transaction id and outcome; the row is
// immutable after creation.
func MakePayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BookingID     uint    `json:"bookingId" binding:"required"`
			Amount        float64 `json:"amount" binding:"required,gt=0"`
			PaymentMethod string  `json:"paymentMethod" binding:"required"`
			TransactionID string  `json:"transactionId" binding:"required"`
			PaymentStatus string  `json:"paymentStatus" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		method, err := models.ParsePaymentMethod(input.PaymentMethod)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		status, err := models.ParsePaymentStatus(input.PaymentStatus)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, input.BookingID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		payment := models.Payment{
			BookingID:     booking.ID,
			Amount:        utils.ToMinorUnits(input.Amount),
			PaymentMethod: method,
			TransactionID: input.TransactionID,
			PaymentStatus: status,
		}

		if err := db.Create(&payment).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		c.JSON(200, gin.H{
			"message":   "Payment recorded successfully",
			"paymentId": payment.ID,
		})
	}
}

// GetCompletedRides lists a passenger's completed bookings with payment info
func GetCompletedRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		pathUserId := c.Param("userId")

		if !sameUser(pathUserId, userId) {
			c.JSON(403, gin.H{"error": "You can only view your own completed rides"})
			return
		}

		var bookings []models.Booking
		if err := db.Where("passenger_id = ? AND booking_status = ?", userId, models.BookingStatusCompleted).
			Preload("Ride").
			Preload("Payments").
			Order("id DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch completed rides"})
			return
		}

		results := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			entry := bookingResponse(&bookings[i])
			if len(bookings[i].Payments) > 0 {
				p := bookings[i].Payments[0]
				entry["payment"] = gin.H{
					"paymentId":     p.ID,
					"amount":        utils.FromMinorUnits(p.Amount),
					"paymentMethod": p.PaymentMethod,
					"paymentStatus": p.PaymentStatus,
					"transactionId": p.TransactionID,
					"paymentDate":   p.CreatedAt,
				}
			}
			results = append(results, entry)
		}

		c.JSON(200, results)
	}
}
