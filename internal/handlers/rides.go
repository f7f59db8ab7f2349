package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartride/connect-backend/internal/models"
	"github.com/smartride/connect-backend/internal/services"
	"github.com/smartride/connect-backend/pkg/utils"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// PublishRide handles the creation of a new ride by a driver
func PublishRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			CarNumber      string  `json:"carNumber" binding:"required"`
			CarOwnerName   string  `json:"carOwnerName" binding:"required"`
			LicenseNumber  string  `json:"licenseNumber" binding:"required"`
			Departure      string  `json:"departure" binding:"required"`
			Destination    string  `json:"destination" binding:"required"`
			DepartureDate  string  `json:"departureDate" binding:"required"`
			DepartureTime  string  `json:"departureTime" binding:"required"`
			CarType        string  `json:"carType" binding:"required"`
			SeatsAvailable int     `json:"seatsAvailable" binding:"required,min=1"`
			PricePerSeat   float64 `json:"pricePerSeat" binding:"required,gt=0"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		carType, err := models.ParseCarType(input.CarType)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.SeatsAvailable > carType.BookableSeats() {
			c.JSON(400, gin.H{"error": "Seats available exceed car capacity"})
			return
		}

		departureDate, err := time.Parse(dateLayout, input.DepartureDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid departure date, expected YYYY-MM-DD"})
			return
		}

		if _, err := time.Parse("15:04", input.DepartureTime); err != nil {
			c.JSON(400, gin.H{"error": "Invalid departure time, expected HH:MM"})
			return
		}

		// Ride status is forced to active regardless of caller input.
		ride := models.Ride{
			DriverID:       userId,
			CarNumber:      input.CarNumber,
			CarOwnerName:   input.CarOwnerName,
			LicenseNumber:  input.LicenseNumber,
			DepartureLoc:   input.Departure,
			DestinationLoc: input.Destination,
			DepartureDate:  departureDate,
			DepartureTime:  input.DepartureTime,
			CarType:        carType,
			SeatsAvailable: input.SeatsAvailable,
			PricePerSeat:   utils.ToMinorUnits(input.PricePerSeat),
			RideStatus:     models.RideStatusActive,
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to publish ride"})
			return
		}

		if err := services.BumpSearchVersion(context.Background()); err != nil {
			log.Printf("Failed to invalidate search cache: %v", err)
		}

		c.JSON(200, gin.H{
			"message": "Ride published successfully",
			"ride":    rideResponse(&ride),
		})
	}
}

// SearchRides finds active rides matching departure, destination and date
func SearchRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		departure := c.Query("departure")
		destination := c.Query("destination")
		date := c.Query("date")

		if departure == "" || destination == "" || date == "" {
			c.JSON(400, gin.H{"error": "Departure, destination and date are required"})
			return
		}

		departureDate, err := time.Parse(dateLayout, date)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}

		cacheKeyDep := strings.ToLower(departure)
		cacheKeyDest := strings.ToLower(destination)
		if body, err := services.GetCachedSearchResults(c.Request.Context(), cacheKeyDep, cacheKeyDest, date); err == nil {
			c.Data(200, "application/json; charset=utf-8", body)
			return
		}

		var rides []models.Ride
		if err := db.Preload("Driver").
			Where("LOWER(departure_loc) = LOWER(?) AND LOWER(destination_loc) = LOWER(?) AND departure_date = ? AND ride_status = ? AND seats_available > 0",
				departure, destination, departureDate, models.RideStatusActive).
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to search rides"})
			return
		}

		// An empty result is a normal outcome, signaled as not found.
		if len(rides) == 0 {
			c.JSON(404, gin.H{"error": "No rides found for given criteria"})
			return
		}

		results := make([]gin.H, 0, len(rides))
		for i := range rides {
			results = append(results, rideResponse(&rides[i]))
		}

		if body, err := json.Marshal(results); err == nil {
			if err := services.SetCachedSearchResults(c.Request.Context(), cacheKeyDep, cacheKeyDest, date, body); err != nil {
				log.Printf("Failed to cache search results: %v", err)
			}
		}

		c.JSON(200, results)
	}
}

// GetMyRides retrieves all rides published by the caller with booked seat counts
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		query := db.Where("driver_id = ?", userId)
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseRideStatus(status)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("ride_status = ?", parsed)
		}

		var rides []models.Ride
		if err := query.
			Order("departure_date DESC").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		results := make([]gin.H, 0, len(rides))
		for i := range rides {
			var seatsBooked int64
			if err := db.Model(&models.Booking{}).
				Where("ride_id = ? AND booking_request = ? AND booking_status <> ?",
					rides[i].ID, models.BookingRequestAccepted, models.BookingStatusCancelled).
				Select("COALESCE(SUM(seats_requested), 0)").
				Scan(&seatsBooked).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to count booked seats"})
				return
			}

			entry := rideResponse(&rides[i])
			entry["seatsBooked"] = seatsBooked
			results = append(results, entry)
		}

		c.JSON(200, results)
	}
}

// CancelRide cancels a ride owned by the caller
func CancelRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideId := c.Param("rideId")
		userId := c.GetUint("userId")

		var ride models.Ride
		if err := db.Where("id = ? AND driver_id = ?", rideId, userId).First(&ride).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found or you don't have permission to cancel it"})
			return
		}

		if ride.RideStatus != models.RideStatusActive {
			c.JSON(400, gin.H{"error": "Only active rides can be cancelled"})
			return
		}

		ride.RideStatus = models.RideStatusCancelled
		if err := db.Save(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}

		if err := services.BumpSearchVersion(context.Background()); err != nil {
			log.Printf("Failed to invalidate search cache: %v", err)
		}

		c.JSON(200, gin.H{"message": "Ride cancelled successfully"})
	}
}

func rideResponse(ride *models.Ride) gin.H {
	resp := gin.H{
		"id":             ride.ID,
		"driverId":       ride.DriverID,
		"carNumber":      ride.CarNumber,
		"carOwnerName":   ride.CarOwnerName,
		"carType":        ride.CarType,
		"departure":      ride.DepartureLoc,
		"destination":    ride.DestinationLoc,
		"departureDate":  ride.DepartureDate.Format(dateLayout),
		"departureTime":  ride.DepartureTime,
		"seatsAvailable": ride.SeatsAvailable,
		"pricePerSeat":   utils.FromMinorUnits(ride.PricePerSeat),
		"status":         ride.RideStatus,
	}
	if ride.Driver.ID != 0 {
		resp["driverName"] = ride.Driver.Name
		resp["driverPhone"] = ride.Driver.Phone
	}
	return resp
}
