package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/smartride/connect-backend/internal/database"
	"github.com/smartride/connect-backend/internal/handlers"
	"github.com/smartride/connect-backend/internal/middleware"
	"github.com/smartride/connect-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis is optional; caches degrade to direct DB reads without it
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// Ride search is public
		api.GET("/rides/search", handlers.SearchRides(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("/publish", handlers.PublishRide(db))
				rides.GET("/my-rides", handlers.GetMyRides(db))
				rides.PUT("/cancel/:rideId", handlers.CancelRide(db))
			}

			booking := protected.Group("/booking")
			{
				booking.POST("/book", handlers.CreateBooking(db, hub))
				booking.GET("/my-bookings/:userId", handlers.GetMyBookings(db))
				booking.GET("/booking-requests/:driverId", handlers.GetBookingRequestsForDriver(db))
				booking.PUT("/update-request", handlers.UpdateBookingRequest(db, hub))
				booking.PUT("/cancel/:bookingId", handlers.CancelBooking(db, hub))
				booking.POST("/confirm-payment", handlers.ConfirmPayment(db, hub))
				booking.GET("/completed-rides/:userId", handlers.GetCompletedRides(db))
			}

			protected.POST("/payment", handlers.MakePayment(db))

			rating := protected.Group("/rating")
			{
				rating.POST("", handlers.SubmitRating(db))
				rating.GET("/user/:userId", handlers.GetRatingsForUser(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
