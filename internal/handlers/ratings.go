package handlers

import (
	"encoding/json"
	"log"
	"math"

	"github.com/gin-gonic/gin"
	"github.com/smartride/connect-backend/internal/models"
	"github.com/smartride/connect-backend/internal/services"
	"gorm.io/gorm"
)

// SubmitRating records a one-time star rating from the caller to another user
func SubmitRating(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RateeID  uint   `json:"rateeId" binding:"required"`
			Stars    int    `json:"stars" binding:"required"`
			Feedback string `json:"feedback"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Stars < 1 || input.Stars > 5 {
			c.JSON(400, gin.H{"error": "Rating must be between 1 and 5 stars"})
			return
		}

		var count int64
		if err := db.Model(&models.Rating{}).
			Where("rater_id = ? AND ratee_id = ?", userId, input.RateeID).
			Count(&count).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to check existing ratings"})
			return
		}
		if count > 0 {
			c.JSON(400, gin.H{"error": "You have already rated this user"})
			return
		}

		rating := models.Rating{
			RaterID:  userId,
			RateeID:  input.RateeID,
			Stars:    input.Stars,
			Feedback: input.Feedback,
		}

		if err := db.Create(&rating).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to submit rating"})
			return
		}

		if err := services.InvalidateRatingResponse(c.Request.Context(), input.RateeID); err != nil {
			log.Printf("Failed to invalidate rating cache for user %d: %v", input.RateeID, err)
		}

		c.JSON(200, gin.H{"message": "Rating submitted successfully"})
	}
}

// GetRatingsForUser aggregates all ratings received by a user. A user with
// no ratings gets a zero-valued summary, not an error.
func GetRatingsForUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("userId")

		var ratee models.User
		if err := db.First(&ratee, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if body, err := services.GetCachedRatingResponse(c.Request.Context(), ratee.ID); err == nil {
			c.Data(200, "application/json; charset=utf-8", body)
			return
		}

		var ratings []models.Rating
		if err := db.Preload("Rater").
			Where("ratee_id = ?", ratee.ID).
			Find(&ratings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ratings"})
			return
		}

		response := gin.H{
			"averageRating": float64(0),
			"totalRatings":  len(ratings),
			"ratings":       []gin.H{},
		}

		if len(ratings) > 0 {
			var sum int
			list := make([]gin.H, 0, len(ratings))
			for i := range ratings {
				sum += ratings[i].Stars
				list = append(list, gin.H{
					"ratingId":  ratings[i].ID,
					"raterId":   ratings[i].RaterID,
					"raterName": ratings[i].Rater.Name,
					"stars":     ratings[i].Stars,
					"feedback":  ratings[i].Feedback,
				})
			}

			average := float64(sum) / float64(len(ratings))
			response["averageRating"] = math.Round(average*100) / 100
			response["ratings"] = list
		}

		if body, err := json.Marshal(response); err == nil {
			if err := services.SetCachedRatingResponse(c.Request.Context(), ratee.ID, body); err != nil {
				log.Printf("Failed to cache ratings for user %d: %v", ratee.ID, err)
			}
		}

		c.JSON(200, response)
	}
}
