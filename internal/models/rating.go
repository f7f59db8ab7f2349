package models

import "gorm.io/gorm"

// Rating is a one-directional star rating between two users. At most one
// rating may exist per (rater, ratee) pair, backed by a composite unique
// index in addition to the pre-insert existence check.
type Rating struct {
	gorm.Model
	RaterID  uint   `json:"raterId" gorm:"not null;uniqueIndex:idx_rater_ratee"`
	Rater    User   `json:"-" gorm:"foreignKey:RaterID"`
	RateeID  uint   `json:"rateeId" gorm:"not null;uniqueIndex:idx_rater_ratee"`
	Ratee    User   `json:"-" gorm:"foreignKey:RateeID"`
	Stars    int    `json:"stars" gorm:"not null"`
	Feedback string `json:"feedback"`
}

func (Rating) TableName() string {
	return "ratings"
}
