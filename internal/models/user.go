package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"column:name;not null"`
	Phone          string `json:"phone" gorm:"column:phone;not null"`
	Email          string `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash   string `json:"-" gorm:"column:password_hash;not null"`
	EmergencyEmail string `json:"emergencyEmail" gorm:"column:emergency_email"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
