package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered marketplace user.
type User struct {
	gorm.Model

	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Nickname     string    `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	BirthDate    time.Time `gorm:"not null" json:"birthDate"`

	Introduction  string `gorm:"type:text" json:"introduction,omitempty"`
	ImageURL      string `gorm:"size:1024" json:"imageUrl,omitempty"`
	SellCount     int    `gorm:"not null;default:0" json:"sellCount"`
	BuyCount      int    `gorm:"not null;default:0" json:"buyCount"`
	EmailVerified bool   `gorm:"not null;default:false" json:"emailVerified"`
}
