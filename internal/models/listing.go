package models

import (
	"github.com/lib/pq" // pq.StringArray maps to a Postgres text[] column
	"gorm.io/gorm"
)

// ListingStatus is the sale state of a listing. It is kept consistent with
// the most advanced deal status of the listing's chat rooms.
type ListingStatus string

const (
	ListingSelling  ListingStatus = "SELLING"
	ListingReserved ListingStatus = "RESERVED"
	ListingSold     ListingStatus = "SOLD"
)

// Listing is an item offered for sale.
type Listing struct {
	gorm.Model

	SellerID uint          `gorm:"not null;index" json:"sellerId"`
	Title    string        `gorm:"size:120;not null" json:"title"`
	Content  string        `gorm:"type:text;not null" json:"content"`
	Price    int           `gorm:"not null" json:"price"`
	Status   ListingStatus `gorm:"size:16;not null;default:SELLING" json:"status"`
	// Images holds the uploaded image URLs, first one is the thumbnail.
	Images pq.StringArray `gorm:"type:text[]" json:"images"`

	ViewCount int `gorm:"not null;default:0" json:"viewCount"`
	LikeCount int `gorm:"not null;default:0" json:"likeCount"`
	ChatCount int `gorm:"not null;default:0" json:"chatCount"`
}

// Favorite marks a listing as liked by a user. One row per (user, listing).
type Favorite struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:uq_user_listing" json:"userId"`
	ListingID uint `gorm:"not null;uniqueIndex:uq_user_listing" json:"listingId"`
}
