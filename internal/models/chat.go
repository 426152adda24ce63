package models

import (
	"gorm.io/gorm"
)

// RoomStatus is the transactional state of a chat room, distinct from the
// listing's own sale status.
type RoomStatus string

const (
	RoomActive    RoomStatus = "ACTIVE"
	RoomReserved  RoomStatus = "RESERVED"
	RoomCompleted RoomStatus = "COMPLETED"
)

// Valid reports whether s is one of the three known deal states.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomActive, RoomReserved, RoomCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the deal state machine permits moving from
// s to next. COMPLETED is terminal, a no-op transition is never permitted,
// and the only backward edge is RESERVED -> ACTIVE (reservation cancel).
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	if !next.Valid() || s == next || s == RoomCompleted {
		return false
	}
	switch s {
	case RoomActive:
		return next == RoomReserved
	case RoomReserved:
		return next == RoomActive || next == RoomCompleted
	}
	return false
}

// ChatRoom is a chat thread tied to one listing and one buyer/seller pair.
// At most one room exists per (listing, buyer).
type ChatRoom struct {
	gorm.Model

	ListingID uint       `gorm:"not null;index;uniqueIndex:uq_listing_buyer" json:"listingId"`
	SellerID  uint       `gorm:"not null;index" json:"sellerId"`
	BuyerID   uint       `gorm:"not null;index;uniqueIndex:uq_listing_buyer" json:"buyerId"`
	Status    RoomStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
}

// IsParticipant reports whether userID is the room's buyer or seller.
func (r *ChatRoom) IsParticipant(userID uint) bool {
	return userID == r.BuyerID || userID == r.SellerID
}

// OtherParticipant returns the peer of userID in the room.
func (r *ChatRoom) OtherParticipant(userID uint) uint {
	if userID == r.BuyerID {
		return r.SellerID
	}
	return r.BuyerID
}

// MessageType discriminates chat message content.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
)

// ChatMessage is a persisted chat message. Rows are immutable once created
// and belong exclusively to their room (cascade delete with the room).
// SenderID is nil for system messages.
type ChatMessage struct {
	gorm.Model

	RoomID   uint        `gorm:"not null;index" json:"roomId"`
	SenderID *uint       `gorm:"index" json:"senderId"`
	Type     MessageType `gorm:"size:20;not null" json:"type"`
	Content  string      `gorm:"type:text;not null" json:"content"`
}

// ReadCursor records the last message a user has read in a room.
// One row per (room, user); LastReadMessageID never decreases.
type ReadCursor struct {
	gorm.Model

	RoomID            uint `gorm:"not null;uniqueIndex:uq_room_user" json:"roomId"`
	UserID            uint `gorm:"not null;uniqueIndex:uq_room_user" json:"userId"`
	LastReadMessageID uint `gorm:"not null;default:0" json:"lastReadMessageId"`
}
