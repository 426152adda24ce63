package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"preloved/backend/internal/models"
)

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict covers duplicate rooms, taken emails/nicknames, and a deal
	// transition whose precondition no longer holds at commit time.
	ErrConflict = errors.New("conflict")
)

// Storage is everything the handlers, the chat hub, and the deal
// coordinator need from the persistence layer.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	EmailUsed(email string) (bool, error)
	NicknameUsed(nickname string) (bool, error)
	MarkEmailVerified(userID uint) error

	// Sessions (Redis)
	StoreRefreshToken(userID uint, token string) error
	CheckRefreshToken(userID uint, token string) (bool, error)
	RevokeRefreshToken(userID uint) error

	// Listings
	CreateListing(listing *models.Listing) error
	GetListingByID(id uint) (*models.Listing, error)
	ListListings(page, size int) ([]models.Listing, int64, error)
	MyListings(userID uint, filter string, page, size int) ([]models.Listing, int64, error)
	SaveListing(listing *models.Listing) error
	DeleteListing(listing *models.Listing) error
	ToggleFavorite(userID, listingID uint) (bool, error)
	MarkListingViewed(listingID uint, viewerKey string) (bool, error)
	IncrementViewCount(listingID uint) error

	// Chat
	CreateRoom(room *models.ChatRoom) error
	GetRoomByID(id uint) (*models.ChatRoom, error)
	RoomsForUser(userID uint) ([]models.ChatRoom, error)
	CreateMessage(msg *models.ChatMessage) error
	CountUserMessages(roomID uint) (int64, error)
	RoomMessages(roomID uint, before uint, size int) ([]models.ChatMessage, bool, error)
	UpsertReadCursor(roomID, userID, messageID uint) (uint, error)
	GetReadCursor(roomID, userID uint) (uint, error)
	BuildChatSummary(room *models.ChatRoom, viewerID uint) (*models.ChatSummary, error)
	LastMessageFor(room *models.ChatRoom, viewerID uint) (*models.LastMessage, error)

	// Deals
	ApplyDealTransition(roomID uint, from, to models.RoomStatus, systemText string) (*models.ChatRoom, *models.Listing, *models.ChatMessage, error)
}

// Service implements Storage on top of PostgreSQL (GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	refreshTTL time.Duration
	viewedTTL  time.Duration
}

// NewService wires the persistence backends. refreshTTL bounds the
// server-side refresh-token records.
func NewService(db *gorm.DB, rdb *redis.Client, refreshTTL time.Duration) *Service {
	return &Service{
		DB:         db,
		Redis:      rdb,
		Ctx:        context.Background(),
		refreshTTL: refreshTTL,
		viewedTTL:  24 * time.Hour,
	}
}
