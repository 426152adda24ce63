package storage

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"preloved/backend/internal/models"
)

func (s *Service) CreateListing(listing *models.Listing) error {
	if listing.Status == "" {
		listing.Status = models.ListingSelling
	}
	return s.DB.Create(listing).Error
}

func (s *Service) GetListingByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := s.DB.First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (s *Service) ListListings(page, size int) ([]models.Listing, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Listing{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Listing
	err := s.DB.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MyListings returns the viewer's listings filtered by shelf: "selling" and
// "sold" by own listing status, "purchased" by completed rooms where the
// viewer is the buyer, "favorite" by favorite rows.
func (s *Service) MyListings(userID uint, filter string, page, size int) ([]models.Listing, int64, error) {
	q := s.DB.Model(&models.Listing{})

	switch filter {
	case "selling":
		q = q.Where("seller_id = ? AND status <> ?", userID, models.ListingSold)
	case "sold":
		q = q.Where("seller_id = ? AND status = ?", userID, models.ListingSold)
	case "purchased":
		q = q.Joins("JOIN chat_rooms ON chat_rooms.listing_id = listings.id").
			Where("chat_rooms.buyer_id = ? AND chat_rooms.status = ?", userID, models.RoomCompleted)
	case "favorite":
		q = q.Joins("JOIN favorites ON favorites.listing_id = listings.id").
			Where("favorites.user_id = ? AND favorites.deleted_at IS NULL", userID)
	default:
		return nil, 0, fmt.Errorf("unknown listing filter %q", filter)
	}

	var total int64
	if err := q.Distinct("listings.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Listing
	err := q.Distinct("listings.*").Order("listings.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *Service) SaveListing(listing *models.Listing) error {
	return s.DB.Save(listing).Error
}

func (s *Service) DeleteListing(listing *models.Listing) error {
	return s.DB.Delete(listing).Error
}

// ToggleFavorite flips the viewer's favorite for a listing and keeps the
// listing's like counter in step. Returns the new favorite state.
func (s *Service) ToggleFavorite(userID, listingID uint) (bool, error) {
	var favorited bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var fav models.Favorite
		err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&fav).Error
		switch {
		case err == nil:
			if err := tx.Unscoped().Delete(&fav).Error; err != nil {
				return err
			}
			favorited = false
			return tx.Model(&models.Listing{}).Where("id = ? AND like_count > 0", listingID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Favorite{UserID: userID, ListingID: listingID}).Error; err != nil {
				return err
			}
			favorited = true
			return tx.Model(&models.Listing{}).Where("id = ?", listingID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
		default:
			return err
		}
	})
	if err != nil {
		log.Printf("ERROR: Failed to toggle favorite (user %d, listing %d): %v", userID, listingID, err)
		return false, err
	}
	return favorited, nil
}

// MarkListingViewed records in Redis that viewerKey has seen the listing
// within the dedupe window. Returns true on the first view in the window.
func (s *Service) MarkListingViewed(listingID uint, viewerKey string) (bool, error) {
	key := fmt.Sprintf("viewed:%d:%s", listingID, viewerKey)
	return s.Redis.SetNX(s.Ctx, key, 1, s.viewedTTL).Result()
}

func (s *Service) IncrementViewCount(listingID uint) error {
	return s.DB.Model(&models.Listing{}).Where("id = ?", listingID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
