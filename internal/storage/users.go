package storage

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"preloved/backend/internal/models"
)

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) EmailUsed(email string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *Service) NicknameUsed(nickname string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

func (s *Service) MarkEmailVerified(userID uint) error {
	res := s.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Refresh tokens live in Redis so logout and rotation take effect
// immediately, regardless of the token's own expiry.

func refreshKey(userID uint) string {
	return fmt.Sprintf("refresh:%d", userID)
}

func (s *Service) StoreRefreshToken(userID uint, token string) error {
	return s.Redis.Set(s.Ctx, refreshKey(userID), token, s.refreshTTL).Err()
}

func (s *Service) CheckRefreshToken(userID uint, token string) (bool, error) {
	stored, err := s.Redis.Get(s.Ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

func (s *Service) RevokeRefreshToken(userID uint) error {
	return s.Redis.Del(s.Ctx, refreshKey(userID)).Err()
}
