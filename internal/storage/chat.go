package storage

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"preloved/backend/internal/models"
)

// CreateRoom inserts a new chat room and bumps the listing's chat counter in
// one transaction. Returns ErrConflict when a room for the same
// (listing, buyer) pair already exists.
func (s *Service) CreateRoom(room *models.ChatRoom) error {
	if room.Status == "" {
		room.Status = models.RoomActive
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.ChatRoom{}).
			Where("listing_id = ? AND buyer_id = ?", room.ListingID, room.BuyerID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		return tx.Model(&models.Listing{}).Where("id = ?", room.ListingID).
			UpdateColumn("chat_count", gorm.Expr("chat_count + 1")).Error
	})
}

func (s *Service) GetRoomByID(id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Service) RoomsForUser(userID uint) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := s.DB.Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at DESC").Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateMessage persists a chat message. The generated primary key provides
// the room-wide total order clients rely on.
func (s *Service) CreateMessage(msg *models.ChatMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %d: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// CountUserMessages counts the room's user-sent messages. System messages
// are excluded so a deal status change before the first real message does
// not hide it from the first-message notification.
func (s *Service) CountUserMessages(roomID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id IS NOT NULL", roomID).
		Count(&count).Error
	return count, err
}

// RoomMessages pages backwards through a room's history. before is an
// exclusive message-ID cursor (0 means newest). The second return value
// reports whether older messages remain.
func (s *Service) RoomMessages(roomID uint, before uint, size int) ([]models.ChatMessage, bool, error) {
	q := s.DB.Where("room_id = ?", roomID)
	if before > 0 {
		q = q.Where("id < ?", before)
	}

	var rows []models.ChatMessage
	if err := q.Order("id DESC").Limit(size + 1).Find(&rows).Error; err != nil {
		return nil, false, err
	}

	hasNext := len(rows) > size
	if hasNext {
		rows = rows[:size]
	}
	return rows, hasNext, nil
}

// UpsertReadCursor advances the (room, user) read cursor to messageID,
// never backwards. Returns the cursor value after the update.
func (s *Service) UpsertReadCursor(roomID, userID, messageID uint) (uint, error) {
	cursor := models.ReadCursor{
		RoomID:            roomID,
		UserID:            userID,
		LastReadMessageID: messageID,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_message_id": gorm.Expr("GREATEST(read_cursors.last_read_message_id, excluded.last_read_message_id)"),
			"updated_at":           time.Now(),
		}),
	}).Create(&cursor).Error
	if err != nil {
		return 0, err
	}
	return s.GetReadCursor(roomID, userID)
}

// GetReadCursor returns the user's cursor in the room, 0 if none exists.
func (s *Service) GetReadCursor(roomID, userID uint) (uint, error) {
	var cursor models.ReadCursor
	err := s.DB.Where("room_id = ? AND user_id = ?", roomID, userID).First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cursor.LastReadMessageID, nil
}

// LastMessageFor summarises the newest message of a room from the viewer's
// perspective. Returns nil when the room has no messages yet.
func (s *Service) LastMessageFor(room *models.ChatRoom, viewerID uint) (*models.LastMessage, error) {
	var msg models.ChatMessage
	err := s.DB.Where("room_id = ?", room.ID).Order("id DESC").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	isMine := msg.SenderID != nil && *msg.SenderID == viewerID
	isRead := isMine || msg.Type == models.MessageSystem
	if !isRead {
		cursor, err := s.GetReadCursor(room.ID, viewerID)
		if err != nil {
			return nil, err
		}
		isRead = cursor >= msg.ID
	}

	return &models.LastMessage{
		MessageID: msg.ID,
		IsMine:    isMine,
		Type:      string(msg.Type),
		Content:   msg.Content,
		SendAt:    msg.CreatedAt.UTC().Format(time.RFC3339),
		IsRead:    isRead,
	}, nil
}

// BuildChatSummary assembles the chat-list card for one viewer: listing
// title, the other participant's profile, and the last-message block.
func (s *Service) BuildChatSummary(room *models.ChatRoom, viewerID uint) (*models.ChatSummary, error) {
	listing, err := s.GetListingByID(room.ListingID)
	if err != nil {
		return nil, err
	}

	role := "buyer"
	if room.SellerID == viewerID {
		role = "seller"
	}

	otherID := room.OtherParticipant(viewerID)
	other, err := s.GetUserByID(otherID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	summary := &models.ChatSummary{
		ChatID:       room.ID,
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		Role:         role,
		Status:       room.Status,
		OtherID:      otherID,
	}
	if other != nil {
		summary.OtherNickname = other.Nickname
		summary.OtherImageURL = other.ImageURL
	}

	last, err := s.LastMessageFor(room, viewerID)
	if err != nil {
		return nil, err
	}
	summary.LastMessage = last
	return summary, nil
}

// ApplyDealTransition commits a validated deal transition atomically: the
// room row is locked and its status re-checked against from (two concurrent
// transitions on one room cannot both succeed), the listing cascade is
// applied only when the listing is still in the expected state, completion
// bumps the participants' trade counters, and the system message is
// persisted before commit so the broadcast-after-commit rule holds.
func (s *Service) ApplyDealTransition(roomID uint, from, to models.RoomStatus, systemText string) (*models.ChatRoom, *models.Listing, *models.ChatMessage, error) {
	var (
		room    models.ChatRoom
		listing models.Listing
		sysMsg  models.ChatMessage
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if room.Status != from {
			return ErrConflict
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, room.ListingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// Conditional cascade: only move the listing when it is still in the
		// state this transition expects, so a concurrent edit is not clobbered.
		switch {
		case from == models.RoomActive && to == models.RoomReserved:
			if listing.Status == models.ListingSelling {
				listing.Status = models.ListingReserved
			}
		case from == models.RoomReserved && to == models.RoomActive:
			if listing.Status == models.ListingReserved {
				listing.Status = models.ListingSelling
			}
		case from == models.RoomReserved && to == models.RoomCompleted:
			if listing.Status == models.ListingReserved {
				listing.Status = models.ListingSold
			}
			if err := tx.Model(&models.User{}).Where("id = ?", room.SellerID).
				UpdateColumn("sell_count", gorm.Expr("sell_count + 1")).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", room.BuyerID).
				UpdateColumn("buy_count", gorm.Expr("buy_count + 1")).Error; err != nil {
				return err
			}
		}

		room.Status = to
		if err := tx.Save(&room).Error; err != nil {
			return err
		}
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		sysMsg = models.ChatMessage{
			RoomID:  room.ID,
			Type:    models.MessageSystem,
			Content: systemText,
		}
		return tx.Create(&sysMsg).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
			log.Printf("ERROR: Failed deal transition %s -> %s on room %d: %v", from, to, roomID, err)
		}
		return nil, nil, nil, err
	}
	return &room, &listing, &sysMsg, nil
}
