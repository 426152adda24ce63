package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"preloved/backend/internal/deal"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

type createChatIn struct {
	ListingID uint `json:"postingId" binding:"required"`
}

// CreateChat opens a chat room between the caller (buyer) and a listing's
// seller. At most one room exists per (listing, buyer); the seller's live
// chat list is notified.
func (h *Handler) CreateChat(c *gin.Context) {
	userID, _ := currentUser(c)

	var in createChatIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	listing, err := h.Store.GetListingByID(in.ListingID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if listing.SellerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot_chat_with_self"})
		return
	}

	room := models.ChatRoom{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		BuyerID:   userID,
	}
	err = h.Store.CreateRoom(&room)
	if errors.Is(err, storage.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "chat_already_exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	h.Notifier.ChatCreated(&room)

	c.JSON(http.StatusCreated, gin.H{
		"chatId":    room.ID,
		"postingId": room.ListingID,
		"sellerId":  room.SellerID,
		"buyerId":   room.BuyerID,
		"createdAt": room.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// MyChats returns the caller's chat list as per-viewer room summaries.
func (h *Handler) MyChats(c *gin.Context) {
	userID, _ := currentUser(c)

	rooms, err := h.Store.RoomsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	summaries := make([]*models.ChatSummary, 0, len(rooms))
	for i := range rooms {
		summary, err := h.Store.BuildChatSummary(&rooms[i], userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

// ChatMessages pages backwards through a room's history using an exclusive
// before-cursor. Also reports the peer's read cursor so the client can
// render read receipts.
func (h *Handler) ChatMessages(c *gin.Context) {
	userID, _ := currentUser(c)
	room, ok := h.roomForParticipant(c, userID)
	if !ok {
		return
	}

	cursor, _ := strconv.ParseUint(c.DefaultQuery("cursor", "0"), 10, 64)
	_, size := pageParams(c)

	rows, hasNext, err := h.Store.RoomMessages(room.ID, uint(cursor), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	peerCursor, err := h.Store.GetReadCursor(room.ID, room.OtherParticipant(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	messages := make([]gin.H, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		isMine := m.SenderID != nil && *m.SenderID == userID
		isRead := true
		if m.Type != models.MessageSystem {
			if isMine {
				isRead = peerCursor >= m.ID
			}
		}
		messages = append(messages, gin.H{
			"messageId": m.ID,
			"isMine":    isMine,
			"type":      m.Type,
			"content":   m.Content,
			"sendAt":    m.CreatedAt.UTC().Format(time.RFC3339),
			"isRead":    isRead,
		})
	}

	var nextCursor *uint
	if len(rows) > 0 {
		id := rows[len(rows)-1].ID
		nextCursor = &id
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":          messages,
		"hasNext":           hasNext,
		"nextCursor":        nextCursor,
		"lastReadMessageId": peerCursor,
	})
}

type updateDealIn struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDealStatus runs the deal coordinator for the room and returns the
// same snapshot the deal_update WebSocket event carries.
func (h *Handler) UpdateDealStatus(c *gin.Context) {
	userID, _ := currentUser(c)

	id, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_chat_id"})
		return
	}

	var in updateDealIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	result, err := h.Deals.UpdateStatus(uint(id), models.RoomStatus(in.Status), userID)
	if err != nil {
		h.writeDealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatId":     result.Room.ID,
		"postingId":  result.Room.ListingID,
		"sellerId":   result.Room.SellerID,
		"buyerId":    result.Room.BuyerID,
		"dealStatus": result.Room.Status,
		"postStatus": result.Listing.Status,
		"changedBy":  result.ChangedBy,
		"changedAt":  result.ChangedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeDealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat_not_found"})
	case errors.Is(err, deal.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, deal.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
	case errors.Is(err, deal.ErrSameStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "same_status"})
	case errors.Is(err, deal.ErrCompletedLocked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed_cannot_change"})
	case errors.Is(err, deal.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_transition"})
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (h *Handler) roomForParticipant(c *gin.Context, userID uint) (*models.ChatRoom, bool) {
	id, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_chat_id"})
		return nil, false
	}
	room, err := h.Store.GetRoomByID(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat_not_found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return nil, false
	}
	if !room.IsParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return room, true
}
