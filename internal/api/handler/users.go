package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"preloved/backend/internal/storage"
)

// GetUser returns a user's public profile.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}

	user, err := h.Store.GetUserByID(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":       user.ID,
		"nickname":     user.Nickname,
		"introduction": user.Introduction,
		"imageUrl":     user.ImageURL,
		"sellCount":    user.SellCount,
		"buyCount":     user.BuyCount,
		"createdAt":    user.CreatedAt,
	})
}

// Me returns the caller's own profile.
func (h *Handler) Me(c *gin.Context) {
	userID, _ := currentUser(c)
	user, err := h.Store.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	out := userOut(user)
	out["introduction"] = user.Introduction
	out["imageUrl"] = user.ImageURL
	out["sellCount"] = user.SellCount
	out["buyCount"] = user.BuyCount
	out["emailVerified"] = user.EmailVerified
	c.JSON(http.StatusOK, out)
}

type updateMeIn struct {
	Nickname     *string `json:"userName"`
	Introduction *string `json:"introduction"`
	ImageURL     *string `json:"imageUrl"`
}

// UpdateMe patches the caller's profile fields.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, _ := currentUser(c)

	var in updateMeIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	user, err := h.Store.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if in.Nickname != nil && *in.Nickname != user.Nickname {
		used, err := h.Store.NicknameUsed(*in.Nickname)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		if used {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nickname_conflict"})
			return
		}
		user.Nickname = *in.Nickname
	}
	if in.Introduction != nil {
		user.Introduction = *in.Introduction
	}
	if in.ImageURL != nil {
		user.ImageURL = *in.ImageURL
	}

	if err := h.Store.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, userOut(user))
}
