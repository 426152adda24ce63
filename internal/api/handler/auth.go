package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"preloved/backend/internal/auth"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

type signupIn struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Nickname  string `json:"userName" binding:"required"`
	BirthDate string `json:"birthDate" binding:"required"`
}

// Signup registers a new user after email and nickname uniqueness checks.
func (h *Handler) Signup(c *gin.Context) {
	var in signupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	if used, err := h.Store.EmailUsed(in.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	} else if used {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_conflict"})
		return
	}
	if used, err := h.Store.NicknameUsed(in.Nickname); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	} else if used {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nickname_conflict"})
		return
	}

	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_birthDate_format"})
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Nickname:     in.Nickname,
		BirthDate:    birthDate,
	}
	if err := h.Store.CreateUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, userOut(&user))
}

type loginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns an access/refresh token pair. The
// refresh token is recorded server-side so logout takes effect immediately.
func (h *Handler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	user, err := h.Store.GetUserByEmail(in.Email)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	h.issueTokenPair(c, user.ID)
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a valid refresh token into a fresh token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	userID, err := h.Tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}
	valid, err := h.Store.CheckRefreshToken(userID, in.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	h.issueTokenPair(c, userID)
}

// Logout revokes the caller's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	userID, _ := currentUser(c)
	if err := h.Store.RevokeRefreshToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// EmailUsed reports whether an email is already registered.
func (h *Handler) EmailUsed(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_email"})
		return
	}
	used, err := h.Store.EmailUsed(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isEmailUsed": used})
}

// NicknameUsed reports whether a nickname is already taken.
func (h *Handler) NicknameUsed(c *gin.Context) {
	name := c.Query("userName")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_userName"})
		return
	}
	used, err := h.Store.NicknameUsed(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isUserNameUsed": used})
}

func (h *Handler) issueTokenPair(c *gin.Context, userID uint) {
	access, err := h.Tokens.IssueAccess(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	refresh, err := h.Tokens.IssueRefresh(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if err := h.Store.StoreRefreshToken(userID, refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":       userID,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func userOut(u *models.User) gin.H {
	return gin.H{
		"userId":    u.ID,
		"email":     u.Email,
		"nickname":  u.Nickname,
		"birthDate": u.BirthDate.Format("2006-01-02"),
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}
