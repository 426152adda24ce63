package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

type listingIn struct {
	Title   string   `json:"title" binding:"required"`
	Price   int      `json:"price" binding:"required,gte=0"`
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images"`
}

// CreateListing publishes a new listing for the caller.
func (h *Handler) CreateListing(c *gin.Context) {
	userID, _ := currentUser(c)

	var in listingIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	listing := models.Listing{
		SellerID: userID,
		Title:    in.Title,
		Price:    in.Price,
		Content:  in.Content,
		Images:   pq.StringArray(in.Images),
	}
	if err := h.Store.CreateListing(&listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// ListListings returns a page of listings, newest first.
func (h *Handler) ListListings(c *gin.Context) {
	page, size := pageParams(c)
	includeContent := c.Query("includeContent") == "true"

	rows, total, err := h.Store.ListListings(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	data := make([]gin.H, 0, len(rows))
	for i := range rows {
		data = append(data, listingItem(&rows[i], includeContent))
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "size": size, "total": total, "data": data})
}

// MyListings returns the caller's listings filtered by shelf
// (selling | sold | purchased | favorite).
func (h *Handler) MyListings(c *gin.Context) {
	userID, _ := currentUser(c)

	filter := c.Query("status")
	switch filter {
	case "selling", "sold", "purchased", "favorite":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_STATUS"})
		return
	}

	page, size := pageParams(c)
	rows, total, err := h.Store.MyListings(userID, filter, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	data := make([]gin.H, 0, len(rows))
	for i := range rows {
		data = append(data, listingItem(&rows[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "size": size, "total": total, "data": data})
}

// GetListing returns one listing and counts the view, deduped per viewer
// (authenticated user or client IP) within a 24h window.
func (h *Handler) GetListing(c *gin.Context) {
	listing, ok := h.listingByParam(c)
	if !ok {
		return
	}

	viewerKey := c.ClientIP()
	if userID, ok := currentUser(c); ok {
		viewerKey = fmt.Sprintf("u%d", userID)
	}
	if first, err := h.Store.MarkListingViewed(listing.ID, viewerKey); err == nil && first {
		if err := h.Store.IncrementViewCount(listing.ID); err == nil {
			listing.ViewCount++
		}
	}

	c.JSON(http.StatusOK, listing)
}

// UpdateListing patches a listing; only its seller may do so.
func (h *Handler) UpdateListing(c *gin.Context) {
	userID, _ := currentUser(c)
	listing, ok := h.listingByParam(c)
	if !ok {
		return
	}
	if listing.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var in struct {
		Title   *string  `json:"title"`
		Price   *int     `json:"price"`
		Content *string  `json:"content"`
		Images  []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	if in.Title != nil {
		listing.Title = *in.Title
	}
	if in.Price != nil {
		listing.Price = *in.Price
	}
	if in.Content != nil {
		listing.Content = *in.Content
	}
	if in.Images != nil {
		listing.Images = pq.StringArray(in.Images)
	}

	if err := h.Store.SaveListing(listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DeleteListing removes a listing; only its seller may do so.
func (h *Handler) DeleteListing(c *gin.Context) {
	userID, _ := currentUser(c)
	listing, ok := h.listingByParam(c)
	if !ok {
		return
	}
	if listing.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.Store.DeleteListing(listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"postingId": listing.ID})
}

// ToggleFavorite flips the caller's favorite on a listing.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	userID, _ := currentUser(c)
	listing, ok := h.listingByParam(c)
	if !ok {
		return
	}

	favorited, err := h.Store.ToggleFavorite(userID, listing.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"postingId": listing.ID,
		"userId":    userID,
		"favorited": favorited,
	})
}

func (h *Handler) listingByParam(c *gin.Context) (*models.Listing, bool) {
	id, err := strconv.ParseUint(c.Param("postingId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_posting_id"})
		return nil, false
	}
	listing, err := h.Store.GetListingByID(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting_not_found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return nil, false
	}
	return listing, true
}

func listingItem(l *models.Listing, includeContent bool) gin.H {
	item := gin.H{
		"postingId": l.ID,
		"title":     l.Title,
		"price":     l.Price,
		"sellerId":  l.SellerID,
		"status":    l.Status,
		"createdAt": l.CreatedAt,
		"likeCount": l.LikeCount,
		"chatCount": l.ChatCount,
		"viewCount": l.ViewCount,
	}
	if len(l.Images) > 0 {
		item["thumbnail"] = l.Images[0]
	}
	if includeContent {
		item["content"] = l.Content
	}
	return item
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
