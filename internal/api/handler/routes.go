package handler

import "github.com/gin-gonic/gin"

// Register mounts every route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/health", h.Health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.RequireAuth(), h.Logout)
		authGroup.GET("/email/used", h.EmailUsed)
		authGroup.GET("/username/used", h.NicknameUsed)
	}

	users := r.Group("/users")
	{
		users.GET("/me", h.RequireAuth(), h.Me)
		users.PATCH("/me", h.RequireAuth(), h.UpdateMe)
		users.GET("/:userId", h.GetUser)
	}

	postings := r.Group("/api/postings")
	{
		postings.POST("", h.RequireAuth(), h.CreateListing)
		postings.GET("", h.ListListings)
		postings.GET("/my", h.RequireAuth(), h.MyListings)
		postings.GET("/:postingId", h.OptionalAuth(), h.GetListing)
		postings.PATCH("/:postingId", h.RequireAuth(), h.UpdateListing)
		postings.DELETE("/:postingId", h.RequireAuth(), h.DeleteListing)
		postings.PUT("/:postingId/favorite", h.RequireAuth(), h.ToggleFavorite)
	}

	chat := r.Group("/api/chat", h.RequireAuth())
	{
		chat.POST("", h.CreateChat)
		chat.GET("/me", h.MyChats)
		chat.GET("/:chatId", h.ChatMessages)
		chat.PATCH("/:chatId/deal", h.UpdateDealStatus)
	}

	r.POST("/api/images", h.RequireAuth(), h.UploadImage)
	r.POST("/api/predict", h.RequireAuth(), h.Predict)

	// WebSocket credentials ride on the query string, not the middleware.
	r.GET("/ws/chat/:chatId", h.ServeRoomWS)
	r.GET("/ws/chat-list", h.ServeChatListWS)
}
