package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"preloved/backend/internal/chathub"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a different origin; tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeRoomWS is the room channel: /ws/chat/:chatId?token=...
// The credential is a query parameter because browsers cannot set headers on
// WebSocket handshakes. Failures after the upgrade close with a
// distinguishing code: 4001 bad token, 4004 no room, 4003 not a participant.
func (h *Handler) ServeRoomWS(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_chat_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	userID, err := h.Tokens.ParseAccess(c.Query("token"))
	if err != nil {
		rejectConn(conn, models.CloseInvalidToken, "invalid or expired token")
		return
	}

	room, err := h.Store.GetRoomByID(uint(roomID))
	if errors.Is(err, storage.ErrNotFound) {
		rejectConn(conn, models.CloseNotFound, "room not found")
		return
	}
	if err != nil {
		rejectConn(conn, websocket.CloseInternalServerErr, "internal error")
		return
	}
	if !room.IsParticipant(userID) {
		rejectConn(conn, models.CloseForbidden, "forbidden")
		return
	}

	client := chathub.NewWebSocketClient(userID, conn)
	session := chathub.NewSession(h.Store, h.Rooms, h.Notifier, room, userID, client,
		h.Loc.Get(h.Lang, "chat.welcome"))
	client.OnFrame(session.HandleFrame)
	client.OnClose(func() {
		h.Rooms.Leave(room.ID, client)
	})

	h.Rooms.Join(room.ID, client)
	client.Run()
	session.Welcome()
}

// ServeChatListWS is the user channel: /ws/chat-list?token=...
// An invalid token gets an error event before the 4001 close so the client
// can distinguish auth failure from a network drop.
func (h *Handler) ServeChatListWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	userID, err := h.Tokens.ParseAccess(c.Query("token"))
	if err != nil {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		conn.WriteJSON(models.ListEvent{
			Event:   models.EventError,
			Payload: map[string]any{"code": models.CloseInvalidToken, "message": "INVALID_OR_EXPIRED_TOKEN"},
		})
		rejectConn(conn, models.CloseInvalidToken, "invalid or expired token")
		return
	}

	client := chathub.NewWebSocketClient(userID, conn)
	session := chathub.NewListSession(userID, client)
	client.OnFrame(session.HandleFrame)
	client.OnClose(func() {
		h.Lists.Leave(userID, client)
	})

	h.Lists.Join(userID, client)
	client.Run()
}

// rejectConn closes a just-upgraded connection that never joins a hub.
func rejectConn(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(10 * time.Second)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
