package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"preloved/backend/internal/auth"
	"preloved/backend/internal/chathub"
	"preloved/backend/internal/localization"
	"preloved/backend/internal/models"
	"preloved/backend/internal/storage"
)

// stubStore overrides the room lookup; everything else panics if reached.
type stubStore struct {
	storage.Storage
	room    *models.ChatRoom
	roomErr error
}

func (s *stubStore) GetRoomByID(uint) (*models.ChatRoom, error) {
	return s.room, s.roomErr
}

func newWSServer(store *stubStore) (*httptest.Server, *Handler) {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		Store:  store,
		Tokens: auth.NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour),
		Rooms:  chathub.NewRoomHub(),
		Lists:  chathub.NewListHub(),
		Loc: localization.NewStatic("en", map[string]map[string]string{
			"en": {"chat.welcome": "You have joined the chat"},
		}),
		Lang: "en",
	}
	r := gin.New()
	r.GET("/ws/chat/:chatId", h.ServeRoomWS)
	r.GET("/ws/chat-list", h.ServeChatListWS)
	return httptest.NewServer(r), h
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	return conn
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, code), "expected close %d, got %v", code, err)
			return
		}
	}
}

func TestRoomWSRejectsInvalidToken(t *testing.T) {
	srv, h := newWSServer(&stubStore{})
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/chat/42?token=garbage")
	defer conn.Close()

	expectClose(t, conn, models.CloseInvalidToken)
	assert.Equal(t, 0, h.Rooms.Count(42))
}

func TestRoomWSRejectsUnknownRoom(t *testing.T) {
	srv, h := newWSServer(&stubStore{roomErr: storage.ErrNotFound})
	defer srv.Close()

	token, _ := h.Tokens.IssueAccess(2)
	conn := dialWS(t, srv, "/ws/chat/42?token="+token)
	defer conn.Close()

	expectClose(t, conn, models.CloseNotFound)
	assert.Equal(t, 0, h.Rooms.Count(42))
}

func TestRoomWSRejectsNonParticipant(t *testing.T) {
	room := &models.ChatRoom{
		Model:    gorm.Model{ID: 42},
		SellerID: 1,
		BuyerID:  2,
		Status:   models.RoomActive,
	}
	srv, h := newWSServer(&stubStore{room: room})
	defer srv.Close()

	token, _ := h.Tokens.IssueAccess(99)
	conn := dialWS(t, srv, "/ws/chat/42?token="+token)
	defer conn.Close()

	expectClose(t, conn, models.CloseForbidden)
	assert.Equal(t, 0, h.Rooms.Count(42))
}

// waitForCount polls fn until it reports want; the hub bookkeeping runs in
// the connection goroutines, so the test has to wait for it.
func waitForCount(t *testing.T, fn func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, want, fn())
}

func TestRoomWSAbruptDisconnectCleansUp(t *testing.T) {
	room := &models.ChatRoom{
		Model:    gorm.Model{ID: 42},
		SellerID: 1,
		BuyerID:  2,
		Status:   models.RoomActive,
	}
	srv, h := newWSServer(&stubStore{room: room})
	defer srv.Close()

	sellerToken, _ := h.Tokens.IssueAccess(1)
	buyerToken, _ := h.Tokens.IssueAccess(2)

	seller := dialWS(t, srv, "/ws/chat/42?token="+sellerToken)
	defer seller.Close()
	buyer := dialWS(t, srv, "/ws/chat/42?token="+buyerToken)

	// Both connections joined and got the localized welcome.
	for _, conn := range []*websocket.Conn{seller, buyer} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev map[string]any
		assert.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, models.EventSystemMessage, ev["event"])
		assert.Equal(t, "You have joined the chat", ev["message"])
	}
	waitForCount(t, func() int { return h.Rooms.Count(42) }, 2)

	// Abrupt drop: no leave_room event, no close handshake.
	buyer.Close()

	// The read pump's cleanup removes the connection exactly once.
	waitForCount(t, func() int { return h.Rooms.Count(42) }, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, h.Rooms.Count(42))

	// Delivery keeps working for the survivor.
	h.Rooms.Broadcast(42, models.NewSystemMessage("test", "still here"), nil)
	seller.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	assert.NoError(t, seller.ReadJSON(&ev))
	assert.Equal(t, "still here", ev["message"])
}

func TestChatListWSRejectsInvalidToken(t *testing.T) {
	srv, h := newWSServer(&stubStore{})
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/chat-list?token=garbage")
	defer conn.Close()

	// An error event precedes the close so clients can tell auth failure
	// from a network drop.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	err := conn.ReadJSON(&ev)
	assert.NoError(t, err)
	assert.Equal(t, models.EventError, ev["event"])

	expectClose(t, conn, models.CloseInvalidToken)
	assert.Equal(t, 0, h.Lists.Count(0))
}
