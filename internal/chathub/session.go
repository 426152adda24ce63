package chathub

import (
	"encoding/json"
	"log"
	"time"

	"preloved/backend/internal/models"
)

// Store is the slice of the persistence layer the chat protocol needs.
// *storage.Service satisfies it.
type Store interface {
	CreateMessage(msg *models.ChatMessage) error
	CountUserMessages(roomID uint) (int64, error)
	UpsertReadCursor(roomID, userID, messageID uint) (uint, error)
	BuildChatSummary(room *models.ChatRoom, viewerID uint) (*models.ChatSummary, error)
	LastMessageFor(room *models.ChatRoom, viewerID uint) (*models.LastMessage, error)
}

// Protocol-level error codes carried in error events. They mirror the close
// codes where the same condition can be fatal or not.
const (
	codeInvalidPayload = 4003
	codeUnknownEvent   = 4003
	codeInternal       = 4500
)

// Session interprets inbound events for one authenticated connection that
// has joined a room. Validation failures are answered with an error event
// and the connection stays open; only leave_room ends it.
type Session struct {
	store    Store
	rooms    *RoomHub
	notifier *Notifier

	room    *models.ChatRoom
	userID  uint
	client  Client
	welcome string
}

func NewSession(store Store, rooms *RoomHub, notifier *Notifier, room *models.ChatRoom, userID uint, client Client, welcome string) *Session {
	return &Session{
		store:    store,
		rooms:    rooms,
		notifier: notifier,
		room:     room,
		userID:   userID,
		client:   client,
		welcome:  welcome,
	}
}

// Welcome emits the join confirmation to the connecting client only.
func (s *Session) Welcome() {
	s.client.Send(models.NewSystemMessage("welcome", s.welcome))
}

// HandleFrame processes one inbound frame. It never panics the connection
// closed state; transport teardown is the pump's job.
func (s *Session) HandleFrame(raw []byte) {
	var ev models.InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		s.client.Send(models.NewError(codeInvalidPayload, "invalid_payload"))
		return
	}

	switch ev.Event {
	case models.EventJoinRoom:
		s.client.Send(models.NewSystemMessage("join", "ok"))
	case models.EventSendMessage:
		s.handleSend(ev)
	case models.EventReadMessage:
		s.handleRead(ev)
	case models.EventLeaveRoom:
		s.client.Close()
	default:
		s.client.Send(models.NewError(codeUnknownEvent, "unknown_event"))
	}
}

func (s *Session) handleSend(ev models.InboundEvent) {
	kind := models.MessageType(ev.Type)
	if (kind != models.MessageText && kind != models.MessageImage) || ev.Content == "" {
		s.client.Send(models.NewError(codeInvalidPayload, "invalid_payload"))
		return
	}

	sender := s.userID
	msg := models.ChatMessage{
		RoomID:   s.room.ID,
		SenderID: &sender,
		Type:     kind,
		Content:  ev.Content,
	}
	// Persist first: anyone who receives the broadcast can rely on the
	// message being durable.
	if err := s.store.CreateMessage(&msg); err != nil {
		s.client.Send(models.NewError(codeInternal, "internal_error"))
		return
	}

	s.rooms.Broadcast(s.room.ID, models.ReceiveMessageEvent{
		Event:     models.EventReceiveMessage,
		MessageID: msg.ID,
		SenderID:  sender,
		Type:      string(msg.Type),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}, nil)

	count, err := s.store.CountUserMessages(s.room.ID)
	if err != nil {
		log.Printf("ERROR: Failed to count messages for room %d: %v", s.room.ID, err)
		return
	}
	// First user message: the seller's chat list learns about the room. The
	// count only sees user messages, so earlier deal system messages do not
	// mask the first one. Best effort under concurrent sends; the signal is
	// ephemeral either way.
	if count <= 1 {
		s.notifier.ChatCreated(s.room)
	} else {
		s.notifier.ChatListUpdated(s.room)
	}
}

func (s *Session) handleRead(ev models.InboundEvent) {
	if ev.MessageID == 0 {
		s.client.Send(models.NewError(codeInvalidPayload, "invalid_payload"))
		return
	}

	cursor, err := s.store.UpsertReadCursor(s.room.ID, s.userID, ev.MessageID)
	if err != nil {
		s.client.Send(models.NewError(codeInternal, "internal_error"))
		return
	}

	// Read receipts go to the peers only, not back to the reader.
	s.rooms.Broadcast(s.room.ID, models.ReadEvent{
		Event:             models.EventRead,
		ReaderID:          s.userID,
		LastReadMessageID: cursor,
	}, s.client)
}
