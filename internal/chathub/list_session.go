package chathub

import (
	"encoding/json"

	"preloved/backend/internal/models"
)

// ListSession interprets inbound events on a chat-list connection. The
// channel is almost entirely server-push; the inbound vocabulary is just
// join/leave.
type ListSession struct {
	userID uint
	client Client
}

func NewListSession(userID uint, client Client) *ListSession {
	return &ListSession{userID: userID, client: client}
}

func (s *ListSession) HandleFrame(raw []byte) {
	var ev models.InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		s.sendError(4003, "invalid_payload")
		return
	}

	switch ev.Event {
	case models.EventJoinChatList:
		s.client.Send(models.ListEvent{
			Event:   models.EventSystemMessage,
			Payload: map[string]string{"type": "join_chat_list", "message": "ok"},
		})
	case models.EventLeaveChatList:
		s.client.Send(models.ListEvent{
			Event:   models.EventSystemMessage,
			Payload: map[string]string{"type": "leave_chat_list", "message": "bye"},
		})
		s.client.Close()
	default:
		s.sendError(4000, "unknown_event")
	}
}

func (s *ListSession) sendError(code int, message string) {
	s.client.Send(models.ListEvent{
		Event:   models.EventError,
		Payload: map[string]any{"code": code, "message": message},
	})
}
