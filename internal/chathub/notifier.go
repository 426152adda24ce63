package chathub

import (
	"log"

	"preloved/backend/internal/models"
)

// Notifier pushes chat-list events through the ListHub, building the
// per-viewer payloads from storage. It is shared by the room protocol
// (first-message notifications) and the REST layer (room creation).
type Notifier struct {
	lists *ListHub
	store Store
}

func NewNotifier(lists *ListHub, store Store) *Notifier {
	return &Notifier{lists: lists, store: store}
}

// ChatCreated tells the seller's chat list that a room now exists. The buyer
// opened the room, so only the seller needs the event.
func (n *Notifier) ChatCreated(room *models.ChatRoom) {
	if n.lists.Count(room.SellerID) == 0 {
		return
	}
	summary, err := n.store.BuildChatSummary(room, room.SellerID)
	if err != nil {
		log.Printf("ERROR: Failed to build chat summary for room %d: %v", room.ID, err)
		return
	}
	n.lists.NotifyUser(room.SellerID, models.EventChatCreated, summary)
}

// ChatListUpdated pushes the new last-message block to both participants.
// The payload differs per viewer (isMine, isRead), so it is built twice.
func (n *Notifier) ChatListUpdated(room *models.ChatRoom) {
	for _, userID := range []uint{room.BuyerID, room.SellerID} {
		if n.lists.Count(userID) == 0 {
			continue
		}
		last, err := n.store.LastMessageFor(room, userID)
		if err != nil {
			log.Printf("ERROR: Failed to build last message for room %d: %v", room.ID, err)
			continue
		}
		n.lists.NotifyUser(userID, models.EventChatListUpdate, models.ChatListUpdate{
			ChatID:      room.ID,
			LastMessage: last,
		})
	}
}
