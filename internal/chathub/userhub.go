package chathub

import (
	"log"
	"sync"

	"preloved/backend/internal/models"
)

// ListHub tracks, per user, the connections subscribed to that user's
// chat-list channel. It is a registry fully disjoint from RoomHub: a user
// may hold list connections and room connections at the same time and the
// two never interact.
type ListHub struct {
	mu    sync.Mutex
	users map[uint]map[Client]struct{}
}

func NewListHub() *ListHub {
	return &ListHub{users: make(map[uint]map[Client]struct{})}
}

// Join subscribes conn to the user's chat-list channel.
func (h *ListHub) Join(userID uint, conn Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[userID]
	if !ok {
		set = make(map[Client]struct{})
		h.users[userID] = set
	}
	set[conn] = struct{}{}
}

// Leave removes conn; the user's entry is dropped when empty.
func (h *ListHub) Leave(userID uint, conn Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, conn)
}

func (h *ListHub) removeLocked(userID uint, conn Client) {
	set, ok := h.users[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.users, userID)
	}
}

// NotifyUser delivers the event to every chat-list connection the user has
// open. Notification is ephemeral: with no connections this is a no-op,
// there is no queued or offline delivery.
func (h *ListHub) NotifyUser(userID uint, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[userID]
	if !ok {
		return
	}

	ev := models.ListEvent{Event: event, Payload: payload}

	snapshot := make([]Client, 0, len(set))
	for conn := range set {
		snapshot = append(snapshot, conn)
	}

	var dead []Client
	for _, conn := range snapshot {
		if !conn.Send(ev) {
			dead = append(dead, conn)
		}
	}

	for _, conn := range dead {
		log.Printf("Dropping dead chat-list connection of user %d", userID)
		h.removeLocked(userID, conn)
		conn.Close()
	}
}

// Count returns the number of live chat-list connections for the user.
func (h *ListHub) Count(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[userID])
}
