package chathub

import (
	"log"
	"sync"
)

// RoomHub tracks, per room, the set of connections currently subscribed to
// that room's channel. One mutex guards all rooms; holding it across a whole
// Broadcast call is what gives each room its in-order delivery guarantee.
type RoomHub struct {
	mu    sync.Mutex
	rooms map[uint]map[Client]struct{}
}

func NewRoomHub() *RoomHub {
	return &RoomHub{rooms: make(map[uint]map[Client]struct{})}
}

// Join subscribes conn to the room. Joining twice with the same connection
// is a no-op.
func (h *RoomHub) Join(roomID uint, conn Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.rooms[roomID]
	if !ok {
		set = make(map[Client]struct{})
		h.rooms[roomID] = set
	}
	set[conn] = struct{}{}
}

// Leave removes conn from the room. The room entry is dropped once its last
// connection leaves, so idle rooms hold no memory.
func (h *RoomHub) Leave(roomID uint, conn Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, conn)
}

func (h *RoomHub) removeLocked(roomID uint, conn Client) {
	set, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast delivers event to every connection in the room except exclude
// (pass nil to reach everyone). A connection that cannot accept the event is
// closed and dropped; its failure never aborts delivery to the rest. The set
// is iterated over a snapshot and dead connections are removed afterwards.
func (h *RoomHub) Broadcast(roomID uint, event any, exclude Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.rooms[roomID]
	if !ok {
		return
	}

	snapshot := make([]Client, 0, len(set))
	for conn := range set {
		snapshot = append(snapshot, conn)
	}

	var dead []Client
	for _, conn := range snapshot {
		if conn == exclude {
			continue
		}
		if !conn.Send(event) {
			dead = append(dead, conn)
		}
	}

	for _, conn := range dead {
		log.Printf("Dropping dead connection of user %d from room %d", conn.UserID(), roomID)
		h.removeLocked(roomID, conn)
		conn.Close()
	}
}

// Count returns the number of live connections in the room.
func (h *RoomHub) Count(roomID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
