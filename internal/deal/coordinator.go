// Package deal implements the deal-status state machine over chat rooms:
// ACTIVE <-> RESERVED -> COMPLETED, with COMPLETED terminal. A transition
// cascades to the listing's sale status, bumps trade counters on
// completion, persists a localized system message, and fans the result out
// to the room's live connections.
package deal

import (
	"errors"
	"time"

	"preloved/backend/internal/chathub"
	"preloved/backend/internal/localization"
	"preloved/backend/internal/models"
)

// Validation errors. They are produced before any state is mutated.
var (
	ErrForbidden         = errors.New("acting user is not a room participant")
	ErrInvalidStatus     = errors.New("invalid deal status")
	ErrSameStatus        = errors.New("no-op status transition")
	ErrCompletedLocked   = errors.New("completed deals cannot change")
	ErrInvalidTransition = errors.New("transition not permitted")
)

// Store is the persistence slice the coordinator needs. *storage.Service
// satisfies it; errors from it are expected to include storage.ErrNotFound
// and storage.ErrConflict.
type Store interface {
	GetRoomByID(id uint) (*models.ChatRoom, error)
	GetUserByID(id uint) (*models.User, error)
	ApplyDealTransition(roomID uint, from, to models.RoomStatus, systemText string) (*models.ChatRoom, *models.Listing, *models.ChatMessage, error)
}

// Result is the post-transition snapshot returned to the caller and mirrored
// by the deal_update broadcast.
type Result struct {
	Room          *models.ChatRoom
	Listing       *models.Listing
	SystemMessage *models.ChatMessage
	ChangedBy     uint
	ChangedAt     time.Time
}

// Coordinator validates and applies deal transitions.
type Coordinator struct {
	store Store
	rooms *chathub.RoomHub
	loc   *localization.Localizer
	lang  string
}

func NewCoordinator(store Store, rooms *chathub.RoomHub, loc *localization.Localizer, lang string) *Coordinator {
	return &Coordinator{store: store, rooms: rooms, loc: loc, lang: lang}
}

// UpdateStatus moves the room to requested on behalf of actorID. All
// validation happens before any mutation; on success the committed change
// is broadcast as a deal_update event to every live room connection.
func (c *Coordinator) UpdateStatus(roomID uint, requested models.RoomStatus, actorID uint) (*Result, error) {
	room, err := c.store.GetRoomByID(roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(actorID) {
		return nil, ErrForbidden
	}

	if !requested.Valid() {
		return nil, ErrInvalidStatus
	}
	switch {
	case room.Status == requested:
		return nil, ErrSameStatus
	case room.Status == models.RoomCompleted:
		return nil, ErrCompletedLocked
	case !room.Status.CanTransitionTo(requested):
		return nil, ErrInvalidTransition
	}

	actor, err := c.store.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	systemText := c.loc.Message(c.lang, messageKey(room.Status, requested), actor.Nickname)

	updatedRoom, listing, sysMsg, err := c.store.ApplyDealTransition(roomID, room.Status, requested, systemText)
	if err != nil {
		return nil, err
	}

	c.rooms.Broadcast(updatedRoom.ID, models.DealUpdateEvent{
		Event:         models.EventDealUpdate,
		ChatID:        updatedRoom.ID,
		DealStatus:    string(updatedRoom.Status),
		PostStatus:    string(listing.Status),
		SystemMessage: sysMsg.Content,
	}, nil)

	return &Result{
		Room:          updatedRoom,
		Listing:       listing,
		SystemMessage: sysMsg,
		ChangedBy:     actorID,
		ChangedAt:     sysMsg.CreatedAt,
	}, nil
}

func messageKey(from, to models.RoomStatus) string {
	switch {
	case from == models.RoomReserved && to == models.RoomActive:
		return "deal.cancelled"
	case to == models.RoomReserved:
		return "deal.reserved"
	case to == models.RoomCompleted:
		return "deal.completed"
	}
	return "deal.changed"
}
